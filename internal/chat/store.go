package chat

// Renderer materializes messages for the user. Render is invoked at most once
// per server id. RenderLocal shows an unconfirmed optimistic echo that carries
// no id; echoes are never deduplicated against later server copies.
type Renderer interface {
	Render(msg Message)
	RenderLocal(role Role, text string)
	ShowComposing()
	HideComposing()
}

// Store tracks which server message ids have been handed to the renderer and
// the high-water mark used for incremental history fetches. It is owned by a
// single goroutine and needs no locking.
type Store struct {
	renderer  Renderer
	rendered  map[int64]struct{}
	watermark int64
}

func NewStore(r Renderer) *Store {
	return &Store{
		renderer: r,
		rendered: make(map[int64]struct{}),
	}
}

// Ingest processes messages in input order: ids seen before are skipped
// entirely, net-new ids are recorded and rendered. The store does not sort;
// batches arrive ascending by id, and out-of-order input renders out of order.
func (s *Store) Ingest(msgs []Message) {
	for _, m := range msgs {
		if s.track(m.ID) {
			s.renderer.Render(m)
		}
	}
}

// IngestSilently records ids and advances the watermark without rendering.
// Used to absorb server-assigned ids after the same logical messages were
// already shown optimistically.
func (s *Store) IngestSilently(msgs []Message) {
	for _, m := range msgs {
		s.track(m.ID)
	}
}

// track records the id, returning true when it was not seen before.
func (s *Store) track(id int64) bool {
	if _, ok := s.rendered[id]; ok {
		return false
	}
	s.rendered[id] = struct{}{}
	if id > s.watermark {
		s.watermark = id
	}
	return true
}

// Watermark returns the highest id incorporated so far. It never decreases.
func (s *Store) Watermark() int64 {
	return s.watermark
}

// Seen reports whether the id has been rendered or absorbed silently.
func (s *Store) Seen(id int64) bool {
	_, ok := s.rendered[id]
	return ok
}

// Count returns the number of distinct ids tracked.
func (s *Store) Count() int {
	return len(s.rendered)
}
