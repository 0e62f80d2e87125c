package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"desk-cli/internal/chat"
	"desk-cli/internal/logger"
)

// Options configures the demo helpdesk server.
type Options struct {
	Store         *Store
	Classifier    *Classifier
	Retriever     *Retriever
	AdminUser     string
	AdminPassword string
	// Threshold below which a message opens a ticket instead of answering
	// from the FAQ. Zero means DefaultConfidenceThreshold.
	Threshold float64
	// KnowledgeThreshold is the minimum retrieval score for answering from
	// the knowledge base. Zero means DefaultKnowledgeThreshold.
	KnowledgeThreshold float64
}

// Server is the in-process helpdesk backend: the chat API the client polls,
// plus the Basic-Auth admin surface. It exists so the client can be run and
// tested end to end without the production service.
type Server struct {
	store              *Store
	classifier         *Classifier
	retriever          *Retriever
	adminUser          string
	adminPass          string
	threshold          float64
	knowledgeThreshold float64
	log                *logger.LogEntry
	router             chi.Router
}

func New(opts Options) *Server {
	s := &Server{
		store:              opts.Store,
		classifier:         opts.Classifier,
		retriever:          opts.Retriever,
		adminUser:          opts.AdminUser,
		adminPass:          opts.AdminPassword,
		threshold:          opts.Threshold,
		knowledgeThreshold: opts.KnowledgeThreshold,
		log:                logger.Named("server"),
	}
	if s.store == nil {
		s.store = NewStore()
	}
	if s.classifier == nil {
		s.classifier = NewClassifier()
	}
	if s.retriever == nil {
		s.retriever = NewRetriever()
	}
	if s.adminUser == "" {
		s.adminUser = "admin"
	}
	if s.threshold <= 0 {
		s.threshold = DefaultConfidenceThreshold
	}
	if s.knowledgeThreshold <= 0 {
		s.knowledgeThreshold = DefaultKnowledgeThreshold
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Route("/api/chat", func(api chi.Router) {
		api.Get("/history", s.handleHistory)
		api.Post("/message", s.handleMessage)
		api.Get("/categories", s.handleCategories)
	})
	r.Route("/api/knowledge", func(api chi.Router) {
		api.Get("/search", s.handleKnowledgeSearch)
	})
	r.Route("/api/admin", func(admin chi.Router) {
		admin.Use(middleware.BasicAuth("helpdesk admin", map[string]string{
			s.adminUser: s.adminPass,
		}))
		admin.Get("/tickets", s.handleListTickets)
		admin.Patch("/tickets/{ticketID}", s.handleUpdateTicket)
		admin.Get("/stats", s.handleStats)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	var afterID int64
	if raw := r.URL.Query().Get("after_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "after_id must be an integer")
			return
		}
		afterID = v
	}
	respondJSON(w, http.StatusOK, s.store.History(sessionID, afterID))
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		respondError(w, http.StatusUnprocessableEntity, "session_id is required")
		return
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		respondError(w, http.StatusUnprocessableEntity, "Message must not be empty.")
		return
	}

	s.store.EnsureSession(payload.SessionID)

	category, confidence := s.classifier.Predict(text)
	s.store.AppendMessage(payload.SessionID, chat.Message{
		Role:       chat.RoleUser,
		Text:       text,
		Category:   category,
		Confidence: &confidence,
	})

	replyText, replyCategory, replyConfidence, ticketID := s.buildReply(payload.SessionID, text, category, confidence)

	botMsg := chat.Message{
		Role:       chat.RoleBot,
		Text:       replyText,
		Category:   replyCategory,
		Confidence: &replyConfidence,
		TicketID:   ticketID,
	}
	s.store.AppendMessage(payload.SessionID, botMsg)

	respondJSON(w, http.StatusOK, map[string]any{
		"reply_text": replyText,
		"category":   replyCategory,
		"confidence": replyConfidence,
		"ticket_id":  ticketID,
	})
}

// buildReply runs the reply pipeline: known topics answer directly, then the
// knowledge base is searched for a grounded answer, then the FAQ answers
// confident predictions, and anything left opens a ticket the student can
// track.
func (s *Server) buildReply(sessionID, text, category string, confidence float64) (replyText, replyCategory string, replyConfidence float64, ticketID string) {
	if answer, ok := detectTopic(text); ok {
		return answer, "Document", 0.95, ""
	}
	if s.retriever.Ready() {
		if results := s.retriever.Retrieve(text, 3); len(results) > 0 && results[0].Score >= s.knowledgeThreshold {
			return groundedReply(results), "Document", results[0].Score, ""
		}
	}
	if confidence >= s.threshold {
		if answer := s.classifier.Answer(category); answer != "" {
			return answer, category, confidence, ""
		}
	}
	_, tracking := s.store.CreateTicket(sessionID, text, category, confidence)
	s.log.WithFields(logger.Fields{"ticket": tracking, "category": category}).Info("ticket opened")
	reply := fmt.Sprintf(
		"Your request has been received.\nTracking number: %s\nWe will get back to you as soon as possible.",
		tracking,
	)
	return reply, category, confidence, tracking
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.classifier.Categories())
}

// handleKnowledgeSearch exposes the retriever for debugging: it returns the
// ranked chunks without assembling a reply.
func (s *Server) handleKnowledgeSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	if len(q) > 500 {
		respondError(w, http.StatusBadRequest, "q must be at most 500 characters")
		return
	}
	topK := 3
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 10 {
			respondError(w, http.StatusBadRequest, "top_k must be between 1 and 10")
			return
		}
		topK = v
	}
	if !s.retriever.Ready() {
		respondJSON(w, http.StatusOK, map[string]any{
			"query":   q,
			"results": []RetrievalResult{},
			"message": "knowledge base is not loaded",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": s.retriever.Retrieve(q, topK),
	})
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !ValidTicketStatus(status) {
		respondError(w, http.StatusBadRequest, "unknown status filter")
		return
	}
	respondJSON(w, http.StatusOK, s.store.Tickets(status))
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "ticket id must be an integer")
		return
	}
	var payload struct {
		Status    *string `json:"status"`
		AdminNote *string `json:"admin_note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Status != nil && !ValidTicketStatus(*payload.Status) {
		respondError(w, http.StatusUnprocessableEntity, "unknown ticket status")
		return
	}

	ticket, changed, ok := s.store.UpdateTicket(id, payload.Status, payload.AdminNote)
	if !ok {
		respondError(w, http.StatusNotFound, "ticket not found")
		return
	}

	// Notify the originating session so the student's next poll picks the
	// update up as a regular bot message.
	if changed {
		s.store.AppendMessage(ticket.SessionID, chat.Message{
			Role:     chat.RoleBot,
			Text:     ticketUpdateText(ticket),
			TicketID: TrackingID(ticket.ID),
		})
	}

	respondJSON(w, http.StatusOK, ticket)
}

func ticketUpdateText(t Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket update – %s", TrackingID(t.ID))
	fmt.Fprintf(&b, "\nStatus: %s", t.Status)
	if t.AdminNote != "" {
		fmt.Fprintf(&b, "\nNote: %s", t.AdminNote)
	}
	return b.String()
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Stats())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
