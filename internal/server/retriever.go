package server

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultKnowledgeThreshold is the minimum retrieval score at which a reply
// is assembled from the knowledge base instead of the FAQ/ticket flow.
const DefaultKnowledgeThreshold = 0.22

const (
	// Chunks shorter than minPartRunes are skipped when assembling a
	// grounded reply; shortPartRunes is the relaxed retry floor.
	minPartRunes   = 80
	shortPartRunes = 40
	// A single part is clipped to maxPartRunes, the joined reply body to
	// maxReplyRunes.
	maxPartRunes  = 600
	maxReplyRunes = 900
)

// Chunk is one indexed passage of a source document.
type Chunk struct {
	Text    string
	Source  string
	Section int
}

// RetrievalResult is a scored chunk as returned by the search endpoint.
type RetrievalResult struct {
	Chunk   string  `json:"chunk"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
	Section int     `json:"section"`
}

// Retriever ranks knowledge-base chunks against a free-form query by token
// overlap, the same technique the classifier uses for its seed examples.
type Retriever struct {
	chunks []Chunk
	tokens [][]string
}

// NewRetriever loads the built-in work placement knowledge base.
func NewRetriever() *Retriever {
	return NewRetrieverFromChunks(handbookChunks)
}

func NewRetrieverFromChunks(chunks []Chunk) *Retriever {
	r := &Retriever{
		chunks: append([]Chunk(nil), chunks...),
		tokens: make([][]string, 0, len(chunks)),
	}
	for _, c := range r.chunks {
		r.tokens = append(r.tokens, tokenize(c.Text))
	}
	return r
}

// Ready reports whether any chunks are indexed.
func (r *Retriever) Ready() bool {
	return len(r.chunks) > 0
}

// Retrieve returns up to topK chunks ranked by how much of the query's
// content vocabulary each chunk covers. Zero-score chunks are dropped; a
// non-positive topK means 3.
func (r *Retriever) Retrieve(query string, topK int) []RetrievalResult {
	if topK <= 0 {
		topK = 3
	}
	querySet := make(map[string]struct{})
	for _, t := range tokenize(query) {
		querySet[t] = struct{}{}
	}
	if len(querySet) == 0 {
		return nil
	}

	results := make([]RetrievalResult, 0, len(r.chunks))
	for i, c := range r.chunks {
		var common int
		seen := make(map[string]struct{}, len(r.tokens[i]))
		for _, t := range r.tokens[i] {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if _, ok := querySet[t]; ok {
				common++
			}
		}
		if common == 0 {
			continue
		}
		results = append(results, RetrievalResult{
			Chunk:   c.Text,
			Score:   float64(common) / float64(len(querySet)),
			Source:  c.Source,
			Section: c.Section,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// groundedReply assembles a bot answer from ranked chunks: usable parts are
// cleaned and joined, then a source line is appended.
func groundedReply(results []RetrievalResult) string {
	parts := replyParts(results, minPartRunes)
	if len(parts) == 0 {
		parts = replyParts(results, shortPartRunes)
	}
	if len(parts) == 0 {
		parts = []string{clipPart(stripSectionNumber(results[0].Chunk))}
	}

	var b strings.Builder
	for _, p := range parts {
		if b.Len() > 0 {
			if len([]rune(b.String()))+len([]rune(p)) > maxReplyRunes {
				break
			}
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}

	b.WriteString("\n\n")
	b.WriteString(sourceLine(results))
	return b.String()
}

func replyParts(results []RetrievalResult, floor int) []string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		text := stripSectionNumber(res.Chunk)
		if len([]rune(text)) < floor {
			continue
		}
		parts = append(parts, clipPart(text))
	}
	return parts
}

// stripSectionNumber drops a leading line that is only a bare number, an
// artifact of slide extraction.
func stripSectionNumber(text string) string {
	text = strings.TrimSpace(text)
	head, rest, found := strings.Cut(text, "\n")
	if !found {
		return text
	}
	head = strings.TrimSpace(head)
	if head == "" {
		return strings.TrimSpace(rest)
	}
	for _, r := range head {
		if !unicode.IsDigit(r) {
			return text
		}
	}
	return strings.TrimSpace(rest)
}

// clipPart bounds a part at maxPartRunes, cutting at the last sentence end
// when that leaves enough text, otherwise hard-cutting with an ellipsis.
func clipPart(text string) string {
	runes := []rune(text)
	if len(runes) <= maxPartRunes {
		return text
	}
	clipped := string(runes[:maxPartRunes])
	if i := strings.LastIndex(clipped, "."); i > 200 {
		return clipped[:i+1]
	}
	return clipped + "…"
}

func sourceLine(results []RetrievalResult) string {
	for _, res := range results {
		if strings.HasSuffix(res.Source, ".docx") {
			return "Source: Work Placement FAQ document"
		}
	}
	return "Source: Work Placement Handbook"
}

// detectTopic short-circuits the pipeline for phrasings the retriever tends
// to rank poorly, returning a canned answer when the text names a known
// topic.
func detectTopic(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, t := range topicAnswers {
		for _, phrase := range t.phrases {
			if strings.Contains(lower, phrase) {
				return t.answer, true
			}
		}
	}
	return "", false
}

var topicAnswers = []struct {
	phrases []string
	answer  string
}{
	{
		phrases: []string{
			"is the placement an internship",
			"count as an internship",
			"instead of an internship",
		},
		answer: "The work placement is not a short internship: students work at " +
			"the partner company five days a week for a whole semester, and the " +
			"semester counts as regular course credit.\n\nSource: Work Placement Handbook",
	},
	{
		phrases: []string{"timesheet"},
		answer: "Timesheets are filled in daily and signed by the company " +
			"supervisor. The signed sheet for each month is uploaded to the " +
			"portal between the 1st and the 7th of the following month.\n\n" +
			"Source: Work Placement Handbook",
	},
	{
		phrases: []string{"interim report"},
		answer: "The interim report is due between weeks 6 and 8 of the " +
			"placement. It describes the department, the tasks assigned so far " +
			"and the skills practiced, and it is graded by the academic " +
			"coordinator.\n\nSource: Work Placement Handbook",
	},
	{
		phrases: []string{"final report"},
		answer: "The final report is submitted in the last week of the semester " +
			"together with the supervisor evaluation form. Late submissions " +
			"lose ten points per business day.\n\nSource: Work Placement Handbook",
	},
}

// Built-in knowledge base: the work placement handbook slides plus the
// placement FAQ document, pre-chunked.
var handbookChunks = []Chunk{
	{
		Text: "Students attend the partner company five days a week for a full " +
			"semester. The placement follows the academic calendar: it starts " +
			"in the first week of classes and ends with the final evaluation " +
			"period.",
		Source:  "work-placement-handbook.pptx",
		Section: 2,
	},
	{
		Text: "Attendance at the company is mandatory. Students must be " +
			"present for at least 90 percent of the working days, and three " +
			"consecutive unexcused absences end the placement with a failing " +
			"grade.",
		Source:  "work-placement-handbook.pptx",
		Section: 4,
	},
	{
		Text: "Timesheets are filled in daily and signed by the company " +
			"supervisor. The signed timesheet for each month must be uploaded " +
			"to the portal between the 1st and the 7th of the following month.",
		Source:  "work-placement-handbook.pptx",
		Section: 5,
	},
	{
		Text: "The interim report is submitted between weeks 6 and 8 of the " +
			"placement. It covers the department structure, the tasks assigned " +
			"so far and the skills practiced, and it is graded by the academic " +
			"coordinator.",
		Source:  "work-placement-handbook.pptx",
		Section: 7,
	},
	{
		Text: "The final report is submitted in the last week of the semester " +
			"together with the supervisor evaluation form. Reports submitted " +
			"after the deadline lose ten points per business day of delay.",
		Source:  "work-placement-handbook.pptx",
		Section: 8,
	},
	{
		Text: "Occupational accident and disease insurance premiums are paid " +
			"by the university for the whole placement period. Students must " +
			"report any workplace accident to the coordinator within three " +
			"business days.",
		Source:  "work-placement-handbook.pptx",
		Section: 10,
	},
	{
		Text: "Working hours follow the company schedule but may not exceed " +
			"the legal limits for trainees. Overtime and weekend shifts are " +
			"voluntary and must be approved in writing by the academic " +
			"coordinator.",
		Source:  "work-placement-handbook.pptx",
		Section: 11,
	},
	{
		Text: "Changing the placement company mid-semester is possible only " +
			"once, with a petition approved by both the current company and " +
			"the placement committee, and only within the first four weeks of " +
			"the semester.",
		Source:  "placement-faq.docx",
		Section: 0,
	},
}
