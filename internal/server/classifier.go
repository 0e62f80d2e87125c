package server

import (
	"sort"
	"strings"
)

// DefaultConfidenceThreshold separates FAQ answers from ticket creation:
// predictions at or above it answer directly, below it a ticket is opened.
const DefaultConfidenceThreshold = 0.65

// Classifier assigns a helpdesk category to free-form questions by token
// overlap against per-category seed examples. It is deterministic and needs
// no training step.
type Classifier struct {
	categories []string
	examples   map[string][][]string // category -> tokenized seed questions
	answers    map[string]string
}

// Seed examples per category. Extending a category is just adding lines here.
var categoryExamples = map[string][]string{
	"Academic": {
		"How do I register for courses?",
		"Where can I get my transcript?",
		"When is the add drop deadline?",
		"How is the grade point average calculated?",
		"How do I apply for an internship placement?",
		"How many credits do I need to graduate?",
		"How can I meet my academic advisor?",
		"When will the course schedule be published?",
		"What is the attendance requirement for lectures?",
		"How do I register for the makeup exam?",
		"When are summer school applications open?",
		"Where can I see the academic calendar?",
		"Has the final exam schedule been announced?",
	},
	"Technical": {
		"The student information system will not open",
		"I forgot my password how do I reset it?",
		"I cannot log in to my email account",
		"I cannot connect to the campus wifi",
		"The online learning portal keeps crashing",
		"My student card does not work at the turnstile",
		"I cannot upload my assignment to the portal",
		"The lecture recording will not play",
	},
	"Administrative": {
		"How do I get a student certificate?",
		"Where do I submit my leave of absence request?",
		"How do I update my contact address?",
		"What documents do I need for enrollment?",
		"How can I get a new student card?",
		"Where is the registrar office located?",
		"How do I request an official document?",
	},
	"Financial": {
		"When are tuition payments due?",
		"How do I apply for a scholarship?",
		"Can I pay my tuition in installments?",
		"Where do I see my outstanding balance?",
		"How do I get a tuition payment receipt?",
		"What happens if I miss a payment deadline?",
	},
}

// FAQ answers returned for confident predictions.
var faqAnswers = map[string]string{
	"Academic": "For academic matters (course registration, transcripts, " +
		"deadlines, graduation requirements), check the student information " +
		"system under Academics, or contact your academic advisor during " +
		"office hours.",
	"Technical": "For technical problems, first try resetting your password " +
		"at the self-service portal. If the problem persists, the IT help " +
		"desk is available on weekdays between 09:00 and 17:00.",
	"Administrative": "Administrative requests (certificates, documents, " +
		"enrollment paperwork) are handled by the registrar's office. Most " +
		"documents can be requested online and are ready within two business " +
		"days.",
	"Financial": "Tuition and scholarship questions are handled by the " +
		"financial affairs office. Payment schedules and your current balance " +
		"are listed in the student information system under Payments.",
}

func NewClassifier() *Classifier {
	c := &Classifier{
		examples: make(map[string][][]string, len(categoryExamples)),
		answers:  faqAnswers,
	}
	for category, seeds := range categoryExamples {
		c.categories = append(c.categories, category)
		tokenized := make([][]string, 0, len(seeds))
		for _, s := range seeds {
			tokenized = append(tokenized, tokenize(s))
		}
		c.examples[category] = tokenized
	}
	sort.Strings(c.categories)
	return c
}

// Categories returns the known categories in stable order.
func (c *Classifier) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Predict returns the best-matching category and a confidence in [0,1].
// Confidence is the highest overlap score against any seed example of the
// winning category.
func (c *Classifier) Predict(text string) (string, float64) {
	tokens := tokenize(text)
	best := "Other"
	bestScore := 0.0
	for _, category := range c.categories {
		for _, seed := range c.examples[category] {
			if score := overlap(tokens, seed); score > bestScore {
				bestScore = score
				best = category
			}
		}
	}
	return best, bestScore
}

// Answer returns the FAQ template for a category, or empty when none exists.
func (c *Classifier) Answer(category string) string {
	return c.answers[category]
}

// stopwords excluded from scoring; overlap on these alone says nothing.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "i": {}, "my": {}, "do": {}, "does": {},
	"how": {}, "what": {}, "when": {}, "where": {}, "is": {}, "are": {},
	"can": {}, "to": {}, "for": {}, "in": {}, "of": {}, "it": {}, "and": {},
	"will": {}, "not": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// overlap scores how much of the seed's vocabulary the query covers,
// Jaccard-style over content tokens.
func overlap(query, seed []string) float64 {
	if len(query) == 0 || len(seed) == 0 {
		return 0
	}
	seedSet := make(map[string]struct{}, len(seed))
	for _, t := range seed {
		seedSet[t] = struct{}{}
	}
	querySet := make(map[string]struct{}, len(query))
	for _, t := range query {
		querySet[t] = struct{}{}
	}
	var common int
	for t := range querySet {
		if _, ok := seedSet[t]; ok {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	union := len(seedSet) + len(querySet) - common
	return float64(common) / float64(union)
}
