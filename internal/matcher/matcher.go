// Package matcher selects the template that recognizes a document and
// extracts the template's fields from the document text.
package matcher

import (
	"sync"

	"github.com/cloudflare/ahocorasick"

	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/textutils"
)

// Options control keyword normalization, acceptance and defaults.
type Options struct {
	CaseSensitive bool
	FoldAccents   bool
	// MinFields is the number of fields a matched template must extract,
	// not counting an issuer filled in from the template itself.
	MinFields       int
	DefaultCurrency string
}

// Matcher holds the loaded templates and a keyword automaton over all of them.
// It is safe for concurrent use.
type Matcher struct {
	templates  []models.Template
	normalizer textutils.Normalizer
	opts       Options
	logger     logging.Logger

	// ahocorasick.Matcher keeps per-scan state in its nodes
	mu       sync.Mutex
	ac       *ahocorasick.Matcher
	keywords [][]int // per template, automaton indices of its normalized keywords
}

// New builds a Matcher. Template order is match priority.
func New(templates []models.Template, opts Options, logger logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	m := &Matcher{
		templates:  append([]models.Template(nil), templates...),
		normalizer: textutils.Normalizer{CaseSensitive: opts.CaseSensitive, FoldAccents: opts.FoldAccents},
		opts:       opts,
		logger:     logger,
	}
	m.build()
	return m
}

func (m *Matcher) build() {
	index := make(map[string]int)
	var patterns []string

	m.keywords = make([][]int, len(m.templates))
	for i, tmpl := range m.templates {
		seen := make(map[int]bool)
		for _, kw := range tmpl.Keywords {
			norm := m.normalizer.Normalize(kw)
			if norm == "" {
				continue
			}
			idx, ok := index[norm]
			if !ok {
				idx = len(patterns)
				index[norm] = idx
				patterns = append(patterns, norm)
			}
			if !seen[idx] {
				seen[idx] = true
				m.keywords[i] = append(m.keywords[i], idx)
			}
		}
	}

	if len(patterns) > 0 {
		m.ac = ahocorasick.NewStringMatcher(patterns)
	}
}

// Templates returns the templates in priority order.
func (m *Matcher) Templates() []models.Template {
	return append([]models.Template(nil), m.templates...)
}

// Match returns the first template, in load order, whose keywords all occur
// in text. A template without keywords never matches.
func (m *Matcher) Match(text string) (*models.Template, bool) {
	present := m.presentKeywords(text)
	if present == nil {
		return nil, false
	}

	for i := range m.templates {
		if len(m.keywords[i]) == 0 {
			continue
		}
		all := true
		for _, idx := range m.keywords[i] {
			if !present[idx] {
				all = false
				break
			}
		}
		if all {
			tmpl := m.templates[i]
			return &tmpl, true
		}
	}
	return nil, false
}

func (m *Matcher) presentKeywords(text string) map[int]bool {
	if m.ac == nil {
		return nil
	}
	normalized := []byte(m.normalizer.Normalize(text))

	m.mu.Lock()
	hits := m.ac.Match(normalized)
	m.mu.Unlock()

	if len(hits) == 0 {
		return nil
	}
	present := make(map[int]bool, len(hits))
	for _, idx := range hits {
		present[idx] = true
	}
	return present
}
