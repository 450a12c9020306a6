package models

import (
	"regexp"
	"strings"
)

// RuleKind names an extraction rule variant.
type RuleKind string

const (
	RuleRegex  RuleKind = "regex"
	RuleOffset RuleKind = "offset"
	RuleLookup RuleKind = "lookup"
)

// Rule pulls a raw string value out of a document's text.
type Rule interface {
	Kind() RuleKind
	// Apply returns the value and true, or "" and false when the rule finds nothing.
	Apply(text string) (string, bool)
}

// Occurrence selects which regex match a RegexRule uses.
type Occurrence string

const (
	OccurrenceFirst Occurrence = "first"
	OccurrenceLast  Occurrence = "last"
	// OccurrenceSum adds up every match. Only valid on amount fields.
	OccurrenceSum Occurrence = "sum"
)

// RegexRule captures a group of a regular expression.
// With no Group the first capture group is used, or the whole match if the
// pattern has none.
type RegexRule struct {
	Pattern    *regexp.Regexp
	Group      string
	Occurrence Occurrence
}

func (r *RegexRule) Kind() RuleKind { return RuleRegex }

func (r *RegexRule) Apply(text string) (string, bool) {
	all := r.All(text)
	if len(all) == 0 {
		return "", false
	}
	if r.Occurrence == OccurrenceLast {
		return all[len(all)-1], true
	}
	return all[0], true
}

// All returns the non-empty captured value of every match, in order.
func (r *RegexRule) All(text string) []string {
	var out []string
	for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(r.capture(m)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (r *RegexRule) capture(m []string) string {
	if r.Group != "" {
		if idx := r.Pattern.SubexpIndex(r.Group); idx > 0 && idx < len(m) {
			return m[idx]
		}
		return ""
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// OffsetRule reads a value positioned relative to an anchor line: Lines
// non-blank lines below the first line matching Anchor, or the remainder of
// the anchor line itself when Lines is 0. Pattern, when set, narrows the
// selected line to its first capture group.
type OffsetRule struct {
	Anchor  *regexp.Regexp
	Lines   int
	Pattern *regexp.Regexp
}

func (r *OffsetRule) Kind() RuleKind { return RuleOffset }

func (r *OffsetRule) Apply(text string) (string, bool) {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		loc := r.Anchor.FindStringIndex(line)
		if loc == nil {
			continue
		}

		var target string
		if r.Lines == 0 {
			target = line[loc[1]:]
		} else {
			remaining := r.Lines
			for _, next := range lines[i+1:] {
				if strings.TrimSpace(next) == "" {
					continue
				}
				remaining--
				if remaining == 0 {
					target = next
					break
				}
			}
		}
		return narrow(r.Pattern, target)
	}
	return "", false
}

func narrow(pattern *regexp.Regexp, s string) (string, bool) {
	if pattern != nil {
		m := pattern.FindStringSubmatch(s)
		if m == nil {
			return "", false
		}
		if len(m) > 1 {
			s = m[1]
		} else {
			s = m[0]
		}
	}
	s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), ":"))
	return s, s != ""
}

// LookupEntry maps a substring to a value.
type LookupEntry struct {
	Match string `yaml:"match" json:"match"`
	Value string `yaml:"value" json:"value"`
}

// LookupRule maps text to a fixed value through an ordered table. With a
// Pattern, the captured text is looked up; without one, the first entry whose
// Match occurs anywhere in the document wins. Matching ignores case.
type LookupRule struct {
	Pattern *regexp.Regexp
	Table   []LookupEntry
	Default string
}

func (r *LookupRule) Kind() RuleKind { return RuleLookup }

func (r *LookupRule) Apply(text string) (string, bool) {
	value, ok, _ := r.Resolve(text)
	return value, ok
}

// Resolve is Apply that also reports whether the value came from Default
// rather than from the document.
func (r *LookupRule) Resolve(text string) (value string, ok, defaulted bool) {
	haystack := text
	if r.Pattern != nil {
		captured, found := narrow(r.Pattern, text)
		if !found {
			return r.fallback()
		}
		haystack = captured
	}

	lower := strings.ToLower(haystack)
	for _, entry := range r.Table {
		if strings.Contains(lower, strings.ToLower(entry.Match)) {
			return entry.Value, true, false
		}
	}
	return r.fallback()
}

func (r *LookupRule) fallback() (string, bool, bool) {
	return r.Default, r.Default != "", r.Default != ""
}
