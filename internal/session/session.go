// Package session accumulates extracted invoices across uploads.
package session

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fjacquet/invoice-extract/internal/models"
)

// DebugEntry records how one document went through the pipeline.
type DebugEntry struct {
	Document string            `yaml:"document"`
	Status   string            `yaml:"status"`
	Template string            `yaml:"template,omitempty"`
	Error    string            `yaml:"error,omitempty"`
	Text     string            `yaml:"text,omitempty"`
	Fields   map[string]string `yaml:"fields,omitempty"`
	Absent   []string          `yaml:"absent,omitempty"`
	Row      []string          `yaml:"row,omitempty"`
}

// Session is an ordered, append-only collection of invoices plus the debug
// trail of every processed document. It is safe for concurrent use.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.RWMutex
	invoices []models.Invoice
	debug    []DebugEntry
	touched  time.Time
}

// New creates an empty session.
func New(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Created: now, touched: now}
}

// Append adds an invoice after all previously appended ones.
func (s *Session) Append(inv models.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, inv)
	s.touched = time.Now()
}

// AppendDebug records the debug trail of one document.
func (s *Session) AppendDebug(e DebugEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = append(s.debug, e)
	s.touched = time.Now()
}

// AppendAll adds a batch of invoices and debug entries under one lock, so
// concurrent batches on the same session never interleave.
func (s *Session) AppendAll(invoices []models.Invoice, debug []DebugEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, invoices...)
	s.debug = append(s.debug, debug...)
	s.touched = time.Now()
}

// All returns a copy of the invoices in upload order.
func (s *Session) All() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, len(s.invoices))
	copy(out, s.invoices)
	return out
}

// Debug returns a copy of the debug entries in processing order.
func (s *Session) Debug() []DebugEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DebugEntry, len(s.debug))
	copy(out, s.debug)
	return out
}

// Len returns the number of accumulated invoices.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices)
}

// Clear drops every invoice and debug entry.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = nil
	s.debug = nil
	s.touched = time.Now()
}

// LastActivity returns when the session last changed.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched
}

// Duplicate groups invoices that share issuer, number and amount.
type Duplicate struct {
	Key   string   `json:"key"`
	Files []string `json:"files"`
}

// PotentialDuplicates lists invoice groups that look like the same document.
// They are reported, never removed.
func (s *Session) PotentialDuplicates() []Duplicate {
	groups := make(map[string][]string)
	var order []string
	for _, inv := range s.All() {
		key, ok := inv.DuplicateKey()
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], inv.SourceFile)
	}

	var dups []Duplicate
	for _, key := range order {
		if len(groups[key]) > 1 {
			dups = append(dups, Duplicate{Key: key, Files: groups[key]})
		}
	}
	return dups
}

// Total is the sum of the invoice amounts in one currency.
type Total struct {
	Currency  string          `json:"currency"`
	Count     int             `json:"count"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

// Totals sums the amounts of the accumulated invoices per currency, sorted by
// currency code. Invoices without an amount are left out.
func (s *Session) Totals() ([]Total, error) {
	sums := make(map[string]*money.Money)
	counts := make(map[string]int)

	for _, inv := range s.All() {
		if inv.Amount == nil {
			continue
		}
		code := inv.Currency
		if code == "" {
			code = "XXX"
		}
		m := toMoney(*inv.Amount, code)
		if prev, ok := sums[code]; ok {
			sum, err := prev.Add(m)
			if err != nil {
				return nil, fmt.Errorf("summing %s amounts: %w", code, err)
			}
			m = sum
		}
		sums[code] = m
		counts[code]++
	}

	totals := make([]Total, 0, len(sums))
	for code, m := range sums {
		amount := decimal.New(m.Amount(), -int32(fraction(code)))
		formatted := m.Display()
		if money.GetCurrency(code) == nil {
			formatted = amount.StringFixed(2) + " " + code
		}
		totals = append(totals, Total{
			Currency:  code,
			Count:     counts[code],
			Amount:    amount,
			Formatted: formatted,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })
	return totals, nil
}

func fraction(code string) int {
	if c := money.GetCurrency(code); c != nil {
		return c.Fraction
	}
	return 2
}

func toMoney(amount decimal.Decimal, code string) *money.Money {
	minor := amount.Shift(int32(fraction(code))).Round(0).IntPart()
	return money.New(minor, code)
}

// DebugReport renders the debug entries as a stream of YAML documents.
func (s *Session) DebugReport() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, e := range s.Debug() {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encoding debug entry for %s: %w", e.Document, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
