package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/invoice-extract/internal/models"
)

func invoice(file, issuer, number, amount, currency string) models.Invoice {
	b := models.NewInvoiceBuilder(file)
	if issuer != "" {
		b.WithIssuer(issuer)
	}
	if number != "" {
		b.WithInvoiceNumber(number)
	}
	if amount != "" {
		b.WithAmount(decimal.RequireFromString(amount))
	}
	if currency != "" {
		b.WithCurrency(currency)
	}
	return b.Build()
}

func TestSession_AppendKeepsOrder(t *testing.T) {
	s := New("s1")
	s.Append(invoice("a.pdf", "ACME", "1", "10", "USD"))
	s.Append(invoice("b.pdf", "ACME", "2", "20", "USD"))
	s.Append(invoice("c.pdf", "EDF", "3", "30", "EUR"))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a.pdf", all[0].SourceFile)
	assert.Equal(t, "b.pdf", all[1].SourceFile)
	assert.Equal(t, "c.pdf", all[2].SourceFile)
	assert.Equal(t, 3, s.Len())
}

func TestSession_AllReturnsCopy(t *testing.T) {
	s := New("s1")
	s.Append(invoice("a.pdf", "", "", "", ""))

	all := s.All()
	all[0].SourceFile = "changed.pdf"

	assert.Equal(t, "a.pdf", s.All()[0].SourceFile)
}

func TestSession_Clear(t *testing.T) {
	s := New("s1")
	s.Append(invoice("a.pdf", "", "", "", ""))
	s.AppendDebug(DebugEntry{Document: "a.pdf", Status: "matched"})

	s.Clear()

	assert.Empty(t, s.All())
	assert.Empty(t, s.Debug())
	assert.Equal(t, 0, s.Len())
}

func TestSession_ConcurrentAppend(t *testing.T) {
	s := New("s1")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(invoice(fmt.Sprintf("%d.pdf", i), "", "", "", ""))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestSession_AppendAll(t *testing.T) {
	s := New("s1")
	s.Append(invoice("a.pdf", "", "", "", ""))
	s.AppendAll(
		[]models.Invoice{invoice("b.pdf", "", "", "", ""), invoice("c.pdf", "", "", "", "")},
		[]DebugEntry{{Document: "b.pdf"}, {Document: "bad.pdf", Status: "failed"}, {Document: "c.pdf"}},
	)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b.pdf", all[1].SourceFile)
	assert.Equal(t, "c.pdf", all[2].SourceFile)
	assert.Len(t, s.Debug(), 3)
}

func TestSession_PotentialDuplicates(t *testing.T) {
	s := New("s1")
	s.Append(invoice("a.pdf", "ACME", "INV-1", "100", "USD"))
	s.Append(invoice("b.pdf", "ACME", "INV-2", "100", "USD"))
	s.Append(invoice("c.pdf", "ACME", "INV-1", "100", "USD"))
	s.Append(invoice("d.pdf", "", "INV-1", "100", "USD"))

	dups := s.PotentialDuplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, dups[0].Files)

	// duplicates stay in the session
	assert.Equal(t, 4, s.Len())
}

func TestSession_Totals(t *testing.T) {
	s := New("s1")
	s.Append(invoice("a.pdf", "ACME", "1", "100.25", "USD"))
	s.Append(invoice("b.pdf", "ACME", "2", "49.75", "USD"))
	s.Append(invoice("c.pdf", "EDF", "3", "12.50", "EUR"))
	s.Append(invoice("d.pdf", "EDF", "4", "", "EUR"))
	s.Append(invoice("e.pdf", "Other", "5", "7", ""))

	totals, err := s.Totals()
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, "EUR", totals[0].Currency)
	assert.Equal(t, 1, totals[0].Count)
	assert.True(t, decimal.RequireFromString("12.50").Equal(totals[0].Amount))

	assert.Equal(t, "USD", totals[1].Currency)
	assert.Equal(t, 2, totals[1].Count)
	assert.True(t, decimal.RequireFromString("150").Equal(totals[1].Amount))
	assert.Equal(t, "$150.00", totals[1].Formatted)

	assert.Equal(t, "XXX", totals[2].Currency)
	assert.True(t, decimal.RequireFromString("7").Equal(totals[2].Amount))
}

func TestSession_DebugReport(t *testing.T) {
	s := New("s1")
	s.AppendDebug(DebugEntry{Document: "a.pdf", Status: "matched", Template: "ACME"})
	s.AppendDebug(DebugEntry{Document: "b.pdf", Status: "no_match", Error: "no template matched"})

	out, err := s.DebugReport()
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "document: a.pdf")
	assert.Contains(t, report, "template: ACME")
	assert.Contains(t, report, "status: no_match")
	assert.Contains(t, report, "---")
}

func TestManager_Get(t *testing.T) {
	m := NewManager(time.Hour)

	s, created := m.Get("")
	require.True(t, created)
	require.NotEmpty(t, s.ID)

	again, created := m.Get(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := m.Get("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", other.ID)
	assert.Equal(t, 2, m.Len())
}

func TestManager_GetKeepsUnknownUUID(t *testing.T) {
	m := NewManager(time.Hour)
	id := "6f1c2a8e-3c1b-4c55-9b0e-2f7d8a9e1b34"

	s, created := m.Get(id)
	assert.True(t, created)
	assert.Equal(t, id, s.ID)

	found, ok := m.Lookup(id)
	assert.True(t, ok)
	assert.Same(t, s, found)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(time.Hour)
	s, _ := m.Get("")
	m.Delete(s.ID)

	_, ok := m.Lookup(s.ID)
	assert.False(t, ok)
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(time.Minute)
	m.Get("")
	m.Get("")

	assert.Equal(t, 0, m.Sweep())

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestManager_SweepDisabled(t *testing.T) {
	m := NewManager(0)
	m.Get("")
	m.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}
