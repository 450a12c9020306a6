package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceBuilder(t *testing.T) {
	inv := NewInvoiceBuilder("a.pdf").Build()

	assert.Equal(t, "a.pdf", inv.SourceFile)
	assert.Nil(t, inv.InvoiceNumber)
	assert.Nil(t, inv.Date)
	assert.Nil(t, inv.Amount)
	assert.Nil(t, inv.Client)
	assert.Nil(t, inv.Issuer)
	assert.Nil(t, inv.Extra)
}

func TestInvoiceBuilder_Fluent(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	inv := NewInvoiceBuilder("acme.pdf").
		WithInvoiceNumber("INV-1").
		WithDate(date).
		WithAmount(decimal.RequireFromString("99.90")).
		WithCurrency("CHF").
		WithClient("Foo SA").
		WithIssuer("ACME").
		WithTemplate("ACME Corp").
		WithExtra("vat", "7.7").
		Build()

	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "INV-1", *inv.InvoiceNumber)
	assert.True(t, inv.Date.Equal(date))
	assert.Equal(t, "99.9", inv.Amount.String())
	assert.Equal(t, "CHF", inv.Currency)
	assert.Equal(t, "Foo SA", *inv.Client)
	assert.Equal(t, "ACME", *inv.Issuer)
	assert.Equal(t, "ACME Corp", inv.Template)
	assert.Equal(t, map[string]string{"vat": "7.7"}, inv.Extra)
}

func TestInvoiceBuilder_Has(t *testing.T) {
	b := NewInvoiceBuilder("a.pdf")
	for _, name := range []string{FieldInvoiceNumber, FieldDate, FieldAmount, FieldClient, FieldIssuer, "vat"} {
		assert.False(t, b.Has(name), name)
	}

	b.WithAmount(decimal.NewFromInt(1)).WithExtra("vat", "x")
	assert.True(t, b.Has(FieldAmount))
	assert.True(t, b.Has("vat"))
	assert.False(t, b.Has(FieldClient))
}

func TestInvoiceBuilder_BuildCopiesExtra(t *testing.T) {
	b := NewInvoiceBuilder("a.pdf").WithExtra("po", "123")
	first := b.Build()
	b.WithExtra("po", "456")

	assert.Equal(t, "123", first.Extra["po"])
	assert.Equal(t, "456", b.Build().Extra["po"])
}

func TestInvoice_DuplicateKey(t *testing.T) {
	_, ok := NewInvoiceBuilder("a.pdf").WithInvoiceNumber("1").Build().DuplicateKey()
	assert.False(t, ok, "issuer is needed")

	k1, ok := NewInvoiceBuilder("a.pdf").WithInvoiceNumber("1").WithIssuer("ACME").
		WithAmount(decimal.RequireFromString("10.0")).Build().DuplicateKey()
	require.True(t, ok)
	k2, _ := NewInvoiceBuilder("b.pdf").WithInvoiceNumber("1").WithIssuer("ACME").
		WithAmount(decimal.RequireFromString("10.0")).Build().DuplicateKey()
	assert.Equal(t, k1, k2)
}

func TestTemplate_HasField(t *testing.T) {
	tmpl := Template{Fields: []FieldRule{{Name: FieldAmount}}}
	assert.True(t, tmpl.HasField(FieldAmount))
	assert.False(t, tmpl.HasField(FieldDate))
	assert.Equal(t, FieldTypeDate, DefaultFieldType(FieldDate))
	assert.Equal(t, FieldTypeString, DefaultFieldType("po"))
}
