package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceBuilder assembles an Invoice one field at a time.
type InvoiceBuilder struct {
	inv Invoice
}

// NewInvoiceBuilder starts an invoice for the named source document.
func NewInvoiceBuilder(sourceFile string) *InvoiceBuilder {
	return &InvoiceBuilder{inv: Invoice{SourceFile: sourceFile}}
}

func (b *InvoiceBuilder) WithInvoiceNumber(v string) *InvoiceBuilder {
	b.inv.InvoiceNumber = &v
	return b
}

func (b *InvoiceBuilder) WithDate(v time.Time) *InvoiceBuilder {
	b.inv.Date = &v
	return b
}

func (b *InvoiceBuilder) WithAmount(v decimal.Decimal) *InvoiceBuilder {
	b.inv.Amount = &v
	return b
}

func (b *InvoiceBuilder) WithCurrency(code string) *InvoiceBuilder {
	b.inv.Currency = code
	return b
}

func (b *InvoiceBuilder) WithClient(v string) *InvoiceBuilder {
	b.inv.Client = &v
	return b
}

func (b *InvoiceBuilder) WithIssuer(v string) *InvoiceBuilder {
	b.inv.Issuer = &v
	return b
}

func (b *InvoiceBuilder) WithTemplate(issuer string) *InvoiceBuilder {
	b.inv.Template = issuer
	return b
}

// WithExtra records a non-canonical field.
func (b *InvoiceBuilder) WithExtra(name, v string) *InvoiceBuilder {
	if b.inv.Extra == nil {
		b.inv.Extra = make(map[string]string)
	}
	b.inv.Extra[name] = v
	return b
}

// Has reports whether the named canonical or extra field has been set.
func (b *InvoiceBuilder) Has(name string) bool {
	switch name {
	case FieldInvoiceNumber:
		return b.inv.InvoiceNumber != nil
	case FieldDate:
		return b.inv.Date != nil
	case FieldAmount:
		return b.inv.Amount != nil
	case FieldClient:
		return b.inv.Client != nil
	case FieldIssuer:
		return b.inv.Issuer != nil
	default:
		_, ok := b.inv.Extra[name]
		return ok
	}
}

// Build returns the assembled invoice.
func (b *InvoiceBuilder) Build() Invoice {
	inv := b.inv
	if b.inv.Extra != nil {
		inv.Extra = make(map[string]string, len(b.inv.Extra))
		for k, v := range b.inv.Extra {
			inv.Extra[k] = v
		}
	}
	return inv
}
