package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical field names. Template rules with any other name land in Invoice.Extra.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldDate          = "date"
	FieldAmount        = "amount"
	FieldClient        = "client"
	FieldIssuer        = "issuer"
)

// Invoice is the structured record extracted from one document. Nil fields
// were not found and are rendered with the configured absent marker.
type Invoice struct {
	SourceFile    string            `json:"source_file" yaml:"source_file"`
	InvoiceNumber *string           `json:"invoice_number,omitempty" yaml:"invoice_number,omitempty"`
	Date          *time.Time        `json:"date,omitempty" yaml:"date,omitempty"`
	Amount        *decimal.Decimal  `json:"amount,omitempty" yaml:"amount,omitempty"`
	Currency      string            `json:"currency,omitempty" yaml:"currency,omitempty"`
	Client        *string           `json:"client,omitempty" yaml:"client,omitempty"`
	Issuer        *string           `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Template      string            `json:"template,omitempty" yaml:"template,omitempty"`
	Extra         map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// DuplicateKey identifies invoices that are probably the same document
// uploaded twice. ok is false when there is not enough data to tell.
func (inv Invoice) DuplicateKey() (key string, ok bool) {
	if inv.InvoiceNumber == nil || inv.Issuer == nil {
		return "", false
	}
	key = *inv.Issuer + "|" + *inv.InvoiceNumber
	if inv.Amount != nil {
		key += "|" + inv.Amount.String()
	}
	return key, true
}
