package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fjacquet/invoice-extract/internal/currencyutils"
	"fjacquet/invoice-extract/internal/dateutils"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/parsererror"
	"fjacquet/invoice-extract/internal/textutils"
)

// Result is the outcome of extracting one document.
type Result struct {
	Invoice  models.Invoice
	Template *models.Template
	// Fields holds the raw string of every field that produced a value.
	Fields map[string]string
	// Diagnostics lists the fields that were recorded as absent.
	Diagnostics []*parsererror.FieldExtractionError
	Extracted   int
}

// Extract matches text against the templates and extracts the matched
// template's fields. It returns parsererror.ErrNoMatch when no template
// matches and an IncompleteMatchError when the match yields too few fields.
// In both error cases the returned Result still carries what was found.
func (m *Matcher) Extract(sourceFile, text string) (Result, error) {
	log := logging.ForDocument(m.logger, sourceFile)

	tmpl, ok := m.Match(text)
	if !ok {
		log.Warn("No template matched",
			logging.F(logging.FieldSnippet, textutils.Snippet(text, 500)))
		return Result{Invoice: models.Invoice{SourceFile: sourceFile}}, parsererror.ErrNoMatch
	}

	log = log.WithField(logging.FieldTemplate, tmpl.Issuer)
	log.Info("Template matched", logging.F(logging.FieldFile, tmpl.Source))

	res := Result{Template: tmpl, Fields: make(map[string]string)}
	b := models.NewInvoiceBuilder(sourceFile).WithTemplate(tmpl.Issuer)

	currency := tmpl.Options.Currency
	if currency == "" {
		currency = m.opts.DefaultCurrency
	}
	b.WithCurrency(currency)

	var missingRequired []string
	for _, field := range tmpl.Fields {
		raw, defaulted, err := m.extractField(tmpl, field, text, b)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, err)
			log.Debug("Field absent",
				logging.F(logging.FieldField, field.Name),
				logging.F(logging.FieldReason, err.Reason))
			if field.Required {
				missingRequired = append(missingRequired, field.Name)
			}
			continue
		}
		res.Fields[field.Name] = raw
		// Lookup defaults come from the template, not the document.
		if !defaulted {
			res.Extracted++
		}
	}

	if !b.Has(models.FieldIssuer) {
		b.WithIssuer(tmpl.Issuer)
	}
	res.Invoice = b.Build()

	minFields := m.opts.MinFields
	if tmpl.Options.MinFields != nil {
		minFields = *tmpl.Options.MinFields
	}
	if len(missingRequired) > 0 || res.Extracted < minFields {
		err := &parsererror.IncompleteMatchError{
			Template:  tmpl.Issuer,
			Missing:   missingRequired,
			Extracted: res.Extracted,
			Minimum:   minFields,
		}
		log.Warn("Template matched but extraction is incomplete",
			logging.F(logging.FieldCount, res.Extracted),
			logging.F(logging.FieldReason, err.Error()))
		return res, err
	}

	log.Info("Fields extracted", logging.F(logging.FieldCount, res.Extracted))
	return res, nil
}

// extractField applies one rule, converts the value to the field's type and
// stores it on b. It returns the raw value, whether it is a template default,
// or why the field is absent.
func (m *Matcher) extractField(tmpl *models.Template, field models.FieldRule, text string, b *models.InvoiceBuilder) (string, bool, *parsererror.FieldExtractionError) {
	fail := func(reason, value string, err error) (string, bool, *parsererror.FieldExtractionError) {
		return "", false, &parsererror.FieldExtractionError{
			Template: tmpl.Issuer,
			Field:    field.Name,
			Value:    value,
			Reason:   reason,
			Err:      err,
		}
	}

	if rr, ok := field.Rule.(*models.RegexRule); ok && rr.Occurrence == models.OccurrenceSum {
		total, raw, err := sumAmounts(rr.All(text), tmpl.Options.DecimalSeparator)
		if err != nil {
			return fail(err.Error(), raw, nil)
		}
		setAmount(b, field.Name, total)
		return raw, false, nil
	}

	var (
		raw       string
		ok        bool
		defaulted bool
	)
	if lr, isLookup := field.Rule.(*models.LookupRule); isLookup {
		raw, ok, defaulted = lr.Resolve(text)
	} else {
		raw, ok = field.Rule.Apply(text)
	}
	if !ok {
		return fail(fmt.Sprintf("%s rule found nothing", field.Rule.Kind()), "", nil)
	}

	switch field.Type {
	case models.FieldTypeDate:
		date, _, err := dateutils.ParseDate(raw, tmpl.Options.DateFormats...)
		if err != nil {
			return fail("unparseable date", raw, err)
		}
		if field.Name == models.FieldDate {
			b.WithDate(date)
		} else {
			b.WithExtra(field.Name, dateutils.ToISODate(date))
		}

	case models.FieldTypeAmount:
		amount, err := currencyutils.ParseAmount(raw, tmpl.Options.DecimalSeparator)
		if err != nil {
			return fail("unparseable amount", raw, err)
		}
		setAmount(b, field.Name, amount)

	default:
		switch field.Name {
		case models.FieldInvoiceNumber:
			b.WithInvoiceNumber(raw)
		case models.FieldClient:
			b.WithClient(raw)
		case models.FieldIssuer:
			b.WithIssuer(raw)
		default:
			b.WithExtra(field.Name, raw)
		}
	}
	return raw, defaulted, nil
}

func setAmount(b *models.InvoiceBuilder, name string, amount decimal.Decimal) {
	if name == models.FieldAmount {
		b.WithAmount(amount)
		return
	}
	b.WithExtra(name, amount.String())
}

func sumAmounts(values []string, decimalSep string) (decimal.Decimal, string, error) {
	if len(values) == 0 {
		return decimal.Zero, "", fmt.Errorf("regex rule found nothing")
	}
	total := decimal.Zero
	for _, v := range values {
		amount, err := currencyutils.ParseAmount(v, decimalSep)
		if err != nil {
			return decimal.Zero, v, fmt.Errorf("unparseable amount")
		}
		total = total.Add(amount)
	}
	return total, total.String(), nil
}
