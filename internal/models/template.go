package models

// FieldType says how an extracted string is converted.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeDate   FieldType = "date"
	FieldTypeAmount FieldType = "amount"
)

// DefaultFieldType infers the type of a field from its name when the
// template does not declare one.
func DefaultFieldType(name string) FieldType {
	switch name {
	case FieldDate:
		return FieldTypeDate
	case FieldAmount:
		return FieldTypeAmount
	default:
		return FieldTypeString
	}
}

// FieldRule extracts one named field.
type FieldRule struct {
	Name     string
	Type     FieldType
	Required bool
	Rule     Rule
}

// TemplateOptions tune value conversion for one issuer.
type TemplateOptions struct {
	Currency         string   `yaml:"currency,omitempty" json:"currency,omitempty"`
	DecimalSeparator string   `yaml:"decimal_separator,omitempty" json:"decimal_separator,omitempty"`
	DateFormats      []string `yaml:"date_formats,omitempty" json:"date_formats,omitempty"`
	// MinFields overrides the global minimum number of extracted fields.
	MinFields *int `yaml:"min_fields,omitempty" json:"min_fields,omitempty"`
}

// Template recognizes one issuer's invoices and extracts their fields.
// Templates are immutable once loaded.
type Template struct {
	Issuer   string
	Keywords []string
	Fields   []FieldRule
	Options  TemplateOptions
	Source   string
}

// HasField reports whether the template declares a rule for name.
func (t Template) HasField(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
