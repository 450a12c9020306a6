package store

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/invoice-extract/internal/models"
)

type templateFile struct {
	Issuer   string                 `yaml:"issuer"`
	Keywords yaml.Node              `yaml:"keywords"`
	Fields   yaml.Node              `yaml:"fields"`
	Options  models.TemplateOptions `yaml:"options"`
}

type fieldDef struct {
	Parser     string               `yaml:"parser"`
	Type       string               `yaml:"type"`
	Required   bool                 `yaml:"required"`
	Regex      string               `yaml:"regex"`
	Group      string               `yaml:"group"`
	Occurrence string               `yaml:"occurrence"`
	Anchor     string               `yaml:"anchor"`
	Lines      int                  `yaml:"lines"`
	Pattern    string               `yaml:"pattern"`
	Default    string               `yaml:"default"`
	Table      []models.LookupEntry `yaml:"table"`
}

// compileTemplate turns a schema-valid definition into a Template. Patterns
// are compiled in multi-line mode so ^ and $ anchor on text lines.
func compileTemplate(source string, data []byte) (models.Template, error) {
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return models.Template{}, fmt.Errorf("malformed YAML: %w", err)
	}

	tmpl := models.Template{
		Issuer:  strings.TrimSpace(tf.Issuer),
		Options: tf.Options,
		Source:  source,
	}
	if tmpl.Issuer == "" {
		return models.Template{}, fmt.Errorf("issuer must not be empty")
	}

	keywords, err := decodeKeywords(&tf.Keywords)
	if err != nil {
		return models.Template{}, err
	}
	tmpl.Keywords = keywords

	if tf.Fields.Kind != yaml.MappingNode || len(tf.Fields.Content) == 0 {
		return models.Template{}, fmt.Errorf("fields must be a non-empty mapping")
	}
	for i := 0; i+1 < len(tf.Fields.Content); i += 2 {
		name := tf.Fields.Content[i].Value
		rule, err := compileField(name, tf.Fields.Content[i+1])
		if err != nil {
			return models.Template{}, fmt.Errorf("field '%s': %w", name, err)
		}
		tmpl.Fields = append(tmpl.Fields, rule)
	}

	for _, layout := range tmpl.Options.DateFormats {
		if strings.TrimSpace(layout) == "" {
			return models.Template{}, fmt.Errorf("date_formats must not contain empty layouts")
		}
	}
	return tmpl, nil
}

func decodeKeywords(node *yaml.Node) ([]string, error) {
	var raw []string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = []string{node.Value}
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("keywords: %w", err)
		}
	default:
		return nil, fmt.Errorf("keywords must be a string or a list of strings")
	}

	var keywords []string
	for _, kw := range raw {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}
	return keywords, nil
}

func compileField(name string, node *yaml.Node) (models.FieldRule, error) {
	var def fieldDef
	if node.Kind == yaml.ScalarNode {
		def.Regex = node.Value
	} else if err := node.Decode(&def); err != nil {
		return models.FieldRule{}, err
	}

	fr := models.FieldRule{
		Name:     name,
		Type:     models.DefaultFieldType(name),
		Required: def.Required,
	}
	if def.Type != "" {
		fr.Type = models.FieldType(def.Type)
	}
	switch fr.Type {
	case models.FieldTypeString, models.FieldTypeDate, models.FieldTypeAmount:
	default:
		return models.FieldRule{}, fmt.Errorf("unknown type '%s'", def.Type)
	}
	if canonical := models.DefaultFieldType(name); canonical != models.FieldTypeString && canonical != fr.Type {
		return models.FieldRule{}, fmt.Errorf("field must have type '%s'", canonical)
	}

	parser := def.Parser
	if parser == "" {
		parser = string(models.RuleRegex)
	}

	switch models.RuleKind(parser) {
	case models.RuleRegex:
		if def.Regex == "" {
			return models.FieldRule{}, fmt.Errorf("regex parser requires 'regex'")
		}
		re, err := compilePattern(def.Regex)
		if err != nil {
			return models.FieldRule{}, err
		}
		if def.Group != "" && re.SubexpIndex(def.Group) < 0 {
			return models.FieldRule{}, fmt.Errorf("regex has no group named '%s'", def.Group)
		}
		occ := models.Occurrence(def.Occurrence)
		switch occ {
		case "":
			occ = models.OccurrenceFirst
		case models.OccurrenceFirst, models.OccurrenceLast:
		case models.OccurrenceSum:
			if fr.Type != models.FieldTypeAmount {
				return models.FieldRule{}, fmt.Errorf("occurrence 'sum' is only valid for amount fields")
			}
		default:
			return models.FieldRule{}, fmt.Errorf("unknown occurrence '%s'", def.Occurrence)
		}
		fr.Rule = &models.RegexRule{Pattern: re, Group: def.Group, Occurrence: occ}

	case models.RuleOffset:
		if def.Anchor == "" {
			return models.FieldRule{}, fmt.Errorf("offset parser requires 'anchor'")
		}
		anchor, err := compilePattern(def.Anchor)
		if err != nil {
			return models.FieldRule{}, err
		}
		rule := &models.OffsetRule{Anchor: anchor, Lines: def.Lines}
		if def.Pattern != "" {
			if rule.Pattern, err = compilePattern(def.Pattern); err != nil {
				return models.FieldRule{}, err
			}
		}
		fr.Rule = rule

	case models.RuleLookup:
		if len(def.Table) == 0 {
			return models.FieldRule{}, fmt.Errorf("lookup parser requires a non-empty 'table'")
		}
		rule := &models.LookupRule{Table: def.Table, Default: def.Default}
		if def.Pattern != "" {
			var err error
			if rule.Pattern, err = compilePattern(def.Pattern); err != nil {
				return models.FieldRule{}, err
			}
		}
		fr.Rule = rule

	default:
		return models.FieldRule{}, fmt.Errorf("unknown parser '%s'", def.Parser)
	}

	return fr, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}
