package logging

// Standardized field names for structured logging.
const (
	FieldDocument   = "document"
	FieldFile       = "file_path"
	FieldTemplate   = "template"
	FieldIssuer     = "issuer"
	FieldField      = "field"
	FieldKeywords   = "keywords"
	FieldPage       = "page"
	FieldPages      = "pages"
	FieldStage      = "stage"
	FieldStatus     = "status"
	FieldReason     = "reason"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldSession    = "session_id"
	FieldBackend    = "backend"
	FieldFormat     = "format"
	FieldOutputFile = "output_file"
	FieldSnippet    = "snippet"
)
