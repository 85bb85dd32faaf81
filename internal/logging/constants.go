package logging

// Field names used across structured log output.
const (
	FieldDocument    = "document"
	FieldProfile     = "profile"
	FieldMessage     = "message_type"
	FieldEntry       = "entry"
	FieldTransaction = "transaction"
	FieldColumn      = "column"
	FieldValue       = "value"
	FieldCount       = "count"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
	FieldFormat      = "format"
	FieldPolicy      = "policy"
	FieldWorkers     = "workers"
)
