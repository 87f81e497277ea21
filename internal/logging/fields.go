package logging

// Field names for structured log entries.
const (
	FieldError   = "error"
	FieldPath    = "path"
	FieldOp      = "op"
	FieldConfig  = "config"
	FieldScript  = "script"
	FieldTimeout = "timeout"

	// Rope statistics.
	FieldLen    = "len"
	FieldDepth  = "depth"
	FieldLeaves = "leaves"
	FieldChunks = "chunks"
	FieldBlock  = "block_size"

	// Script host.
	FieldHandles = "handles"

	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
