package validator

// Resource limits enforced at ingest time, beyond the lexer's and
// parser's own per-source limits.
const (
	MaxDocumentCount = 10000
	MaxSourceBytes   = 5 << 20 // 5 MiB per source
)
