package token

// Type is the type of a token.
type Type string

// Token represents a lexical token.
type Token struct {
	Type    Type
	Literal string
	// Quoted reports whether the field was wrapped in quotes in the source.
	Quoted bool
	Line   int
	Column int
	// Offset is the zero-based byte offset of the token's first character.
	Offset int64
}

const (
	// Special tokens
	ILLEGAL Type = "ILLEGAL" // Malformed input; Literal holds the message
	EOF     Type = "EOF"     // End of input

	// Literals
	FIELD Type = "FIELD" // a single field, unquoted and unescaped

	// Structure
	EOR Type = "EOR" // end of record: CR, LF or CRLF outside quotes
)

// Terminates reports whether a token of type t ends the current record.
func (t Type) Terminates() bool {
	return t == EOR || t == EOF || t == ILLEGAL
}
