// Package prism implements the Prism assembler front end: source
// preprocessing, lexing, label resolution, parsing, and emission into the
// corevm binary instruction format.
package prism

import "fmt"

// ErrEmptySource is returned by Preprocess when every line of the input is
// dropped as blank or comment-only.
var ErrEmptySource = fmt.Errorf("source is empty after preprocessing")

// FailedLexError reports a character the lexer could not start a token
// from, at the given 0-based line.
type FailedLexError struct {
	Line int
	Rune rune
}

func (e *FailedLexError) Error() string {
	return fmt.Sprintf("line %d: failed to lex character %q", e.Line, e.Rune)
}

// ParseErrorKind distinguishes the parser's failure modes.
type ParseErrorKind int

const (
	UnexpectedToken ParseErrorKind = iota
	UnexpectedEOF
	UnrecognizedInstruction
	UnknownRegister
	UndefinedLabel
	InvalidArraySize
	MixedArrayAddressing
	InvalidType
	InvalidDelayType
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	case UnrecognizedInstruction:
		return "UnrecognizedInstruction"
	case UnknownRegister:
		return "UnknownRegister"
	case UndefinedLabel:
		return "UndefinedLabel"
	case InvalidArraySize:
		return "InvalidArraySize"
	case MixedArrayAddressing:
		return "MixedArrayAddressing"
	case InvalidType:
		return "InvalidType"
	case InvalidDelayType:
		return "InvalidDelayType"
	default:
		return "UnknownParseError"
	}
}

// ParseError is the single error type the parser returns; Kind selects
// which failure category applies, Line/Detail name the offending line and
// token/label for the diagnostic.
type ParseError struct {
	Kind   ParseErrorKind
	Line   int
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Detail)
}
