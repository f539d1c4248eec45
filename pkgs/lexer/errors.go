package lexer

import (
	"errors"
	"fmt"
)

// ErrorKind identifies why a scan was aborted
type ErrorKind int

const (
	ExpectedDigit       ErrorKind = iota // 0b, 0o or 0x prefix without a digit of that base
	UnknownCharacter                     // character matches no dispatch rule
	UnterminatedComment                  // {- without a closing -}
	ExponentTooLarge                     // BIGINT exponent above MaxBigIntExponent
)

// Sentinel errors, one per kind, for use with errors.Is
var (
	ErrExpectedDigit       = errors.New("expected digit")
	ErrUnknownCharacter    = errors.New("unknown character")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrExponentTooLarge    = errors.New("exponent too large")
)

var kindErrors = [...]error{
	ExpectedDigit:       ErrExpectedDigit,
	UnknownCharacter:    ErrUnknownCharacter,
	UnterminatedComment: ErrUnterminatedComment,
	ExponentTooLarge:    ErrExponentTooLarge,
}

func (k ErrorKind) sentinel() error {
	if int(k) < len(kindErrors) && int(k) >= 0 {
		return kindErrors[k]
	}
	return nil
}

// String returns the fixed message of the kind
func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Code returns the diagnostic code printed in the error header
func (k ErrorKind) Code() string {
	return "E0001"
}

// Error is the single terminal failure of a scan
//
// It carries everything needed to render a diagnostic without access to the
// scanned input: the offending lexeme, its position and the full text of
// the line it sits on.
type Error struct {
	Kind     ErrorKind
	Lexeme   string // offending text, may be empty at end of input
	Line     int    // 1-based line number
	Column   int    // 1-based column of the lexeme
	Context  string // full text of the offending source line
	Filename string
}

// NewError creates a new Error
func NewError(kind ErrorKind, lexeme string, line, column int, context, filename string) *Error {
	return &Error{
		Kind:     kind,
		Lexeme:   lexeme,
		Line:     line,
		Column:   column,
		Context:  context,
		Filename: filename,
	}
}

// Error formats the error as a single line
func (e *Error) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("%s:%d:%d: %s at end of input", e.Filename, e.Line, e.Column, e.Kind)
	}
	return fmt.Sprintf("%s:%d:%d: %s %q", e.Filename, e.Line, e.Column, e.Kind, e.Lexeme)
}

// Unwrap returns the sentinel for the error's kind
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}
