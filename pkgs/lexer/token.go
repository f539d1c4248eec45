package lexer

import (
	"fmt"
	"math/big"
	"strconv"
)

// TokenType represents the kind of a token
//
// The set is closed: brackets, punctuation and operators carry only their
// text, while NUMBER and BIGINT also carry a decoded value.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota

	// Structural tokens
	BRACKET     // ( ) { } < > =
	PUNCTUATION // , . ;
	OPERATOR    // + - * / ! <= >= ==

	// Literals
	NUMBER // 64-bit float: 123, 1.5, 2e10, 0x1f
	BIGINT // arbitrary precision integer: 123n, 0b101n
)

// Pre-computed token name lookup for fast debugging
var tokenNames = [...]string{
	EOF:         "EOF",
	BRACKET:     "BRACKET",
	PUNCTUATION: "PUNCTUATION",
	OPERATOR:    "OPERATOR",
	NUMBER:      "NUMBER",
	BIGINT:      "BIGINT",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && int(t) >= 0 {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// SemanticTokenType represents semantic categories for syntax highlighting
type SemanticTokenType int

const (
	SemBracket     SemanticTokenType = iota // ( ) { } < > =
	SemPunctuation                          // , . ;
	SemOperator                             // + - * / ! <= >= ==
	SemNumber                               // numeric and bigint literals
)

// Semantic returns the highlighting category of a token type
func (t TokenType) Semantic() SemanticTokenType {
	switch t {
	case PUNCTUATION:
		return SemPunctuation
	case OPERATOR:
		return SemOperator
	case NUMBER, BIGINT:
		return SemNumber
	default:
		return SemBracket
	}
}

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number (0 for EOF)
	Offset int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a single token with position information
//
// Text is a slice of the scanned source, so tokens keep the source alive
// and never copy it. Number is set for NUMBER tokens and BigInt for BIGINT
// tokens; the other is left zero.
type Token struct {
	Type     TokenType
	Text     string
	Position Position

	Number float64
	BigInt *big.Int
}

// IsNumeric reports whether the token is a NUMBER or BIGINT literal
func (t Token) IsNumeric() bool {
	return t.Type == NUMBER || t.Type == BIGINT
}

// Value returns the decoded literal as a display string, or the token text
// for non-literal tokens
func (t Token) Value() string {
	switch t.Type {
	case NUMBER:
		return strconv.FormatFloat(t.Number, 'g', -1, 64)
	case BIGINT:
		if t.BigInt == nil {
			return "0"
		}
		return t.BigInt.String()
	default:
		return t.Text
	}
}

func (t Token) String() string {
	if t.IsNumeric() {
		return fmt.Sprintf("%s %q (%s) at %s", t.Type, t.Text, t.Value(), t.Position)
	}
	return fmt.Sprintf("%s %q at %s", t.Type, t.Text, t.Position)
}

// ToLSPSemanticTokensArray converts tokens to LSP semantic tokens array format
// Uses delta encoding as required by the Language Server Protocol. The EOF
// token is skipped.
func ToLSPSemanticTokensArray(tokens []Token) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	// Each token produces 5 uint32 values: deltaLine, deltaChar, length, tokenType, modifiers
	result := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	for _, token := range tokens {
		if token.Type == EOF {
			continue
		}

		line := uint32(token.Position.Line - 1)   // LSP is 0-indexed
		char := uint32(token.Position.Column - 1) // LSP is 0-indexed
		length := uint32(len(token.Text))
		tokenType := uint32(token.Type.Semantic())

		deltaLine := line - prevLine
		var deltaChar uint32
		if deltaLine == 0 {
			deltaChar = char - prevChar
		} else {
			deltaChar = char
		}

		result = append(result, deltaLine, deltaChar, length, tokenType, 0) // modifiers = 0

		prevLine = line
		prevChar = char
	}

	return result
}
