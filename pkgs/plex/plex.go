// Package plex adapts the scanner to participle's lexer.Definition so
// participle grammars can parse the token stream directly.
//
// Token type names usable in grammars are Bracket, Punctuation, Operator,
// Number and BigInt. Numeric tokens expose their decoded value (decimal, no
// base prefix or n suffix) so they capture straight into numeric fields.
package plex

import (
	"fmt"
	"io"

	plexer "github.com/alecthomas/participle/lexer"
	"github.com/aledsdavies/tok/pkgs/lexer"
)

// Symbol values, negative as participle requires
const (
	Bracket rune = plexer.EOF - 1 - iota
	Punctuation
	Operator
	Number
	BigInt
)

var symbols = map[string]rune{
	"EOF":         plexer.EOF,
	"Bracket":     Bracket,
	"Punctuation": Punctuation,
	"Operator":    Operator,
	"Number":      Number,
	"BigInt":      BigInt,
}

var tokenSymbols = map[lexer.TokenType]rune{
	lexer.EOF:         plexer.EOF,
	lexer.BRACKET:     Bracket,
	lexer.PUNCTUATION: Punctuation,
	lexer.OPERATOR:    Operator,
	lexer.NUMBER:      Number,
	lexer.BIGINT:      BigInt,
}

// Definition is a participle lexer.Definition backed by lexer.Tokenize
type Definition struct {
	opts []lexer.LexerOpt
}

// New returns a Definition that scans with the given lexer options
func New(opts ...lexer.LexerOpt) *Definition {
	return &Definition{opts: opts}
}

// Symbols returns the token type names usable in grammars
func (d *Definition) Symbols() map[string]rune {
	result := make(map[string]rune, len(symbols))
	for name, symbol := range symbols {
		result[name] = symbol
	}
	return result
}

// Lex scans all of r up front; a scan failure is returned as the *lexer.Error
func (d *Definition) Lex(r io.Reader) (plexer.Lexer, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	filename := nameOfReader(r)
	tokens, err := lexer.Tokenize(string(source), filename, d.opts...)
	if err != nil {
		return nil, err
	}

	return &stream{filename: filename, tokens: tokens}, nil
}

// nameOfReader returns the file name behind r, such as an *os.File
func nameOfReader(r io.Reader) string {
	if named, ok := r.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}

// stream replays scanned tokens; after the EOF token it keeps returning EOF
type stream struct {
	filename string
	tokens   []lexer.Token
	index    int
}

func (s *stream) Next() (plexer.Token, error) {
	token := s.tokens[s.index]
	if s.index < len(s.tokens)-1 {
		s.index++
	}

	value := token.Text
	if token.IsNumeric() {
		value = token.Value()
	}

	return plexer.Token{
		Type:  tokenSymbols[token.Type],
		Value: value,
		Pos: plexer.Position{
			Filename: s.filename,
			Offset:   token.Position.Offset,
			Line:     token.Position.Line,
			Column:   token.Position.Column,
		},
	}, nil
}
