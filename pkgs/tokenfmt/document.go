// Package tokenfmt encodes scanned token streams for downstream tools.
//
// Structured formats share one Document shape: the source filename, a
// BLAKE2b-256 digest of the source text and the ordered tokens. Literal
// values are carried as decimal strings so BIGINT tokens and infinite
// NUMBER tokens survive every encoding unchanged.
package tokenfmt

import (
	"encoding/hex"

	"github.com/aledsdavies/tok/pkgs/lexer"
	"golang.org/x/crypto/blake2b"
)

// Document is the structured form of one successful scan
type Document struct {
	Filename string   `json:"filename" yaml:"filename"`
	Digest   string   `json:"digest" yaml:"digest"`
	Tokens   []Record `json:"tokens" yaml:"tokens"`
}

// Record is one token in a Document
type Record struct {
	Type   string `json:"type" yaml:"type"`
	Text   string `json:"text" yaml:"text"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Offset int    `json:"offset" yaml:"offset"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

// NewDocument builds the Document for tokens scanned from source
func NewDocument(filename, source string, tokens []lexer.Token) *Document {
	records := make([]Record, 0, len(tokens))
	for _, token := range tokens {
		record := Record{
			Type:   token.Type.String(),
			Text:   token.Text,
			Line:   token.Position.Line,
			Column: token.Position.Column,
			Offset: token.Position.Offset,
		}
		if token.IsNumeric() {
			record.Value = token.Value()
		}
		records = append(records, record)
	}

	return &Document{
		Filename: filename,
		Digest:   Digest(source),
		Tokens:   records,
	}
}

// Digest returns the hex BLAKE2b-256 digest of source
func Digest(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
