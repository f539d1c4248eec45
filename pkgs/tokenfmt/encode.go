package tokenfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aledsdavies/tok/pkgs/lexer"
	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Write encodes tokens scanned from source in the requested format
func Write(w io.Writer, format Format, filename, source string, tokens []lexer.Token) error {
	switch format {
	case FormatText:
		return writeText(w, filename, tokens)
	case FormatJSON:
		return writeJSON(w, NewDocument(filename, source, tokens))
	case FormatYAML:
		return writeYAML(w, NewDocument(filename, source, tokens))
	case FormatCBOR:
		return writeCBOR(w, NewDocument(filename, source, tokens))
	case FormatLSP:
		return writeLSP(w, tokens)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// writeText prints one token per line: position, type, text and value
func writeText(w io.Writer, filename string, tokens []lexer.Token) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, token := range tokens {
		value := ""
		if token.IsNumeric() {
			value = token.Value()
		}
		if _, err := fmt.Fprintf(tw, "%s:%d:%d\t%s\t%q\t%s\n",
			filename,
			token.Position.Line,
			token.Position.Column,
			token.Type,
			token.Text,
			value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func writeCBOR(w io.Writer, doc *Document) error {
	if err := cbor.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encoding CBOR: %w", err)
	}
	return nil
}

// semanticTokens mirrors the LSP SemanticTokens result
type semanticTokens struct {
	Data []uint32 `json:"data"`
}

func writeLSP(w io.Writer, tokens []lexer.Token) error {
	if err := json.NewEncoder(w).Encode(semanticTokens{Data: lexer.ToLSPSemanticTokensArray(tokens)}); err != nil {
		return fmt.Errorf("encoding semantic tokens: %w", err)
	}
	return nil
}

// DecodeCBOR reads a Document written in FormatCBOR
func DecodeCBOR(r io.Reader) (*Document, error) {
	var doc Document
	if err := cbor.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding CBOR: %w", err)
	}
	return &doc, nil
}
