package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// tokenExpectation represents an expected token for testing
type tokenExpectation struct {
	Type   TokenType
	Text   string
	Line   int
	Column int
}

// assertTokens compares actual tokens with expected, providing clear error messages
func assertTokens(t *testing.T, name string, input string, expected []tokenExpectation) {
	t.Helper()

	tokens, err := Tokenize(input, "test.src")
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}

	var actual []tokenExpectation
	for _, token := range tokens {
		actual = append(actual, tokenExpectation{
			Type:   token.Type,
			Text:   token.Text,
			Line:   token.Position.Line,
			Column: token.Position.Column,
		})
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("%s: token mismatch (-expected +actual):\n%s", name, diff)
	}
}

// scanError tokenizes input and requires a *Error
func scanError(t *testing.T, input string) *Error {
	t.Helper()

	tokens, err := Tokenize(input, "test.src")
	if err == nil {
		t.Fatalf("expected error for %q, got tokens %v", input, tokens)
	}
	if tokens != nil {
		t.Errorf("expected no tokens alongside error, got %d", len(tokens))
	}

	var scanErr *Error
	if !errors.As(err, &scanErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return scanErr
}

func TestEmptyInput(t *testing.T) {
	assertTokens(t, "empty input", "", []tokenExpectation{
		{EOF, "", 1, 0},
	})
}

func TestWhitespaceOnlyInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		lastLine int
	}{
		{"spaces", "    ", 1},
		{"tabs", "\t\t", 1},
		{"carriage returns", "\r\r", 1},
		{"newlines", "\n\n\n", 4},
		{"mixed", " \t\r\n \n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.name, tt.input, []tokenExpectation{
				{EOF, "", tt.lastLine, 0},
			})
		})
	}
}

func TestSingleCharacterDispatch(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"(", BRACKET},
		{")", BRACKET},
		{"{", BRACKET},
		{"}", BRACKET},
		{"<", BRACKET},
		{">", BRACKET},
		{"=", BRACKET},
		{",", PUNCTUATION},
		{".", PUNCTUATION},
		{";", PUNCTUATION},
		{"-", OPERATOR},
		{"+", OPERATOR},
		{"*", OPERATOR},
		{"/", OPERATOR},
		{"!", OPERATOR},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assertTokens(t, tt.input, tt.input, []tokenExpectation{
				{tt.expected, tt.input, 1, 1},
				{EOF, "", 1, 0},
			})
		})
	}
}

func TestTwoCharacterOperators(t *testing.T) {
	assertTokens(t, "comparison operators", "<= >= ==", []tokenExpectation{
		{OPERATOR, "<=", 1, 1},
		{OPERATOR, ">=", 1, 4},
		{OPERATOR, "==", 1, 7},
		{EOF, "", 1, 0},
	})

	assertTokens(t, "equals then bracket", "===", []tokenExpectation{
		{OPERATOR, "==", 1, 1},
		{BRACKET, "=", 1, 3},
		{EOF, "", 1, 0},
	})

	assertTokens(t, "bang equals is two tokens", "!=", []tokenExpectation{
		{OPERATOR, "!", 1, 1},
		{BRACKET, "=", 1, 2},
		{EOF, "", 1, 0},
	})
}

func TestExpression(t *testing.T) {
	assertTokens(t, "expression", "(1 + 2.5) * 3;", []tokenExpectation{
		{BRACKET, "(", 1, 1},
		{NUMBER, "1", 1, 2},
		{OPERATOR, "+", 1, 4},
		{NUMBER, "2.5", 1, 6},
		{BRACKET, ")", 1, 9},
		{OPERATOR, "*", 1, 11},
		{NUMBER, "3", 1, 13},
		{PUNCTUATION, ";", 1, 14},
		{EOF, "", 1, 0},
	})
}

func TestLineAndColumnTracking(t *testing.T) {
	assertTokens(t, "column restarts after newline", "12\n34", []tokenExpectation{
		{NUMBER, "12", 1, 1},
		{NUMBER, "34", 2, 1},
		{EOF, "", 2, 0},
	})

	assertTokens(t, "tabs count one column", "\t1\t\t2", []tokenExpectation{
		{NUMBER, "1", 1, 2},
		{NUMBER, "2", 1, 5},
		{EOF, "", 1, 0},
	})

	assertTokens(t, "carriage return has no width", "1\r\n\r2", []tokenExpectation{
		{NUMBER, "1", 1, 1},
		{NUMBER, "2", 2, 1},
		{EOF, "", 2, 0},
	})

	assertTokens(t, "trailing newline", "(\n", []tokenExpectation{
		{BRACKET, "(", 1, 1},
		{EOF, "", 2, 0},
	})
}

func TestComments(t *testing.T) {
	assertTokens(t, "block comment", "{- comment -}42", []tokenExpectation{
		{NUMBER, "42", 1, 14},
		{EOF, "", 1, 0},
	})

	assertTokens(t, "multiline block comment", "1 {- a\nbc -} 2", []tokenExpectation{
		{NUMBER, "1", 1, 1},
		{NUMBER, "2", 2, 7},
		{EOF, "", 2, 0},
	})

	assertTokens(t, "block comment closes on first -}", "{- a --} -}", []tokenExpectation{
		{OPERATOR, "-", 1, 10},
		{BRACKET, "}", 1, 11},
		{EOF, "", 1, 0},
	})

	assertTokens(t, "empty block comment", "{--}", []tokenExpectation{
		{EOF, "", 1, 0},
	})

	assertTokens(t, "line comment", "1 -- ignored ( @ 0b\n2", []tokenExpectation{
		{NUMBER, "1", 1, 1},
		{NUMBER, "2", 2, 1},
		{EOF, "", 2, 0},
	})

	assertTokens(t, "line comment at end of input", "+--", []tokenExpectation{
		{OPERATOR, "+", 1, 1},
		{EOF, "", 1, 0},
	})

	assertTokens(t, "non-ASCII comment text", "{- 日本 -}1 -- é\n2", []tokenExpectation{
		{NUMBER, "1", 1, 9},
		{NUMBER, "2", 2, 1},
		{EOF, "", 2, 0},
	})

	assertTokens(t, "brace not followed by dash", "{ -1 }", []tokenExpectation{
		{BRACKET, "{", 1, 1},
		{OPERATOR, "-", 1, 3},
		{NUMBER, "1", 1, 4},
		{BRACKET, "}", 1, 6},
		{EOF, "", 1, 0},
	})
}

func TestUnknownCharacter(t *testing.T) {
	err := scanError(t, "@")

	if err.Kind != UnknownCharacter {
		t.Errorf("expected UnknownCharacter, got %v", err.Kind)
	}
	if diff := cmp.Diff(NewError(UnknownCharacter, "@", 1, 1, "@", "test.src"), err); diff != "" {
		t.Errorf("error mismatch (-expected +actual):\n%s", diff)
	}
	if !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("expected errors.Is(err, ErrUnknownCharacter)")
	}
}

func TestUnknownCharacterPosition(t *testing.T) {
	err := scanError(t, "(1,\n  2 # 3)\n4")

	expected := NewError(UnknownCharacter, "#", 2, 5, "  2 # 3)", "test.src")
	if diff := cmp.Diff(expected, err); diff != "" {
		t.Errorf("error mismatch (-expected +actual):\n%s", diff)
	}
}

func TestUnknownCharacterUTF8(t *testing.T) {
	err := scanError(t, "1 é")

	if err.Lexeme != "é" {
		t.Errorf("expected whole rune as lexeme, got %q", err.Lexeme)
	}
	if err.Column != 3 {
		t.Errorf("expected column 3, got %d", err.Column)
	}
}

func TestColumnAfterNonASCIIComment(t *testing.T) {
	err := scanError(t, "{- é -}@")

	if err.Line != 1 || err.Column != 8 {
		t.Errorf("expected position 1:8, got %d:%d", err.Line, err.Column)
	}
}

func TestLettersAreUnknown(t *testing.T) {
	err := scanError(t, "ab\ncd")

	if err.Lexeme != "a" || err.Line != 1 || err.Column != 1 {
		t.Errorf("unexpected error location: %+v", err)
	}
}

func TestUnterminatedComment(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{"open only", "{-", 1, 1},
		{"no closer", "1 {- never closed", 1, 3},
		{"brace without dash", "{- oops }", 1, 1},
		{"dash brace overlap", "{-}", 1, 1},
		{"second line", "\n  {- x", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := scanError(t, tt.input)

			if err.Kind != UnterminatedComment {
				t.Errorf("expected UnterminatedComment, got %v", err.Kind)
			}
			if err.Lexeme != "{-" {
				t.Errorf("expected lexeme %q, got %q", "{-", err.Lexeme)
			}
			if err.Line != tt.line || err.Column != tt.column {
				t.Errorf("expected %d:%d, got %d:%d", tt.line, tt.column, err.Line, err.Column)
			}
			if !errors.Is(err, ErrUnterminatedComment) {
				t.Errorf("expected errors.Is(err, ErrUnterminatedComment)")
			}
		})
	}
}

func TestErrorDiscardsTokens(t *testing.T) {
	tokens, err := Tokenize("1 2 3 (4) @", "test.src")
	if err == nil {
		t.Fatal("expected error")
	}
	if tokens != nil {
		t.Errorf("expected nil tokens on error, got %v", tokens)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(UnknownCharacter, "@", 3, 7, "x", "main.src")
	if got, want := err.Error(), `main.src:3:7: unknown character "@"`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	err = NewError(ExpectedDigit, "", 1, 3, "0b", "main.src")
	if got, want := err.Error(), "main.src:1:3: expected digit at end of input"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLexemeRoundTrip(t *testing.T) {
	input := "{- header -}\n(1 + 0x1F) <= 2.5e3;\n  -- note\n{ = 12n, 0b1 } . !"

	tokens, err := Tokenize(input, "test.src")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(input, "\n")
	var concatenated strings.Builder
	for _, token := range tokens {
		if token.Type == EOF {
			continue
		}
		if got := input[token.Position.Offset : token.Position.Offset+len(token.Text)]; got != token.Text {
			t.Errorf("offset mismatch for %v: source has %q", token, got)
		}
		line := lines[token.Position.Line-1]
		col := token.Position.Column - 1
		if col+len(token.Text) > len(line) || line[col:col+len(token.Text)] != token.Text {
			t.Errorf("line/column mismatch for %v in line %q", token, line)
		}
		concatenated.WriteString(token.Text)
	}

	if got, want := concatenated.String(), "(1+0x1F)<=2.5e3;{=12n,0b1}.!"; got != want {
		t.Errorf("concatenated lexemes: expected %q, got %q", want, got)
	}
}

func TestLexerReuseWithInit(t *testing.T) {
	lexer := NewLexer("1 2", "first.src")

	first, err := lexer.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(first))
	}

	lexer.Init("(\n)")
	second, err := lexer.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Token{
		{Type: BRACKET, Text: "(", Position: Position{Line: 1, Column: 1, Offset: 0}},
		{Type: BRACKET, Text: ")", Position: Position{Line: 2, Column: 1, Offset: 2}},
		{Type: EOF, Text: "", Position: Position{Line: 2, Column: 0, Offset: 3}},
	}
	if diff := cmp.Diff(expected, second); diff != "" {
		t.Errorf("token mismatch (-expected +actual):\n%s", diff)
	}

	// First result must be unaffected by the second scan
	if first[0].Text != "1" {
		t.Errorf("first scan result was modified: %v", first[0])
	}
	if lexer.Filename() != "first.src" {
		t.Errorf("expected filename to survive Init, got %q", lexer.Filename())
	}
}

func TestTelemetry(t *testing.T) {
	lexer := NewLexer("(1 2) +", "test.src", WithTelemetryBasic())
	if _, err := lexer.Scan(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	telemetry := lexer.GetTokenTelemetry()
	counts := map[TokenType]int{}
	for tokenType, entry := range telemetry {
		counts[tokenType] = entry.Count
	}

	expected := map[TokenType]int{BRACKET: 2, NUMBER: 2, OPERATOR: 1, EOF: 1}
	if diff := cmp.Diff(expected, counts); diff != "" {
		t.Errorf("telemetry mismatch (-expected +actual):\n%s", diff)
	}

	if NewLexer("1", "x").GetTokenTelemetry() != nil {
		t.Error("expected nil telemetry when disabled")
	}
}

func TestTelemetryTiming(t *testing.T) {
	lexer := NewLexer("1 2 3", "test.src", WithTelemetryTiming())
	if _, err := lexer.Scan(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := lexer.GetTokenTelemetry()[NUMBER]
	if entry == nil || entry.Count != 3 {
		t.Fatalf("expected 3 NUMBER entries, got %+v", entry)
	}
	if entry.Mean() > entry.MaxTime {
		t.Errorf("mean %v greater than max %v", entry.Mean(), entry.MaxTime)
	}
	if entry.TotalTime < entry.MaxTime {
		t.Errorf("total %v less than max %v", entry.TotalTime, entry.MaxTime)
	}
}

func TestDebugEvents(t *testing.T) {
	lexer := NewLexer("0x1 -- c", "test.src", WithDebugDetailed())
	if _, err := lexer.Scan(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for _, event := range lexer.GetDebugEvents() {
		seen[event.Event] = true
	}

	for _, want := range []string{"enter_Scan", "enter_lexLeadingZero", "emit_NUMBER", "enter_skipLineComment", "exit_Scan"} {
		if !seen[want] {
			t.Errorf("expected debug event %q, got %v", want, seen)
		}
	}

	if NewLexer("1", "x").GetDebugEvents() != nil {
		t.Error("expected nil debug events when disabled")
	}
}

func TestDebugEventsOnAbort(t *testing.T) {
	lexer := NewLexer("1 @", "test.src", WithDebugPaths())
	if _, err := lexer.Scan(); err == nil {
		t.Fatal("expected error")
	}

	events := lexer.GetDebugEvents()
	if len(events) == 0 || events[len(events)-1].Event != "abort_Scan" {
		t.Errorf("expected last event to be abort_Scan, got %v", events)
	}
}

func TestConcurrentLexers(t *testing.T) {
	inputs := []string{"1 2 3", "(0x10n)", "{- c -} 4.5", "<= >= =="}

	done := make(chan error, len(inputs))
	for _, input := range inputs {
		go func(input string) {
			_, err := Tokenize(input, "test.src")
			done <- err
		}(input)
	}
	for range inputs {
		if err := <-done; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}
