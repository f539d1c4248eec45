package lexer

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Character classification lookup tables
var (
	isDigit    [256]bool
	isBinDigit [256]bool
	isOctDigit [256]bool
	isHexDigit [256]bool
)

func init() {
	for i := 0; i < 256; i++ {
		ch := byte(i)
		isDigit[i] = '0' <= ch && ch <= '9'
		isBinDigit[i] = ch == '0' || ch == '1'
		isOctDigit[i] = '0' <= ch && ch <= '7'
		isHexDigit[i] = isDigit[i] || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
	}
}

// LexerOpt configures a Lexer
type LexerOpt func(*LexerConfig)

// TelemetryMode selects how much per-type token accounting a scan keeps
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota
	TelemetryBasic                       // counts
	TelemetryTiming                      // counts and scan time
)

// DebugLevel selects how verbose the scan trace is
type DebugLevel int

const (
	DebugOff      DebugLevel = iota
	DebugPaths                      // entry into scanning routines
	DebugDetailed                   // plus every character and emitted token
)

// LexerConfig is the result of applying LexerOpts
type LexerConfig struct {
	telemetry TelemetryMode
	debug     DebugLevel
}

// WithTelemetryBasic counts tokens per type
func WithTelemetryBasic() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming counts tokens and times each one
func WithTelemetryTiming() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugPaths traces entry into scanning routines
func WithDebugPaths() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugPaths
	}
}

// WithDebugDetailed traces every character and emitted token
func WithDebugDetailed() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugDetailed
	}
}

// TokenTelemetry counts the tokens of one type and, in timing mode, the
// time spent scanning them
type TokenTelemetry struct {
	Type      TokenType
	Count     int
	TotalTime time.Duration
	MaxTime   time.Duration
}

// Mean returns the average scan time per token
func (t TokenTelemetry) Mean() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.TotalTime / time.Duration(t.Count)
}

// DebugEvent is one entry of the scan trace
type DebugEvent struct {
	Event    string   // e.g. "enter_lexNumber", "emit_NUMBER"
	Position Position // cursor when the event was recorded
	Context  string
}

// Lexer scans one source text into tokens
//
// A Lexer is not safe for concurrent use. Independent lexers share no state
// and may run in parallel.
type Lexer struct {
	// Core lexing state
	input    string
	filename string
	tokens   []Token

	start    int // offset where the token in progress began
	position int // cursor: offset of the next unread byte
	line     int
	column   int

	// nil unless telemetry is on
	telemetryMode  TelemetryMode
	tokenTelemetry map[TokenType]*TokenTelemetry

	// nil unless debugging is on
	debugLevel  DebugLevel
	debugEvents []DebugEvent
}

// NewLexer returns a lexer over input; filename is only used in errors
func NewLexer(input, filename string, opts ...LexerOpt) *Lexer {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	lexer := &Lexer{
		filename:      filename,
		telemetryMode: config.telemetry,
		debugLevel:    config.debug,
	}

	if config.telemetry > TelemetryOff {
		lexer.tokenTelemetry = make(map[TokenType]*TokenTelemetry)
	}

	if config.debug > DebugOff {
		lexer.debugEvents = make([]DebugEvent, 0, 256)
	}

	lexer.Init(input)
	return lexer
}

// Tokenize scans input in one call
//
// On success the returned tokens end with exactly one EOF token. On failure
// the error is a *Error and no tokens are returned.
func Tokenize(input, filename string, opts ...LexerOpt) ([]Token, error) {
	return NewLexer(input, filename, opts...).Scan()
}

// Init replaces the input so the lexer can be reused
func (l *Lexer) Init(input string) {
	l.input = input
	l.reset()

	clear(l.tokenTelemetry)
	if l.debugEvents != nil {
		l.debugEvents = l.debugEvents[:0]
	}
}

func (l *Lexer) reset() {
	l.tokens = nil
	l.start = 0
	l.position = 0
	l.line = 1
	l.column = 1
}

// Filename returns the name used in diagnostics
func (l *Lexer) Filename() string {
	return l.filename
}

// GetTokenTelemetry returns a copy of the telemetry of the last scan, or nil
// when telemetry is off
func (l *Lexer) GetTokenTelemetry() map[TokenType]*TokenTelemetry {
	if l.telemetryMode == TelemetryOff || l.tokenTelemetry == nil {
		return nil
	}

	result := make(map[TokenType]*TokenTelemetry, len(l.tokenTelemetry))
	for k, v := range l.tokenTelemetry {
		telemetryCopy := *v
		result[k] = &telemetryCopy
	}
	return result
}

// GetDebugEvents returns the trace of the last scan, or nil when debugging is
// off
func (l *Lexer) GetDebugEvents() []DebugEvent {
	if l.debugLevel == DebugOff || l.debugEvents == nil {
		return nil
	}

	result := make([]DebugEvent, len(l.debugEvents))
	copy(result, l.debugEvents)
	return result
}

// Scan tokenizes the whole input
//
// The first unscannable input aborts the scan: the error is returned and
// every token scanned so far is dropped.
func (l *Lexer) Scan() ([]Token, error) {
	l.reset()

	estimatedTokens := len(l.input) / 4
	if estimatedTokens < 16 {
		estimatedTokens = 16
	}
	l.tokens = make([]Token, 0, estimatedTokens)

	if l.debugLevel > DebugOff {
		l.recordDebugEvent("enter_Scan", l.filename)
	}

	for !l.atEOF() {
		l.start = l.position

		var began time.Time
		if l.telemetryMode >= TelemetryTiming {
			began = time.Now()
		}
		emitted := len(l.tokens)

		if err := l.scanToken(); err != nil {
			if l.debugLevel > DebugOff {
				l.recordDebugEvent("abort_Scan", err.Error())
			}
			l.tokens = nil
			return nil, err
		}

		if l.telemetryMode > TelemetryOff && len(l.tokens) > emitted {
			var elapsed time.Duration
			if l.telemetryMode >= TelemetryTiming {
				elapsed = time.Since(began)
			}
			l.recordTokenTelemetry(l.tokens[emitted].Type, elapsed)
		}
	}

	l.tokens = append(l.tokens, Token{
		Type:     EOF,
		Text:     "",
		Position: Position{Line: l.line, Column: 0, Offset: len(l.input)},
	})
	if l.telemetryMode > TelemetryOff {
		l.recordTokenTelemetry(EOF, 0)
	}
	if l.debugLevel > DebugOff {
		l.recordDebugEvent("exit_Scan", "end of input")
	}

	tokens := l.tokens
	l.tokens = nil
	return tokens, nil
}

// recordTokenTelemetry adds one scanned token to its type's entry
func (l *Lexer) recordTokenTelemetry(tokenType TokenType, elapsed time.Duration) {
	telemetry := l.tokenTelemetry[tokenType]
	if telemetry == nil {
		telemetry = &TokenTelemetry{Type: tokenType}
		l.tokenTelemetry[tokenType] = telemetry
	}
	telemetry.Count++

	if l.telemetryMode == TelemetryTiming {
		telemetry.TotalTime += elapsed
		telemetry.MaxTime = max(telemetry.MaxTime, elapsed)
	}
}

// recordDebugEvent records debug events when debug tracing is enabled
func (l *Lexer) recordDebugEvent(event, context string) {
	if l.debugLevel == DebugOff || l.debugEvents == nil {
		return
	}

	l.debugEvents = append(l.debugEvents, DebugEvent{
		Event:    event,
		Position: Position{Line: l.line, Column: l.column, Offset: l.position},
		Context:  context,
	})
}

// scanToken consumes exactly one token, comment or whitespace character
func (l *Lexer) scanToken() error {
	ch := l.advance()
	if l.debugLevel >= DebugDetailed {
		l.recordDebugEvent("current_char", string(ch))
	}

	switch ch {
	case '(', ')', '}':
		l.addToken(BRACKET)
	case '{':
		if l.match('-') {
			return l.skipBlockComment()
		}
		l.addToken(BRACKET)
	case '<', '>', '=':
		if l.match('=') {
			l.addToken(OPERATOR)
		} else {
			l.addToken(BRACKET)
		}
	case ',', '.', ';':
		l.addToken(PUNCTUATION)
	case '-':
		if l.match('-') {
			l.skipLineComment()
			return nil
		}
		l.addToken(OPERATOR)
	case '+', '*', '/', '!':
		l.addToken(OPERATOR)
	case '0':
		return l.lexLeadingZero()
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return l.lexNumber()
	case ' ', '\t':
		l.column++
	case '\r':
	case '\n':
		l.line++
		l.column = 1
	default:
		// Report the whole UTF-8 sequence, not a partial byte
		if ch >= utf8.RuneSelf {
			_, size := utf8.DecodeRuneInString(l.input[l.start:])
			l.position = l.start + size
		}
		return l.errorAt(UnknownCharacter, l.input[l.start:l.position], l.column)
	}

	return nil
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// advance consumes one byte; column bookkeeping happens when the token is emitted
func (l *Lexer) advance() byte {
	ch := l.input[l.position]
	l.position++
	return ch
}

// peek returns the next unread byte, or 0 at end of input
func (l *Lexer) peek() byte {
	if l.atEOF() {
		return 0
	}
	return l.input[l.position]
}

// peekNext returns the byte after the next one, or 0 past end of input
func (l *Lexer) peekNext() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

// match consumes the next byte only if it equals expected
func (l *Lexer) match(expected byte) bool {
	if l.atEOF() || l.input[l.position] != expected {
		return false
	}
	l.position++
	return true
}

// readDigits consumes the maximal run of bytes accepted by table
func (l *Lexer) readDigits(table *[256]bool) {
	for l.position < len(l.input) && table[l.input[l.position]] {
		l.position++
	}
}

// skipBlockComment consumes up to and including the closing -}
// The opening {- has already been consumed.
func (l *Lexer) skipBlockComment() error {
	if l.debugLevel > DebugOff {
		l.recordDebugEvent("enter_skipBlockComment", "")
	}

	end := strings.Index(l.input[l.position:], "-}")
	if end < 0 {
		return l.errorAt(UnterminatedComment, l.input[l.start:l.position], l.column)
	}
	l.position += end + 2
	l.advancePos(l.input[l.start:l.position])
	return nil
}

// skipLineComment consumes up to, but not including, the next newline
func (l *Lexer) skipLineComment() {
	if l.debugLevel > DebugOff {
		l.recordDebugEvent("enter_skipLineComment", "")
	}

	if end := strings.IndexByte(l.input[l.position:], '\n'); end >= 0 {
		l.position += end
	} else {
		l.position = len(l.input)
	}
	l.advancePos(l.input[l.start:l.position])
}

// advancePos moves line and column over skipped text, one column per
// character. Invalid UTF-8 counts one column per byte.
func (l *Lexer) advancePos(s string) {
	for _, r := range s {
		switch r {
		case '\n':
			l.line++
			l.column = 1
		case '\r':
		default:
			l.column++
		}
	}
}

// addToken emits a token of the given type for input[start:position]
func (l *Lexer) addToken(tokenType TokenType) {
	l.emit(Token{Type: tokenType})
}

// emit fills in text and position, then moves the column past the lexeme
func (l *Lexer) emit(tok Token) {
	tok.Text = l.input[l.start:l.position]
	tok.Position = Position{Line: l.line, Column: l.column, Offset: l.start}
	l.column += len(tok.Text)
	l.tokens = append(l.tokens, tok)

	if l.debugLevel >= DebugDetailed {
		l.recordDebugEvent("emit_"+tok.Type.String(), tok.Text)
	}
}

// errorAt builds the terminal error for the current line
func (l *Lexer) errorAt(kind ErrorKind, lexeme string, column int) *Error {
	return NewError(kind, lexeme, l.line, column, sourceLine(l.input, l.line), l.filename)
}

// sourceLine returns the text of the 1-based line n without its line ending
func sourceLine(input string, n int) string {
	for i := 1; i < n; i++ {
		next := strings.IndexByte(input, '\n')
		if next < 0 {
			return ""
		}
		input = input[next+1:]
	}
	if end := strings.IndexByte(input, '\n'); end >= 0 {
		input = input[:end]
	}
	return strings.TrimSuffix(input, "\r")
}
