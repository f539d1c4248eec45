package lexer

import (
	"math/big"
	"strconv"
	"unicode/utf8"
)

// MaxBigIntExponent is the largest exponent a BIGINT literal such as 12e3n
// may carry. Larger exponents abort the scan with ExponentTooLarge.
const MaxBigIntExponent = 4096

// lexNumber scans a decimal literal whose first digit is already consumed
//
// Grammar: digits ( '.' digits )? ( [eE] ( digits | '-' digits )? )? 'n'?
// The 'n' suffix is only accepted without a fractional part. A '.' that is
// not followed by a digit is left for the next token.
func (l *Lexer) lexNumber() error {
	if l.debugLevel > DebugOff {
		l.recordDebugEvent("enter_lexNumber", l.input[l.start:l.position])
	}

	l.readDigits(&isDigit)

	fractional := false
	if l.peek() == '.' && isDigit[l.peekNext()] {
		l.position++ // consume '.'
		l.readDigits(&isDigit)
		fractional = true
	}
	mantissa := l.input[l.start:l.position]

	// A dangling 'e', 'e-' stays part of the lexeme but adds no exponent
	exponent := ""
	if c := l.peek(); c == 'e' || c == 'E' {
		l.position++
		if isDigit[l.peek()] {
			expStart := l.position
			l.readDigits(&isDigit)
			exponent = l.input[expStart:l.position]
		} else if l.match('-') && isDigit[l.peek()] {
			expStart := l.position - 1
			l.readDigits(&isDigit)
			exponent = l.input[expStart:l.position]
		}
	}

	if !fractional && l.match('n') {
		value, ok := decimalBigInt(mantissa, exponent)
		if !ok {
			return l.errorAt(ExponentTooLarge, l.input[l.start:l.position], l.column)
		}
		l.emit(Token{Type: BIGINT, BigInt: value})
		return nil
	}

	l.emit(Token{Type: NUMBER, Number: decimalFloat(mantissa, exponent)})
	return nil
}

// lexLeadingZero scans a literal starting with '0'
//
// 0b/0B, 0o/0O and 0x select base 2, 8 and 16 and require at least one digit
// of that base. Anything else continues as a decimal literal.
func (l *Lexer) lexLeadingZero() error {
	var (
		base   int
		digits *[256]bool
	)
	switch l.peek() {
	case 'b', 'B':
		base, digits = 2, &isBinDigit
	case 'o', 'O':
		base, digits = 8, &isOctDigit
	case 'x':
		base, digits = 16, &isHexDigit
	default:
		return l.lexNumber()
	}

	if l.debugLevel > DebugOff {
		l.recordDebugEvent("enter_lexLeadingZero", strconv.Itoa(base))
	}

	l.position++ // consume prefix letter

	if l.atEOF() || !digits[l.peek()] {
		next := ""
		if !l.atEOF() {
			_, size := utf8.DecodeRuneInString(l.input[l.position:])
			next = l.input[l.position : l.position+size]
		}
		return l.errorAt(ExpectedDigit, next, l.column+2)
	}

	l.readDigits(digits)

	// The digit run is non-empty and valid for base, so SetString cannot fail
	value, _ := new(big.Int).SetString(l.input[l.start+2:l.position], base)

	if l.match('n') {
		l.emit(Token{Type: BIGINT, BigInt: value})
		return nil
	}

	number, _ := new(big.Float).SetInt(value).Float64()
	l.emit(Token{Type: NUMBER, Number: number})
	return nil
}

// decimalFloat converts a validated mantissa and optional exponent to float64
// Literals beyond the float64 range saturate to +Inf.
func decimalFloat(mantissa, exponent string) float64 {
	text := mantissa
	if exponent != "" {
		text += "e" + exponent
	}
	value, _ := strconv.ParseFloat(text, 64)
	return value
}

// decimalBigInt computes mantissa * 10^exponent, truncating toward zero when
// the exponent is negative. It reports false when a positive exponent exceeds
// MaxBigIntExponent.
func decimalBigInt(mantissa, exponent string) (*big.Int, bool) {
	value, _ := new(big.Int).SetString(mantissa, 10)
	if exponent == "" {
		return value, true
	}

	if exponent[0] == '-' {
		// 10^k exceeds any mantissa of k digits, so the quotient is zero
		exp, err := strconv.Atoi(exponent[1:])
		if err != nil || exp >= len(mantissa) {
			return new(big.Int), true
		}
		return value.Quo(value, pow10(exp)), true
	}

	exp, err := strconv.Atoi(exponent)
	if err != nil || exp > MaxBigIntExponent {
		return nil, false
	}
	return value.Mul(value, pow10(exp)), true
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
