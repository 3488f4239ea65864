// Package decimal implements glint's arbitrary-precision base-10 decimal
// type, Decimal. Unlike math/big.Float (binary floating point) or
// shopspring/decimal (which stores a *big.Int coefficient plus an int32
// exponent), glint represents a decimal the way the reference runtime's
// BigFloat does: as a plain digit string together with a decimal-point
// offset from the right. That representation is what makes string
// round-tripping and digit-for-digit precision rounding trivial, at
// the cost of asymptotic performance nobody asked for here - correctness
// and a predictable shape matter more than speed for this engine.
package decimal

import (
	"fmt"
	"strings"
)

// precision is the maximum number of fractional digits a Decimal keeps
// after an arithmetic operation. Results are rounded half-up to this many
// digits past the decimal point.
const precision = 25

// sqrtIterations bounds the Newton-Raphson iteration count used by Sqrt.
const sqrtIterations = 200

// comparisonEpsilon is the maximum absolute difference two Decimals may
// have and still compare as Equal. This absorbs the rounding noise
// introduced by fixed-precision division and square roots.
const comparisonEpsilon = "0.000000000000001" // 1e-15

// Decimal is glint's arbitrary-precision decimal number. It stores its
// magnitude as an unsigned digit string (no leading zeros beyond a
// single "0", no sign, no decimal point) plus the position of the
// decimal point counted from the right-hand end of the digit string.
//
// Example: 3.14 -> digits="314", decimalPos=2
// Example: 42   -> digits="42",  decimalPos=0
type Decimal struct {
	digits     string
	decimalPos int
	negative   bool
	isNaN      bool
	isInf      bool
}

// Zero, One, NaN and Inf mirror the reference runtime's well-known
// constant constructors.
func Zero() Decimal { return Decimal{digits: "0"} }
func One() Decimal  { return Decimal{digits: "1"} }
func NaN() Decimal  { return Decimal{isNaN: true} }
func Inf(negative bool) Decimal {
	return Decimal{isInf: true, negative: negative}
}

// New parses a decimal literal such as "3.14", "-0.5", "1e10", "nan" or
// "inf" into a Decimal. Scientific notation is normalized into a plain
// digit string before storage; glint never keeps an explicit exponent.
func New(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, fmt.Errorf("decimal: empty literal")
	}

	lower := strings.ToLower(s)
	switch lower {
	case "nan":
		return NaN(), nil
	case "inf", "+inf":
		return Inf(false), nil
	case "-inf":
		return Inf(true), nil
	}

	negative := false
	if s[0] == '+' || s[0] == '-' {
		negative = s[0] == '-'
		s = s[1:]
	}

	mantissa, exponent, err := splitExponent(s)
	if err != nil {
		return Decimal{}, err
	}

	intPart, fracPart, err := splitPoint(mantissa)
	if err != nil {
		return Decimal{}, err
	}

	digits := intPart + fracPart
	decimalPos := len(fracPart) - exponent
	d := Decimal{digits: digits, decimalPos: decimalPos, negative: negative}
	return normalize(d), nil
}

// MustNew is like New but panics on malformed input. It exists for
// constructing well-known constants and test fixtures where the literal
// is statically known to be valid.
func MustNew(s string) Decimal {
	d, err := New(s)
	if err != nil {
		panic(err)
	}
	return d
}

func splitExponent(s string) (mantissa string, exponent int, err error) {
	idx := strings.IndexAny(s, "eE")
	if idx == -1 {
		return s, 0, nil
	}
	mantissa = s[:idx]
	expPart := s[idx+1:]
	sign := 1
	if len(expPart) > 0 && (expPart[0] == '+' || expPart[0] == '-') {
		if expPart[0] == '-' {
			sign = -1
		}
		expPart = expPart[1:]
	}
	if expPart == "" {
		return "", 0, fmt.Errorf("decimal: malformed exponent in %q", s)
	}
	for _, r := range expPart {
		if r < '0' || r > '9' {
			return "", 0, fmt.Errorf("decimal: malformed exponent in %q", s)
		}
		exponent = exponent*10 + int(r-'0')
	}
	return mantissa, sign * exponent, nil
}

func splitPoint(s string) (intPart, fracPart string, err error) {
	dotIdx := strings.IndexByte(s, '.')
	if dotIdx == -1 {
		if !isDigits(s) {
			return "", "", fmt.Errorf("decimal: malformed literal %q", s)
		}
		return s, "", nil
	}
	intPart = s[:dotIdx]
	fracPart = s[dotIdx+1:]
	if !isDigits(intPart) || !isDigits(fracPart) {
		return "", "", fmt.Errorf("decimal: malformed literal %q", s)
	}
	return intPart, fracPart, nil
}

func isDigits(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the Decimal back into its canonical base-10 form.
func (d Decimal) String() string {
	if d.isNaN {
		return "nan"
	}
	if d.isInf {
		if d.negative {
			return "-inf"
		}
		return "inf"
	}

	digits := d.digits
	if digits == "" {
		digits = "0"
	}

	var intPart, fracPart string
	if d.decimalPos <= 0 {
		intPart = digits + strings.Repeat("0", -d.decimalPos)
		fracPart = ""
	} else if d.decimalPos >= len(digits) {
		intPart = "0"
		fracPart = strings.Repeat("0", d.decimalPos-len(digits)) + digits
	} else {
		intPart = digits[:len(digits)-d.decimalPos]
		fracPart = digits[len(digits)-d.decimalPos:]
	}

	fracPart = strings.TrimRight(fracPart, "0")

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if d.negative && out != "0" {
		out = "-" + out
	}
	return out
}

// IsNaN reports whether d is the not-a-number sentinel.
func (d Decimal) IsNaN() bool { return d.isNaN }

// IsInf reports whether d is positive or negative infinity.
func (d Decimal) IsInf() bool { return d.isInf }

// IsZero reports whether d is exactly zero.
func (d Decimal) IsZero() bool {
	return !d.isNaN && !d.isInf && isZeroDigits(d.digits)
}

func isZeroDigits(digits string) bool {
	for _, r := range digits {
		if r != '0' {
			return false
		}
	}
	return true
}

// normalize strips leading zeros from the digit string and collapses
// "negative zero" to a canonical positive zero, matching the reference
// runtime's bf_normalize.
func normalize(d Decimal) Decimal {
	if d.isNaN || d.isInf {
		return d
	}
	digits := strings.TrimLeft(d.digits, "0")
	trimmed := len(d.digits) - len(digits)
	if digits == "" {
		digits = "0"
	}
	d.digits = digits
	d.decimalPos -= 0
	_ = trimmed
	if isZeroDigits(d.digits) {
		d.negative = false
	}
	return d
}

// align pads two digit strings so that both represent the same number
// of fractional digits, returning the aligned digit strings and their
// shared decimal position.
func align(a, b Decimal) (digitsA, digitsB string, decimalPos int) {
	decimalPos = a.decimalPos
	if b.decimalPos > decimalPos {
		decimalPos = b.decimalPos
	}
	digitsA = a.digits + strings.Repeat("0", decimalPos-a.decimalPos)
	digitsB = b.digits + strings.Repeat("0", decimalPos-b.decimalPos)

	for len(digitsA) < len(digitsB) {
		digitsA = "0" + digitsA
	}
	for len(digitsB) < len(digitsA) {
		digitsB = "0" + digitsB
	}
	return digitsA, digitsB, decimalPos
}

// limitPrecision rounds d to at most `precision` fractional digits,
// matching bf_limit_precision in the reference runtime: the first dropped
// digit decides whether the kept digits are left alone or incremented
// (round-half-up), with a carry that can propagate all the way through a
// run of 9s into a new leading digit (999... -> 1000...).
func limitPrecision(d Decimal) Decimal {
	if d.isNaN || d.isInf {
		return d
	}
	if d.decimalPos <= precision {
		return d
	}
	drop := d.decimalPos - precision
	if drop > len(d.digits) || (drop == len(d.digits) && d.digits[0] < '5') {
		return Decimal{digits: "0"}
	}

	cut := len(d.digits) - drop
	roundUp := d.digits[cut] >= '5'
	kept := d.digits[:cut]

	if roundUp {
		// A carry that runs through a whole run of 9s grows kept by one
		// leading digit (999... -> 1000...); decimalPos still counts the
		// same number of fractional digits either way.
		kept = incrementDigits(kept)
	}

	d.digits = kept
	d.decimalPos = precision
	return normalize(d)
}

// incrementDigits adds 1 to an unsigned decimal digit string, growing it
// by one leading digit if the carry runs all the way through (e.g. "99"
// -> "100").
func incrementDigits(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}
