package gradestats

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// plainDecimal is what registrar exports contain: optional sign, digits with an
// optional fraction, optional exponent. ParseFloat alone would also accept hex
// floats, digit separators and Inf/NaN spellings.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// NumericKind tells whether a registrar field carried a usable number.
type NumericKind uint8

const (
	KindMissing NumericKind = iota
	KindInvalid
	KindValue
)

func (k NumericKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInvalid:
		return "invalid"
	default:
		return "value"
	}
}

// Numeric is a parsed registrar field: Missing, Invalid or a finite Value.
type Numeric struct {
	Kind  NumericKind
	Value float64
}

// ParseNumeric parses a raw string field. Blank input is Missing; anything that is
// not a finite decimal number is Invalid.
func ParseNumeric(raw string) Numeric {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Numeric{Kind: KindMissing}
	}
	if !plainDecimal.MatchString(s) {
		return Numeric{Kind: KindInvalid}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Numeric{Kind: KindInvalid}
	}
	return Numeric{Kind: KindValue, Value: v}
}

// Ok reports whether the field holds a number.
func (n Numeric) Ok() bool {
	return n.Kind == KindValue
}

// OrZero collapses Missing and Invalid to zero.
func (n Numeric) OrZero() float64 {
	if n.Kind != KindValue {
		return 0
	}
	return n.Value
}
