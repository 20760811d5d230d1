package validator

import (
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/taitai9847/prechecker/internal/schema"
)

// Check decides whether value is acceptable for declaredType, e.g. "INT UNSIGNED"
// or "DECIMAL(10,2)". An empty value is accepted iff nullable.
func Check(value, declaredType string, nullable bool) Result {
	return CheckSpec(value, schema.ParseType(declaredType), nullable)
}

// CheckSpec is Check for callers that already hold a parsed type.
func CheckSpec(value string, spec schema.TypeSpec, nullable bool) Result {
	if value == "" {
		if nullable {
			return Result{}
		}
		return Result{Reason: ReasonNotNull}
	}

	switch spec.Family {
	case schema.FamilyInteger:
		return checkInteger(value, spec)
	case schema.FamilyDecimal:
		return checkDecimal(value, spec)
	case schema.FamilyFloat:
		return checkFloat(value)
	case schema.FamilyString:
		return checkString(value, spec)
	case schema.FamilyText, schema.FamilyBinary:
		return Result{}
	case schema.FamilyDate:
		return checkLayouts(value, dateLayouts, true, ReasonInvalidDate)
	case schema.FamilyDatetime:
		return checkLayouts(value, datetimeLayouts, true, ReasonInvalidDatetime)
	case schema.FamilyTime:
		return checkLayouts(value, timeLayouts, false, ReasonInvalidTime)
	case schema.FamilyBoolean:
		return checkBoolean(value)
	}
	return Result{Reason: ReasonUnknownType, Type: spec.Name}
}

var integerRe = regexp.MustCompile(`^[+-]?[0-9]+$`)

type intRange struct{ min, max *big.Int }

// intRanges holds the two's-complement bounds per width, signed and unsigned.
var intRanges = func() map[[2]int]intRange {
	m := make(map[[2]int]intRange)
	one := big.NewInt(1)
	for _, bits := range []int{8, 16, 24, 32, 64} {
		half := new(big.Int).Lsh(one, uint(bits-1))
		full := new(big.Int).Lsh(one, uint(bits))
		m[[2]int{bits, 0}] = intRange{
			min: new(big.Int).Neg(half),
			max: new(big.Int).Sub(half, one),
		}
		m[[2]int{bits, 1}] = intRange{
			min: new(big.Int),
			max: new(big.Int).Sub(full, one),
		}
	}
	return m
}()

// IntegerBounds returns the inclusive range of an integer spec. Width 0
// means a plain INT. The returned values must not be modified.
func IntegerBounds(spec schema.TypeSpec) (lo, hi *big.Int, ok bool) {
	bits := spec.Bits
	if bits == 0 {
		bits = 32
	}
	key := [2]int{bits, 0}
	if spec.Unsigned {
		key[1] = 1
	}
	r, ok := intRanges[key]
	return r.min, r.max, ok
}

func checkInteger(value string, spec schema.TypeSpec) Result {
	if !integerRe.MatchString(value) {
		return Result{Reason: ReasonNotInteger}
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return Result{Reason: ReasonNotInteger}
	}
	if spec.Unsigned && n.Sign() < 0 {
		return Result{Reason: ReasonNegativeUnsigned}
	}

	lo, hi, ok := IntegerBounds(spec)
	if !ok {
		return Result{}
	}
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return Result{Reason: ReasonIntegerOutOfRange, Min: lo.String(), Max: hi.String()}
	}
	return Result{}
}

var numberRe = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

func checkDecimal(value string, spec schema.TypeSpec) Result {
	if !numberRe.MatchString(value) {
		return Result{Reason: ReasonNotNumber}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Result{Reason: ReasonNotNumber}
	}
	if !spec.HasPrecision {
		return Result{}
	}

	// the stored value always carries scale fractional digits
	intDigits, fracDigits := digitCounts(d)
	if total := intDigits + max(fracDigits, spec.Scale); total > spec.Precision {
		return Result{Reason: ReasonPrecisionExceeded, Limit: spec.Precision, Actual: total}
	}
	if fracDigits > spec.Scale {
		return Result{Reason: ReasonScaleExceeded, Limit: spec.Scale, Actual: fracDigits}
	}
	return Result{}
}

// digitCounts splits the written digits of d into integer and fractional
// parts. Leading zeros are not significant; trailing fractional zeros are
// kept as written, and a zero integer part counts as no digits.
func digitCounts(d decimal.Decimal) (intDigits, fracDigits int) {
	coef := new(big.Int).Abs(d.Coefficient())
	exp := int(d.Exponent())
	n := len(coef.String())
	if coef.Sign() == 0 {
		n = 0
	}
	if exp >= 0 {
		if n == 0 {
			return 0, 0
		}
		return n + exp, 0
	}
	fracDigits = -exp
	if n > fracDigits {
		intDigits = n - fracDigits
	}
	return intDigits, fracDigits
}

func checkFloat(value string) Result {
	if !numberRe.MatchString(value) {
		return Result{Reason: ReasonNotFloat}
	}
	return Result{}
}

func checkString(value string, spec schema.TypeSpec) Result {
	if spec.Length <= 0 {
		return Result{}
	}
	if n := utf8.RuneCountInString(value); n > spec.Length {
		return Result{Reason: ReasonLengthExceeded, Limit: spec.Length, Actual: n}
	}
	return Result{}
}

// Layouts accept one- or two-digit month, day and hour fields. Fractional
// seconds after the seconds field are accepted by time.Parse without a
// layout element.
var (
	dateLayouts     = []string{"2006-1-2", "2006/1/2", "20060102"}
	datetimeLayouts = []string{"2006-1-2 15:04:05", "2006/1/2 15:04:05", "20060102150405"}
	timeLayouts     = []string{"15:04:05", "15:04"}
)

// maxFractionDigits caps fractional seconds at microseconds.
const maxFractionDigits = 6

// checkLayouts accepts value if one layout parses it. Dated values must
// fall in year 1 or later.
func checkLayouts(value string, layouts []string, dated bool, reason Reason) Result {
	if i := strings.LastIndexAny(value, ".,"); i >= 0 && len(value)-i-1 > maxFractionDigits {
		return Result{Reason: reason}
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil && (!dated || t.Year() >= 1) {
			return Result{}
		}
	}
	return Result{Reason: reason}
}

var booleans = map[string]bool{
	"true": true, "false": true,
	"1": true, "0": true,
	"t": true, "f": true,
	"yes": true, "no": true,
	"y": true, "n": true,
}

func checkBoolean(value string) Result {
	if booleans[strings.ToLower(value)] {
		return Result{}
	}
	return Result{Reason: ReasonNotBoolean}
}
