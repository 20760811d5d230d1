package generator

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/taitai9847/prechecker/internal/schema"
	"github.com/taitai9847/prechecker/internal/validator"
)

var (
	words = []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliet", "kilo", "lima", "mike", "november", "oscar", "papa",
	}
	realisticBools = []string{"true", "false", "1", "0", "yes", "no"}
	edgeBools      = []string{"Y", "n", "T", "f", "YES", "False"}

	edgeDates     = []string{"2024-02-29", "1970-01-01", "9999-12-31", "2024/2/9", "20000229"}
	edgeDatetimes = []string{"2024-02-29 23:59:59", "1970-01-01 00:00:00", "2024/12/31 23:59:59.999999", "20240229120000"}
	edgeTimes     = []string{"00:00", "23:59:59", "12:00"}
	edgeFloats    = []string{"1.7976931348623157e308", "-0.0", ".5", "1E-9", "+3."}

	badInts      = []string{"abc", "text", "invalid", "NaN", "12.5"}
	badDecimals  = []string{"not_a_number", "invalid", "abc123", "1,000"}
	badFloats    = []string{"1.2.3", "NaN", "abc", "inf"}
	badDates     = []string{"2024-13-40", "1990-02-30", "2023-02-29", "not-a-date"}
	badDatetimes = []string{"2024-01-01 99:99:99", "2024-02-30 10:00:00", "2024-01-01T10:00:00"}
	badTimes     = []string{"24:00", "12:61:00", "noon"}
	badBools     = []string{"maybe", "invalid", "unknown", "2"}
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

const dateSpanDays = 22280 // through 2030

func (g *Generator) pick(from []string) string {
	return from[g.rng.IntN(len(from))]
}

// digits returns n random decimal digits without a leading zero.
func (g *Generator) digits(n int) string {
	if n <= 0 {
		return "0"
	}
	var b strings.Builder
	b.WriteByte(byte('1' + g.rng.IntN(9)))
	for i := 1; i < n; i++ {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	return b.String()
}

func (g *Generator) realisticValue(spec schema.TypeSpec, n int) string {
	switch spec.Family {
	case schema.FamilyInteger:
		_, hi, _ := validator.IntegerBounds(spec)
		limit := int64(100000)
		if hi.IsInt64() && hi.Int64() < limit {
			limit = hi.Int64()
		}
		return fmt.Sprint(g.rng.Int64N(limit + 1))
	case schema.FamilyDecimal:
		if !spec.HasPrecision {
			return fmt.Sprintf("%d.%02d", g.rng.IntN(100000), g.rng.IntN(100))
		}
		intDigits := max(min(spec.Precision-spec.Scale, 6), 0)
		v := g.digits(g.rng.IntN(intDigits + 1))
		if spec.Scale > 0 {
			frac := make([]byte, spec.Scale)
			for i := range frac {
				frac[i] = byte('0' + g.rng.IntN(10))
			}
			v += "." + string(frac)
		}
		return v
	case schema.FamilyFloat:
		return fmt.Sprintf("%.4f", g.rng.Float64()*10000)
	case schema.FamilyString:
		v := fmt.Sprintf("%s_%d", g.pick(words), n+1)
		return clip(v, spec.Length)
	case schema.FamilyText:
		return fmt.Sprintf("%s %s %s", g.pick(words), g.pick(words), g.pick(words))
	case schema.FamilyBinary:
		return fmt.Sprintf("%08x", g.rng.Uint32())
	case schema.FamilyDate:
		return epoch.AddDate(0, 0, g.rng.IntN(dateSpanDays)).Format("2006-01-02")
	case schema.FamilyDatetime:
		d := time.Duration(g.rng.Int64N(int64(dateSpanDays) * 86400))
		return epoch.Add(d * time.Second).Format("2006-01-02 15:04:05")
	case schema.FamilyTime:
		return fmt.Sprintf("%02d:%02d:%02d", g.rng.IntN(24), g.rng.IntN(60), g.rng.IntN(60))
	case schema.FamilyBoolean:
		return g.pick(realisticBools)
	}
	return fmt.Sprintf(`{"n":%d}`, n+1)
}

func (g *Generator) edgeValue(spec schema.TypeSpec) string {
	switch spec.Family {
	case schema.FamilyInteger:
		lo, hi, _ := validator.IntegerBounds(spec)
		return g.pick([]string{lo.String(), hi.String(), "0", "+1"})
	case schema.FamilyDecimal:
		if !spec.HasPrecision {
			return g.pick([]string{"123456789012345678901234567890.5", "-0.000001", "1e10"})
		}
		v := "0"
		if n := spec.Precision - spec.Scale; n > 0 {
			v = strings.Repeat("9", n)
		}
		if spec.Scale > 0 {
			v += "." + strings.Repeat("9", spec.Scale)
		}
		if g.rng.IntN(2) == 0 {
			v = "-" + v
		}
		return v
	case schema.FamilyFloat:
		return g.pick(edgeFloats)
	case schema.FamilyString:
		if spec.Length == 0 {
			return strings.Repeat("長", 300)
		}
		return strings.Repeat("長", spec.Length)
	case schema.FamilyText:
		return strings.Repeat("text with \"quotes\", commas\nand newlines ", 20)
	case schema.FamilyBinary:
		return "\\x00ff"
	case schema.FamilyDate:
		return g.pick(edgeDates)
	case schema.FamilyDatetime:
		return g.pick(edgeDatetimes)
	case schema.FamilyTime:
		return g.pick(edgeTimes)
	case schema.FamilyBoolean:
		return g.pick(edgeBools)
	}
	return `{"nested":{"a":[1,2,3]}}`
}

func minimalValue(spec schema.TypeSpec) string {
	switch spec.Family {
	case schema.FamilyInteger, schema.FamilyDecimal, schema.FamilyFloat, schema.FamilyBoolean:
		return "0"
	case schema.FamilyBinary:
		return "00"
	case schema.FamilyDate:
		return "2000-01-01"
	case schema.FamilyDatetime:
		return "2000-01-01 00:00:00"
	case schema.FamilyTime:
		return "00:00:00"
	}
	return "a"
}

// invalidValue returns a value the column rejects, or false when its type
// accepts every non-empty value and an empty value is allowed too.
func (g *Generator) invalidValue(c schema.Column, spec schema.TypeSpec) (string, bool) {
	switch spec.Family {
	case schema.FamilyInteger:
		lo, hi, _ := validator.IntegerBounds(spec)
		switch g.rng.IntN(3) {
		case 0:
			return new(big.Int).Add(hi, big.NewInt(1)).String(), true
		case 1:
			return new(big.Int).Sub(lo, big.NewInt(1)).String(), true
		}
		return g.pick(badInts), true
	case schema.FamilyDecimal:
		if spec.HasPrecision && g.rng.IntN(2) == 0 {
			// one integer digit too many, or one fractional digit too many
			if g.rng.IntN(2) == 0 {
				return strings.Repeat("9", max(spec.Precision-spec.Scale+1, 1)), true
			}
			return "0." + strings.Repeat("5", spec.Scale+1), true
		}
		return g.pick(badDecimals), true
	case schema.FamilyFloat:
		return g.pick(badFloats), true
	case schema.FamilyString:
		if spec.Length > 0 {
			return strings.Repeat("x", spec.Length+1), true
		}
	case schema.FamilyDate:
		return g.pick(badDates), true
	case schema.FamilyDatetime:
		return g.pick(badDatetimes), true
	case schema.FamilyTime:
		return g.pick(badTimes), true
	case schema.FamilyBoolean:
		return g.pick(badBools), true
	}
	if !c.Nullable && !c.AutoGenerated {
		return "", true
	}
	return "", false
}

func clip(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}
