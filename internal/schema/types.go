package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Family groups declared types that share one validation procedure.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyInteger
	FamilyDecimal
	FamilyFloat
	FamilyString
	FamilyText
	FamilyBinary
	FamilyDate
	FamilyDatetime
	FamilyTime
	FamilyBoolean
)

func (f Family) String() string {
	switch f {
	case FamilyInteger:
		return "integer"
	case FamilyDecimal:
		return "decimal"
	case FamilyFloat:
		return "float"
	case FamilyString:
		return "string"
	case FamilyText:
		return "text"
	case FamilyBinary:
		return "binary"
	case FamilyDate:
		return "date"
	case FamilyDatetime:
		return "datetime"
	case FamilyTime:
		return "time"
	case FamilyBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// TypeSpec is the parsed form of a declared type token.
type TypeSpec struct {
	Name   string // declared token as written (uppercased)
	Family Family

	Bits     int  // integer width: 8, 16, 24, 32 or 64
	Unsigned bool // UNSIGNED modifier
	Serial   bool // auto-generating alias (SERIAL, BIGSERIAL ...)

	Length int // bounded strings; 0 means no limit

	HasPrecision bool
	Precision    int
	Scale        int
}

// typeRule is one catalogue entry. Named groups in re carry the parameters:
// len (string length), p and s (precision, scale), u (unsigned).
type typeRule struct {
	re     *regexp.Regexp
	family Family
	bits   int
	serial bool
}

const (
	intSuffix   = `(?:\s*\(\s*\d+\s*\))?(?P<u>\s+UNSIGNED\b)?(?:\s+ZEROFILL\b)?`
	numSuffix   = `(?:\s*\(\s*(?P<p>\d+)\s*(?:,\s*(?P<s>\d+)\s*)?\))?(?:\s+UNSIGNED\b)?(?:\s+ZEROFILL\b)?`
	lenSuffix   = `(?:\s*\(\s*(?P<len>\d+)(?:\s+(?:CHAR|BYTE))?\s*\))?`
	fspSuffix   = `(?:\s*\(\s*\d+\s*\))?`
	zoneSuffix  = `(?:\s+WITH(?:OUT)?\s+TIME\s+ZONE\b)?`
	sizedBinary = `(?:\s*\(\s*(?:\d+|MAX)\s*\))?`
)

func rule(family Family, bits int, serial bool, pattern string) typeRule {
	return typeRule{
		re:     regexp.MustCompile(`(?i)^(?:` + pattern + `)`),
		family: family,
		bits:   bits,
		serial: serial,
	}
}

// catalogue is evaluated in order; more specific entries come first.
var catalogue = []typeRule{
	rule(FamilyInteger, 64, true, `(?:BIGSERIAL|SERIAL8)\b`),
	rule(FamilyInteger, 16, true, `(?:SMALLSERIAL|SERIAL2)\b`),
	rule(FamilyInteger, 32, true, `(?:SERIAL4|SERIAL)\b`),
	rule(FamilyInteger, 8, false, `TINYINT\b`+intSuffix),
	rule(FamilyInteger, 16, false, `(?:SMALLINT|INT2)\b`+intSuffix),
	rule(FamilyInteger, 24, false, `MEDIUMINT\b`+intSuffix),
	rule(FamilyInteger, 64, false, `(?:BIGINT|INT8)\b`+intSuffix),
	rule(FamilyInteger, 32, false, `(?:INTEGER|INT4|INT)\b`+intSuffix),

	rule(FamilyDecimal, 0, false, `(?:DECIMAL|NUMERIC|DEC)\b`+numSuffix),
	rule(FamilyFloat, 0, false, `(?:DOUBLE\s+PRECISION|DOUBLE|FLOAT8|FLOAT4|FLOAT|REAL)\b`+numSuffix),

	rule(FamilyText, 0, false, `(?:NVARCHAR|VARCHAR2|VARCHAR)\s*\(\s*MAX\s*\)`),
	rule(FamilyString, 0, false, `(?:CHARACTER\s+VARYING|CHAR\s+VARYING|NVARCHAR|VARCHAR2|VARCHAR|NCHAR|CHARACTER|CHAR)\b`+lenSuffix),
	rule(FamilyText, 0, false, `(?:TINYTEXT|MEDIUMTEXT|LONGTEXT|NTEXT|CITEXT|TEXT|CLOB)\b`),
	rule(FamilyBinary, 0, false, `(?:TINYBLOB|MEDIUMBLOB|LONGBLOB|BLOB|BYTEA|VARBINARY|BINARY)\b`+sizedBinary),

	rule(FamilyDatetime, 0, false, `(?:DATETIME2|SMALLDATETIME|DATETIME)\b`+fspSuffix),
	rule(FamilyDatetime, 0, false, `TIMESTAMPTZ\b`+fspSuffix),
	rule(FamilyDatetime, 0, false, `TIMESTAMP\b`+fspSuffix+zoneSuffix),
	rule(FamilyDate, 0, false, `DATE\b`),
	rule(FamilyTime, 0, false, `TIMETZ\b`+fspSuffix),
	rule(FamilyTime, 0, false, `TIME\b`+fspSuffix+zoneSuffix),

	rule(FamilyBoolean, 0, false, `(?:BOOLEAN|BOOL)\b`),
	rule(FamilyBoolean, 0, false, `BIT\b`+fspSuffix),
}

// matchType finds the catalogue entry matching the start of def. It returns
// the matched text (uppercased, parameters verbatim) and its spec.
func matchType(def string) (string, TypeSpec, bool) {
	for _, r := range catalogue {
		m := r.re.FindStringSubmatch(def)
		if m == nil {
			continue
		}
		name := strings.ToUpper(m[0])
		spec := TypeSpec{
			Name:   name,
			Family: r.family,
			Bits:   r.bits,
			Serial: r.serial,
		}
		if s := group(r.re, m, "u"); s != "" {
			spec.Unsigned = true
		}
		if s := group(r.re, m, "len"); s != "" {
			spec.Length, _ = strconv.Atoi(s)
		}
		if s := group(r.re, m, "p"); s != "" && r.family == FamilyDecimal {
			spec.HasPrecision = true
			spec.Precision, _ = strconv.Atoi(s)
			if sc := group(r.re, m, "s"); sc != "" {
				spec.Scale, _ = strconv.Atoi(sc)
			}
		}
		return name, spec, true
	}
	return "", TypeSpec{}, false
}

func group(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// ParseType classifies a declared type token such as "DECIMAL(10,2)" or
// "INT UNSIGNED". Tokens outside the catalogue get FamilyUnknown.
func ParseType(token string) TypeSpec {
	token = strings.TrimSpace(token)
	if _, spec, ok := matchType(token); ok {
		spec.Name = strings.ToUpper(token)
		return spec
	}
	return TypeSpec{Name: strings.ToUpper(token), Family: FamilyUnknown}
}
