package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTypes = []string{
	"INT", "INT UNSIGNED", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "SERIAL",
	"DECIMAL(10,2)", "NUMERIC", "FLOAT", "DOUBLE PRECISION",
	"VARCHAR(100)", "CHAR(1)", "TEXT", "BLOB",
	"DATE", "DATETIME", "TIMESTAMP", "TIME",
	"BOOLEAN", "BIT", "JSONB",
}

func TestCheck_EmptyValue(t *testing.T) {
	for _, typ := range allTypes {
		assert.Equal(t, ReasonNotNull, Check("", typ, false).Reason, typ)
		assert.Equal(t, ReasonNone, Check("", typ, true).Reason, typ)
	}
}

func TestCheck_Integer(t *testing.T) {
	tests := []struct {
		value string
		typ   string
		want  Reason
	}{
		{"2147483647", "INT", ReasonNone},
		{"-2147483648", "INT", ReasonNone},
		{"2147483648", "INT", ReasonIntegerOutOfRange},
		{"-2147483649", "INTEGER", ReasonIntegerOutOfRange},
		{"2147483648", "INT UNSIGNED", ReasonNone},
		{"4294967295", "INT UNSIGNED", ReasonNone},
		{"4294967296", "INT UNSIGNED", ReasonIntegerOutOfRange},
		{"-1", "INT UNSIGNED", ReasonNegativeUnsigned},
		{"127", "TINYINT", ReasonNone},
		{"128", "TINYINT", ReasonIntegerOutOfRange},
		{"255", "TINYINT UNSIGNED", ReasonNone},
		{"-32768", "SMALLINT", ReasonNone},
		{"32768", "SMALLINT", ReasonIntegerOutOfRange},
		{"8388607", "MEDIUMINT", ReasonNone},
		{"8388608", "MEDIUMINT", ReasonIntegerOutOfRange},
		{"9223372036854775807", "BIGINT", ReasonNone},
		{"9223372036854775808", "BIGINT", ReasonIntegerOutOfRange},
		{"18446744073709551615", "BIGINT UNSIGNED", ReasonNone},
		{"18446744073709551616", "BIGINT UNSIGNED", ReasonIntegerOutOfRange},
		{"+42", "INT", ReasonNone},
		{"007", "INT", ReasonNone},
		{"12.5", "INT", ReasonNotInteger},
		{"1e3", "INT", ReasonNotInteger},
		{"abc", "INT", ReasonNotInteger},
		{" 1", "INT", ReasonNotInteger},
		{"-", "INT", ReasonNotInteger},
		{"2147483648", "SERIAL", ReasonIntegerOutOfRange},
	}
	for _, tt := range tests {
		got := Check(tt.value, tt.typ, false)
		assert.Equal(t, tt.want, got.Reason, "%s as %s", tt.value, tt.typ)
	}
}

func TestCheck_IntegerBoundsInMessage(t *testing.T) {
	r := Check("2147483648", "INT", false)
	require.Equal(t, ReasonIntegerOutOfRange, r.Reason)
	assert.Equal(t, "-2147483648", r.Min)
	assert.Equal(t, "2147483647", r.Max)
	assert.Contains(t, r.String(), "[-2147483648, 2147483647]")
}

func TestCheck_Decimal(t *testing.T) {
	tests := []struct {
		value string
		typ   string
		want  Reason
	}{
		{"12345678.90", "DECIMAL(10,2)", ReasonNone},
		{"123456789.0", "DECIMAL(10,2)", ReasonPrecisionExceeded},
		{"1.234", "DECIMAL(10,2)", ReasonScaleExceeded},
		{"-12345678.9", "DECIMAL(10,2)", ReasonNone},
		{"0.99", "DECIMAL(2,2)", ReasonNone},
		{"1.5", "NUMERIC(5)", ReasonScaleExceeded},
		{"99999", "NUMERIC(5)", ReasonNone},
		{"100000", "NUMERIC(5)", ReasonPrecisionExceeded},
		{"1e3", "DECIMAL(10,2)", ReasonNone},
		{"1.5E-1", "DECIMAL(10,2)", ReasonNone},
		{".5", "DECIMAL(10,2)", ReasonNone},
		{"123456789012345678901234567890", "DECIMAL", ReasonNone},
		{"abc", "DECIMAL(10,2)", ReasonNotNumber},
		{"NaN", "DECIMAL(10,2)", ReasonNotNumber},
		{"Infinity", "NUMERIC", ReasonNotNumber},
		{"1,000", "DECIMAL(10,2)", ReasonNotNumber},
	}
	for _, tt := range tests {
		got := Check(tt.value, tt.typ, false)
		assert.Equal(t, tt.want, got.Reason, "%s as %s", tt.value, tt.typ)
	}
}

func TestCheck_DecimalDetail(t *testing.T) {
	r := Check("1.234", "DECIMAL(10,2)", false)
	assert.Equal(t, 2, r.Limit)
	assert.Equal(t, 3, r.Actual)

	r = Check("123456789.0", "DECIMAL(10,2)", false)
	assert.Equal(t, 10, r.Limit)
	assert.Equal(t, 11, r.Actual)
}

func TestCheck_Float(t *testing.T) {
	for _, v := range []string{"1", "-1.5", "3.", ".25", "6.02e23", "1E-9", "+0.0"} {
		assert.Equal(t, ReasonNone, Check(v, "FLOAT", false).Reason, v)
	}
	for _, v := range []string{"abc", "NaN", "inf", "0x1p3", "1.2.3", "e5"} {
		assert.Equal(t, ReasonNotFloat, Check(v, "DOUBLE", false).Reason, v)
	}
}

func TestCheck_StringLength(t *testing.T) {
	assert.Equal(t, ReasonNone, Check(strings.Repeat("a", 100), "VARCHAR(100)", false).Reason)

	r := Check(strings.Repeat("a", 101), "VARCHAR(100)", false)
	require.Equal(t, ReasonLengthExceeded, r.Reason)
	assert.Equal(t, 100, r.Limit)
	assert.Equal(t, 101, r.Actual)
	assert.Equal(t, "length exceeds maximum 100 (got 101)", r.String())

	// characters, not bytes
	assert.Equal(t, ReasonNone, Check("日本語", "VARCHAR(3)", false).Reason)
	assert.Equal(t, ReasonLengthExceeded, Check("日本語です", "NVARCHAR(4)", false).Reason)
	assert.Equal(t, ReasonNone, Check(strings.Repeat("x", 5000), "VARCHAR", false).Reason)
	assert.Equal(t, ReasonNone, Check(strings.Repeat("x", 5000), "TEXT", false).Reason)
}

func TestCheck_Date(t *testing.T) {
	for _, v := range []string{"2024-02-29", "2024/02/29", "20240229", "2023-12-31", "2024-1-5"} {
		assert.Equal(t, ReasonNone, Check(v, "DATE", false).Reason, v)
	}
	for _, v := range []string{"2024-02-30", "2024-13-01", "2023-02-29", "2024-00-10", "24-01-01", "2024.01.01", "2024-01-01 10:00:00", "tomorrow", "0000-01-01", "00000101"} {
		assert.Equal(t, ReasonInvalidDate, Check(v, "DATE", false).Reason, v)
	}
}

func TestCheck_Datetime(t *testing.T) {
	for _, v := range []string{
		"2024-01-15 10:30:00",
		"2024-01-15 10:30:00.123456",
		"2024/01/15 23:59:59",
		"20240115103000",
	} {
		assert.Equal(t, ReasonNone, Check(v, "DATETIME", false).Reason, v)
		assert.Equal(t, ReasonNone, Check(v, "TIMESTAMP", false).Reason, v)
	}
	for _, v := range []string{
		"2024-01-15 24:00:00",
		"2024-01-15 10:60:00",
		"2024-01-15 10:30:60",
		"2024-02-30 10:00:00",
		"2024-01-15",
		"2024-01-15T10:30:00",
		"2024-01-15 10:30:00.1234567",
		"0000-01-01 00:00:00",
	} {
		assert.Equal(t, ReasonInvalidDatetime, Check(v, "DATETIME", false).Reason, v)
	}
}

func TestCheck_Time(t *testing.T) {
	for _, v := range []string{"00:00", "23:59", "12:30:45", "12:30:45.123456"} {
		assert.Equal(t, ReasonNone, Check(v, "TIME", false).Reason, v)
	}
	for _, v := range []string{"24:00", "12:60", "12:30:61", "noon", "1230", "12:30:45.1234567"} {
		assert.Equal(t, ReasonInvalidTime, Check(v, "TIME", false).Reason, v)
	}
}

func TestCheck_Boolean(t *testing.T) {
	for _, v := range []string{"Yes", "YES", "1", "f", "true", "FALSE", "t", "n", "Y", "0", "no"} {
		assert.Equal(t, ReasonNone, Check(v, "BOOLEAN", false).Reason, v)
	}
	for _, v := range []string{"maybe", "2", "on", "off", "-1"} {
		assert.Equal(t, ReasonNotBoolean, Check(v, "BOOL", false).Reason, v)
	}
}

func TestCheck_UnknownTypeIsAccepted(t *testing.T) {
	r := Check("{\"a\":1}", "JSONB", false)
	assert.Equal(t, ReasonUnknownType, r.Reason)
	assert.True(t, r.OK())
	assert.Contains(t, r.String(), "JSONB")
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "not_null", ReasonNotNull.String())
	assert.Equal(t, "unknown_type", ReasonUnknownType.String())
	assert.Equal(t, "reason(99)", Reason(99).String())
	assert.False(t, ReasonUnknownType.Rejects())
	assert.False(t, ReasonNone.Rejects())
	assert.True(t, ReasonScaleExceeded.Rejects())
	assert.Equal(t, "column missing (not-null violation)", Result{Reason: ReasonColumnMissing}.String())
}
