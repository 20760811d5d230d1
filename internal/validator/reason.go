package validator

import "fmt"

// Reason classifies the outcome of one cell check.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotNull
	ReasonColumnMissing
	ReasonNotInteger
	ReasonNegativeUnsigned
	ReasonIntegerOutOfRange
	ReasonNotNumber
	ReasonPrecisionExceeded
	ReasonScaleExceeded
	ReasonNotFloat
	ReasonLengthExceeded
	ReasonInvalidDate
	ReasonInvalidDatetime
	ReasonInvalidTime
	ReasonNotBoolean
	// ReasonUnknownType marks a value accepted under the permissive
	// fallback for types outside the catalogue. It never rejects.
	ReasonUnknownType
)

var reasonNames = [...]string{
	ReasonNone:              "ok",
	ReasonNotNull:           "not_null",
	ReasonColumnMissing:     "column_missing",
	ReasonNotInteger:        "not_integer",
	ReasonNegativeUnsigned:  "negative_unsigned",
	ReasonIntegerOutOfRange: "integer_out_of_range",
	ReasonNotNumber:         "not_number",
	ReasonPrecisionExceeded: "precision_exceeded",
	ReasonScaleExceeded:     "scale_exceeded",
	ReasonNotFloat:          "not_float",
	ReasonLengthExceeded:    "length_exceeded",
	ReasonInvalidDate:       "invalid_date",
	ReasonInvalidDatetime:   "invalid_datetime",
	ReasonInvalidTime:       "invalid_time",
	ReasonNotBoolean:        "not_boolean",
	ReasonUnknownType:       "unknown_type",
}

// String returns the stable machine-readable tag.
func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("reason(%d)", int(r))
	}
	return reasonNames[r]
}

// Rejects reports whether the reason makes a value invalid.
func (r Reason) Rejects() bool {
	return r != ReasonNone && r != ReasonUnknownType
}

// Result is the outcome of checking one value.
type Result struct {
	Reason Reason

	// Limit and Actual carry precision, scale or length details.
	Limit  int
	Actual int
	// Min and Max are the integer bounds, in decimal.
	Min string
	Max string
	// Type is the declared type the value was checked against.
	Type string
}

// OK reports whether the value was accepted.
func (r Result) OK() bool { return !r.Reason.Rejects() }

// String renders the human-readable message for the result.
func (r Result) String() string {
	switch r.Reason {
	case ReasonNone:
		return "ok"
	case ReasonNotNull:
		return "NOT NULL constraint violated (empty value)"
	case ReasonColumnMissing:
		return "column missing (not-null violation)"
	case ReasonNotInteger:
		return "not an integer"
	case ReasonNegativeUnsigned:
		return "negative value for UNSIGNED column"
	case ReasonIntegerOutOfRange:
		return fmt.Sprintf("integer out of range [%s, %s]", r.Min, r.Max)
	case ReasonNotNumber:
		return "not a number"
	case ReasonPrecisionExceeded:
		return fmt.Sprintf("total digits exceed precision %d (got %d)", r.Limit, r.Actual)
	case ReasonScaleExceeded:
		return fmt.Sprintf("fractional digits exceed scale %d (got %d)", r.Limit, r.Actual)
	case ReasonNotFloat:
		return "not a floating-point number"
	case ReasonLengthExceeded:
		return fmt.Sprintf("length exceeds maximum %d (got %d)", r.Limit, r.Actual)
	case ReasonInvalidDate:
		return "invalid date format (want YYYY-MM-DD, YYYY/MM/DD or YYYYMMDD)"
	case ReasonInvalidDatetime:
		return "invalid datetime format (want YYYY-MM-DD HH:MM:SS)"
	case ReasonInvalidTime:
		return "invalid time format (want HH:MM:SS or HH:MM)"
	case ReasonNotBoolean:
		return "not a boolean value"
	case ReasonUnknownType:
		return fmt.Sprintf("unrecognized type %s (not validated)", r.Type)
	}
	return r.Reason.String()
}
