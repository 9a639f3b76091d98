package frame

import (
	"regexp"
	"time"
)

// numberPattern matches strings that read as numbers, including NaN
var numberPattern = regexp.MustCompile(`(?i)^\s*(-?(\d*\.?\d+|\d+\.?\d*)(e[-+]?\d+)?|NAN)\s*$`)

// InferType guesses the field type of a single sample value
func InferType(value any) FieldType {
	switch v := value.(type) {
	case nil:
		return FieldTypeOther
	case time.Time, *time.Time:
		return FieldTypeTime
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return FieldTypeNumber
	case bool:
		return FieldTypeBoolean
	case string:
		if numberPattern.MatchString(v) {
			return FieldTypeNumber
		}
		switch v {
		case "true", "TRUE", "True", "false", "FALSE", "False":
			return FieldTypeBoolean
		}
		return FieldTypeString
	default:
		return FieldTypeOther
	}
}

// InferFieldType infers a type from the first non-nil value. Columns with no
// values at all are typed other.
func InferFieldType(values []any) FieldType {
	for _, v := range values {
		if v != nil {
			return InferType(v)
		}
	}
	return FieldTypeOther
}
