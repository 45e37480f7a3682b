package crypto

import (
	"reflect"
	"strconv"
)

// Scalar is the closed set of values Protect accepts besides plain strings.
type Scalar interface {
	~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Text returns the textual form that will be encrypted, and therefore what Reveal
// hands back. Floats use the shortest decimal form without an exponent.
func Text[T Scalar](v T) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		return rv.String()
	}
}

// ProtectScalar coerces v with Text and protects the result.
func ProtectScalar[T Scalar](c *FieldCipher, v T) (string, error) {
	return c.Protect(Text(v))
}
