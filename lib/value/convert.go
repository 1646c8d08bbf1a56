package value

import (
	"math"
	"strconv"
	"strings"
)

// ToString converts v with the script language rules.
// Only objects with a ToStringFunc hook can fail.
func ToString(v Value) (string, error) {
	switch v.kind {
	case KindEmpty, KindUndefined:
		return "undefined", nil
	case KindNull:
		return "null", nil
	case KindBool:
		if v.num != 0 {
			return "true", nil
		}
		return "false", nil
	case KindNumber:
		return FormatNumber(v.num), nil
	case KindString:
		return v.str, nil
	case KindObject:
		if v.obj.ToStringFunc != nil {
			return v.obj.ToStringFunc()
		}
		return "[object " + v.obj.Class + "]", nil
	default:
		return "", ErrInvalidEncoding
	}
}

// FormatNumber renders f the way script number-to-string conversion does
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // also -0
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// exponent form: 1e+21, 1.5e-7
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + string(sign) + exp
}

// ToNumber converts v to a float64. Strings that do not parse yield NaN.
func ToNumber(v Value) float64 {
	switch v.kind {
	case KindNull:
		return 0
	case KindBool, KindNumber:
		return v.num
	case KindString:
		return stringToNumber(v.str)
	default:
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	// ParseFloat accepts forms ("inf", "0x1p3", "1_0") that script numbers do not
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToUint32 applies the modulo 2^32 integer conversion
func ToUint32(v Value) uint32 {
	return NumberToUint32(ToNumber(v))
}

// NumberToUint32 truncates f toward zero and wraps it into [0, 2^32)
func NumberToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}
