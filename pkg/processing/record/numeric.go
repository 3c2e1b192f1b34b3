package record

// AsNumber reports whether v is a Go numeric value and returns it as float64.
// Booleans and numeric-looking strings are not numbers.
func AsNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Numbers returns the numeric entries of readings in order.
func Numbers(readings StreamReadings) []float64 {
	out := make([]float64, 0, len(readings))
	for _, r := range readings {
		if n, ok := AsNumber(r); ok {
			out = append(out, n)
		}
	}
	return out
}
