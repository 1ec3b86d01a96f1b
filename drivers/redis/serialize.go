package redis

import (
	"fmt"
	"math"

	cache "github.com/donnigundala/dg-tagcache"
	"github.com/donnigundala/dg-tagcache/serializer"
)

// serialize encodes v for storage. Finite numeric scalars pass straight
// through as their Redis string form (so INCR/DECR and numeric comparisons
// keep working on values this driver wrote); everything else goes through
// the configured Serializer, which envelopes complex types with their type
// name for safe round-tripping.
func serialize(ser serializer.Serializer, v interface{}) ([]byte, error) {
	if s, ok := numericString(v); ok {
		return []byte(s), nil
	}
	data, err := ser.Marshal(v)
	if err != nil {
		return nil, cache.WrapSerialization(err)
	}
	return data, nil
}

// numericString returns the plain-text Redis representation of v if v is a
// finite numeric scalar, and whether v was such a scalar at all.
func numericString(v interface{}) (string, bool) {
	switch n := v.(type) {
	case int:
		return fmt.Sprintf("%d", n), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", n), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", n), true
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return "", false
		}
		return fmt.Sprintf("%g", n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		return fmt.Sprintf("%g", n), true
	default:
		return "", false
	}
}

// serializeForLua renders v as a string argument to embed as ARGV in a Lua
// script, using the same numeric-passthrough rule as serialize.
func serializeForLua(ser serializer.Serializer, v interface{}) (string, error) {
	data, err := serialize(ser, v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
