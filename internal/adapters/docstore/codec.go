package docstore

import (
	"encoding/json"
	"fmt"
)

// Encode turns a json-tagged struct into document fields.
func Encode(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}

	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return fields, nil
}

// Decode fills the json-tagged struct v from the document fields.
func Decode(fields Fields, v any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	return nil
}

// normalize deep-copies fields through JSON so every backend hands back the
// same value types.
func normalize(fields Fields) (Fields, error) {
	if fields == nil {
		return Fields{}, nil
	}
	return Encode(fields)
}

// numeric converts Go numbers to float64, the JSON number type.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
