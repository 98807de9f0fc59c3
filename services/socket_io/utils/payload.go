package socketio_utils

/**
 * Helpers to pull typed values out of the loosely typed socket.io event
 * payloads. Clients send one JSON object per event; numbers arrive as
 * float64 after decoding.
 */

// ParsePayload returns the first argument as a JSON object, if present.
func ParsePayload(args []interface{}) (map[string]interface{}, bool) {
	if len(args) < 1 {
		return nil, false
	}
	payload, ok := args[0].(map[string]interface{})
	return payload, ok
}

func GetString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func GetBool(payload map[string]interface{}, key string) bool {
	v, _ := payload[key].(bool)
	return v
}

func GetInt(payload map[string]interface{}, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func GetInt64(payload map[string]interface{}, key string) int64 {
	switch v := payload[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// GetIntSlice reads a JSON number array.
func GetIntSlice(payload map[string]interface{}, key string) []int {
	raw, ok := payload[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

// GetBoolArray5 reads a fixed five-element JSON bool array (dice holds).
func GetBoolArray5(payload map[string]interface{}, key string) [5]bool {
	var out [5]bool
	raw, ok := payload[key].([]interface{})
	if !ok {
		return out
	}
	for i := 0; i < len(raw) && i < 5; i++ {
		if b, ok := raw[i].(bool); ok {
			out[i] = b
		}
	}
	return out
}
