package fundamentals

// Payload is one ticker's raw quote response as returned by the API.
// Field locations vary between tickers and plan tiers, so access goes
// through prioritized lookup helpers instead of direct map reads.
// A value of the wrong type behaves exactly like an absent value.
type Payload map[string]interface{}

// Number returns the first present numeric value among keys, or nil.
func (p Payload) Number(keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := toNumber(p[key]); ok {
			return &v
		}
	}
	return nil
}

// String returns the first present non-empty string among keys, or "".
func (p Payload) String(keys ...string) string {
	for _, key := range keys {
		if s, ok := p[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Sub returns the nested object under key, or nil.
func (p Payload) Sub(key string) Payload {
	switch v := p[key].(type) {
	case map[string]interface{}:
		return Payload(v)
	case Payload:
		return v
	default:
		return nil
	}
}

// Array returns the list of nested objects under key, or nil.
// Non-object elements are skipped.
func (p Payload) Array(key string) []Payload {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil
	}

	out := make([]Payload, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[string]interface{}:
			out = append(out, Payload(v))
		case Payload:
			out = append(out, v)
		}
	}
	return out
}

// First returns the first entry of the list under key, or nil.
// Statement histories are ordered most recent first.
func (p Payload) First(key string) Payload {
	arr := p.Array(key)
	if len(arr) == 0 {
		return nil
	}
	return arr[0]
}

// toNumber accepts the numeric types a JSON decode can produce.
// Integers appear when a payload has been round-tripped through typed code.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
