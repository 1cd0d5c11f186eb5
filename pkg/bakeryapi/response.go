package bakeryapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelopeKeys are the object fields a list may be wrapped in.
var envelopeKeys = []string{"data", "cakes", "orders", "users", "contacts", "items", "results"}

// listOf decodes either a bare JSON array or an object wrapping one.
type listOf[T any] struct {
	Items []T
}

func (l *listOf[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, k := range envelopeKeys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			return json.Unmarshal(raw, &l.Items)
		}
		// {"data": {"cakes": [...]}}
		if len(raw) > 0 && raw[0] == '{' {
			return l.UnmarshalJSON(raw)
		}
	}
	return fmt.Errorf("no list found in response")
}

// oneOf decodes either a bare object or one wrapped in a known key.
type oneOf[T any] struct {
	Item T
}

func (o *oneOf[T]) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, k := range []string{"data", "cake", "order", "user", "contact"} {
		if raw, ok := obj[k]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			return json.Unmarshal(raw, &o.Item)
		}
	}
	return json.Unmarshal(data, &o.Item)
}

// extractID finds an identifier in a create response. The API has answered
// with _id, id, orderId and a nested order object over time.
func extractID(body map[string]any) string {
	for _, k := range []string{"_id", "id", "orderId"} {
		if s := idString(body[k]); s != "" {
			return s
		}
	}
	for _, k := range []string{"order", "data"} {
		if nested, ok := body[k].(map[string]any); ok {
			if s := extractID(nested); s != "" {
				return s
			}
		}
	}
	return ""
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	}
	return ""
}
