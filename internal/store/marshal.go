package store

import (
	"fmt"

	"github.com/roach88/optimal/internal/ir"
)

// marshalDefs converts printed definitions to canonical JSON TEXT for
// storage. Uses RFC 8785 canonical JSON so equal maps store equal text.
func marshalDefs(defs map[string]string) (string, error) {
	data, err := ir.MarshalCanonical(defs)
	if err != nil {
		return "", fmt.Errorf("marshal defs: %w", err)
	}
	return string(data), nil
}

// unmarshalDefs parses the defs column back into a map.
func unmarshalDefs(data string) (map[string]string, error) {
	if data == "" || data == "{}" {
		return map[string]string{}, nil
	}
	v, err := ir.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal defs: %w", err)
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, fmt.Errorf("unmarshal defs: expected object, got %T", v)
	}
	defs := make(map[string]string, len(obj))
	for k, e := range obj {
		s, ok := e.(ir.String)
		if !ok {
			return nil, fmt.Errorf("unmarshal defs: %q: expected string, got %T", k, e)
		}
		defs[k] = string(s)
	}
	return defs, nil
}
