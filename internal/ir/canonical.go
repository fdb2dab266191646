package ir

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON. It is the only
// serialization used for content addressing.
//
// Keys are sorted by UTF-16 code units, output is compact, strings are NFC
// normalized and only quote, backslash and control characters are escaped.
// Plain Go strings, ints, bools, []any and map[string]any are accepted and
// converted first. Floats and nil are rejected.
func MarshalCanonical(v any) ([]byte, error) {
	val, err := fromAny(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case String:
		writeCanonicalString(buf, string(v))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case Array:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if e == nil {
				return fmt.Errorf("canonical json: null at [%d]", i)
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		// keys are normalized before sorting so that NFD and NFC spellings
		// of one key land in the same place
		norms := make(Object, len(v))
		for k, e := range v {
			norms[norm.NFC.String(k)] = e
		}
		buf.WriteByte('{')
		for i, k := range norms.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if norms[k] == nil {
				return fmt.Errorf("canonical json: null at %q", k)
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, norms[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canonical json: unsupported value %T", v)
	}
	return nil
}

const hexDigits = "0123456789abcdef"

func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
