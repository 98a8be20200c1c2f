package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces compact canonical JSON. This is the ONLY
// serialization used for fingerprint computation, so two runs over the same
// inputs hash identically regardless of platform.
//
// Differences from standard json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Floats in shortest round-trip decimal form; NaN/Inf rejected
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, -1, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndented produces the same deterministic encoding with two-space
// indentation and a trailing newline, for artifacts meant to be read and
// diffed by people.
func MarshalIndented(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 2, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// encode writes v into buf. indent < 0 selects the compact form; otherwise
// indent is the number of spaces per nesting level and depth is the current
// level.
func encode(buf *bytes.Buffer, v Value, indent, depth int) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("untyped nil: use artifact.Null{}")
	case Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Float:
		return encodeFloat(buf, float64(val))
	case String:
		return encodeString(buf, string(val))
	case Array:
		return encodeArray(buf, val, indent, depth)
	case Object:
		return encodeObject(buf, val, indent, depth)
	default:
		return fmt.Errorf("unknown Value type: %T", v)
	}
}

// encodeFloat writes a finite float in its shortest round-trip decimal form.
// Values at or above 1e21 switch to exponent notation, matching the point
// where ECMAScript Number-to-string does.
func encodeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite float: %v", f)
	}
	if f == 0 {
		// Negative zero collapses to zero so -0.0 and 0.0 hash identically.
		buf.WriteByte('0')
		return nil
	}
	if abs := math.Abs(f); abs >= 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'e', -1, 64))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// encodeString writes a canonical JSON string: NFC normalized, control
// characters escaped, HTML left alone, U+2028/U+2029 left literal.
func encodeString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}

	// json.Encoder adds a trailing newline, drop it.
	out := tmp.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}

	// Go's encoder escapes U+2028/U+2029 for JavaScript embedding; canonical
	// JSON wants them literal. A \u202x sequence preceded by an even number
	// of backslashes is a real escape; odd means a literal backslash in the
	// source string, which must stay as-is.
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators rewrites   and   escapes back to literal
// characters, preserving backslash-escaped occurrences.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if i+6 <= len(data) &&
			data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, " "...)
				} else {
					out = append(out, " "...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}

func encodeArray(buf *bytes.Buffer, arr Array, indent, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}

	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeNewlineIndent(buf, indent, depth+1)
		if err := encode(buf, elem, indent, depth+1); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	writeNewlineIndent(buf, indent, depth)
	buf.WriteByte(']')
	return nil
}

func encodeObject(buf *bytes.Buffer, obj Object, indent, depth int) error {
	if len(obj) == 0 {
		buf.WriteString("{}")
		return nil
	}

	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeNewlineIndent(buf, indent, depth+1)
		if err := encodeString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if indent >= 0 {
			buf.WriteByte(' ')
		}
		if err := encode(buf, obj[k], indent, depth+1); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	writeNewlineIndent(buf, indent, depth)
	buf.WriteByte('}')
	return nil
}

func writeNewlineIndent(buf *bytes.Buffer, indent, depth int) {
	if indent < 0 {
		return
	}
	buf.WriteByte('\n')
	for i := 0; i < indent*depth; i++ {
		buf.WriteByte(' ')
	}
}
