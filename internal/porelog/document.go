package porelog

// document.go holds the order-preserving JSON model used by the loader and the
// transformer.
//
// encoding/json decodes objects into map[string]any, which loses field order.
// The metadata tree and the table header both depend on document order, so
// objects are decoded into Object: an ordered slice of fields with lookup
// helpers. Every other JSON kind maps to the usual Go value:
//
//	array   -> []any
//	number  -> json.Number (literal text preserved)
//	string  -> string
//	boolean -> bool
//	null    -> nil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object that remembers the order of its keys.
type Object []Field

// Len returns the number of fields.
func (o Object) Len() int { return len(o) }

// Keys returns the field names in document order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, f := range o {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value for key and whether the key is present.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present, regardless of its value.
func (o Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// set assigns key. An existing key keeps its position and takes the new value.
func (o Object) set(key string, value any) Object {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Field{Key: key, Value: value})
}

// without returns a copy of o with key removed.
func (o Object) without(key string) Object {
	out := make(Object, 0, len(o))
	for _, f := range o {
		if f.Key != key {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON writes the fields in order. A nil Object encodes as {}.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object while keeping key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("json: cannot decode %T into Object", v)
	}
	*o = obj
	return nil
}

// Document is a parsed pore log file. Root holds any JSON value; by
// convention it is an Object carrying HasData and Data.
type Document struct {
	Root any
}

// Object returns the root as an Object when the document is a JSON object.
func (d Document) Object() (Object, bool) {
	obj, ok := d.Root.(Object)
	return obj, ok
}

// MarshalJSON encodes the root value.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Root)
}

// Decode parses exactly one JSON value from r. Trailing content other than
// whitespace is an error.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

// decodeValue walks one value using the token stream.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q at offset %d", t, dec.InputOffset())
		}
	default:
		// json.Number, string, bool or nil
		return t, nil
	}
}

// decodeObject reads fields after '{' has been consumed, including the closing '}'.
func decodeObject(dec *json.Decoder) (Object, error) {
	obj := Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj = obj.set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// decodeArray reads elements after '[' has been consumed, including the closing ']'.
func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
