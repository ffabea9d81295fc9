package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Carmen-Shannon/oxy-rig/common"
)

type jsonKind uint8

const (
	jsonNull jsonKind = iota
	jsonBool
	jsonNumber
	jsonString
	jsonArray
	jsonObject
)

var jsonKindNames = [...]string{"null", "bool", "number", "string", "array", "object"}

func (k jsonKind) String() string { return jsonKindNames[k] }

// jsonValue is a parsed JSON node that keeps object keys in document order.
type jsonValue struct {
	kind   jsonKind
	path   string
	b      bool
	num    json.Number
	str    string
	items  []*jsonValue
	keys   []string
	fields map[string]*jsonValue
}

// parseJSON decodes a complete document into an ordered value tree.
func parseJSON(data []byte) (*jsonValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	root, err := decodeJSONValue(dec, "$")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, formatErrorf("trailing data after JSON document")
	}
	return root, nil
}

func decodeJSONValue(dec *json.Decoder, path string) (*jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, formatErrorf("%s: %v", path, err)
	}
	switch t := tok.(type) {
	case nil:
		return &jsonValue{kind: jsonNull, path: path}, nil
	case bool:
		return &jsonValue{kind: jsonBool, path: path, b: t}, nil
	case json.Number:
		return &jsonValue{kind: jsonNumber, path: path, num: t}, nil
	case string:
		return &jsonValue{kind: jsonString, path: path, str: t}, nil
	case json.Delim:
		switch t {
		case '[':
			v := &jsonValue{kind: jsonArray, path: path}
			for dec.More() {
				item, err := decodeJSONValue(dec, fmt.Sprintf("%s[%d]", path, len(v.items)))
				if err != nil {
					return nil, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, formatErrorf("%s: %v", path, err)
			}
			return v, nil
		case '{':
			v := &jsonValue{kind: jsonObject, path: path, fields: make(map[string]*jsonValue)}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, formatErrorf("%s: %v", path, err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, formatErrorf("%s: object key %v is not a string", path, keyTok)
				}
				child, err := decodeJSONValue(dec, path+"."+key)
				if err != nil {
					return nil, err
				}
				if _, dup := v.fields[key]; !dup {
					v.keys = append(v.keys, key)
				}
				v.fields[key] = child
			}
			if _, err := dec.Token(); err != nil {
				return nil, formatErrorf("%s: %v", path, err)
			}
			return v, nil
		}
	}
	return nil, formatErrorf("%s: unexpected token %v", path, tok)
}

// jsonEntry is one key/value pair of an object, in document order.
type jsonEntry struct {
	key   string
	value *jsonValue
}

// jsonFields reads typed fields from JSON objects with per-field defaults. Like
// binaryReader, the first failure sticks in err and later reads return defaults.
type jsonFields struct {
	err error
}

func (f *jsonFields) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *jsonFields) expect(v *jsonValue, kind jsonKind) bool {
	if f.err != nil {
		return false
	}
	if v.kind != kind {
		f.fail(formatErrorf("%s: expected %s, got %s", v.path, kind, v.kind))
		return false
	}
	return true
}

// get returns a field, treating an explicit null like an absent key.
func (f *jsonFields) get(obj *jsonValue, key string) (*jsonValue, bool) {
	if obj == nil || obj.kind != jsonObject {
		return nil, false
	}
	v, ok := obj.fields[key]
	if !ok || v.kind == jsonNull {
		return nil, false
	}
	return v, true
}

func (f *jsonFields) has(obj *jsonValue, key string) bool {
	_, ok := f.get(obj, key)
	return ok
}

func (f *jsonFields) require(obj *jsonValue, key string) *jsonValue {
	v, ok := f.get(obj, key)
	if !ok {
		if f.err == nil {
			f.fail(formatErrorf("%s: missing required %q", obj.path, key))
		}
		return nil
	}
	return v
}

func (f *jsonFields) number(v *jsonValue) float64 {
	if !f.expect(v, jsonNumber) {
		return 0
	}
	n, err := strconv.ParseFloat(string(v.num), 64)
	if err != nil {
		f.fail(formatErrorf("%s: %v", v.path, err))
	}
	return n
}

func (f *jsonFields) getFloat(obj *jsonValue, key string, def float32) float32 {
	v, ok := f.get(obj, key)
	if !ok {
		return def
	}
	return float32(f.number(v))
}

func (f *jsonFields) requireFloat(obj *jsonValue, key string) float32 {
	v := f.require(obj, key)
	if v == nil {
		return 0
	}
	return float32(f.number(v))
}

func (f *jsonFields) getInt(obj *jsonValue, key string, def int) int {
	v, ok := f.get(obj, key)
	if !ok {
		return def
	}
	return int(f.number(v))
}

func (f *jsonFields) getBool(obj *jsonValue, key string, def bool) bool {
	v, ok := f.get(obj, key)
	if !ok || !f.expect(v, jsonBool) {
		return def
	}
	return v.b
}

func (f *jsonFields) getString(obj *jsonValue, key string, def string) string {
	v, ok := f.get(obj, key)
	if !ok || !f.expect(v, jsonString) {
		return def
	}
	return v.str
}

func (f *jsonFields) requireString(obj *jsonValue, key string) string {
	v := f.require(obj, key)
	if v == nil || !f.expect(v, jsonString) {
		return ""
	}
	if v.str == "" {
		f.fail(formatErrorf("%s: must not be empty", v.path))
	}
	return v.str
}

func (f *jsonFields) getColor(obj *jsonValue, key string, def common.Color) common.Color {
	v, ok := f.get(obj, key)
	if !ok || !f.expect(v, jsonString) {
		return def
	}
	c, err := common.ParseHexColor(v.str)
	if err != nil {
		f.fail(formatErrorf("%s: %v", v.path, err))
		return def
	}
	return c
}

func (f *jsonFields) array(obj *jsonValue, key string) []*jsonValue {
	v, ok := f.get(obj, key)
	if !ok || !f.expect(v, jsonArray) {
		return nil
	}
	return v.items
}

func (f *jsonFields) requireArray(obj *jsonValue, key string) []*jsonValue {
	v := f.require(obj, key)
	if v == nil || !f.expect(v, jsonArray) {
		return nil
	}
	return v.items
}

// entries lists an optional object's fields in document order.
func (f *jsonFields) entries(obj *jsonValue, key string) []jsonEntry {
	v, ok := f.get(obj, key)
	if !ok {
		return nil
	}
	return f.objectEntries(v)
}

func (f *jsonFields) objectEntries(v *jsonValue) []jsonEntry {
	if !f.expect(v, jsonObject) {
		return nil
	}
	out := make([]jsonEntry, len(v.keys))
	for i, k := range v.keys {
		out[i] = jsonEntry{key: k, value: v.fields[k]}
	}
	return out
}

func (f *jsonFields) floatArray(obj *jsonValue, key string, scale float32) []float32 {
	items := f.array(obj, key)
	out := make([]float32, len(items))
	for i, item := range items {
		out[i] = float32(f.number(item)) * scale
	}
	return out
}

func (f *jsonFields) shortArray(obj *jsonValue, key string) []uint16 {
	items := f.array(obj, key)
	out := make([]uint16, len(items))
	for i, item := range items {
		out[i] = uint16(int(f.number(item)))
	}
	return out
}

func (f *jsonFields) intArray(obj *jsonValue, key string) []int {
	items := f.array(obj, key)
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = int(f.number(item))
	}
	return out
}
