package dicom

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Shape discriminates the two response layouts an archive can return.
type Shape int

const (
	// Flattened records carry descriptive field names ({"patientId": "..."}).
	Flattened Shape = iota
	// TagKeyed records are DICOM JSON ({"00100020": {"vr": "LO", "Value": [...]}}).
	TagKeyed
)

func (s Shape) String() string {
	if s == TagKeyed {
		return "tag-keyed"
	}
	return "flattened"
}

// Attribute is a single DICOM JSON attribute.
type Attribute struct {
	VR    string            `json:"vr"`
	Value []json.RawMessage `json:"Value"`
}

// Record is one element of an archive response, classified once by shape.
// Accessors never fail: missing attributes, values or indexes read as "".
type Record struct {
	shape  Shape
	attrs  map[string]Attribute
	fields map[string]json.RawMessage
	raw    json.RawMessage
}

// ParseArray decodes an archive response body into records.
// ok is false when the body is not a JSON array; callers treat that as an empty result.
func ParseArray(data []byte) (records []Record, ok bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	records = make([]Record, len(elems))
	for i, e := range elems {
		records[i] = ParseRecord(e)
	}
	return records, true
}

// ParseRecord classifies a single JSON element. Non-objects become empty flattened records.
func ParseRecord(data json.RawMessage) Record {
	r := Record{shape: Flattened, raw: data}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return r
	}
	r.fields = obj

	for k := range obj {
		if isTagKey(k) {
			r.shape = TagKeyed
			break
		}
	}
	if r.shape != TagKeyed {
		return r
	}

	r.attrs = make(map[string]Attribute, len(obj))
	for k, v := range obj {
		if !isTagKey(k) {
			continue
		}
		var a Attribute
		if err := json.Unmarshal(v, &a); err != nil {
			continue
		}
		r.attrs[strings.ToUpper(k)] = a
	}
	return r
}

// Shape reports how the record was classified.
func (r Record) Shape() Shape { return r.shape }

// Raw returns the record exactly as received.
func (r Record) Raw() json.RawMessage { return r.raw }

// String returns the first value of t for tag-keyed records, or the first
// non-empty descriptive field among keys for flattened records.
func (r Record) String(t tag.Tag, keys ...string) string {
	if r.shape == TagKeyed {
		a, ok := r.attrs[Key(t)]
		if !ok || len(a.Value) == 0 {
			return ""
		}
		return scalar(a.Value[0])
	}
	return r.Field(keys...)
}

// Strings returns every value of a multi-valued attribute (e.g. ModalitiesInStudy).
func (r Record) Strings(t tag.Tag, keys ...string) []string {
	var values []json.RawMessage
	if r.shape == TagKeyed {
		values = r.attrs[Key(t)].Value
	} else {
		for _, k := range keys {
			raw, ok := r.fields[k]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &values); err != nil {
				if s := scalar(raw); s != "" {
					return splitList(s)
				}
			}
			break
		}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := scalar(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PersonName returns the Alphabetic representation of a person name attribute.
func (r Record) PersonName(t tag.Tag, keys ...string) string {
	if r.shape == TagKeyed {
		a, ok := r.attrs[Key(t)]
		if !ok || len(a.Value) == 0 {
			return ""
		}
		return alphabetic(a.Value[0])
	}
	for _, k := range keys {
		if raw, ok := r.fields[k]; ok {
			if s := alphabetic(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

// Item returns the first item of a sequence attribute as a record.
func (r Record) Item(t tag.Tag) (Record, bool) {
	if r.shape != TagKeyed {
		return Record{}, false
	}
	a, ok := r.attrs[Key(t)]
	if !ok || len(a.Value) == 0 {
		return Record{}, false
	}
	item := ParseRecord(a.Value[0])
	if item.fields == nil {
		return Record{}, false
	}
	item.shape = TagKeyed
	if item.attrs == nil {
		item.attrs = map[string]Attribute{}
	}
	return item, true
}

// Field returns the first non-empty top-level scalar among keys.
func (r Record) Field(keys ...string) string {
	for _, k := range keys {
		if raw, ok := r.fields[k]; ok {
			if s := scalar(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

// Int returns the first top-level field among keys that holds an integer
// (a JSON number or a numeric string). Absent or non-numeric fields yield 0.
func (r Record) Int(keys ...string) int {
	for _, k := range keys {
		if n, ok := atoi(r.Field(k)); ok {
			return n
		}
	}
	return 0
}

// IntTag is Int for a tag-keyed attribute.
func (r Record) IntTag(t tag.Tag) int {
	if r.shape != TagKeyed {
		return 0
	}
	n, _ := atoi(r.String(t))
	return n
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// scalar renders a JSON string or number as text. Everything else reads as "".
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	case '{':
		return alphabetic(raw)
	case 'n', '[':
		return ""
	case 't', 'f':
		return string(raw)
	default:
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			return n.String()
		}
	}
	return ""
}

// alphabetic extracts the Alphabetic group of a PN value; plain strings pass through.
func alphabetic(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		return scalar(raw)
	}
	var pn struct {
		Alphabetic string `json:"Alphabetic"`
	}
	if raw[0] == '{' && json.Unmarshal(raw, &pn) == nil {
		return pn.Alphabetic
	}
	return ""
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\\' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
