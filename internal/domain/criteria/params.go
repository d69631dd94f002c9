// Package criteria turns console search forms into the archive's
// QIDO-RS query-string vocabulary.
package criteria

import (
	"net/url"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Order follows insertion so that the
// rendered query string is deterministic for a given criteria value.
type Params []Param

// Add appends key=value. Empty values are dropped: a filter is either sent or absent.
func (p *Params) Add(key, value string) {
	if value == "" {
		return
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Flag appends key=true when set. False flags are omitted, never sent as "false".
func (p *Params) Flag(key string, set bool) {
	if set {
		*p = append(*p, Param{Key: key, Value: "true"})
	}
}

// Get returns the value of the first parameter named key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Encode renders the list as k=v&k=v in insertion order.
// The "*" wildcard is kept literal for readability in archive logs.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(kv.Key))
		b.WriteByte('=')
		b.WriteString(escape(kv.Value))
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2A", "*")
}

// wildcard wraps v as *v* when fuzzy matching is requested.
func wildcard(v string, fuzzy bool) string {
	if v == "" || !fuzzy {
		return v
	}
	return "*" + v + "*"
}
