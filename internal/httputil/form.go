package httputil

import (
	"net/url"
	"strings"
)

// FormPair is one key/value entry of a form body.
type FormPair struct {
	Key   string
	Value string
}

// ParseForm splits data on '&' and each piece on its first '='. A piece
// without '=' becomes a key with an empty value. Values are taken literally;
// they are escaped again by EncodeForm.
func ParseForm(data string) []FormPair {
	pieces := strings.Split(data, "&")
	pairs := make([]FormPair, 0, len(pieces))
	for _, p := range pieces {
		key, value, _ := strings.Cut(p, "=")
		pairs = append(pairs, FormPair{Key: key, Value: value})
	}
	return pairs
}

// EncodeForm serializes pairs as application/x-www-form-urlencoded,
// preserving their order.
func EncodeForm(pairs []FormPair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
