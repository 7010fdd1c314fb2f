package canon

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const indentUnit = "  "

// Pretty renders v with two-space indentation. Empty arrays and objects are
// written as [] and {}.
func Pretty(v Value) string {
	var b strings.Builder
	writeValue(&b, v, 0)
	return b.String()
}

// WritePretty writes Pretty(v) followed by a newline.
func WritePretty(w io.Writer, v Value) error {
	_, err := fmt.Fprintln(w, Pretty(v))
	return err
}

func writeValue(b *strings.Builder, v Value, depth int) {
	switch v.Kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(v.Text)
	case String:
		writeQuoted(b, v.Text)
	case Array:
		if len(v.Items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range v.Items {
			writeIndent(b, depth+1)
			writeValue(b, item, depth+1)
			if i < len(v.Items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte(']')
	case Object:
		if len(v.Members) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, m := range v.Members {
			writeIndent(b, depth+1)
			writeQuoted(b, m.Key)
			b.WriteString(": ")
			writeValue(b, m.Value, depth+1)
			if i < len(v.Members)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte('}')
	}
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}

const hexDigits = "0123456789abcdef"

// writeQuoted escapes only what JSON requires: quote, backslash and control
// characters. Non-ASCII text is written as-is.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteRune(r)
			i += size
			continue
		}
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
		i++
	}
	b.WriteByte('"')
}
