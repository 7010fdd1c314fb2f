package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AeryAnubhav/curl/internal/config"
	"github.com/AeryAnubhav/curl/internal/httputil"
	"github.com/AeryAnubhav/curl/internal/intent"
)

func newPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errw bytes.Buffer
	return New(&out, &errw, config.ColorNever), &out, &errw
}

func TestRequestEcho(t *testing.T) {
	tests := []struct {
		name string
		ri   intent.RequestIntent
		want string
	}{
		{"get", intent.RequestIntent{URL: "http://a.com", Method: intent.GET},
			"Requesting URL: http://a.com\nMethod: GET\n"},
		{"form", intent.RequestIntent{URL: "http://a.com", Method: intent.POST, Body: "a=1", BodyKind: intent.FormBody},
			"Requesting URL: http://a.com\nMethod: POST\nData: a=1\n"},
		{"json", intent.RequestIntent{URL: "http://a.com", Method: intent.POST, Body: `{"a":1}`, BodyKind: intent.JSONBody},
			"Requesting URL: http://a.com\nMethod: POST\nJSON: {\"a\":1}\n"},
		{"empty form", intent.RequestIntent{URL: "http://a.com", Method: intent.POST, BodyKind: intent.FormBody},
			"Requesting URL: http://a.com\nMethod: POST\n"},
		{"empty json", intent.RequestIntent{URL: "http://a.com", Method: intent.POST, BodyKind: intent.JSONBody},
			"Requesting URL: http://a.com\nMethod: POST\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out, _ := newPrinter()
			p.Request(tt.ri)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestResponseSortsJSON(t *testing.T) {
	p, out, _ := newPrinter()
	err := p.Response(&httputil.Response{StatusCode: 200, Body: `{"b":2,"a":1}`})
	require.NoError(t, err)

	want := "Response body (JSON with sorted keys):\n{\n  \"a\": 1,\n  \"b\": 2\n}\n"
	assert.Equal(t, want, out.String())
}

func TestResponseRawFallback(t *testing.T) {
	p, out, _ := newPrinter()
	err := p.Response(&httputil.Response{StatusCode: 204, Body: "plain {text"})
	require.NoError(t, err)
	assert.Equal(t, "Response body:\nplain {text\n", out.String())
}

func TestResponseDeepJSONPrintsRaw(t *testing.T) {
	p, out, _ := newPrinter()
	body := strings.Repeat("[", 100_000) + strings.Repeat("]", 100_000)
	err := p.Response(&httputil.Response{StatusCode: 200, Body: body})
	require.NoError(t, err)
	assert.Equal(t, "Response body:\n"+body+"\n", out.String())
}

func TestResponseStatusError(t *testing.T) {
	for _, code := range []int{199, 301, 404, 500} {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			p, out, _ := newPrinter()
			err := p.Response(&httputil.Response{StatusCode: code, Body: `{"a":1}`})

			var serr *StatusError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, code, serr.Code)
			assert.Equal(t, fmt.Sprintf("Request failed with status code: %d.", code), serr.Error())
			assert.Empty(t, out.String(), "body must not be rendered")
		})
	}
}

func TestResponseDebugHTMLTitle(t *testing.T) {
	p, _, _ := newPrinter()
	var logged []string
	p.Debugf = func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}

	err := p.Response(&httputil.Response{
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        "<html><head><title> Example Domain </title></head></html>",
	})
	require.NoError(t, err)
	assert.Contains(t, logged, `html title: "Example Domain"`)
	assert.Contains(t, logged[0], "received 57 B")
}

func TestErrorLine(t *testing.T) {
	p, out, errw := newPrinter()
	p.Error(errors.New("The URL contains an invalid port number."))
	p.Plain(intent.Usage)

	assert.Empty(t, out.String())
	assert.Equal(t, "Error: The URL contains an invalid port number.\n"+intent.Usage+"\n", errw.String())
}

func TestColorAlwaysStylesLabel(t *testing.T) {
	var out, errw bytes.Buffer
	p := New(&out, &errw, config.ColorAlways)
	p.Error(errors.New("boom"))
	assert.Contains(t, errw.String(), "\x1b[")
	assert.Contains(t, errw.String(), "boom")
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, useColor(&buf, config.ColorAlways))
	assert.False(t, useColor(&buf, config.ColorNever))
	assert.False(t, useColor(&buf, config.ColorAuto), "buffers are never terminals")
}
