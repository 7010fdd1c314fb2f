// Package intent turns command-line tokens into a RequestIntent.
//
// The -X, -d and --json flags are registered as pflag values that write into a
// shared Builder in the order pflag encounters them, so when two flags disagree
// about the method or body the one that appears later on the command line wins.
package intent

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Usage is printed when no URL is supplied.
const Usage = "Usage: curl <URL> [-d <data>] [--json <JSON data>] [-X <method>]"

// Method is an HTTP method supported by the client.
type Method string

const (
	GET  Method = "GET"
	POST Method = "POST"
)

// BodyKind describes how a request body is encoded.
type BodyKind int

const (
	NoBody BodyKind = iota
	FormBody
	JSONBody
)

func (k BodyKind) String() string {
	switch k {
	case NoBody:
		return "none"
	case FormBody:
		return "form"
	case JSONBody:
		return "json"
	default:
		return "unknown"
	}
}

// RequestIntent is the fully resolved description of the request to send.
// A Body is only carried when Method is POST.
type RequestIntent struct {
	URL      string
	Method   Method
	Body     string
	BodyKind BodyKind
}

// HasBody reports whether the request carries a form or JSON body.
func (r RequestIntent) HasBody() bool {
	return r.BodyKind != NoBody
}

// UsageError is returned for malformed command lines. No request is sent.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Builder folds flag values into a RequestIntent.
type Builder struct {
	method string
	body   string
	kind   BodyKind

	// Dropped is set by Build when a body was given but a later -X
	// switched the method away from POST.
	Dropped bool
}

type methodValue struct {
	b   *Builder
	raw string
}

func (v *methodValue) Set(s string) error {
	v.raw = s
	v.b.method = strings.ToUpper(s)
	return nil
}

func (v *methodValue) String() string { return v.raw }
func (v *methodValue) Type() string   { return "method" }

type bodyValue struct {
	b    *Builder
	kind BodyKind
	raw  string
}

func (v *bodyValue) Set(s string) error {
	v.raw = s
	v.b.body = s
	v.b.kind = v.kind
	v.b.method = string(POST)
	return nil
}

func (v *bodyValue) String() string { return v.raw }
func (v *bodyValue) Type() string   { return "data" }

// RegisterFlags adds -X/--request, -d/--data and --json to fs and returns the
// Builder they write into.
func RegisterFlags(fs *pflag.FlagSet) *Builder {
	b := &Builder{method: string(GET)}
	fs.VarP(&methodValue{b: b}, "request", "X", "HTTP method to use (GET or POST)")
	fs.VarP(&bodyValue{b: b, kind: FormBody}, "data", "d", "Send URL-encoded form data (implies POST)")
	fs.Var(&bodyValue{b: b, kind: JSONBody}, "json", "Send JSON data with a JSON content type (implies POST)")
	return b
}

// Build validates the positional arguments left after flag parsing and
// returns the final intent.
func (b *Builder) Build(args []string) (RequestIntent, error) {
	if len(args) == 0 {
		return RequestIntent{}, &UsageError{Msg: Usage}
	}
	if len(args) > 1 {
		return RequestIntent{}, &UsageError{Msg: fmt.Sprintf("Unknown argument '%s'.", args[1])}
	}

	method := Method(b.method)
	if method != GET && method != POST {
		return RequestIntent{}, &UsageError{
			Msg: fmt.Sprintf("Unsupported HTTP method '%s'. Only GET and POST are supported.", b.method),
		}
	}

	ri := RequestIntent{URL: args[0], Method: method}
	if b.kind != NoBody {
		if method == POST {
			ri.Body = b.body
			ri.BodyKind = b.kind
		} else {
			b.Dropped = true
		}
	}
	return ri, nil
}

var missingValue = map[string]string{
	"-X":        "No method specified after -X.",
	"--request": "No method specified after -X.",
	"-d":        "No data specified after -d.",
	"--data":    "No data specified after -d.",
	"--json":    "No JSON data specified after --json.",
}

// FlagError converts a pflag parse failure over tokens into a UsageError.
func FlagError(tokens []string, err error) error {
	if n := len(tokens); n > 0 {
		if msg, ok := missingValue[tokens[n-1]]; ok {
			return &UsageError{Msg: msg}
		}
	}
	return &UsageError{Msg: fmt.Sprintf("Unknown argument: %v.", err)}
}

// Parse interprets tokens (without the program name) in a single left-to-right pass.
func Parse(tokens []string) (RequestIntent, error) {
	fs := pflag.NewFlagSet("curl", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	b := RegisterFlags(fs)
	if err := fs.Parse(tokens); err != nil {
		return RequestIntent{}, FlagError(tokens, err)
	}
	return b.Build(fs.Args())
}
