// Package urlcheck validates request URLs and classifies why a URL was rejected.
//
// Parsing follows the WHATWG URL rules for special schemes closely enough that
// host, IPv4, IPv6 and port failures are reported separately, then the
// normalized result is handed to net/url.
package urlcheck

import (
	"net/url"
	"strconv"
	"strings"
)

// Kind classifies a URL validation failure.
type Kind int

const (
	InvalidProtocol Kind = iota + 1
	InvalidIPv4
	InvalidIPv6
	InvalidPort
	MissingHost
	RelativeWithoutBase
	Other
)

func (k Kind) String() string {
	switch k {
	case InvalidProtocol:
		return "invalid protocol"
	case InvalidIPv4:
		return "invalid IPv4"
	case InvalidIPv6:
		return "invalid IPv6"
	case InvalidPort:
		return "invalid port"
	case MissingHost:
		return "missing host"
	case RelativeWithoutBase:
		return "relative URL without base"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

var messages = map[Kind]string{
	InvalidProtocol:     "The URL does not have a valid base protocol.",
	RelativeWithoutBase: "The URL does not have a valid base protocol.",
	InvalidIPv4:         "The URL contains an invalid IPv4 address.",
	InvalidIPv6:         "The URL contains an invalid IPv6 address.",
	InvalidPort:         "The URL contains an invalid port number.",
	MissingHost:         "The URL does not contain a valid host.",
	Other:               "The URL does not contain a valid host.",
}

// Error is returned by Validate. Its message is fixed per Kind.
type Error struct {
	Kind Kind
	URL  string
}

func (e *Error) Error() string {
	return messages[e.Kind]
}

// ValidatedURL is an http or https URL with a non-empty host and a non-zero
// port. It can only be obtained from Validate.
type ValidatedURL struct {
	u *url.URL
}

// URL returns a copy of the underlying URL.
func (v ValidatedURL) URL() *url.URL {
	c := *v.u
	return &c
}

func (v ValidatedURL) String() string { return v.u.String() }
func (v ValidatedURL) Scheme() string { return v.u.Scheme }
func (v ValidatedURL) Host() string   { return v.u.Hostname() }

// Port returns the explicit port, if one survived default-port elision.
func (v ValidatedURL) Port() (int, bool) {
	p := v.u.Port()
	if p == "" {
		return 0, false
	}
	n, _ := strconv.Atoi(p)
	return n, true
}

// defaultPorts lists the special schemes and the port elided for each.
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
	"ftp":   21,
}

// Validate parses raw and returns a ValidatedURL or an *Error.
func Validate(raw string) (ValidatedURL, error) {
	fail := func(k Kind) (ValidatedURL, error) {
		return ValidatedURL{}, &Error{Kind: k, URL: raw}
	}

	s := clean(raw)
	scheme, rest, ok := splitScheme(s)
	if !ok {
		return fail(RelativeWithoutBase)
	}
	scheme = strings.ToLower(scheme)

	defPort, special := defaultPorts[scheme]
	if !special {
		// Non-special URLs only have an authority after "//", and their
		// host is opaque, so only bracket and port syntax can fail.
		if strings.HasPrefix(rest, "//") {
			auth, _ := splitAuthority(rest[2:], false)
			if _, err := parseAuthority(auth, false, 0); err != nil {
				return fail(err.Kind)
			}
		}
		return fail(InvalidProtocol)
	}

	auth, remainder := splitAuthority(strings.TrimLeft(rest, `/\`), true)
	a, err := parseAuthority(auth, true, defPort)
	if err != nil {
		return fail(err.Kind)
	}

	if scheme != "http" && scheme != "https" {
		return fail(InvalidProtocol)
	}
	if a.host == "" {
		return fail(MissingHost)
	}
	if a.hasPort && a.port == 0 {
		return fail(InvalidPort)
	}

	u, perr := url.Parse(a.serialize(scheme) + normalizePath(remainder))
	if perr != nil || u.Host == "" {
		return fail(Other)
	}
	return ValidatedURL{u: u}, nil
}

// clean strips leading and trailing C0 controls and spaces and removes
// embedded tabs and newlines.
func clean(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
	return strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(s)
}

// splitScheme returns the scheme and the text after its colon. ok is false
// when s does not start with a syntactically valid scheme.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlpha(c):
		case i > 0 && (isDigit(c) || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return s[:i], s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

// splitAuthority cuts s at the first path, query or fragment delimiter.
func splitAuthority(s string, special bool) (authority, remainder string) {
	delims := "/?#"
	if special {
		delims += `\`
	}
	if i := strings.IndexAny(s, delims); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// normalizePath turns backslashes in the path into slashes, makes sure the
// path is not empty, and encodes stray percent signs in the path and fragment
// so net/url accepts them. The query is left as written.
func normalizePath(rem string) string {
	rest, fragment, hasFragment := strings.Cut(rem, "#")
	path, query, hasQuery := strings.Cut(rest, "?")

	path = escapeStrayPercent(strings.ReplaceAll(path, `\`, "/"))
	if path == "" {
		path = "/"
	}
	if hasQuery {
		path += "?" + query
	}
	if hasFragment {
		path += "#" + escapeStrayPercent(fragment)
	}
	return path
}

// escapeStrayPercent rewrites every '%' not followed by two hex digits as %25.
func escapeStrayPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

type authority struct {
	userinfo string
	host     string
	port     int
	hasPort  bool
}

func (a authority) serialize(scheme string) string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	if a.userinfo != "" {
		b.WriteString(a.userinfo)
		b.WriteByte('@')
	}
	b.WriteString(a.host)
	if a.hasPort {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(a.port))
	}
	return b.String()
}

// parseAuthority splits userinfo, host and port and validates the host and
// port in that order.
func parseAuthority(auth string, special bool, defPort int) (authority, *Error) {
	var a authority
	if i := strings.LastIndexByte(auth, '@'); i >= 0 {
		a.userinfo = auth[:i]
		auth = auth[i+1:]
	}

	hostPart, portPart, hasColon := splitHostPort(auth)

	host, kind := parseHost(hostPart, special)
	if kind != 0 {
		return a, &Error{Kind: kind}
	}
	a.host = host

	if hasColon && portPart != "" {
		port, ok := parsePort(portPart)
		if !ok {
			return a, &Error{Kind: InvalidPort}
		}
		if port != defPort || !special {
			a.port = port
			a.hasPort = true
		}
	}
	return a, nil
}

// splitHostPort splits at the first colon outside square brackets.
func splitHostPort(s string) (host, port string, hasColon bool) {
	inBrackets := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			inBrackets = true
		case ']':
			inBrackets = false
		case ':':
			if !inBrackets {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

func parsePort(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
