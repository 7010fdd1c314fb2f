package urlcheck

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain http", "http://example.com", "http://example.com/"},
		{"https with path and query", "https://example.com/a/b?q=1#frag", "https://example.com/a/b?q=1#frag"},
		{"explicit port", "http://127.0.0.1:8080/", "http://127.0.0.1:8080/"},
		{"max port", "http://127.0.0.1:65535/", "http://127.0.0.1:65535/"},
		{"default port elided", "http://example.com:80/x", "http://example.com/x"},
		{"https default port elided", "https://example.com:443", "https://example.com/"},
		{"empty port", "http://example.com:/", "http://example.com/"},
		{"uppercase scheme and host", "HTTP://EXAMPLE.com", "http://example.com/"},
		{"surrounding whitespace", "  http://example.com/  ", "http://example.com/"},
		{"missing slashes", "http:example.com", "http://example.com/"},
		{"single slash", "http:/example.com/p", "http://example.com/p"},
		{"backslashes", `http:\\example.com\a\b`, "http://example.com/a/b"},
		{"ipv6", "http://[::1]:3000/", "http://[::1]:3000/"},
		{"ipv6 compressed on output", "http://[0:0:0:0:0:0:0:1]/", "http://[::1]/"},
		{"short ipv4", "http://127.1/", "http://127.0.0.1/"},
		{"hex ipv4", "http://0x7f.0.0.1/", "http://127.0.0.1/"},
		{"octal ipv4", "http://0177.0.0.1/", "http://127.0.0.1/"},
		{"single number ipv4", "http://2130706433/", "http://127.0.0.1/"},
		{"idn host", "http://bücher.de/", "http://xn--bcher-kva.de/"},
		{"underscore host", "http://my_host.local/", "http://my_host.local/"},
		{"userinfo", "https://user:pw@example.com/", "https://user:pw@example.com/"},
		{"stray percent in path", "http://example.com/%zz", "http://example.com/%25zz"},
		{"truncated escape in path", "http://example.com/a%2", "http://example.com/a%252"},
		{"trailing percent in path", "http://example.com/a%", "http://example.com/a%25"},
		{"stray percent in fragment", "http://x/p#frag%zz", "http://x/p#frag%25zz"},
		{"stray percent in query kept", "http://example.com/?q=%zz", "http://example.com/?q=%zz"},
		{"valid escape kept", "http://example.com/a%20b", "http://example.com/a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Contains(t, []string{"http", "https"}, got.Scheme())
			assert.NotEmpty(t, got.Host())
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"no scheme", "example.com", RelativeWithoutBase},
		{"scheme without colon", "http//example.com", RelativeWithoutBase},
		{"protocol relative", "//example.com/", RelativeWithoutBase},
		{"empty", "", RelativeWithoutBase},
		{"data scheme", "data://example.com", InvalidProtocol},
		{"ftp scheme", "ftp://example.com/file", InvalidProtocol},
		{"mailto", "mailto:someone@example.com", InvalidProtocol},
		{"host and port without scheme", "localhost:8080", InvalidProtocol},
		{"file scheme", "file:///etc/passwd", InvalidProtocol},
		{"ipv4 octet out of range", "https://255.255.255.256", InvalidIPv4},
		{"too many ipv4 parts", "http://1.2.3.4.5/", InvalidIPv4},
		{"bad octal", "http://1.2.3.09/", InvalidIPv4},
		{"special scheme checks host first", "ftp://256.0.0.1/", InvalidIPv4},
		{"unclosed ipv6", "http://[::1/", InvalidIPv6},
		{"bad ipv6", "http://[::zz]/", InvalidIPv6},
		{"ipv4 in brackets", "http://[127.0.0.1]/", InvalidIPv6},
		{"non-special bad ipv6", "foo://[x]/", InvalidIPv6},
		{"port out of range", "http://127.0.0.1:65536/", InvalidPort},
		{"port not numeric", "http://example.com:http/", InvalidPort},
		{"port zero", "http://example.com:0/", InvalidPort},
		{"port zero with leading zeros", "http://example.com:000/", InvalidPort},
		{"non-special bad port", "foo://h:99999/", InvalidPort},
		{"no host", "http://", MissingHost},
		{"no host with path", "https:///", MissingHost},
		{"forbidden host char", "http://exa mple.com/", Other},
		{"bad percent escape", "http://exa%zzmple.com/", Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			require.Error(t, err)

			var uerr *Error
			require.True(t, errors.As(err, &uerr), "want *Error, got %T", err)
			assert.Equal(t, tt.want, uerr.Kind, "kind %s", uerr.Kind)
			assert.Equal(t, tt.raw, uerr.URL)
		})
	}
}

func TestValidatePortRange(t *testing.T) {
	for _, port := range []int{1, 22, 443, 8080, 65535} {
		t.Run(fmt.Sprint(port), func(t *testing.T) {
			v, err := Validate(fmt.Sprintf("http://10.0.0.1:%d/", port))
			require.NoError(t, err)
			got, ok := v.Port()
			assert.True(t, ok)
			assert.Equal(t, port, got)
		})
	}
}

func TestValidatePortZeroRegardlessOfHost(t *testing.T) {
	for _, host := range []string{"example.com", "127.0.0.1", "[::1]", "localhost"} {
		_, err := Validate("http://" + host + ":0/")
		var uerr *Error
		require.ErrorAs(t, err, &uerr, host)
		assert.Equal(t, InvalidPort, uerr.Kind, host)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{InvalidProtocol, "The URL does not have a valid base protocol."},
		{RelativeWithoutBase, "The URL does not have a valid base protocol."},
		{InvalidIPv4, "The URL contains an invalid IPv4 address."},
		{InvalidIPv6, "The URL contains an invalid IPv6 address."},
		{InvalidPort, "The URL contains an invalid port number."},
		{MissingHost, "The URL does not contain a valid host."},
		{Other, "The URL does not contain a valid host."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&Error{Kind: tt.kind}).Error(), tt.kind.String())
	}
}

func TestURLReturnsCopy(t *testing.T) {
	v, err := Validate("http://example.com/a")
	require.NoError(t, err)

	u := v.URL()
	u.Path = "/changed"
	assert.Equal(t, "http://example.com/a", v.String())
}

func TestEscapeStrayPercent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"/plain", "/plain"},
		{"/%41", "/%41"},
		{"/%zz", "/%25zz"},
		{"/%4", "/%254"},
		{"%", "%25"},
		{"%%41", "%25%41"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeStrayPercent(tt.in), tt.in)
	}
}

func TestParseIPv4(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"127.0.0.1", "127.0.0.1", true},
		{"127.0.0.1.", "127.0.0.1", true},
		{"10.1", "10.0.0.1", true},
		{"192.168.257", "192.168.1.1", true},
		{"0xffffffff", "255.255.255.255", true},
		{"4294967296", "", false},
		{"1.256.0.0", "", false},
		{"1..2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseIPv4(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
