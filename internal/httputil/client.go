// Package httputil builds the single outgoing request and sends it.
package httputil

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/AeryAnubhav/curl/internal/canon"
	"github.com/AeryAnubhav/curl/internal/intent"
	"github.com/AeryAnubhav/curl/internal/urlcheck"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options carries the ambient settings that shape a request without
// changing its method, URL or body.
type Options struct {
	UserAgent string
	// MaxBodyBytes caps the response body; zero means no limit.
	MaxBodyBytes int64
}

// Response is the status and body of a completed exchange. Body is only read
// for 2xx responses.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// JSONBodyError means the --json payload is not valid JSON. No request is sent.
type JSONBodyError struct {
	Err error
}

func (e *JSONBodyError) Error() string {
	return fmt.Sprintf("Invalid JSON: %v", e.Err)
}

func (e *JSONBodyError) Unwrap() error { return e.Err }

// TransportError is a failure to complete the exchange.
type TransportError struct {
	Method  intent.Method
	Connect bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Connect {
		return "Unable to connect to the server. Perhaps the network is offline or the server hostname cannot be resolved."
	}
	return fmt.Sprintf("Error making %s request: %v.", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BodyReadError is a failure to read a successful response body.
type BodyReadError struct {
	Err error
}

func (e *BodyReadError) Error() string {
	return fmt.Sprintf("Error reading response body: %v", e.Err)
}

func (e *BodyReadError) Unwrap() error { return e.Err }

// NewClient creates an HTTP client with hardened TLS settings. No timeout is
// set; the transport defaults apply.
func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:  true,
			DisableCompression: false,
		},
	}
}

// BuildRequest turns the intent into an *http.Request for u.
func BuildRequest(ri intent.RequestIntent, u urlcheck.ValidatedURL, opts Options) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)

	if ri.Method == intent.POST {
		switch ri.BodyKind {
		case intent.JSONBody:
			if _, err := canon.Parse([]byte(ri.Body)); err != nil {
				return nil, &JSONBodyError{Err: err}
			}
			body = strings.NewReader(ri.Body)
			contentType = contentTypeJSON
		case intent.FormBody:
			body = strings.NewReader(EncodeForm(ParseForm(ri.Body)))
			contentType = contentTypeForm
		}
	}

	req, err := http.NewRequest(string(ri.Method), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	return req, nil
}

// Send performs exactly one exchange. Redirects follow the client's policy.
func Send(client Doer, req *http.Request, opts Options) (*Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{
			Method:  intent.Method(req.Method),
			Connect: IsConnectError(err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if !out.Success() {
		return out, nil
	}

	body, err := readBody(resp.Body, opts.MaxBodyBytes)
	if err != nil {
		return nil, &BodyReadError{Err: err}
	}
	out.Body = body
	return out, nil
}

// Dispatch builds and sends the request described by ri.
func Dispatch(client Doer, ri intent.RequestIntent, u urlcheck.ValidatedURL, opts Options) (*Response, error) {
	req, err := BuildRequest(ri, u, opts)
	if err != nil {
		return nil, err
	}
	return Send(client, req, opts)
}

func readBody(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		b, err := io.ReadAll(r)
		return string(b), err
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(b)) > limit {
		return "", fmt.Errorf("body exceeds %d bytes", limit)
	}
	return string(b), nil
}

// IsConnectError reports whether err happened while establishing the
// connection: DNS failure, refused or unreachable dial, or a TLS handshake
// that could not be completed.
func IsConnectError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var recErr tls.RecordHeaderError
	return errors.As(err, &recErr)
}
