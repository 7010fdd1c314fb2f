// Package render prints the request summary, the response and diagnostics.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/AeryAnubhav/curl/internal/canon"
	"github.com/AeryAnubhav/curl/internal/config"
	"github.com/AeryAnubhav/curl/internal/httputil"
	"github.com/AeryAnubhav/curl/internal/intent"
)

// StatusError is returned by Response for non-2xx status codes.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code: %d.", e.Code)
}

// Printer writes normal output to Out and diagnostics to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer

	// Debugf receives diagnostic detail. It may be nil.
	Debugf func(format string, args ...any)

	errLabel lipgloss.Style
	heading  lipgloss.Style
}

// New returns a Printer. colorMode is one of the config color modes; in auto
// mode styling is enabled only when the writer is a terminal and NO_COLOR is
// unset.
func New(out, errw io.Writer, colorMode string) *Printer {
	return &Printer{
		Out:      out,
		Err:      errw,
		errLabel: renderer(errw, colorMode).NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		heading:  renderer(out, colorMode).NewStyle().Bold(true),
	}
}

func renderer(w io.Writer, colorMode string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if useColor(w, colorMode) {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func useColor(w io.Writer, colorMode string) bool {
	switch strings.ToLower(colorMode) {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) debugf(format string, args ...any) {
	if p.Debugf != nil {
		p.Debugf(format, args...)
	}
}

// Request echoes what is about to be sent. An empty body gets no echo line.
func (p *Printer) Request(ri intent.RequestIntent) {
	fmt.Fprintf(p.Out, "Requesting URL: %s\n", ri.URL)
	fmt.Fprintf(p.Out, "Method: %s\n", ri.Method)
	if ri.Body == "" {
		return
	}
	switch ri.BodyKind {
	case intent.JSONBody:
		fmt.Fprintf(p.Out, "JSON: %s\n", ri.Body)
	case intent.FormBody:
		fmt.Fprintf(p.Out, "Data: %s\n", ri.Body)
	}
}

// Response renders a completed exchange. A non-2xx status yields a
// *StatusError and nothing is printed. JSON bodies are printed with sorted
// keys; anything else is printed verbatim.
func (p *Printer) Response(resp *httputil.Response) error {
	if !resp.Success() {
		return &StatusError{Code: resp.StatusCode}
	}

	p.debugf("received %s (%s)", humanize.Bytes(uint64(len(resp.Body))), resp.ContentType)

	v, err := canon.Parse([]byte(resp.Body))
	if err != nil {
		p.debugf("body is not JSON: %v", err)
		p.logHTMLTitle(resp)
		fmt.Fprintln(p.Out, p.heading.Render("Response body:"))
		fmt.Fprintln(p.Out, resp.Body)
		return nil
	}

	fmt.Fprintln(p.Out, p.heading.Render("Response body (JSON with sorted keys):"))
	return canon.WritePretty(p.Out, canon.Sort(v))
}

// logHTMLTitle reports the document title of HTML bodies in debug output.
func (p *Printer) logHTMLTitle(resp *httputil.Response) {
	if p.Debugf == nil || !strings.Contains(resp.ContentType, "html") {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		p.debugf("html title: %q", title)
	}
}

// Error writes one diagnostic line for err.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.Err, "%s %s\n", p.errLabel.Render("Error:"), err)
}

// Plain writes msg to the error stream without a label.
func (p *Printer) Plain(msg string) {
	fmt.Fprintln(p.Err, msg)
}
