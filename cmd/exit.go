package cmd

import (
	"errors"

	"github.com/AeryAnubhav/curl/internal/httputil"
	"github.com/AeryAnubhav/curl/internal/intent"
	"github.com/AeryAnubhav/curl/internal/render"
	"github.com/AeryAnubhav/curl/internal/urlcheck"
)

// Exit codes, one per failure class.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitURL       = 3
	exitJSONBody  = 4
	exitConnect   = 5
	exitTransport = 6
	exitStatus    = 7
	exitBodyRead  = 8
	exitConfig    = 9
)

var errConfig = errors.New("configuration error")

func exitCode(err error) int {
	var (
		usage   *intent.UsageError
		urlErr  *urlcheck.Error
		jsonErr *httputil.JSONBodyError
		tErr    *httputil.TransportError
		status  *render.StatusError
		readErr *httputil.BodyReadError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &urlErr):
		return exitURL
	case errors.As(err, &jsonErr):
		return exitJSONBody
	case errors.As(err, &tErr):
		if tErr.Connect {
			return exitConnect
		}
		return exitTransport
	case errors.As(err, &status):
		return exitStatus
	case errors.As(err, &readErr):
		return exitBodyRead
	case errors.Is(err, errConfig):
		return exitConfig
	default:
		return exitFailure
	}
}
