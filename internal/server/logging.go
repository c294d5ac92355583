package server

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5/middleware"
)

// secretParams are query parameters that must never reach the access log.
var secretParams = []string{"access_token"}

// redactingFormatter wraps chi's default formatter and masks secretParams
// in the logged request line.
type redactingFormatter struct {
	inner *middleware.DefaultLogFormatter
}

func newRequestLogger(out io.Writer) func(http.Handler) http.Handler {
	if out == nil {
		out = os.Stderr
	}
	return middleware.RequestLogger(&redactingFormatter{
		inner: &middleware.DefaultLogFormatter{
			Logger:  log.New(out, "", log.LstdFlags),
			NoColor: out != os.Stderr,
		},
	})
}

func (f *redactingFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return f.inner.NewLogEntry(redactRequest(r))
}

func redactRequest(r *http.Request) *http.Request {
	q := r.URL.Query()
	found := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			found = true
		}
	}
	if !found {
		return r
	}
	u := new(url.URL)
	*u = *r.URL
	u.RawQuery = q.Encode()

	rc := r.WithContext(r.Context())
	rc.URL = u
	rc.RequestURI = u.RequestURI()
	return rc
}
