package gateway

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/ZigmaSoftware/erp-final-backend/internal/httpx"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// detailServiceUnavailable is returned when a backend cannot be reached.
const detailServiceUnavailable = "Service unavailable"

// Proxy forwards requests for one backend service, stripping the gateway
// route prefix so the backend sees its own paths. A request for
// /api/master/countries/ reaches the master service as /countries/.
type Proxy struct {
	prefix string
	rp     *httputil.ReverseProxy
}

// NewProxy creates a proxy for the backend at rawURL, mounted under
// prefix (e.g. "/api/master").
func NewProxy(prefix, rawURL string, logger *slog.Logger) (*Proxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, erperr.Newf(erperr.CodeInternalConfiguration,
			"gateway: backend URL %q is not an absolute URL", rawURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	director := func(req *http.Request) {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		req.URL.Path = singleJoiningSlash(target.Path, strings.TrimPrefix(req.URL.Path, prefix))
		req.Host = target.Host
	}

	rp := &httputil.ReverseProxy{
		Director: director,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("backend unreachable",
				"prefix", prefix,
				"target", target.Host,
				"error", err,
			)
			httpx.WriteDetail(w, http.StatusServiceUnavailable, detailServiceUnavailable)
		},
	}

	return &Proxy{prefix: prefix, rp: rp}, nil
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

// Prefix returns the gateway route prefix this proxy is mounted under.
func (p *Proxy) Prefix() string { return p.prefix }

func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}
