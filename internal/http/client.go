package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/foldlab/foldpipe/internal/config"
	"github.com/foldlab/foldpipe/internal/logging"
)

// NewClient creates the HTTP client shared by uploads, pipeline runs and the
// readiness probe.
//
// HTTP/2 is attempted for direct TLS connections. It is disabled when a proxy
// is active, since proxies commonly break h2 streams mid-request, or when
// DISABLE_HTTP2=true is set.
func NewClient(cfg *config.Config, logger *logging.Logger) (*nethttp.Client, error) {
	client, err := ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	// NTLM wraps the transport; leave it untouched
	tr, ok := client.Transport.(*nethttp.Transport)
	if !ok {
		return client, nil
	}

	if ProxyActive(cfg) || os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
		return client, nil
	}

	tr.ForceAttemptHTTP2 = true
	if err := http2.ConfigureTransport(tr); err != nil && logger != nil {
		logger.Debugf("http2 transport setup skipped: %v", err)
	}
	return client, nil
}

func anyEnvProxy() bool {
	for _, key := range []string{"HTTP_PROXY", "HTTPS_PROXY", "http_proxy", "https_proxy"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}
