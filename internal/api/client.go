package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/foldlab/foldpipe/internal/config"
	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/http"
	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Errorf("[PROBE] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf("[PROBE] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf("[PROBE] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warnf("[PROBE] %s %v", msg, keysAndValues)
}

// Response is a raw pipeline server reply. Classification of its body is
// left to the pipeline package.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client talks to the pipeline server.
type Client struct {
	httpClient   *nethttp.Client
	baseURL      string
	probeRetries int
	logger       *logging.Logger
}

// NewClient creates a client for the server in cfg.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("server URL is empty")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	httpClient, err := http.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	c := NewClientWithHTTP(cfg.ServerURL, httpClient, logger)
	c.probeRetries = cfg.ProbeRetries
	return c, nil
}

// NewClientWithHTTP creates a client on a caller-supplied HTTP client.
func NewClientWithHTTP(baseURL string, httpClient *nethttp.Client, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		probeRetries: constants.ProbeRetries,
		logger:       logger,
	}
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadFile streams r as a multipart form to the upload endpoint, with the
// file in field "file" and the slot category in field "type". The request is
// attempted once.
func (c *Client) UploadFile(ctx context.Context, category, filename string, r io.Reader) error {
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, category, filename, r)
		pw.CloseWithError(err)
	}()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+constants.UploadPath, pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Debug().Str("file", filename).Str("type", category).Msg("uploading")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxUploadErrorBytes))
		return &Error{
			Kind:    models.KindServer,
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxUploadErrorBytes))
	return nil
}

func writeUploadForm(mw *multipart.Writer, category, filename string, r io.Reader) error {
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.WriteField("type", category); err != nil {
		return err
	}
	return mw.Close()
}

// PostPipeline issues one pipeline run request with an empty JSON object as
// body. Any HTTP status is returned as a Response; only transport failures
// and context expiry are errors.
func (c *Client) PostPipeline(ctx context.Context) (*Response, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+constants.PipelinePath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debugf("pipeline request failed: %v", err)
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Ping waits for the server to answer its index page, retrying connection
// failures and 5xx responses with backoff.
func (c *Client) Ping(ctx context.Context) error {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = c.httpClient
	rc.RetryMax = c.probeRetries
	rc.RetryWaitMin = constants.ProbeRetryWaitMin
	rc.RetryWaitMax = constants.ProbeRetryWaitMax
	rc.Logger = &retryLogger{logger: c.logger}

	req, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.baseURL+constants.ProbePath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := rc.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &Error{Kind: models.KindServer, Status: resp.StatusCode, Message: resp.Status}
	}
	return nil
}
