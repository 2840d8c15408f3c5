package constants

import (
	"time"
)

// Server endpoints
const (
	// UploadPath - multipart upload endpoint for the two input slots
	UploadPath = "/upload-file"

	// PipelinePath - triggers one pipeline run and returns its result
	PipelinePath = "/run-pipeline"

	// ProbePath - page served by the pipeline server, used as a readiness probe
	ProbePath = "/"

	// DefaultServerURL - the Flask development server address
	DefaultServerURL = "http://localhost:5000"
)

// Pipeline run limits
const (
	// PipelineTimeout - fixed deadline for a single run, after which the request is aborted
	PipelineTimeout = 30 * time.Second

	// MaxErrorBodyChars - raw error bodies are cut to this many characters before display
	MaxErrorBodyChars = 500

	// MaxResponseBytes - upper bound on a pipeline response read into memory (32 MB)
	MaxResponseBytes = 32 * 1024 * 1024

	// TimeoutMessage - shown in place of the transport error when a run hits its deadline
	TimeoutMessage = "request timed out after 30s — retry with a smaller input"

	// MaxUploadErrorBytes - upper bound on an upload error body read into memory (64 KB)
	MaxUploadErrorBytes = 64 * 1024
)

// Trigger labels
const (
	TriggerLabelIdle    = "Process Through Pipeline"
	TriggerLabelRunning = "Processing..."
)

// Readiness probe retry settings
const (
	// ProbeRetries - default retry count for the readiness probe
	ProbeRetries = 5

	// ProbeRetryWaitMin - minimum wait between probe attempts
	ProbeRetryWaitMin = 500 * time.Millisecond

	// ProbeRetryWaitMax - maximum wait between probe attempts
	ProbeRetryWaitMax = 5 * time.Second
)

// Event bus sizing
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size for event channels
	EventBusMaxBuffer = 2048
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (15 seconds)
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (10 seconds)
	HTTPDialTimeout = 10 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// ProxyWarmupTimeout - bound on the optional proxy warmup request
	ProxyWarmupTimeout = 15 * time.Second
)

// UI
const (
	// SpinnerRefreshRate - redraw interval of the terminal spinner
	SpinnerRefreshRate = 120 * time.Millisecond

	// SummaryTimeFormat - clock format of the completion timestamp in the run summary
	SummaryTimeFormat = "15:04:05"
)
