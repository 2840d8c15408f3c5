package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foldlab/foldpipe/internal/api"
	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/models"
)

// TimeoutMessage is shown instead of the transport error when a run hits
// its deadline.
const TimeoutMessage = constants.TimeoutMessage

// User-facing format failures.
const (
	MsgInvalidFormat = "Unexpected response: invalid format"
	MsgMissingData   = "Unexpected response: response missing expected data"
)

// Payload is the data of a successful run.
type Payload struct {
	Result   string
	Stats    map[string]any
	RowCount *int
	Step3    string
	Step4    string
}

// Outcome is the classified result of one pipeline request: either a
// payload or a failure with kind, message and optional detail.
type Outcome struct {
	Payload *Payload
	Kind    models.ErrorKind
	Message string
	Detail  string
}

// Success wraps a payload.
func Success(p Payload) Outcome {
	return Outcome{Payload: &p}
}

// Failure builds a failed outcome.
func Failure(kind models.ErrorKind, message, detail string) Outcome {
	return Outcome{Kind: kind, Message: message, Detail: detail}
}

// OK reports a successful outcome.
func (o Outcome) OK() bool {
	return o.Payload != nil
}

// Apply folds the outcome into the running snapshot run.
func (o Outcome) Apply(run models.PipelineRun, finished time.Time) models.PipelineRun {
	run.FinishedAt = finished
	run.Result = ""
	run.Stats = nil
	run.RowCount = nil
	run.Steps = nil
	run.Error = nil

	if o.OK() {
		run.State = models.RunSucceeded
		run.Result = o.Payload.Result
		run.Stats = o.Payload.Stats
		run.RowCount = o.Payload.RowCount
		if o.Payload.Step3 != "" || o.Payload.Step4 != "" {
			run.Steps = []string{o.Payload.Step3, o.Payload.Step4}
		}
		return run
	}

	run.State = models.RunFailed
	if o.Kind == models.KindTimeout {
		run.State = models.RunTimedOut
	}
	run.Error = &models.RunError{Kind: o.Kind, Message: o.Message, Detail: o.Detail}
	return run
}

// Classify turns the result of one PostPipeline call into an Outcome. It
// never panics on malformed bodies.
func Classify(resp *api.Response, err error) Outcome {
	if err != nil {
		if api.KindOf(err) == models.KindTimeout {
			return Failure(models.KindTimeout, TimeoutMessage, "")
		}
		return Failure(models.KindTransport, "Network error: "+err.Error(), "")
	}

	fields, isObject := decodeObject(resp)

	if !resp.OK() {
		text := ""
		detail := ""
		if isObject {
			text = firstString(fields, "error", "message")
			detail = stringField(fields, "details")
		}
		if text == "" {
			text = truncate(strings.TrimSpace(string(resp.Body)), constants.MaxErrorBodyChars)
		}
		return Failure(models.KindServer, fmt.Sprintf("Server error: %d - %s", resp.StatusCode, text), detail)
	}

	if !isObject {
		return Failure(models.KindFormat, MsgInvalidFormat, "")
	}

	if present(fields, "error") {
		msg := stringField(fields, "error")
		return Failure(models.KindServer, msg, stringField(fields, "details"))
	}

	if !present(fields, "result") {
		return Failure(models.KindFormat, MsgMissingData, "")
	}

	p := Payload{
		Result: stringField(fields, "result"),
		Step3:  stringField(fields, "step3"),
		Step4:  stringField(fields, "step4"),
	}
	if raw, ok := fields["stats"]; ok {
		var stats map[string]any
		if json.Unmarshal(raw, &stats) == nil {
			p.Stats = stats
		}
	}
	if raw, ok := fields["rowCount"]; ok {
		var n float64
		if json.Unmarshal(raw, &n) == nil && n == math.Trunc(n) && n >= 0 {
			count := int(n)
			p.RowCount = &count
		}
	}
	return Success(p)
}

// decodeObject parses the body as a JSON object. Bodies announced with a
// non-JSON content type are treated as text.
func decodeObject(resp *api.Response) (map[string]json.RawMessage, bool) {
	ct := strings.ToLower(resp.ContentType)
	if ct != "" && !strings.Contains(ct, "json") {
		return nil, false
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// present reports a key holding something other than null or "".
func present(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	s := string(bytes.TrimSpace(raw))
	return s != "null" && s != `""`
}

// stringField returns a string value verbatim and any other JSON value as
// its compact encoding.
func stringField(fields map[string]json.RawMessage, key string) string {
	if !present(fields, key) {
		return ""
	}
	raw := fields[key]
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if s := stringField(fields, k); s != "" {
			return s
		}
	}
	return ""
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
