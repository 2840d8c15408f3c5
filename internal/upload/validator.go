// Package upload checks file selections against their slot and submits the
// accepted ones to the upload endpoint.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/foldlab/foldpipe/internal/api"
	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/progress"
	"github.com/foldlab/foldpipe/internal/validation"
)

// User-facing slot messages.
const (
	MsgUploading = "Uploading..."
	MsgUploaded  = "Uploaded successfully"
)

// Uploader submits one file. *api.Client implements it.
type Uploader interface {
	UploadFile(ctx context.Context, category, filename string, r io.Reader) error
}

// StatusLine shows a slot's upload status.
type StatusLine interface {
	SetStatus(status models.SlotStatus, message string)
}

// Input is the file selection control of a slot.
type Input interface {
	Clear()
}

// ReporterFunc returns the progress reporter for an upload into slot.
type ReporterFunc func(slot models.Slot) progress.Reporter

type slotState struct {
	mu     sync.Mutex
	state  models.UploadSlot
	seq    uint64
	status StatusLine
	input  Input
}

// Validator owns the two upload slots.
type Validator struct {
	uploader Uploader
	reporter ReporterFunc
	logger   *logging.Logger
	slots    map[models.Slot]*slotState
}

// NewValidator creates a validator with both slots empty.
func NewValidator(uploader Uploader, logger *logging.Logger) *Validator {
	if logger == nil {
		logger = logging.Nop()
	}
	v := &Validator{
		uploader: uploader,
		logger:   logger.Component("upload"),
		slots:    make(map[models.Slot]*slotState, len(models.Slots)),
	}
	for _, s := range models.Slots {
		v.slots[s] = &slotState{state: models.UploadSlot{Slot: s, Status: models.SlotEmpty}}
	}
	return v
}

// Bind attaches the front-end controls of slot. Either may be nil.
func (v *Validator) Bind(slot models.Slot, status StatusLine, input Input) {
	st := v.slot(slot)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = status
	st.input = input
}

// SetReporter installs a progress reporter factory for uploads.
func (v *Validator) SetReporter(fn ReporterFunc) {
	v.reporter = fn
}

// Slot returns the current state of slot.
func (v *Validator) Slot(slot models.Slot) models.UploadSlot {
	st := v.slot(slot)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

func (v *Validator) slot(slot models.Slot) *slotState {
	st, ok := v.slots[slot]
	if !ok {
		panic(fmt.Sprintf("upload: unknown slot %v", slot))
	}
	return st
}

// Select handles a new selection for slot; file is nil when the selection
// was cleared. It blocks until the upload, if any, has finished and returns
// the resulting slot state. A selection made while an earlier upload of the
// same slot is in flight supersedes it: the earlier result is discarded.
//
// The returned error is nil for a cleared slot and for a successful upload.
// Rejected selections return an *api.Error of kind KindValidation.
func (v *Validator) Select(ctx context.Context, slot models.Slot, file *File) (models.UploadSlot, error) {
	st := v.slot(slot)

	if file == nil {
		seq := st.begin()
		return st.apply(seq, "", models.SlotEmpty, ""), nil
	}

	suffix := slot.Suffix()
	if !validation.HasExtension(file.Name, suffix) {
		msg := "Invalid file type. Expected " + suffix
		seq := st.begin()
		result := st.apply(seq, "", models.SlotInvalidType, msg)
		st.clearInput()
		v.logger.Debug().Str("slot", slot.String()).Str("file", file.Name).Msg("rejected selection")
		return result, &api.Error{Kind: models.KindValidation, Message: msg}
	}

	seq := st.begin()
	st.apply(seq, file.Name, models.SlotUploading, MsgUploading)

	err := v.upload(ctx, slot, file)
	if err != nil {
		msg := failureMessage(err)
		v.logger.Warn().Str("slot", slot.String()).Str("file", file.Name).Msg(msg)
		return st.apply(seq, file.Name, models.SlotError, msg), err
	}

	v.logger.Info().Str("slot", slot.String()).Str("file", file.Name).Msg("uploaded")
	return st.apply(seq, file.Name, models.SlotSuccess, MsgUploaded), nil
}

func (v *Validator) upload(ctx context.Context, slot models.Slot, file *File) error {
	if err := validation.ValidateFilename(file.Name); err != nil {
		return &api.Error{Kind: models.KindValidation, Message: err.Error(), Err: err}
	}

	rc, err := file.Open()
	if err != nil {
		return &api.Error{Kind: models.KindTransport, Message: err.Error(), Err: err}
	}
	defer rc.Close()

	var body io.Reader = rc
	var rep progress.Reporter
	if v.reporter != nil {
		rep = v.reporter(slot)
	}
	if rep != nil {
		rep.Start(file.Size, file.Name)
		body = progress.NewProgressReader(rc, rep)
	}

	err = v.uploader.UploadFile(ctx, slot.Category(), file.Name, body)
	if rep != nil {
		if err != nil {
			rep.Error(err)
		} else {
			rep.Finish()
		}
	}
	return err
}

// failureMessage maps an upload error to the slot message: server
// rejections quote the response body, everything else is a transport error.
func failureMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case models.KindServer:
			return "Upload failed: " + apiErr.Message
		case models.KindValidation:
			return "Invalid file name: " + apiErr.Message
		}
	}
	return "Upload error: " + err.Error()
}

// begin starts a new selection and returns its sequence number.
func (s *slotState) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// apply records the state for selection seq and notifies the status line,
// unless a newer selection has since been made.
func (s *slotState) apply(seq uint64, fileName string, status models.SlotStatus, message string) models.UploadSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := models.UploadSlot{Slot: s.state.Slot, FileName: fileName, Status: status, Message: message}
	if seq != s.seq {
		return next
	}
	s.state = next
	if s.status != nil {
		s.status.SetStatus(status, message)
	}
	return next
}

func (s *slotState) clearInput() {
	s.mu.Lock()
	input := s.input
	s.mu.Unlock()
	if input != nil {
		input.Clear()
	}
}
