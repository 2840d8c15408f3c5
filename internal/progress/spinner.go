package progress

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/foldlab/foldpipe/internal/constants"
)

// Spinner is the indeterminate indicator shown while a run is in flight.
// On a non-terminal writer it draws nothing.
type Spinner struct {
	progress   *mpb.Progress
	bar        *mpb.Bar
	start time.Time
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewSpinner starts a spinner labelled label on f.
func NewSpinner(f *os.File, label string) *Spinner {
	isTerminal := IsTerminal(f)

	var out io.Writer = io.Discard
	if isTerminal {
		enableWindowsANSI(f)
		out = f
	}
	return newSpinner(out, label)
}

func newSpinner(out io.Writer, label string) *Spinner {
	s := &Spinner{start: time.Now()}
	s.progress = mpb.New(
		mpb.WithOutput(out),
		mpb.WithRefreshRate(constants.SpinnerRefreshRate),
		mpb.WithWidth(1),
	)
	s.bar = s.progress.New(0,
		mpb.SpinnerStyle(),
		mpb.PrependDecorators(decor.Name(label, decor.WCSyncSpaceR)),
		mpb.AppendDecorators(decor.Elapsed(decor.ET_STYLE_GO)),
		mpb.BarRemoveOnComplete(),
	)
	return s
}

// Stop removes the spinner and waits for the final redraw.
func (s *Spinner) Stop() time.Duration {
	if s.bar != nil {
		s.bar.Abort(true)
		s.bar = nil
		s.progress.Wait()
	}
	return time.Since(s.start)
}
