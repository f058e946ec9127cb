// Package progress renders a terminal progress bar for long
// generation runs.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker tracks synthetic row production against a known total.
type Tracker struct {
	bar       *progressbar.ProgressBar
	out       io.Writer
	total     int64
	current   atomic.Int64
	startTime time.Time
}

// New creates a tracker for total rows, rendering to stderr.
func New(total int64) *Tracker {
	return NewTo(os.Stderr, total)
}

// NewTo creates a tracker rendering to w.
func NewTo(w io.Writer, total int64) *Tracker {
	return &Tracker{
		out:       w,
		total:     total,
		startTime: time.Now(),
		bar: progressbar.NewOptions64(
			total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Synthesizing"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("rows"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
		),
	}
}

// Add advances the tracker by n rows.
func (t *Tracker) Add(n int64) {
	t.current.Add(n)
	t.bar.Add64(n)
}

// Current returns the rows counted so far.
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Elapsed returns the time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Finish completes the bar and prints a one-line summary.
func (t *Tracker) Finish() {
	t.bar.Finish()

	elapsed := t.Elapsed()
	rowsPerSec := float64(t.current.Load()) / elapsed.Seconds()

	fmt.Fprintln(t.out)
	fmt.Fprintf(t.out, "Generated %d rows in %s (%.0f rows/sec)\n",
		t.current.Load(), elapsed.Round(time.Second), rowsPerSec)
}
