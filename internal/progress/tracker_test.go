package progress

import (
	"io"
	"strings"
	"testing"
)

func TestTrackerCounts(t *testing.T) {
	tr := NewTo(io.Discard, 100)

	tr.Add(30)
	tr.Add(70)

	if got := tr.Current(); got != 100 {
		t.Errorf("Current() = %d, want 100", got)
	}
}

func TestTrackerSummary(t *testing.T) {
	var buf strings.Builder
	tr := NewTo(&buf, 5)

	tr.Add(5)
	tr.Finish()

	if !strings.Contains(buf.String(), "Generated 5 rows") {
		t.Errorf("Finish() output %q missing summary", buf.String())
	}
}
