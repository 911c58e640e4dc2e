package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.End(load, "2 files")
	err := tm.Track("analyze", func() (string, error) { return "", errors.New("boom") })
	if err == nil {
		t.Fatal("Track should return the phase error")
	}
	tm.End(42, "ignored")
	tm.Record("passes", 5*time.Second, "cumulative")

	r := tm.Report()
	if r.TotalMS >= 5000 || !r.Phases[2].Nested {
		t.Errorf("nested phase counted in total: %+v", r)
	}
	if len(r.Phases) != 3 || r.Phases[0].Note != "2 files" || r.Phases[1].Note != "failed" {
		t.Errorf("report = %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "load") || !strings.Contains(s, "total") {
		t.Errorf("summary:\n%s", s)
	}

	var nilTimer *Timer
	nilTimer.End(nilTimer.Begin("x"), "")
	if len(nilTimer.Report().Phases) != 0 {
		t.Error("nil timer should record nothing")
	}
}
