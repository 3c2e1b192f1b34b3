package pipeline

import (
	"testing"
	"time"

	"github.com/vnykmshr/nexus/internal/testutil"
)

func TestStatsEfficiency(t *testing.T) {
	tests := []struct {
		name string
		runs []bool
		want float64
	}{
		{"no runs", nil, 1.0},
		{"one success", []bool{true}, 1.0},
		{"one success one failure", []bool{true, false}, 0.5},
		{"all failed", []bool{false, false}, 0.0},
		{"three of four", []bool{true, true, false, true}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stats
			for _, ok := range tt.runs {
				s.AddRun(time.Millisecond, ok)
			}
			testutil.AssertEqual(t, s.Efficiency(), tt.want)
			testutil.AssertEqual(t, s.ProcessedBatches, int64(len(tt.runs)))
		})
	}
}

func TestStatsDurations(t *testing.T) {
	var s Stats
	testutil.AssertEqual(t, s.AverageDuration(), time.Duration(0))

	s.AddRun(100*time.Millisecond, true)
	s.AddRun(300*time.Millisecond, false)

	testutil.AssertEqual(t, s.TotalTime, 400*time.Millisecond)
	testutil.AssertEqual(t, s.TotalSeconds(), 0.4)
	testutil.AssertEqual(t, s.AverageDuration(), 200*time.Millisecond)
	testutil.AssertEqual(t, s.ErrorCount, int64(1))
}
