package pack_test

import (
	"testing"
	"time"

	"github.com/alnah/go-cutpack/internal/pack"
	"github.com/alnah/go-cutpack/internal/segment"
)

func TestMeasure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		durations       []time.Duration
		want            pack.Stats
		wantUtilization float64
	}{
		{
			name:            "empty batch",
			durations:       nil,
			want:            pack.Stats{},
			wantUtilization: 1.0,
		},
		{
			name:      "single segment wastes nothing",
			durations: []time.Duration{4 * time.Second},
			want: pack.Stats{
				Count:   1,
				Content: 4 * time.Second,
				Longest: 4 * time.Second,
				Padded:  4 * time.Second,
				Waste:   0,
			},
			wantUtilization: 1.0,
		},
		{
			name:      "uneven batch",
			durations: []time.Duration{4 * time.Second, 2 * time.Second},
			want: pack.Stats{
				Count:   2,
				Content: 6 * time.Second,
				Longest: 4 * time.Second,
				Padded:  8 * time.Second,
				Waste:   2 * time.Second,
			},
			wantUtilization: 0.75,
		},
		{
			name:      "many short against one long",
			durations: []time.Duration{10 * time.Second, time.Second, time.Second, time.Second},
			want: pack.Stats{
				Count:   4,
				Content: 13 * time.Second,
				Longest: 10 * time.Second,
				Padded:  40 * time.Second,
				Waste:   27 * time.Second,
			},
			wantUtilization: 0.325,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			segs := make([]segment.Segment, len(tt.durations))
			for i, d := range tt.durations {
				segs[i] = segment.Segment{ID: "s", Duration: d}
			}

			got := pack.Measure(segs)
			if got != tt.want {
				t.Errorf("Measure() = %+v, want %+v", got, tt.want)
			}
			if got.Utilization() != tt.wantUtilization {
				t.Errorf("Utilization() = %v, want %v", got.Utilization(), tt.wantUtilization)
			}
		})
	}
}
