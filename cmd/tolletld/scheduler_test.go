package main

import (
	"testing"
	"time"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/pipeline"
)

func TestScheduler_NextRun(t *testing.T) {
	base := time.Date(2021, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   string
		want time.Time
	}{
		{
			name: "no at runs immediately",
			at:   "",
			want: base,
		},
		{
			name: "at later today",
			at:   "18:00",
			want: time.Date(2021, 1, 15, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "at already passed rolls to tomorrow",
			at:   "06:00",
			want: time.Date(2021, 1, 16, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scheduler{at: tt.at, now: func() time.Time { return base }}
			if got := s.nextRun(); !got.Equal(tt.want) {
				t.Errorf("nextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewScheduler_Interval(t *testing.T) {
	config := &pipeline.Config{
		Schedule: pipeline.ScheduleConfig{Interval: "30m"},
	}

	s, err := NewScheduler(config)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	if s.interval != 30*time.Minute {
		t.Errorf("Expected 30m interval, got %v", s.interval)
	}

	bad := &pipeline.Config{
		Schedule: pipeline.ScheduleConfig{Interval: "soon"},
	}
	if _, err := NewScheduler(bad); err == nil {
		t.Error("Expected error for invalid interval")
	}
}
