package models

import (
	"testing"
	"time"
)

func TestCampaignPhase(t *testing.T) {
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	end := start.Add(9 * 24 * time.Hour)

	tests := []struct {
		name       string
		now        time.Time
		successful bool
		expected   string
	}{
		{"before window", start.Add(-time.Second), false, CampaignPhaseUpcoming},
		{"at window start", start, false, CampaignPhaseActive},
		{"at window end", end, false, CampaignPhaseActive},
		{"ended below target", end.Add(time.Second), false, CampaignPhaseFailed},
		{"ended at target", end.Add(time.Second), true, CampaignPhaseSuccessful},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Campaign{
				WindowStart:  start,
				WindowEnd:    end,
				IsSuccessful: tt.successful,
			}
			if got := c.Phase(tt.now); got != tt.expected {
				t.Errorf("Phase(%v) = %q, want %q", tt.now, got, tt.expected)
			}
		})
	}
}
