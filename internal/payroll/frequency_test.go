package payroll

import (
	"testing"
	"time"
)

func datesEvery(start time.Time, gap time.Duration, count int) []time.Time {
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, start.Add(time.Duration(i)*gap))
	}
	return dates
}

func TestDetectFrequencyBiweekly(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	result := DetectFrequency(datesEvery(start, 14*24*time.Hour, 10))
	if result.Frequency != FrequencyBiweekly {
		t.Fatalf("expected biweekly, got %q", result.Frequency)
	}
	if result.Confidence != 100 {
		t.Fatalf("perfectly regular 14-day gaps should score 100, got %d", result.Confidence)
	}
}

func TestDetectFrequencyWeekly(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	result := DetectFrequency(datesEvery(start, 7*24*time.Hour, 8))
	if result.Frequency != FrequencyWeekly {
		t.Fatalf("expected weekly, got %q", result.Frequency)
	}
	if result.Confidence < 90 {
		t.Fatalf("expected high confidence, got %d", result.Confidence)
	}
}

func TestDetectFrequencySemiMonthly(t *testing.T) {
	// 15th and last day of each month.
	dates := []time.Time{
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	result := DetectFrequency(dates)
	if result.Frequency != FrequencySemiMonthly {
		t.Fatalf("expected semiMonthly, got %q (note: %s)", result.Frequency, result.Note)
	}
	if result.Confidence <= 0 {
		t.Fatalf("expected positive confidence, got %d", result.Confidence)
	}
}

func TestDetectFrequencyMonthly(t *testing.T) {
	dates := make([]time.Time, 0, 6)
	for m := time.January; m <= time.June; m++ {
		dates = append(dates, time.Date(2025, m, 28, 0, 0, 0, 0, time.UTC))
	}
	result := DetectFrequency(dates)
	if result.Frequency != FrequencyMonthly {
		t.Fatalf("expected monthly, got %q (note: %s)", result.Frequency, result.Note)
	}
}

func TestDetectFrequencyUnsortedInput(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	dates := datesEvery(start, 14*24*time.Hour, 6)
	dates[0], dates[3] = dates[3], dates[0]
	dates[1], dates[5] = dates[5], dates[1]
	result := DetectFrequency(dates)
	if result.Frequency != FrequencyBiweekly || result.Confidence != 100 {
		t.Fatalf("order must not matter: got %q at %d", result.Frequency, result.Confidence)
	}
}

func TestDetectFrequencyTooFewDates(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	result := DetectFrequency(datesEvery(start, 14*24*time.Hour, 2))
	if result.Frequency != "" {
		t.Fatalf("expected no detection, got %q", result.Frequency)
	}
	if result.Confidence != 0 || result.Note == "" {
		t.Fatalf("expected zero confidence with a note, got %d %q", result.Confidence, result.Note)
	}
}

func TestDetectFrequencyNoTemplateMatch(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	result := DetectFrequency(datesEvery(start, 45*24*time.Hour, 5))
	if result.Frequency != FrequencyBiweekly {
		t.Fatalf("fallback must be biweekly, got %q", result.Frequency)
	}
	if result.Confidence != 0 {
		t.Fatalf("fallback must carry zero confidence, got %d", result.Confidence)
	}
}

func TestDetectFrequencyJitteredBiweekly(t *testing.T) {
	// Pay dates that slip a day around the 14-day cadence.
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	offsets := []int{0, 14, 27, 42, 56, 71, 84}
	dates := make([]time.Time, 0, len(offsets))
	for _, d := range offsets {
		dates = append(dates, start.AddDate(0, 0, d))
	}
	result := DetectFrequency(dates)
	if result.Frequency != FrequencyBiweekly {
		t.Fatalf("expected biweekly despite jitter, got %q", result.Frequency)
	}
	if result.Confidence >= 100 || result.Confidence <= 0 {
		t.Fatalf("jitter should reduce but not destroy confidence, got %d", result.Confidence)
	}
}
