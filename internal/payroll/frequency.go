package payroll

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frequency is a pay-period cadence.
type Frequency string

const (
	// FrequencyWeekly pays every 7 days.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiweekly pays every 14 days.
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencySemiMonthly pays twice a month (mean gap 15.2 days).
	FrequencySemiMonthly Frequency = "semiMonthly"
	// FrequencyMonthly pays once a month (mean gap 30.4 days).
	FrequencyMonthly Frequency = "monthly"
)

// FrequencyResult carries the detected cadence, a 0-100 confidence score and
// a diagnostic note. An empty Frequency with zero confidence means detection
// was impossible and the caller should use a manually supplied cadence.
type FrequencyResult struct {
	Frequency  Frequency `json:"frequency,omitempty"`
	Confidence int       `json:"confidence"`
	Note       string    `json:"note,omitempty"`
}

// frequencyTemplate is one canonical cadence with its expected gap and the
// tolerance within which a mean gap still matches.
type frequencyTemplate struct {
	frequency Frequency
	expected  float64
	tolerance float64
}

var frequencyTemplates = []frequencyTemplate{
	{FrequencyWeekly, 7, 2},
	{FrequencyBiweekly, 14, 3},
	{FrequencySemiMonthly, 15.2, 4},
	{FrequencyMonthly, 30.4, 5},
}

// DetectFrequency infers the most likely pay cadence from historical pay
// dates, accepted in any order. It needs at least three data points.
//
// The mean and standard deviation of consecutive gaps are scored against
// each template: closeness of the mean to the expected gap weighs 0.7,
// gap consistency 0.3. When no template matches within tolerance the result
// falls back to biweekly with zero confidence, distinguishable from a
// genuine biweekly detection by that zero score.
func DetectFrequency(payDates []time.Time) FrequencyResult {
	if len(payDates) < 3 {
		return FrequencyResult{
			Confidence: 0,
			Note:       fmt.Sprintf("need at least 3 pay dates, got %d", len(payDates)),
		}
	}

	sorted := make([]time.Time, len(payDates))
	copy(sorted, payDates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Sub(sorted[i-1]).Hours()/24)
	}

	var sum float64
	for _, g := range gaps {
		sum += g
	}
	mean := sum / float64(len(gaps))

	var variance float64
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(gaps)))

	var (
		best      *frequencyTemplate
		bestScore float64
	)
	for i := range frequencyTemplates {
		tpl := frequencyTemplates[i]
		deviation := math.Abs(mean - tpl.expected)
		if deviation > tpl.tolerance {
			continue
		}
		closeness := 1 - deviation/tpl.tolerance
		consistency := math.Max(0, 1-stdDev/tpl.expected)
		score := 0.7*closeness + 0.3*consistency
		if best == nil || score > bestScore {
			best = &frequencyTemplates[i]
			bestScore = score
		}
	}
	if best == nil {
		return FrequencyResult{
			Frequency:  FrequencyBiweekly,
			Confidence: 0,
			Note:       fmt.Sprintf("no cadence template within tolerance of mean gap %.1f days; defaulting to biweekly", mean),
		}
	}
	return FrequencyResult{
		Frequency:  best.frequency,
		Confidence: int(math.Round(bestScore * 100)),
		Note:       fmt.Sprintf("mean gap %.1f days over %d intervals (stddev %.1f)", mean, len(gaps), stdDev),
	}
}
