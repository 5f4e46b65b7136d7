// Package rankingkernel implements the pure, deterministic ranking math the
// rest of the memory tier is built on: the bucketed recency score, the
// aggregate RFM score, cosine similarity, and human-readable relative time.
// Nothing here performs I/O.
package rankingkernel

import (
	"fmt"
	"math"
	"time"
)

// RecencyScore buckets how long ago ts was into a 1-5 scale, most recent
// first. Naive timestamps are assumed UTC.
func RecencyScore(ts time.Time) int {
	return RecencyScoreAt(ts, time.Now())
}

// RecencyScoreAt is RecencyScore with an explicit "now", for deterministic
// testing.
func RecencyScoreAt(ts, now time.Time) int {
	age := now.Sub(ts.UTC())
	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 3*24*time.Hour:
		return 4
	case age <= 7*24*time.Hour:
		return 3
	case age <= 14*24*time.Hour:
		return 2
	default:
		return 1
	}
}

// RFMScore combines bucketed recency, raw frequency, and LLM-assessed
// magnitude into the weighted importance proxy stored as rfm_score.
func RFMScore(lastUsed time.Time, frequency int, magnitude float64) float64 {
	return RFMScoreAt(lastUsed, frequency, magnitude, time.Now())
}

// RFMScoreAt is RFMScore with an explicit "now".
func RFMScoreAt(lastUsed time.Time, frequency int, magnitude float64, now time.Time) float64 {
	score := float64(RecencyScoreAt(lastUsed, now))*0.3 + float64(frequency)*0.2 + magnitude*0.5
	return round2(score)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Cosine computes cosine similarity between two vectors. Returns 0.0 if
// either vector is the zero vector or the vectors differ in length.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}

	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// TimeAgoHuman renders ts as a relative-time phrase ("3 days ago", "just
// now"), for prompt formatting only — the value is never persisted.
func TimeAgoHuman(past time.Time) string {
	return TimeAgoHumanAt(past, time.Now())
}

// TimeAgoHumanAt is TimeAgoHuman with an explicit "now".
func TimeAgoHumanAt(past, now time.Time) string {
	d := now.Sub(past.UTC())
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d/(7*24*time.Hour)), "week") + " ago"
	case d < 365*24*time.Hour:
		return plural(int(d/(30*24*time.Hour)), "month") + " ago"
	default:
		return plural(int(d/(365*24*time.Hour)), "year") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
