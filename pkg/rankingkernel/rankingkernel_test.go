package rankingkernel_test

import (
	"testing"
	"time"

	"github.com/memoria-systems/memoria/pkg/rankingkernel"
)

func TestRecencyScoreBuckets(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		ago  time.Duration
		want int
	}{
		{"just now", 0, 5},
		{"12h", 12 * time.Hour, 5},
		{"2d", 2 * 24 * time.Hour, 4},
		{"5d", 5 * 24 * time.Hour, 3},
		{"10d", 10 * 24 * time.Hour, 2},
		{"30d", 30 * 24 * time.Hour, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := rankingkernel.RecencyScoreAt(now.Add(-c.ago), now)
			if got != c.want {
				t.Fatalf("RecencyScoreAt(ago=%s) = %d, want %d", c.ago, got, c.want)
			}
		})
	}
}

func TestRecencyScoreMonotoneNonIncreasing(t *testing.T) {
	now := time.Now()
	prevScore := 6
	for days := 0; days <= 30; days++ {
		ts := now.Add(-time.Duration(days) * 24 * time.Hour)
		score := rankingkernel.RecencyScoreAt(ts, now)
		if score > prevScore {
			t.Fatalf("recency score increased at day %d: %d > %d", days, score, prevScore)
		}
		prevScore = score
	}
}

func TestRFMScoreFormula(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	lastUsed := now.Add(-1 * time.Hour) // recency bucket = 5

	got := rankingkernel.RFMScoreAt(lastUsed, 4, 3.0, now)
	want := 5*0.3 + 4*0.2 + 3.0*0.5 // 1.5 + 0.8 + 1.5 = 3.8
	if diff := got - want; diff > 0.01 || diff < -0.01 {
		t.Fatalf("RFMScoreAt = %v, want ~%v", got, want)
	}
}

func TestCosineIdentityAndZero(t *testing.T) {
	v := []float32{1, 2, 3, 4}
	if got := rankingkernel.Cosine(v, v); got < 0.9999 || got > 1.0001 {
		t.Fatalf("Cosine(v, v) = %v, want ~1.0", got)
	}

	zero := []float32{0, 0, 0, 0}
	if got := rankingkernel.Cosine(v, zero); got != 0.0 {
		t.Fatalf("Cosine(v, 0) = %v, want 0.0", got)
	}
	if got := rankingkernel.Cosine(zero, zero); got != 0.0 {
		t.Fatalf("Cosine(0, 0) = %v, want 0.0", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := rankingkernel.Cosine(a, b); got < -0.0001 || got > 0.0001 {
		t.Fatalf("Cosine(orthogonal) = %v, want ~0", got)
	}
}

func TestTimeAgoHuman(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5 minutes ago"},
		{1 * time.Hour, "1 hour ago"},
		{3 * 24 * time.Hour, "3 days ago"},
	}

	for _, c := range cases {
		got := rankingkernel.TimeAgoHumanAt(now.Add(-c.ago), now)
		if got != c.want {
			t.Fatalf("TimeAgoHumanAt(ago=%s) = %q, want %q", c.ago, got, c.want)
		}
	}
}
