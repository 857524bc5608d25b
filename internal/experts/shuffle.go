package experts

import (
	"math"
	"time"
)

// DaySeed derives the shuffle seed from the UTC calendar date of t. It
// changes once per day and is the same for every process on that day.
func DaySeed(t time.Time) int {
	t = t.UTC()
	return t.Year()*1000 + t.YearDay()
}

// seededRandom maps n to [0,1) via the fractional part of sin(n)*10000.
// Deployed clients depend on this exact transform.
func seededRandom(n int) float64 {
	x := math.Sin(float64(n)) * 10000
	return x - math.Floor(x)
}

// Shuffle permutes s in place with a Fisher-Yates pass from the end, drawing
// each swap index from seededRandom(seed+i).
func Shuffle[T any](s []T, seed int) {
	for i := len(s) - 1; i > 0; i-- {
		j := int(math.Floor(seededRandom(seed+i) * float64(i+1)))
		if j > i {
			j = i
		}
		s[i], s[j] = s[j], s[i]
	}
}
