package experts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaySeed(t *testing.T) {
	assert.Equal(t, 2024001, DaySeed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024366, DaySeed(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)))
	// calendar date is taken in UTC
	assert.Equal(t, 2024002, DaySeed(time.Date(2024, 1, 1, 20, 0, 0, 0, time.FixedZone("x", -8*3600))))
}

func TestSeededRandomRange(t *testing.T) {
	for n := -50; n < 5000; n++ {
		r := seededRandom(n)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 1.0)
	}
	assert.Equal(t, seededRandom(2024100), seededRandom(2024100))
}

func TestShufflePermutes(t *testing.T) {
	in := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	a := append([]int(nil), in...)
	b := append([]int(nil), in...)

	Shuffle(a, 2024100)
	Shuffle(b, 2024100)

	assert.Equal(t, a, b)
	assert.ElementsMatch(t, in, a)
}

func TestShuffleShortInputs(t *testing.T) {
	var empty []int
	Shuffle(empty, 1)
	one := []int{7}
	Shuffle(one, 1)
	assert.Equal(t, []int{7}, one)
}
