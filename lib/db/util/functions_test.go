package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("theme", 42), HashString("theme", 42))
	assert.NotEqual(t, HashString("theme", 42), HashString("theme", 43))
	assert.NotEqual(t, HashString("theme", 0), HashString("volume", 0))
}

func TestShardIndex(t *testing.T) {
	assert.Equal(t, 0, ShardIndex(12345, 1))
	assert.Equal(t, 0, ShardIndex(12345, 0))

	for i := 0; i < 1000; i++ {
		idx := ShardIndex(HashString(string(rune('a'+i%26))+string(rune(i)), 7), 8)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 8)
	}
}

func TestNewDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	assert.InDelta(t, 1.0, even.DistributionQuality, 1e-9)
	assert.InDelta(t, 0.0, even.StdDeviation, 1e-9)

	skewed := NewDistributionStats([]float64{0, 0, 0, 40})
	assert.Less(t, skewed.DistributionQuality, even.DistributionQuality)
	assert.Equal(t, 40.0, skewed.Max)

	empty := NewDistributionStats(nil)
	assert.Equal(t, 0.0, empty.Mean)
}
