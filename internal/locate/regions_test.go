package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinBounds(t *testing.T) {
	assert.True(t, WithinBounds("palestine", 31.5, 34.47), "Gaza")
	assert.True(t, WithinBounds("palestine", 29.5, 34.0), "corner is inclusive")
	assert.True(t, WithinBounds("palestine", 33.5, 36.0), "corner is inclusive")
	assert.False(t, WithinBounds("palestine", 31.76, -95.63), "Palestine, Texas")
	assert.False(t, WithinBounds("palestine", 33.6, 35.0))
	assert.True(t, WithinBounds("china", 39.47, 75.99), "Kashgar")
	assert.False(t, WithinBounds("china", 39.627, 66.975), "Samarkand")
}

func TestWithinBounds_UnknownRegionUnconstrained(t *testing.T) {
	assert.True(t, WithinBounds("uzbekistan", -80, 170))
	assert.True(t, WithinBounds("", 0, 0))
}

func TestRegionBounds_CoversEveryDetectableRegion(t *testing.T) {
	for _, rp := range regionPatterns {
		b, ok := RegionBounds(rp.region)
		require.True(t, ok, rp.region)
		assert.Less(t, b.Min(1), b.Max(1), rp.region)
		assert.Less(t, b.Min(0), b.Max(0), rp.region)
	}
	assert.Len(t, regionBoxes, len(regionPatterns))
}

func TestMentionsRegion(t *testing.T) {
	assert.True(t, mentionsRegion("Gaza, Gaza Strip, Palestine", "palestine"))
	assert.True(t, mentionsRegion("Gaza, Gaza Strip, Palestinian Territory", "palestine"))
	assert.False(t, mentionsRegion("Tel Aviv, Israel", "palestine"))
	assert.True(t, mentionsRegion("İzmir, Ege Bölgesi, Türkiye", "turkey"))
	assert.True(t, mentionsRegion("SAUDI ARABIA", "saudi arabia"))
}
