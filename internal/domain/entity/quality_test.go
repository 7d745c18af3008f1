package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoQuality(t *testing.T) {
	for _, name := range []string{"high", "medium", "low"} {
		q, err := ParseVideoQuality(name)
		require.NoError(t, err)
		assert.Equal(t, VideoQuality(name), q)
	}

	_, err := ParseVideoQuality("ultra")
	assert.Error(t, err)

	_, err = ParseVideoQuality("")
	assert.Error(t, err)
}

func TestQScaleIsMonotonic(t *testing.T) {
	// Lower -q:v means less compression, so high must map strictly below
	// medium, and medium strictly below low.
	assert.Less(t, QualityHigh.QScale(), QualityMedium.QScale())
	assert.Less(t, QualityMedium.QScale(), QualityLow.QScale())
}
