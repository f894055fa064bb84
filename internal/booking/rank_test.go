package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankSpotsCapacityThenName(t *testing.T) {
	spots := []Spot{
		{ID: "c", Name: "P-03", Capacity: 1},
		{ID: "a", Name: "P-01", Capacity: 2},
		{ID: "b", Name: "P-02", Capacity: 2},
	}
	ranked := RankSpots(spots)

	ids := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "c", spots[0].ID, "input order untouched")
}

func TestClassifySpot(t *testing.T) {
	assert.Equal(t, SpotExecutive, ClassifySpot("P-12 EXC"))
	assert.Equal(t, SpotExecutive, ClassifySpot("Excellent spot"))
	assert.Equal(t, SpotRegular, ClassifySpot("P-07"))
	assert.Equal(t, SpotRegular, ClassifySpot(""))
}
