package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		raw  string
		want Type
	}{
		{"COASTLINE", Pending{Category: CategoryCoastline, Raw: "COASTLINE"}},
		{"CONTOURS_x2F_BROWN", Pending{Category: CategoryContour, Raw: "CONTOURS_x2F_BROWN"}},
		{"STREAMS", Pending{Category: CategoryStream, Raw: "STREAMS"}},
		{"COASTLINE/tmp-lake", Pending{Category: CategoryLake, Raw: "COASTLINE/tmp-lake"}},
		{"PEAK", Pending{Category: CategoryPeak, Raw: "PEAK"}},
		{"TOWNS_x2F_KEEP", Pending{Category: CategorySettlement, Raw: "TOWNS_x2F_KEEP"}},
		{"HEIGHT_4500", Pending{Category: CategoryElevationLabel, Raw: "HEIGHT_4500"}},
		{"FOREST", Pending{Category: CategoryVegetation, Raw: "FOREST"}},
		{"4500", Elevation{Meters: 4500}},
		{"0", Elevation{Meters: 0}},
		{"LAKE", Lake{}},
		{"BROKENLAKE", Lake{Broken: true}},
		{"Lake/test", Lake{Name: "test"}},
		{"Lake/Arain/4180", Lake{Name: "Arain", Surface: 4180}},
		{"River/2/Mouth:end", Mouth{Level: 2, Side: End}},
		{"VEG/SNOW_x2F_ICE", Vegetation{Class: "SNOW_x2F_ICE"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseType(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestParseTypeInvalid(t *testing.T) {
	for _, raw := range []string{"River/x/Mouth:start", "River/1/Mouth:left", "River/1", "Lake/", "Lake/a/b"} {
		_, err := ParseType(raw)
		var invalid *ErrInvalidType
		assert.ErrorAs(t, err, &invalid, raw)
	}
}

func TestElevationLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"HEIGHT_4500", 4500, true},
		{"HEIGHT_1000", 1000, true},
		{"x_500", 500, true},
		{"HEIGHT_4510", 0, false},
		{"PEAK", 0, false},
	}

	for _, tt := range tests {
		got, ok := ElevationLabel(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsShore(Elevation{}))
	assert.False(t, IsShore(Elevation{Meters: 500}))
	assert.True(t, IsLakeBody(Lake{Broken: true}))
	assert.True(t, IsLakeBody(MustParseType(TmpLake)))
	assert.False(t, IsLakeBody(MustParseType("LAKES")))
	assert.True(t, IsPending(MustParseType("CONTOURS"), CategoryContour))
	assert.False(t, IsPending(MustParseType("CONTOURS"), CategoryStream))
	assert.False(t, IsPending(Elevation{Meters: 500}))

	e, ok := ElevationOf(MustParseType("HEIGHT_3500"))
	assert.True(t, ok)
	assert.Equal(t, 3500, e)

	assert.Equal(t, End, Start.Other())
	assert.Equal(t, -1, End.Index())
}
