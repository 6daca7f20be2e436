package gps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneName(t *testing.T) {
	cases := []struct {
		name string
		c    *Coordinates
		want string
	}{
		{"no fix", nil, "America/Guayaquil"},
		{"cayambe", &Coordinates{Latitude: 0.04, Longitude: -78.15}, "America/Guayaquil"},
		{"guayaquil coast", &Coordinates{Latitude: -2.2, Longitude: -79.9}, "America/Guayaquil"},
		{"bogota band", &Coordinates{Latitude: 4.7, Longitude: -74.1}, "America/New_York"},
		{"madrid band", &Coordinates{Latitude: 40.4, Longitude: -3.7}, "Europe/London"},
		{"tokyo band", &Coordinates{Latitude: 35.7, Longitude: 139.7}, "Australia/Sydney"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ZoneName(tc.c), tc.name)
	}
}

func TestZoneLoads(t *testing.T) {
	loc := Zone(&Coordinates{Latitude: 0.04, Longitude: -78.15})
	assert.Equal(t, "America/Guayaquil", loc.String())
	assert.NotNil(t, Zone(nil))
}
