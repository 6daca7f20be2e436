// Package gps derives the recording timezone from GPS coordinates so
// that "today's counts" roll over at the day boundary where the data
// was collected, not where a device thinks it is.
package gps

import "time"

// DefaultZone is used when no fix is available. The farms this tool was
// built for are in Ecuador.
const DefaultZone = "America/Guayaquil"

// Coordinates is a GPS fix.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type zoneBand struct {
	min, max float64
	name     string
}

// Rough longitude bands. Enough to pick a sane day boundary; a proper
// timezone lookup would need a shapefile database.
var zoneBands = []zoneBand{
	{-180, -157.5, "Pacific/Midway"},
	{-157.5, -142.5, "Pacific/Honolulu"},
	{-142.5, -127.5, "America/Anchorage"},
	{-127.5, -112.5, "America/Los_Angeles"},
	{-112.5, -97.5, "America/Denver"},
	{-97.5, -82.5, "America/Chicago"},
	{-82.5, -67.5, "America/New_York"},
	{-67.5, -52.5, "America/Caracas"},
	{-52.5, -37.5, "America/Sao_Paulo"},
	{-37.5, -22.5, "Atlantic/South_Georgia"},
	{-22.5, -7.5, "Atlantic/Azores"},
	{-7.5, 7.5, "Europe/London"},
	{7.5, 22.5, "Europe/Paris"},
	{22.5, 37.5, "Europe/Athens"},
	{37.5, 52.5, "Europe/Moscow"},
	{52.5, 67.5, "Asia/Yekaterinburg"},
	{67.5, 82.5, "Asia/Dhaka"},
	{82.5, 97.5, "Asia/Bangkok"},
	{97.5, 112.5, "Asia/Hong_Kong"},
	{112.5, 127.5, "Asia/Tokyo"},
	{127.5, 142.5, "Australia/Sydney"},
	{142.5, 157.5, "Pacific/Guadalcanal"},
	{157.5, 172.5, "Pacific/Fiji"},
	{172.5, 180, "Pacific/Tongatapu"},
}

// ZoneName returns the IANA timezone name for a fix. Ecuador is
// special-cased since longitude bands alone would put it in Chicago.
func ZoneName(c *Coordinates) string {
	if c == nil {
		return DefaultZone
	}
	if c.Latitude >= -5 && c.Latitude <= 2 && c.Longitude >= -82 && c.Longitude <= -75 {
		return DefaultZone
	}
	for _, band := range zoneBands {
		if c.Longitude >= band.min && c.Longitude < band.max {
			return band.name
		}
	}
	return DefaultZone
}

// Zone loads the *time.Location for a fix, falling back to the default
// zone and finally UTC if the zone database is unavailable.
func Zone(c *Coordinates) *time.Location {
	if loc, err := time.LoadLocation(ZoneName(c)); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultZone); err == nil {
		return loc
	}
	return time.UTC
}
