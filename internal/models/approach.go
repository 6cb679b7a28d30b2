package models

import (
	"fmt"
	"strings"
	"time"
)

// Time layouts used by the close-approach data and by rendered output
const (
	ApproachTimeLayout = "2006-Jan-02 15:04"
	DisplayTimeLayout  = "2006-01-02 15:04"
)

// CloseApproach represents one recorded pass of an NEO near Earth
type CloseApproach struct {
	// Designation is the linkage key matched against NearEarthObject.Designation.
	// It is not guaranteed to resolve.
	Designation string
	Time        time.Time // UTC
	Distance    float64   // Nominal approach distance in au
	Velocity    float64   // Relative approach velocity in km/s

	// NEO is set by the database when the approach is linked and stays nil otherwise
	NEO *NearEarthObject
}

// ParseApproachTime parses a calendar date-time in the close-approach data format as UTC
func ParseApproachTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(ApproachTimeLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid approach time %q: %w", raw, err)
	}
	return t, nil
}

// Date returns the calendar date of the approach at midnight UTC
func (a *CloseApproach) Date() time.Time {
	y, m, d := a.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TimeString returns the approach time formatted for display
func (a *CloseApproach) TimeString() string {
	return a.Time.UTC().Format(DisplayTimeLayout)
}

// Linked reports whether the approach resolved to an NEO
func (a *CloseApproach) Linked() bool {
	return a.NEO != nil
}

func (a *CloseApproach) String() string {
	name := a.Designation
	if a.NEO != nil {
		name = a.NEO.FullName()
	}
	return fmt.Sprintf("On %s, '%s' approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		a.TimeString(), name, a.Distance, a.Velocity)
}
