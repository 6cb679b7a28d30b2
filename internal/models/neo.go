package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HazardousFlag is the only source value that marks an NEO as potentially hazardous
const HazardousFlag = "Y"

// NearEarthObject represents a single NEO from the small-body database
type NearEarthObject struct {
	Designation string  // Primary designation, unique across the dataset
	Name        string  // IAU name, empty when the object has none
	Diameter    float64 // Diameter in kilometers, NaN when unknown
	Hazardous   bool    // Potentially hazardous asteroid flag

	// Approaches is filled in by the database when approaches are linked
	Approaches []*CloseApproach
}

// NewNearEarthObject builds an NEO from raw source fields, coercing them on a best-effort basis
func NewNearEarthObject(designation, name, diameter, pha string) *NearEarthObject {
	return &NearEarthObject{
		Designation: strings.TrimSpace(designation),
		Name:        strings.TrimSpace(name),
		Diameter:    ParseDiameter(diameter),
		Hazardous:   ParseHazardous(pha),
	}
}

// ParseDiameter converts a raw diameter to kilometers. Empty or malformed input yields NaN.
func ParseDiameter(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return d
}

// ParseHazardous reports whether the raw pha flag marks the object as hazardous
func ParseHazardous(raw string) bool {
	return strings.TrimSpace(raw) == HazardousFlag
}

// HasDiameter reports whether the diameter is known
func (n *NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.Diameter)
}

// FullName returns the designation followed by the name in parentheses, if there is one
func (n *NearEarthObject) FullName() string {
	if n.Name == "" {
		return n.Designation
	}
	return fmt.Sprintf("%s (%s)", n.Designation, n.Name)
}

func (n *NearEarthObject) String() string {
	hazard := "is not"
	if n.Hazardous {
		hazard = "is"
	}
	if !n.HasDiameter() {
		return fmt.Sprintf("NEO %s has an unknown diameter and %s potentially hazardous.", n.FullName(), hazard)
	}
	return fmt.Sprintf("NEO %s has a diameter of %.3f km and %s potentially hazardous.", n.FullName(), n.Diameter, hazard)
}
