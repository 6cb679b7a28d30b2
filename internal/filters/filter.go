// Package filters builds predicates over close approaches from user criteria
// and evaluates them lazily.
package filters

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"time"

	"neo_explorer/internal/models"
)

// Kind selects the attribute a filter extracts from an approach
type Kind int

const (
	KindDistance Kind = iota + 1
	KindVelocity
	KindDiameter
	KindHazardous
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindDistance:
		return "DistanceFilter"
	case KindVelocity:
		return "VelocityFilter"
	case KindDiameter:
		return "DiameterFilter"
	case KindHazardous:
		return "HazardousFilter"
	case KindDate:
		return "DateFilter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op compares the extracted value (left) with the reference value (right)
type Op int

const (
	OpEQ Op = iota + 1
	OpLE
	OpGE
)

func (o Op) String() string {
	switch o {
	case OpEQ:
		return "eq"
	case OpLE:
		return "le"
	case OpGE:
		return "ge"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// UnsupportedCriterionError reports a filter whose kind or operator has no evaluation rule
type UnsupportedCriterionError struct {
	Kind Kind
	Op   Op
}

func (e *UnsupportedCriterionError) Error() string {
	return fmt.Sprintf("unsupported filter criterion: kind=%s op=%s", e.Kind, e.Op)
}

// Filter is a unary predicate over a close approach. The zero value is invalid.
type Filter struct {
	kind Kind
	op   Op

	number float64   // distance, velocity, diameter
	flag   bool      // hazardous
	date   time.Time // date, midnight UTC
}

// Distance matches on the nominal approach distance in au
func Distance(op Op, au float64) Filter {
	return Filter{kind: KindDistance, op: op, number: au}
}

// Velocity matches on the relative approach velocity in km/s
func Velocity(op Op, kms float64) Filter {
	return Filter{kind: KindVelocity, op: op, number: kms}
}

// Diameter matches on the linked NEO's diameter in km
func Diameter(op Op, km float64) Filter {
	return Filter{kind: KindDiameter, op: op, number: km}
}

// Hazardous matches on the linked NEO's hazardous flag
func Hazardous(op Op, hazardous bool) Filter {
	return Filter{kind: KindHazardous, op: op, flag: hazardous}
}

// Date matches on the calendar date of the approach. The time of day of d is ignored.
func Date(op Op, d time.Time) Filter {
	y, m, day := d.Date()
	return Filter{kind: KindDate, op: op, date: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

// Kind returns the attribute the filter inspects
func (f Filter) Kind() Kind { return f.kind }

// Op returns the comparison operator
func (f Filter) Op() Op { return f.op }

// Validate returns an *UnsupportedCriterionError if f cannot be evaluated
func (f Filter) Validate() error {
	switch f.kind {
	case KindDistance, KindVelocity, KindDiameter, KindHazardous, KindDate:
	default:
		return &UnsupportedCriterionError{Kind: f.kind, Op: f.op}
	}
	switch f.op {
	case OpEQ, OpLE, OpGE:
	default:
		return &UnsupportedCriterionError{Kind: f.kind, Op: f.op}
	}
	return nil
}

// Match evaluates the filter against an approach.
//
// NEO-derived kinds never match an unlinked approach, and an unknown (NaN)
// value never matches any bound. Match panics with *UnsupportedCriterionError
// when the filter is invalid.
func (f Filter) Match(a *models.CloseApproach) bool {
	if err := f.Validate(); err != nil {
		panic(err)
	}

	c, ok := f.compare(a)
	if !ok {
		return false
	}

	switch f.op {
	case OpEQ:
		return c == 0
	case OpLE:
		return c <= 0
	default:
		return c >= 0
	}
}

// compare extracts the attribute from a and orders it against the reference value.
// ok is false when the attribute is unavailable.
func (f Filter) compare(a *models.CloseApproach) (c int, ok bool) {
	switch f.kind {
	case KindDistance:
		return compareNumber(a.Distance, f.number)
	case KindVelocity:
		return compareNumber(a.Velocity, f.number)
	case KindDiameter:
		if a.NEO == nil {
			return 0, false
		}
		return compareNumber(a.NEO.Diameter, f.number)
	case KindHazardous:
		if a.NEO == nil {
			return 0, false
		}
		return compareBool(a.NEO.Hazardous, f.flag), true
	case KindDate:
		return a.Date().Compare(f.date), true
	}
	return 0, false
}

func compareNumber(x, ref float64) (int, bool) {
	if math.IsNaN(x) || math.IsNaN(ref) {
		return 0, false
	}
	return cmp.Compare(x, ref), true
}

// compareBool orders false before true
func compareBool(x, ref bool) int {
	switch {
	case x == ref:
		return 0
	case ref:
		return -1
	default:
		return 1
	}
}

func (f Filter) String() string {
	var value string
	switch f.kind {
	case KindHazardous:
		value = strconv.FormatBool(f.flag)
	case KindDate:
		value = f.date.Format(time.DateOnly)
	default:
		value = strconv.FormatFloat(f.number, 'g', -1, 64)
	}
	return fmt.Sprintf("%s(op=%s, value=%s)", f.kind, f.op, value)
}

// MatchAll reports whether every filter matches a. An empty set matches everything.
func MatchAll(fs []Filter, a *models.CloseApproach) bool {
	for _, f := range fs {
		if !f.Match(a) {
			return false
		}
	}
	return true
}
