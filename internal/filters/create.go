package filters

import "time"

// Options holds the optional bounds supplied by the user. A nil field means no constraint.
type Options struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time

	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64

	// Hazardous is tri-state: nil matches either, otherwise the flag must equal *Hazardous
	Hazardous *bool
}

// Create returns one filter per bound set in opts
func Create(opts Options) []Filter {
	var fs []Filter

	if opts.DistanceMin != nil {
		fs = append(fs, Distance(OpGE, *opts.DistanceMin))
	}
	if opts.DistanceMax != nil {
		fs = append(fs, Distance(OpLE, *opts.DistanceMax))
	}
	if opts.VelocityMin != nil {
		fs = append(fs, Velocity(OpGE, *opts.VelocityMin))
	}
	if opts.VelocityMax != nil {
		fs = append(fs, Velocity(OpLE, *opts.VelocityMax))
	}
	if opts.DiameterMin != nil {
		fs = append(fs, Diameter(OpGE, *opts.DiameterMin))
	}
	if opts.DiameterMax != nil {
		fs = append(fs, Diameter(OpLE, *opts.DiameterMax))
	}
	if opts.Hazardous != nil {
		fs = append(fs, Hazardous(OpEQ, *opts.Hazardous))
	}
	if opts.Date != nil {
		fs = append(fs, Date(OpEQ, *opts.Date))
	}
	if opts.StartDate != nil {
		fs = append(fs, Date(OpGE, *opts.StartDate))
	}
	if opts.EndDate != nil {
		fs = append(fs, Date(OpLE, *opts.EndDate))
	}

	return fs
}
