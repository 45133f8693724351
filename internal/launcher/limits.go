package launcher

import (
	"fmt"

	"github.com/sempr/run-constrained/internal/profile"
)

// Tighten returns the hard limit to install given the one already in
// place. Limits only ever go down.
func Tighten(existing, target uint64) uint64 {
	return min(existing, target)
}

// tightenLimits installs every ceiling with soft == hard. Nothing is
// loosened: an inherited hard limit below the target is kept.
func tightenLimits(sys System, ceilings []profile.Ceiling) error {
	for _, c := range ceilings {
		existing, err := sys.GetLimit(c.Resource)
		if err != nil {
			return stepError(ErrResource, "getrlimit", fmt.Errorf("%s: %w", c.Resource, err))
		}
		hard := Tighten(existing, c.Max)
		if err := sys.SetLimit(c.Resource, hard, hard); err != nil {
			return stepError(ErrResource, "setrlimit", fmt.Errorf("%s to %d: %w", c.Resource, hard, err))
		}
	}
	return nil
}
