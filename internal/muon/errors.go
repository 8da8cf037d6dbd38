package muon

import "errors"

var (
	// ErrMissedChamber indicates the muon's path never intersects the
	// chamber cross-section.
	ErrMissedChamber = errors.New("muon: path misses the chamber")

	// ErrPlaneTooLow indicates the generation plane sits below the top of
	// the chamber, so muons could start inside the gas volume.
	ErrPlaneTooLow = errors.New("muon: generation plane below chamber top")
)
