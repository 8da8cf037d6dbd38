package solver

import "errors"

// ErrSingularSystem indicates the stencil system could not be solved at
// the chosen discretisation: degenerate coefficients at assembly, or a
// breakdown / failure to converge in the iterative solve.
var ErrSingularSystem = errors.New("solver: singular system")
