package landmark

import (
	"errors"
	"fmt"
)

// ErrContractViolation is matched by every error the detector returns. It
// signals a wiring defect between the frame producer and the detector.
var ErrContractViolation = errors.New("landmark: contract violation")

// ContractError describes which contract was broken.
type ContractError struct {
	Op    string // "new" or "process"
	Field string
	Got   int
	Want  string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("landmark %s: %s must be %s: %d", e.Op, e.Field, e.Want, e.Got)
}

// Unwrap lets errors.Is match ErrContractViolation.
func (e *ContractError) Unwrap() error { return ErrContractViolation }
