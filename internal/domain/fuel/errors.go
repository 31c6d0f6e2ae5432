package fuel

import (
	"fmt"

	"github.com/fuelops/backend/internal/domain/shared"
)

var (
	ErrMissingHeader      = shared.NewDomainError("INVALID_STATE", "Report date and shift are required before submission")
	ErrNothingToSubmit    = shared.NewDomainError("INVALID_STATE", "Report has no units to submit")
	ErrInvalidUsageSource = shared.NewDomainError("INVALID_INPUT", "Fuel usage source must be flowmeter or report")
	ErrWorkspaceNotFound  = shared.NewDomainError("NOT_FOUND", "Workspace not found")
	ErrUnitNotFound       = shared.NewDomainError("NOT_FOUND", "Unit not found in workspace")
	ErrUnknownField       = shared.NewDomainError("INVALID_INPUT", "Field cannot be edited")
	ErrNotProcessed       = shared.NewDomainError("INVALID_STATE", "Workspace has no processed report")
	ErrInvalidCalibration = shared.NewDomainError("INVALID_INPUT", "Calibration file has invalid rows")
)

// SubmissionError is returned when the stock batch could not be stored.
// Nothing from the batch was committed.
type SubmissionError struct {
	Rows int
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %d stock rows: %v", e.Rows, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// DomainError exposes the error in the shared domain error shape
func (e *SubmissionError) DomainError() *shared.DomainError {
	return shared.NewDomainError(shared.ErrSubmissionFailed.Code, e.Error())
}
