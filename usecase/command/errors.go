package command

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPayload     = errors.New("command payload is null")
	ErrUnknownCommandType = errors.New("unknown command data type")
	ErrMalformedPayload   = errors.New("malformed command payload")
)

// ReconstructionError names the tracker item whose command could not be rebuilt.
// Retrying without fixing the stored data repeats the same failure.
type ReconstructionError struct {
	TrackerID string
	DataType  CommandDataType
	Err       error
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("tracker %s with command data type %q: %v", e.TrackerID, e.DataType, e.Err)
}

func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

// IsReconstructionError reports whether err came out of Reconstruct.
func IsReconstructionError(err error) bool {
	var target *ReconstructionError
	return errors.As(err, &target)
}
