package core

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds raised while negotiating the GPU context. Every one of them is
// fatal at startup.
var (
	ErrNoSuitableAdapter            = errors.New("no suitable adapter")
	ErrNoPresentQueue               = errors.New("no present queue")
	ErrLayerUnsupported             = errors.New("validation layer unsupported")
	ErrInstanceExtensionUnsupported = errors.New("instance extension unsupported")
	ErrDeviceExtensionUnsupported   = errors.New("device extension unsupported")
	ErrSurfaceCreation              = errors.New("surface creation failed")
	ErrSurfaceCapabilityQuery       = errors.New("surface capability query failed")
	ErrSwapchainCreation            = errors.New("swapchain creation failed")
	ErrShaderModuleCreation         = errors.New("shader module creation failed")
	ErrPipelineCreation             = errors.New("pipeline creation failed")
	ErrInstanceEnumeration          = errors.New("instance enumeration failed")
	ErrInstanceCreation             = errors.New("instance creation failed")
	ErrDeviceCreation               = errors.New("device creation failed")
)

// StageError reports which startup stage failed, on what, and why.
type StageError struct {
	Stage   string
	Subject string
	Kind    error
	Err     error
}

// NewStageError builds a StageError. The cause may be nil, in which case the
// error only carries the kind.
func NewStageError(stage string, kind error, subject string, cause error) error {
	return &StageError{
		Stage:   stage,
		Subject: subject,
		Kind:    kind,
		Err:     cause,
	}
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	if e.Subject != "" {
		msg += fmt.Sprintf(" (%s)", e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error kind so errors.Is(err, ErrNoPresentQueue) works on
// wrapped stage errors.
func (e *StageError) Is(target error) bool {
	return e.Kind == target
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage name of the first StageError in the chain.
func StageOf(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
