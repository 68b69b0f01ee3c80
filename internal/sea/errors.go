package sea

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingNoise means the wave config has no noise source.
	ErrMissingNoise = errors.New("noise source is not set")
	// ErrZeroMeshBounds means the base mesh has no planar area.
	ErrZeroMeshBounds = errors.New("mesh bounds have zero width or depth")
	// ErrZeroGrid means the compute grid has a zero dimension.
	ErrZeroGrid = errors.New("compute grid has a zero dimension")
	// ErrSampleOutOfRange is returned by samplers for positions outside the patch.
	ErrSampleOutOfRange = errors.New("position is outside the simulated patch")

	ErrNotStarted = errors.New("session is not started")
	ErrStopped    = errors.New("session is stopped")
)

// ConfigError reports a fatal configuration problem found at initialization.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sea config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}
