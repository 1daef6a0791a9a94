package gfx

import (
	"errors"
	"fmt"
)

// ErrInitialization marks every failure to bring up the rendering device or
// its shader program. These failures are fatal: nothing can be drawn without them.
var ErrInitialization = errors.New("graphics initialization failed")

// InitError records which step of pipeline setup failed.
type InitError struct {
	Op  string // "window", "gl", "compile", "link", "vao"
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrInitialization, e.Op, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrInitialization for any InitError.
func (e *InitError) Is(target error) bool { return target == ErrInitialization }

// Fatal is always true. The visual subsystem cannot run in a degraded mode.
func (e *InitError) Fatal() bool { return true }

func initErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InitError
	if errors.As(err, &ie) {
		return err
	}
	return &InitError{Op: op, Err: err}
}
