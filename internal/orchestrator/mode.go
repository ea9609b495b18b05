package orchestrator

import (
	"errors"
	"fmt"
	"runtime"
)

const (
	serialModeDescriptionConstant           = "serial"
	concurrentModeDescriptionTemplate       = "concurrent(%d)"
	invalidParallelismErrorTemplateConstant = "%w: %d"
)

// ErrInvalidParallelism indicates a negative parallelism limit.
var ErrInvalidParallelism = errors.New("parallelism must not be negative")

// ModeKind distinguishes serial and concurrent execution.
type ModeKind string

// Supported execution mode kinds.
const (
	ModeSerial     ModeKind = "serial"
	ModeConcurrent ModeKind = "concurrent"
)

// ExecutionMode controls how many tasks run at once.
type ExecutionMode struct {
	kind           ModeKind
	maxParallelism int
}

// NewSerialMode runs tasks one at a time in resolution order.
func NewSerialMode() ExecutionMode {
	return ExecutionMode{kind: ModeSerial, maxParallelism: 1}
}

// NewConcurrentMode runs up to maxParallelism tasks at once. Zero selects the number of logical CPUs.
func NewConcurrentMode(maxParallelism int) (ExecutionMode, error) {
	if maxParallelism < 0 {
		return ExecutionMode{}, fmt.Errorf(invalidParallelismErrorTemplateConstant, ErrInvalidParallelism, maxParallelism)
	}
	if maxParallelism == 0 {
		maxParallelism = runtime.NumCPU()
	}
	return ExecutionMode{kind: ModeConcurrent, maxParallelism: maxParallelism}, nil
}

// Kind returns the mode kind. The zero ExecutionMode behaves as serial.
func (mode ExecutionMode) Kind() ModeKind {
	if mode.kind == ModeConcurrent {
		return ModeConcurrent
	}
	return ModeSerial
}

// MaxParallelism returns the upper bound of in-flight tasks.
func (mode ExecutionMode) MaxParallelism() int {
	if mode.Kind() == ModeSerial || mode.maxParallelism < 1 {
		return 1
	}
	return mode.maxParallelism
}

// String describes the mode for logs.
func (mode ExecutionMode) String() string {
	if mode.Kind() == ModeSerial {
		return serialModeDescriptionConstant
	}
	return fmt.Sprintf(concurrentModeDescriptionTemplate, mode.MaxParallelism())
}
