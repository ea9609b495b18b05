package execshell

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	commandSpecStringSeparatorConstant   = " "
	nulCharacterConstant                 = "\x00"
	invalidArgumentErrorTemplateConstant = "%w: argument %d contains a NUL byte"
	invalidProgramErrorTemplateConstant  = "%w: %q"
)

// CommandName identifies an executable.
type CommandName string

// CommandGit is the default git executable name.
const CommandGit CommandName = "git"

// CommandKind distinguishes the closed set of operation kinds a CommandSpec may carry.
type CommandKind string

// Supported command kinds.
const (
	CommandKindGitOperation     CommandKind = "git"
	CommandKindArbitraryCommand CommandKind = "program"
)

var (
	// ErrGitArgumentsRequired indicates a git operation was constructed without any arguments.
	ErrGitArgumentsRequired = errors.New("git operation requires at least one argument")
	// ErrProgramRequired indicates an arbitrary command was constructed without a program.
	ErrProgramRequired = errors.New("command requires a program")
	// ErrInvalidArgument indicates an argument cannot be passed to a process.
	ErrInvalidArgument = errors.New("invalid command argument")
)

// CommandSpec describes the operation executed in every targeted repository.
// Values are immutable and safe to share between concurrent tasks.
type CommandSpec struct {
	kind      CommandKind
	program   string
	arguments []string
}

// NewGitOperation builds a CommandSpec that runs git with the provided arguments.
func NewGitOperation(arguments ...string) (CommandSpec, error) {
	if len(arguments) == 0 || len(strings.TrimSpace(arguments[0])) == 0 {
		return CommandSpec{}, ErrGitArgumentsRequired
	}
	if validationError := validateArguments(arguments); validationError != nil {
		return CommandSpec{}, validationError
	}
	return CommandSpec{kind: CommandKindGitOperation, program: string(CommandGit), arguments: append([]string{}, arguments...)}, nil
}

// NewArbitraryCommand builds a CommandSpec that runs program with the provided arguments.
func NewArbitraryCommand(program string, arguments ...string) (CommandSpec, error) {
	if len(strings.TrimSpace(program)) == 0 {
		return CommandSpec{}, ErrProgramRequired
	}
	if strings.Contains(program, nulCharacterConstant) {
		return CommandSpec{}, fmt.Errorf(invalidProgramErrorTemplateConstant, ErrInvalidArgument, program)
	}
	if validationError := validateArguments(arguments); validationError != nil {
		return CommandSpec{}, validationError
	}
	return CommandSpec{kind: CommandKindArbitraryCommand, program: program, arguments: append([]string{}, arguments...)}, nil
}

func validateArguments(arguments []string) error {
	for argumentIndex, argument := range arguments {
		if strings.Contains(argument, nulCharacterConstant) {
			return fmt.Errorf(invalidArgumentErrorTemplateConstant, ErrInvalidArgument, argumentIndex)
		}
	}
	return nil
}

// Kind reports which operation kind the spec carries.
func (spec CommandSpec) Kind() CommandKind {
	return spec.kind
}

// Program returns the executable name. Git operations report the default git executable.
func (spec CommandSpec) Program() string {
	return spec.program
}

// Arguments returns a copy of the argument vector.
func (spec CommandSpec) Arguments() []string {
	return append([]string{}, spec.arguments...)
}

// IsZero reports whether the spec was never constructed.
func (spec CommandSpec) IsZero() bool {
	return len(spec.kind) == 0
}

// String renders the spec as a space-separated command line for display.
func (spec CommandSpec) String() string {
	parts := append([]string{spec.program}, spec.arguments...)
	return strings.Join(parts, commandSpecStringSeparatorConstant)
}

// CommandDetails describes the arguments and environment for a process invocation.
// OutputSink and ErrorSink, when set, receive the process output while it runs in addition to the capture.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	OutputSink           io.Writer
	ErrorSink            io.Writer
}

// ShellCommand is a fully resolved process invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the output of a process that ran to exit.
type ExecutionResult struct {
	StandardOutput []byte
	StandardError  []byte
	ExitCode       int
}
