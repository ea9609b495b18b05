package execshell

// CommandEventObserver receives lifecycle notifications for every process a TaskRunner starts.
// Observers may be called from several goroutines at once when tasks run concurrently.
type CommandEventObserver interface {
	// CommandStarted is called before the process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted is called when the process exited, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is called when no exit status is available: spawn failure, timeout, or cancellation.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
