// Package execshell runs external processes on behalf of the orchestration engine.
//
// CommandSpec is the closed set of operations (git operation or arbitrary program),
// CommandRunner is the process boundary with OSCommandRunner as the os/exec implementation,
// and TaskRunner turns one invocation into exactly one TaskOutcome: Completed, SpawnFailed,
// TimedOut, or Cancelled. CommandEventObserver receives lifecycle notifications.
package execshell
