package repos

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/orchestrator"
	"github.com/temirov/lasso/internal/report"
	flagutils "github.com/temirov/lasso/internal/utils/flags"
)

const (
	fetchUseConstant      = "fetch"
	fetchShortDescription = "Fetch every repository in the context concurrently"
	fetchLongDescription  = "fetch runs git fetch in every repository of the current context concurrently, showing live progress on a terminal."
	fetchGitSubcommand    = "fetch"
	pullUseConstant       = "pull"
	pullShortDescription  = "Pull every repository in the context concurrently"
	pullLongDescription   = "pull runs git pull in every repository of the current context concurrently, showing live progress on a terminal."
	pullGitSubcommand     = "pull"
	gitUseConstant        = "git <arguments...>"
	gitShortDescription   = "Run a git command in every repository of the context"
	gitLongDescription    = "git runs the given git arguments in every repository of the current context, one repository at a time, streaming each repository's output while it runs. Flags after the first git argument are passed to git."
	gitPlanNameConstant   = "git"
	execUseConstant       = "exec [--parallel] -- <program> [arguments...]"
	execShortDescription  = "Run an arbitrary program in every repository of the context"
	execLongDescription   = "exec runs the given program in every repository of the current context, serially by default or concurrently with --parallel. Flags after the program name are passed to the program."
	execPlanNameConstant  = "exec"
)

// GitActionCommandBuilder assembles a command that runs one fixed git action concurrently, such as fetch or pull.
type GitActionCommandBuilder struct {
	Dependencies Dependencies
	Use          string
	Short        string
	Long         string
	GitArguments []string
}

// NewFetchCommandBuilder returns the builder for the fetch command.
func NewFetchCommandBuilder(dependencySet Dependencies) *GitActionCommandBuilder {
	return &GitActionCommandBuilder{Dependencies: dependencySet, Use: fetchUseConstant, Short: fetchShortDescription, Long: fetchLongDescription, GitArguments: []string{fetchGitSubcommand}}
}

// NewPullCommandBuilder returns the builder for the pull command.
func NewPullCommandBuilder(dependencySet Dependencies) *GitActionCommandBuilder {
	return &GitActionCommandBuilder{Dependencies: dependencySet, Use: pullUseConstant, Short: pullShortDescription, Long: pullLongDescription, GitArguments: []string{pullGitSubcommand}}
}

// Build constructs the git action command.
func (builder *GitActionCommandBuilder) Build() (*cobra.Command, error) {
	commandSpec, specError := execshell.NewGitOperation(builder.GitArguments...)
	if specError != nil {
		return nil, specError
	}

	command := &cobra.Command{
		Use:   builder.Use,
		Short: builder.Short,
		Long:  builder.Long,
		Args:  cobra.NoArgs,
	}
	flagValues := flagutils.BindRunFlags(command, flagutils.RunFlagValues{}, runFlagDefinitions(false, true))
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return runCommandSpec(command, builder.Dependencies, flagValues, commandSpec, command.Name(), true)
	}
	return command, nil
}

// GitCommandBuilder assembles the git passthrough command.
type GitCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the git command.
func (builder *GitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   gitUseConstant,
		Short: gitShortDescription,
		Long:  gitLongDescription,
	}
	command.Flags().SetInterspersed(false)
	flagValues := flagutils.BindRunFlags(command, flagutils.RunFlagValues{}, runFlagDefinitions(true, true))
	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) == 0 {
			_ = displayCommandHelp(command)
			return errMissingArguments
		}
		commandSpec, specError := execshell.NewGitOperation(arguments...)
		if specError != nil {
			return specError
		}
		return runCommandSpec(command, builder.Dependencies, flagValues, commandSpec, gitPlanNameConstant, false)
	}
	return command, nil
}

// ExecCommandBuilder assembles the exec command.
type ExecCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the exec command.
func (builder *ExecCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   execUseConstant,
		Short: execShortDescription,
		Long:  execLongDescription,
	}
	command.Flags().SetInterspersed(false)
	flagValues := flagutils.BindRunFlags(command, flagutils.RunFlagValues{}, runFlagDefinitions(true, true))
	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) == 0 {
			_ = displayCommandHelp(command)
			return errMissingArguments
		}
		commandSpec, specError := execshell.NewArbitraryCommand(arguments[0], arguments[1:]...)
		if specError != nil {
			return specError
		}
		return runCommandSpec(command, builder.Dependencies, flagValues, commandSpec, execPlanNameConstant, false)
	}
	return command, nil
}

func runCommandSpec(command *cobra.Command, dependencySet Dependencies, flagValues *flagutils.RunFlagValues, commandSpec execshell.CommandSpec, planName string, concurrent bool) error {
	environment, environmentError := dependencySet.prepare()
	if environmentError != nil {
		return environmentError
	}

	repositoryRegistry, loadError := environment.loadRegistry()
	if loadError != nil {
		return loadError
	}
	if len(repositoryRegistry.Repositories) == 0 {
		announceEmptyRegistry(command)
		return nil
	}

	mergedFlags := environment.mergeRunFlags(command, flagValues, environment.configuration.Output.CommandFormat)

	taskRunner, taskRunnerError := environment.newTaskRunner()
	if taskRunnerError != nil {
		return taskRunnerError
	}
	commandTask, taskError := orchestrator.NewCommandTask(taskRunner, commandSpec, mergedFlags.Timeout)
	if taskError != nil {
		return taskError
	}

	liveTask := func(outputSink io.Writer, errorSink io.Writer) (orchestrator.Task, error) {
		liveTaskRunner, liveRunnerError := environment.newTaskRunner(execshell.WithLiveOutput(outputSink, errorSink))
		if liveRunnerError != nil {
			return nil, liveRunnerError
		}
		return orchestrator.NewCommandTask(liveTaskRunner, commandSpec, mergedFlags.Timeout)
	}

	return environment.run(command, repositoryRegistry, runPlan{
		name:        planName,
		task:        commandTask,
		liveTask:    liveTask,
		kind:        report.KindCommand,
		concurrent:  concurrent,
		flagValues:  mergedFlags,
		contextLine: true,
		progress:    true,
	})
}
