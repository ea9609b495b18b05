package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/lasso/internal/orchestrator"
	"github.com/temirov/lasso/internal/report"
	"github.com/temirov/lasso/internal/status"
	flagutils "github.com/temirov/lasso/internal/utils/flags"
)

const (
	statusUseConstant      = "status"
	statusShortDescription = "Show branch, working tree, and upstream state of every repository in the context"
	statusLongDescription  = "status queries every repository in the current context concurrently and prints one row per repository in registry order. It is also the default command."
	statusPlanNameConstant = "status"
)

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortDescription,
		Long:  statusLongDescription,
		Args:  cobra.NoArgs,
	}
	builder.Bind(command)
	return command, nil
}

// Bind attaches the status flags and run function to command. The root command uses it so that
// invoking the binary without a subcommand prints the status table.
func (builder *StatusCommandBuilder) Bind(command *cobra.Command) {
	flagValues := flagutils.BindRunFlags(command, flagutils.RunFlagValues{}, runFlagDefinitions(false, true))
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues)
	}
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, flagValues *flagutils.RunFlagValues) error {
	environment, environmentError := builder.Dependencies.prepare()
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

	mergedFlags := environment.mergeRunFlags(command, flagValues, environment.configuration.Output.Format)

	taskRunner, taskRunnerError := environment.newTaskRunner()
	if taskRunnerError != nil {
		return taskRunnerError
	}
	classifier, classifierError := status.NewClassifier(environment.logger, taskRunner, mergedFlags.Timeout)
	if classifierError != nil {
		return classifierError
	}
	statusTask, taskError := orchestrator.NewStatusTask(classifier)
	if taskError != nil {
		return taskError
	}

	return environment.run(command, repositoryRegistry, runPlan{
		name:        statusPlanNameConstant,
		task:        statusTask,
		kind:        report.KindStatus,
		concurrent:  true,
		flagValues:  mergedFlags,
		contextLine: true,
	})
}
