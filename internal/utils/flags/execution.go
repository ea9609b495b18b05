// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// RepositoriesFlagName exposes the ad-hoc repository selection flag name.
	RepositoriesFlagName = "repos"
	// RepositoriesFlagShorthand provides the shorthand for the repository selection flag.
	RepositoriesFlagShorthand = "r"
	// RepositoriesFlagUsage describes the repository selection flag purpose.
	RepositoriesFlagUsage = "Comma separated repository names overriding the current context"
	// ParallelFlagName exposes the concurrent execution flag name.
	ParallelFlagName = "parallel"
	// ParallelFlagShorthand provides the shorthand for the concurrent execution flag.
	ParallelFlagShorthand = "p"
	// ParallelFlagUsage describes the concurrent execution flag purpose.
	ParallelFlagUsage = "Run repositories concurrently"
	// JobsFlagName exposes the parallelism limit flag name.
	JobsFlagName = "jobs"
	// JobsFlagShorthand provides the shorthand for the parallelism limit flag.
	JobsFlagShorthand = "j"
	// JobsFlagUsage describes the parallelism limit flag purpose.
	JobsFlagUsage = "Maximum repositories processed at once (0 uses the CPU count)"
	// TimeoutFlagName exposes the per-repository timeout flag name.
	TimeoutFlagName = "timeout"
	// TimeoutFlagUsage describes the per-repository timeout flag purpose.
	TimeoutFlagUsage = "Per-repository timeout such as 30s or 2m (0 disables)"
	// OutputFlagName exposes the report format flag name.
	OutputFlagName = "output"
	// OutputFlagShorthand provides the shorthand for the report format flag.
	OutputFlagShorthand = "o"
	// OutputFlagDescription describes the report format flag purpose.
	OutputFlagDescription = "Report format."
)

// RunFlagValues stores the values shared by every command that fans out across repositories.
type RunFlagValues struct {
	Repositories []string
	Parallel     bool
	Jobs         int
	Timeout      time.Duration
	Output       string
}

// RunFlagDefinitions selects which run flags a command exposes.
type RunFlagDefinitions struct {
	Repositories  bool
	Parallel      bool
	Jobs          bool
	Timeout       bool
	Output        bool
	OutputChoices []string
}

// BindRunFlags attaches the enabled run flags to the command's local flag set.
// The returned values hold raw flag input; call Merge to overlay them on configured values.
func BindRunFlags(command *cobra.Command, defaults RunFlagValues, definitions RunFlagDefinitions) *RunFlagValues {
	values := RunFlagValues{
		Repositories: cloneNames(defaults.Repositories),
		Parallel:     defaults.Parallel,
		Jobs:         defaults.Jobs,
		Timeout:      defaults.Timeout,
		Output:       defaults.Output,
	}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.Repositories && flagSet.Lookup(RepositoriesFlagName) == nil {
		flagSet.StringSliceVarP(&values.Repositories, RepositoriesFlagName, RepositoriesFlagShorthand, values.Repositories, RepositoriesFlagUsage)
	}
	if definitions.Parallel && flagSet.Lookup(ParallelFlagName) == nil {
		flagSet.BoolVarP(&values.Parallel, ParallelFlagName, ParallelFlagShorthand, values.Parallel, ParallelFlagUsage)
	}
	if definitions.Jobs && flagSet.Lookup(JobsFlagName) == nil {
		flagSet.IntVarP(&values.Jobs, JobsFlagName, JobsFlagShorthand, values.Jobs, JobsFlagUsage)
	}
	if definitions.Timeout && flagSet.Lookup(TimeoutFlagName) == nil {
		flagSet.DurationVar(&values.Timeout, TimeoutFlagName, values.Timeout, TimeoutFlagUsage)
	}
	if definitions.Output && flagSet.Lookup(OutputFlagName) == nil {
		if len(definitions.OutputChoices) > 0 {
			outputUsage := FormatChoiceUsage(values.Output, definitions.OutputChoices, OutputFlagDescription)
			flagSet.VarP(NewChoiceValue(&values.Output, values.Output, definitions.OutputChoices), OutputFlagName, OutputFlagShorthand, outputUsage)
		} else {
			flagSet.StringVarP(&values.Output, OutputFlagName, OutputFlagShorthand, values.Output, OutputFlagDescription)
		}
	}

	return &values
}

// Merge overlays explicitly provided flags on the configured values and returns the result.
// Flags the user did not set leave the configured value untouched.
func (values *RunFlagValues) Merge(command *cobra.Command, configured RunFlagValues) RunFlagValues {
	merged := RunFlagValues{
		Repositories: cloneNames(configured.Repositories),
		Parallel:     configured.Parallel,
		Jobs:         configured.Jobs,
		Timeout:      configured.Timeout,
		Output:       configured.Output,
	}
	if values == nil || command == nil {
		return merged
	}

	flagSet := command.Flags()
	if flagChanged(flagSet, RepositoriesFlagName) {
		merged.Repositories = normalizeRepositoryNames(values.Repositories)
	}
	if flagChanged(flagSet, ParallelFlagName) {
		merged.Parallel = values.Parallel
	}
	if flagChanged(flagSet, JobsFlagName) {
		merged.Jobs = values.Jobs
	}
	if flagChanged(flagSet, TimeoutFlagName) {
		merged.Timeout = values.Timeout
	}
	if flagChanged(flagSet, OutputFlagName) {
		merged.Output = strings.TrimSpace(values.Output)
	}
	return merged
}

func flagChanged(flagSet *pflag.FlagSet, flagName string) bool {
	if flagSet == nil {
		return false
	}
	flag := flagSet.Lookup(flagName)
	return flag != nil && flag.Changed
}

func normalizeRepositoryNames(names []string) []string {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		normalized = append(normalized, trimmedName)
	}
	return normalized
}

func cloneNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	return append([]string{}, names...)
}
