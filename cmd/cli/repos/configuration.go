package repos

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/lasso/internal/report"
)

const (
	registryConfigurationKeyConstant          = "registry"
	executionConfigurationKeyConstant         = "execution"
	outputConfigurationKeyConstant            = "output"
	registryPathKeyConstant                   = "path"
	executionParallelismKeyConstant           = "parallelism"
	executionTimeoutKeyConstant               = "timeout"
	executionGitExecutableKeyConstant         = "git_executable"
	outputFormatKeyConstant                   = "format"
	outputCommandFormatKeyConstant            = "command_format"
	configurationKeySeparatorConstant         = "."
	defaultGitExecutableConstant              = "git"
	defaultRegistryDirectoryNameConstant      = "lasso"
	defaultRegistryFileNameConstant           = "registry.yaml"
	fallbackRegistryPathConstant              = "~/.config/lasso/registry.yaml"
	defaultExecutionParallelismConstant       = 0
	defaultExecutionTimeoutConstant           = time.Duration(0)
	minimumConfiguredParallelismValueConstant = 0
)

// Configuration captures the registry, execution, and output sections shared by repository commands.
type Configuration struct {
	Registry  RegistryConfiguration  `mapstructure:"registry"`
	Execution ExecutionConfiguration `mapstructure:"execution"`
	Output    OutputConfiguration    `mapstructure:"output"`
}

// RegistryConfiguration locates the registry file.
type RegistryConfiguration struct {
	Path string `mapstructure:"path"`
}

// ExecutionConfiguration bounds how repository tasks run.
type ExecutionConfiguration struct {
	Parallelism   int           `mapstructure:"parallelism"`
	Timeout       time.Duration `mapstructure:"timeout"`
	GitExecutable string        `mapstructure:"git_executable"`
}

// OutputConfiguration selects the default report formats for status reports and command runs.
type OutputConfiguration struct {
	Format        string `mapstructure:"format"`
	CommandFormat string `mapstructure:"command_format"`
}

// DefaultConfiguration returns baseline configuration values for repository commands.
func DefaultConfiguration(userConfigurationDirectory string) Configuration {
	return Configuration{
		Registry: RegistryConfiguration{Path: defaultRegistryPath(userConfigurationDirectory)},
		Execution: ExecutionConfiguration{
			Parallelism:   defaultExecutionParallelismConstant,
			Timeout:       defaultExecutionTimeoutConstant,
			GitExecutable: defaultGitExecutableConstant,
		},
		Output: OutputConfiguration{Format: string(report.FormatTable), CommandFormat: string(report.FormatPlain)},
	}
}

// DefaultConfigurationValues produces Viper defaults for repository commands.
func DefaultConfigurationValues(userConfigurationDirectory string) map[string]any {
	defaults := DefaultConfiguration(userConfigurationDirectory)
	return map[string]any{
		configurationKey(registryConfigurationKeyConstant, registryPathKeyConstant):            defaults.Registry.Path,
		configurationKey(executionConfigurationKeyConstant, executionParallelismKeyConstant):   defaults.Execution.Parallelism,
		configurationKey(executionConfigurationKeyConstant, executionTimeoutKeyConstant):       defaults.Execution.Timeout.String(),
		configurationKey(executionConfigurationKeyConstant, executionGitExecutableKeyConstant): defaults.Execution.GitExecutable,
		configurationKey(outputConfigurationKeyConstant, outputFormatKeyConstant):              defaults.Output.Format,
		configurationKey(outputConfigurationKeyConstant, outputCommandFormatKeyConstant):       defaults.Output.CommandFormat,
	}
}

// sanitize normalizes configured values and restores defaults for blank or invalid entries.
func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Registry.Path = strings.TrimSpace(configuration.Registry.Path)
	if len(sanitized.Registry.Path) == 0 {
		sanitized.Registry.Path = fallbackRegistryPathConstant
	}
	if sanitized.Execution.Parallelism < minimumConfiguredParallelismValueConstant {
		sanitized.Execution.Parallelism = defaultExecutionParallelismConstant
	}
	if sanitized.Execution.Timeout < 0 {
		sanitized.Execution.Timeout = defaultExecutionTimeoutConstant
	}
	sanitized.Execution.GitExecutable = strings.TrimSpace(configuration.Execution.GitExecutable)
	if len(sanitized.Execution.GitExecutable) == 0 {
		sanitized.Execution.GitExecutable = defaultGitExecutableConstant
	}
	sanitized.Output.Format = strings.TrimSpace(configuration.Output.Format)
	if len(sanitized.Output.Format) == 0 {
		sanitized.Output.Format = string(report.FormatTable)
	}
	sanitized.Output.CommandFormat = strings.TrimSpace(configuration.Output.CommandFormat)
	if len(sanitized.Output.CommandFormat) == 0 {
		sanitized.Output.CommandFormat = string(report.FormatPlain)
	}
	return sanitized
}

func defaultRegistryPath(userConfigurationDirectory string) string {
	trimmedDirectory := strings.TrimSpace(userConfigurationDirectory)
	if len(trimmedDirectory) == 0 {
		return fallbackRegistryPathConstant
	}
	return filepath.Join(trimmedDirectory, defaultRegistryDirectoryNameConstant, defaultRegistryFileNameConstant)
}

func configurationKey(segments ...string) string {
	return strings.Join(segments, configurationKeySeparatorConstant)
}
