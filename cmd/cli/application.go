package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/lasso/cmd/cli/repos"
	"github.com/temirov/lasso/internal/ui"
	"github.com/temirov/lasso/internal/utils"
)

const (
	applicationNameConstant                 = "lasso"
	applicationShortDescriptionConstant     = "Run git and shell commands across a registered set of repositories"
	applicationLongDescriptionConstant      = "lasso keeps a registry of local git repositories and a current context, and runs status queries, git commands, and arbitrary programs across the selected repositories serially or concurrently. Without a subcommand it prints the status of every repository in the context."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the lasso version and exit."
	versionOutputTemplateConstant           = "%s version: %s\n"
	unknownVersionConstant                  = "unknown"
	develVersionConstant                    = "(devel)"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "LASSO"
	configurationSearchPathEnvironmentName  = "LASSO_CONFIG_SEARCH_PATH"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationDirectoryNameConstant      = "lasso"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLayersFieldConstant        = "config_layers"
	configurationRegistryFieldConstant      = "registry"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build commands: %w"
	commandNotFoundErrorTemplateConstant    = "unknown command %q"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common              ApplicationCommonConfiguration `mapstructure:"common"`
	repos.Configuration `mapstructure:",squash"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                *cobra.Command
	configurationLoader        *utils.ConfigurationLoader
	loggerFactory              *utils.LoggerFactory
	logger                     *zap.Logger
	consoleLogger              *zap.Logger
	configuration              ApplicationConfiguration
	configurationMetadata      utils.LoadedConfiguration
	configurationFilePath      string
	logLevelFlagValue          string
	logFormatFlagValue         string
	versionFlagValue           bool
	userConfigurationDirectory string
	commandBuildError          error
	versionResolver            func(context.Context) string
	exitFunction               func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	userConfigurationDirectory, _ := os.UserConfigDir()

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(userConfigurationDirectory),
		utils.WithEmbeddedConfiguration(EmbeddedDefaultConfiguration()),
	)

	application := &Application{
		configurationLoader:        configurationLoader,
		loggerFactory:              utils.NewLoggerFactory(utils.WithColoredLevels(ui.SupportsStyling(os.Stderr))),
		logger:                     zap.NewNop(),
		consoleLogger:              zap.NewNop(),
		userConfigurationDirectory: userConfigurationDirectory,
		versionResolver:            resolveBuildVersion,
		exitFunction:               os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if application.versionFlagValue {
				application.printVersion(command)
				return nil
			}
			return application.initializeConfiguration(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	dependencies := repos.Dependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConsoleLoggerProvider: func() *zap.Logger {
			return application.consoleLogger
		},
		ConfigurationProvider: func() repos.Configuration {
			return application.configuration.Configuration
		},
	}

	statusBuilder := repos.StatusCommandBuilder{Dependencies: dependencies}
	statusBuilder.Bind(cobraCommand)

	groupBuilder := repos.CommandGroupBuilder{Dependencies: dependencies}
	subcommands, buildError := groupBuilder.Build()
	if buildError != nil {
		application.commandBuildError = fmt.Errorf(commandBuildErrorTemplateConstant, buildError)
	}
	cobraCommand.AddCommand(subcommands...)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing. An interrupt or
// termination signal cancels the running repositories.
func (application *Application) Execute() error {
	if application.commandBuildError != nil {
		return application.commandBuildError
	}

	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	executionError := application.rootCommand.ExecuteContext(signalContext)
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// InitializeForCommand loads configuration and loggers as if the named subcommand were invoked.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := application.rootCommand
	if trimmedUse := strings.TrimSpace(commandUse); len(trimmedUse) > 0 && trimmedUse != applicationNameConstant {
		foundCommand, _, findError := application.rootCommand.Find([]string{trimmedUse})
		if findError != nil || foundCommand == application.rootCommand {
			return fmt.Errorf(commandNotFoundErrorTemplateConstant, trimmedUse)
		}
		command = foundCommand
	}
	return application.initializeConfiguration(command)
}

// Configuration returns the configuration loaded by the last initialization.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues(application.userConfigurationDirectory) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Strings(configurationLayersFieldConstant, application.configurationMetadata.Layers),
		zap.String(configurationRegistryFieldConstant, application.configuration.Registry.Path),
	)

	if command != nil {
		command.SetContext(utils.WithInvocation(command.Context(), utils.Invocation{
			ConfigurationFile:   application.configurationMetadata.ConfigFileUsed,
			ConfigurationLayers: application.configurationMetadata.Layers,
			RegistryPath:        application.configuration.Registry.Path,
		}))
	}

	return nil
}

func (application *Application) printVersion(command *cobra.Command) {
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(command.Context()))
	application.exitFunction(0)
}

func resolveBuildVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}
	version := strings.TrimSpace(buildInformation.Main.Version)
	if len(version) == 0 || version == develVersionConstant {
		return unknownVersionConstant
	}
	return version
}

func configurationSearchPaths(userConfigurationDirectory string) []string {
	if overridePaths := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentName)); len(overridePaths) > 0 {
		return filepath.SplitList(overridePaths)
	}
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if len(strings.TrimSpace(userConfigurationDirectory)) > 0 {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return application.syncLoggerInstance(application.consoleLogger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
