// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers the embedded document, defaults, a configuration file, and environment
// variables through Viper. LoggerFactory builds the diagnostic and console zap loggers. Invocation
// travels through cobra command contexts, and SerializedOutput is the report destination shared by
// concurrent repository tasks.
package utils
