// Package cli constructs the lasso command-line interface. It wires the Cobra
// command hierarchy, the layered configuration loader, and the zap loggers,
// and runs the status report when no subcommand is given.
package cli
