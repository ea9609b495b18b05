// Package ui renders interactive and human-readable terminal output.
//
// RepositoryEventLogger turns process lifecycle events into concise console log lines,
// ProgressReporter draws a live spinner per repository while a run is in flight, and
// RunContextSelector offers a paginated checkbox list for choosing the current context.
// Interactive components write to standard error so that reports on standard output remain
// suitable for piping.
package ui
