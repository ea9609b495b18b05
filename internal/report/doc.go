// Package report renders an orchestrator.AggregateReport for people and for scripts.
//
// Table and plain renderings are meant for terminals; JSON, YAML, and CSV renderings carry the
// same entries in resolution order with stable field names.
package report
