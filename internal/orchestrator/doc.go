// Package orchestrator fans a Task out over resolved repositories and merges the outcomes into an
// AggregateReport whose entries always follow resolution order.
//
// Serial mode runs one task at a time. Concurrent mode bounds the number of in-flight tasks with an
// errgroup limit; every worker writes only its own slot of a pre-sized entry slice. Cancelling the
// context stops dispatch, and every entry that did not complete is reported as cancelled.
package orchestrator
