// Package jobs provides background job tracking and task queues.
//
// The Tracker persists JobProgress rows that the UI polls while the
// pipeline runs: progress is monotonic, completion forces 100, and
// terminal rows are never reopened.
//
// The Queue interface dispatches named tasks to handlers bound in a
// Registry at wiring time. LocalQueue runs tasks immediately on an
// in-process worker pool without retry; DurableQueue persists tasks in
// a storage.QueueStore and delivers them at-least-once with leases,
// delayed redelivery, and a dead-letter set for tasks that exhaust
// their attempts. Handlers must therefore tolerate re-execution.
package jobs
