// Package compliance assesses how completely a project's response covers
// its extracted obligations.
//
// A report combines deterministic statistics (item counts, coverage
// percentage, warnings for unaddressed questions, conditions, feedback,
// and undrafted sections) with an optional model pass that may refine the
// quality score and summary. The model pass only ever overrides values;
// its failure never blocks the report.
package compliance
