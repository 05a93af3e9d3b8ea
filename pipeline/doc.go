// Package pipeline runs the asynchronous setup stages that turn a
// project's uploaded documents into a workable response scaffold.
//
// Four stages run strictly sequentially, each tracked by its own
// JobProgress row: structure analysis derives the response outline and one
// draft group per section; item extraction pulls questions and conditions
// out of the tender documents; knowledge indexing chunks and embeds the
// knowledge-base documents; feedback extraction mines past evaluation
// reports. Each stage fully replaces its prior output, so a re-run starts
// clean rather than merging.
package pipeline
