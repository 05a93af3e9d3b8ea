// Package drafting generates response text for outline sections.
//
// A draft group is generated from its section's extracted items, the
// project's knowledge base, and past evaluation feedback, assembled into
// labeled context blocks appended to the group's system prompt. Each
// successful generation appends an immutable version snapshot and promotes
// the section's pending items to drafted.
//
// DraftAll runs the same generation over every pending group of a project
// sequentially, reporting progress through a JobProgress row.
package drafting
