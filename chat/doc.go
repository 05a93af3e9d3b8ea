// Package chat runs the project assistant conversation.
//
// Each exchange grounds the model in three sources assembled at call
// time: a summary of the project's extracted items, knowledge chunks
// retrieved for the user's message, and the recent conversation history.
// All three are best-effort; a failed lookup drops its block rather than
// the conversation.
//
// The package also produces targeted edit suggestions for a single item's
// response text, recorded in the conversation but never applied to the
// item directly.
package chat
