// Package transcripts persists chat transcripts in the local store.
//
// # Data Model
//
// The logical key of a transcript is chat_history_<user_id>; physically it
// is the set of transcript_entries rows with that user_id, ordered by the
// insertion sequence. Entries are never updated. Clear removes a user's
// rows at once, which is how account deletion discards the log.
//
// # Concurrency
//
// Append is a single INSERT, so concurrent submissions interleave safely
// and replay in the order their rows were written.
package transcripts
