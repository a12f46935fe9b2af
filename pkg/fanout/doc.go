// Package fanout implements the notification fan-out commands: given a
// newly created post, determine which users should hear about it, through
// which channels, exactly once.
//
// For a public post the candidate set is the topic's followers; for a
// private post, the conversation's members. Both exclude the post's author
// and anyone already recorded in the notified ledger, then pass through
// the preference resolver per channel. Channels are dispatched in registry
// order, and ledger entries for the union of every channel's targeted set
// are written after all dispatches complete.
//
// A run is a plain sequence of blocking reads, dispatches, and writes; the
// caller (typically a queue worker, see pkg/queue) provides the task
// scheduling and retry policy. Re-running a command for the same post is
// always safe: ledgered users are excluded from later runs, so retries
// converge to everyone-notified-once even after a crash between dispatch
// and ledger write.
package fanout
