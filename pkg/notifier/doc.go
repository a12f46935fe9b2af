// Package notifier defines the pluggable notification channel contract and
// the ordered registry the fan-out commands dispatch through.
//
// A channel is anything implementing Notifier: a stable preference key, a
// display name, and the two delivery operations (public post, private
// post). Channels are constructed once at process start; configuration
// problems fail construction, never dispatch. The registry preserves
// registration order, which is also fan-out dispatch order, and is passed
// into the fan-out commands explicitly so tests can substitute channels
// without touching globals.
//
// Shipped channels: EmailNotifier (pkg/mailer-backed) and MockNotifier
// (recording test double).
package notifier
