// Package preferences resolves layered notification preferences.
//
// A user's effective preference for a (notifier, scope) pair is computed
// from up to three layers, most specific first:
//
//  1. Per-messageboard override (followed-topic scope only)
//  2. Global per-notifier setting for the scope
//  3. Hardcoded default: enabled (opt-out model)
//
// The followed-topics and private-topics settings are independent; neither
// acts as a fallback for the other. Precedence lives in one place: the
// resolver walks an ordered list of optional sources and returns the first
// non-absent value.
//
// Storage distinguishes "absent" from "false" (*bool at the boundary);
// resolution is read-only and storage errors propagate to the caller.
package preferences
