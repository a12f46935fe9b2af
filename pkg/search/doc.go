// Package search maintains an OpenSearch full-text index over public
// posts and answers per-messageboard searches.
//
// The index is a projection: storage remains the source of truth and the
// engine keeps working when search is not configured. Text is NFKC
// normalized and lowercased before indexing and querying so composed and
// decomposed forms of the same string match.
package search
