package forum

import (
	"bytes"
	"sort"
)

// Posts within a thread are ordered by (CreatedAt, ID). The ID tie-break
// keeps the order deterministic when timestamps collide or arrive out of
// order, e.g. bulk imports or clock skew between writers.

// PostBefore reports whether a sorts before b in thread order.
func PostBefore(a, b Post) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// PrivatePostBefore reports whether a sorts before b in thread order.
func PrivatePostBefore(a, b PrivatePost) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// SortPosts sorts posts in-place into thread order.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool { return PostBefore(posts[i], posts[j]) })
}

// SortPrivatePosts sorts private posts in-place into thread order.
func SortPrivatePosts(posts []PrivatePost) {
	sort.SliceStable(posts, func(i, j int) bool { return PrivatePostBefore(posts[i], posts[j]) })
}

// PrecedingPrivatePost returns the post immediately before target in thread
// order, or nil when target is the earliest post (or absent from the slice).
// The input does not need to be pre-sorted.
func PrecedingPrivatePost(posts []PrivatePost, target PrivatePost) *PrivatePost {
	var prev *PrivatePost
	sorted := make([]PrivatePost, len(posts))
	copy(sorted, posts)
	SortPrivatePosts(sorted)
	for i := range sorted {
		if sorted[i].ID == target.ID {
			return prev
		}
		prev = &sorted[i]
	}
	return nil
}
