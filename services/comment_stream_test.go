package services

import (
	"testing"
	"time"

	"accounting-portal-api/models"
)

func commentAt(id, userID int, at time.Time) models.Comment {
	return models.Comment{
		CommentID: id,
		UserID:    userID,
		Message:   "m",
		CreateAt:  at,
	}
}

func TestMergeCommentsIsIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	existing := []models.Comment{
		commentAt(1, 1, base),
		commentAt(2, 2, base.Add(time.Minute)),
	}
	batch := []models.Comment{
		commentAt(2, 2, base.Add(time.Minute)),
		commentAt(3, 1, base.Add(2*time.Minute)),
	}

	merged := MergeComments(existing, batch)
	if len(merged) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(merged))
	}
	if merged[0].CommentID != 1 || merged[1].CommentID != 2 || merged[2].CommentID != 3 {
		t.Fatalf("unexpected order: %+v", merged)
	}

	// Replaying the same batch changes nothing.
	again := MergeComments(merged, batch)
	if len(again) != 3 {
		t.Fatalf("expected replay to be a no-op, got %d comments", len(again))
	}
}

func TestMergeCommentsPreservesExistingPositions(t *testing.T) {
	base := time.Now()
	existing := []models.Comment{commentAt(5, 1, base), commentAt(4, 2, base)}
	merged := MergeComments(existing, []models.Comment{commentAt(4, 2, base), commentAt(6, 3, base)})

	if merged[0].CommentID != 5 || merged[1].CommentID != 4 || merged[2].CommentID != 6 {
		t.Fatalf("existing positions moved: %+v", merged)
	}
}

func TestIsSelfEcho(t *testing.T) {
	pushed := commentAt(1, 7, time.Now())
	if !IsSelfEcho(7, &pushed) {
		t.Fatalf("expected own push to be a self echo")
	}
	if IsSelfEcho(8, &pushed) {
		t.Fatalf("expected other viewer's push not to be a self echo")
	}
}

func TestOrderCommentsIsStableOnTies(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		commentAt(3, 1, base.Add(time.Minute)),
		commentAt(1, 1, base),
		commentAt(2, 2, base), // same instant as comment 1
	}

	ordered := OrderComments(comments)
	if ordered[0].CommentID != 1 || ordered[1].CommentID != 2 || ordered[2].CommentID != 3 {
		t.Fatalf("unexpected order: %d %d %d", ordered[0].CommentID, ordered[1].CommentID, ordered[2].CommentID)
	}

	// The input slice is left untouched.
	if comments[0].CommentID != 3 {
		t.Fatalf("input slice was reordered")
	}
}

func TestGroupForDisplayBucketsAndLabels(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, loc)

	alice := &models.User{UserID: 1, UserFname: "Alice", UserLname: "Reviewer"}
	bob := &models.User{UserID: 2, UserFname: "Bob", UserLname: "Client"}

	comments := []models.Comment{
		{CommentID: 1, UserID: 1, Author: alice, CreateAt: time.Date(2026, 3, 10, 9, 0, 0, 0, loc)},
		{CommentID: 2, UserID: 1, Author: alice, CreateAt: time.Date(2026, 3, 10, 9, 5, 0, 0, loc)},
		{CommentID: 3, UserID: 2, Author: bob, CreateAt: time.Date(2026, 3, 10, 9, 10, 0, 0, loc)},
		{CommentID: 4, UserID: 2, Author: bob, CreateAt: time.Date(2026, 3, 11, 8, 0, 0, 0, loc)},
		{CommentID: 5, UserID: 1, Author: alice, CreateAt: time.Date(2026, 3, 12, 14, 0, 0, 0, loc)},
	}

	buckets := GroupForDisplay(comments, now, loc)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 day buckets, got %d", len(buckets))
	}

	if buckets[0].Label != "10 Mar 2026" {
		t.Fatalf("expected dated label, got %q", buckets[0].Label)
	}
	if buckets[1].Label != "Yesterday" {
		t.Fatalf("expected Yesterday, got %q", buckets[1].Label)
	}
	if buckets[2].Label != "Today" {
		t.Fatalf("expected Today, got %q", buckets[2].Label)
	}

	// Day one: a run of two Alice comments, then one from Bob.
	if len(buckets[0].Groups) != 2 {
		t.Fatalf("expected 2 author groups on day one, got %d", len(buckets[0].Groups))
	}
	if got := len(buckets[0].Groups[0].Comments); got != 2 {
		t.Fatalf("expected 2 comments in first run, got %d", got)
	}
	if buckets[0].Groups[0].Author != "Alice Reviewer" {
		t.Fatalf("unexpected author label: %q", buckets[0].Groups[0].Author)
	}

	// A same-author run never crosses a day boundary.
	if buckets[1].Groups[0].UserID != 2 || len(buckets[1].Groups[0].Comments) != 1 {
		t.Fatalf("unexpected yesterday grouping: %+v", buckets[1].Groups)
	}
}

func TestCommentStreamConvergesAcrossSources(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stream := NewCommentStream()

	stream.ApplyBatch([]models.Comment{commentAt(1, 1, base), commentAt(2, 2, base.Add(time.Minute))})

	// Realtime push for a comment the poll already delivered.
	if stream.ApplyPush(commentAt(2, 2, base.Add(time.Minute))) {
		t.Fatalf("duplicate push should be dropped")
	}
	if !stream.ApplyPush(commentAt(3, 1, base.Add(2*time.Minute))) {
		t.Fatalf("new push should be applied")
	}

	// Poll arriving after the push carries the same comment again.
	stream.ApplyBatch([]models.Comment{commentAt(3, 1, base.Add(2 * time.Minute))})

	if stream.Len() != 3 {
		t.Fatalf("expected 3 distinct comments, got %d", stream.Len())
	}

	snapshot := stream.Snapshot()
	for i, want := range []int{1, 2, 3} {
		if snapshot[i].CommentID != want {
			t.Fatalf("unexpected snapshot order: %+v", snapshot)
		}
	}
}
