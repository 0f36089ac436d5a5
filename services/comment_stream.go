package services

import (
	"sort"
	"sync"
	"time"

	"accounting-portal-api/models"
)

// MergeComments unions incoming into existing, deduplicated by comment id.
// Existing items keep their positions; new ones are appended in the order
// received. Applying the same batch twice is a no-op, so initial fetch,
// periodic poll and realtime push may arrive in any order and converge.
func MergeComments(existing, incoming []models.Comment) []models.Comment {
	seen := make(map[int]struct{}, len(existing))
	for i := range existing {
		seen[existing[i].CommentID] = struct{}{}
	}

	merged := existing
	for i := range incoming {
		if _, ok := seen[incoming[i].CommentID]; ok {
			continue
		}
		seen[incoming[i].CommentID] = struct{}{}
		merged = append(merged, incoming[i])
	}
	return merged
}

// IsSelfEcho reports whether a pushed comment is the viewer's own write
// coming back over the realtime channel. The sender's optimistic copy
// already represents it, so delivering the echo would double-render.
func IsSelfEcho(currentUserID int, pushed *models.Comment) bool {
	return pushed.UserID == currentUserID
}

// OrderComments sorts by created_at, non-decreasing, with ties keeping the
// merged arrival order (stable sort).
func OrderComments(comments []models.Comment) []models.Comment {
	ordered := make([]models.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreateAt.Before(ordered[j].CreateAt)
	})
	return ordered
}

// AuthorGroup is a run of consecutive comments from the same author, so the
// client renders the avatar and name once per run.
type AuthorGroup struct {
	UserID   int              `json:"user_id"`
	Author   string           `json:"author"`
	Comments []models.Comment `json:"comments"`
}

// DayBucket collects one calendar day of comment groups with a display label.
type DayBucket struct {
	Label  string        `json:"label"` // Today | Yesterday | 02 Jan 2006
	Date   string        `json:"date"`  // 2006-01-02
	Groups []AuthorGroup `json:"groups"`
}

// GroupForDisplay orders the stream and buckets it by calendar day in the
// viewer's location, grouping consecutive same-author comments inside each
// day. now supplies the reference for Today/Yesterday labels.
func GroupForDisplay(comments []models.Comment, now time.Time, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.Local
	}
	ordered := OrderComments(comments)

	today := now.In(loc).Format("2006-01-02")
	yesterday := now.In(loc).AddDate(0, 0, -1).Format("2006-01-02")

	var buckets []DayBucket
	for i := range ordered {
		comment := ordered[i]
		local := comment.CreateAt.In(loc)
		date := local.Format("2006-01-02")

		if len(buckets) == 0 || buckets[len(buckets)-1].Date != date {
			label := local.Format("02 Jan 2006")
			switch date {
			case today:
				label = "Today"
			case yesterday:
				label = "Yesterday"
			}
			buckets = append(buckets, DayBucket{Label: label, Date: date})
		}
		bucket := &buckets[len(buckets)-1]

		author := ""
		if comment.Author != nil {
			author = comment.Author.FullName()
		}
		if n := len(bucket.Groups); n > 0 && bucket.Groups[n-1].UserID == comment.UserID {
			bucket.Groups[n-1].Comments = append(bucket.Groups[n-1].Comments, comment)
		} else {
			bucket.Groups = append(bucket.Groups, AuthorGroup{
				UserID:   comment.UserID,
				Author:   author,
				Comments: []models.Comment{comment},
			})
		}
	}
	return buckets
}

// CommentStream is the per-parent merged view of the discussion thread,
// fed by DB fetches and realtime pushes. The realtime hub keeps one per room
// to replay recent history to late joiners; every apply path goes through
// MergeComments so deliveries stay idempotent.
type CommentStream struct {
	mu       sync.RWMutex
	comments []models.Comment
}

// NewCommentStream returns an empty stream.
func NewCommentStream() *CommentStream {
	return &CommentStream{}
}

// ApplyBatch merges a full fetch or poll result into the stream.
func (s *CommentStream) ApplyBatch(batch []models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = MergeComments(s.comments, batch)
}

// ApplyPush merges a single pushed comment. It returns false when the push
// was dropped as a duplicate.
func (s *CommentStream) ApplyPush(comment models.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.comments)
	s.comments = MergeComments(s.comments, []models.Comment{comment})
	return len(s.comments) > before
}

// Snapshot returns the ordered stream contents.
func (s *CommentStream) Snapshot() []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return OrderComments(s.comments)
}

// Len returns the number of distinct comments seen.
func (s *CommentStream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}
