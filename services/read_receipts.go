package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"accounting-portal-api/models"
)

// FoldReceipt inserts a receipt into the comment's embedded set, deduplicated
// by (comment_id, user_id). Returns false when the receipt was already
// present. Both API reads and realtime pushes fold through here.
func FoldReceipt(comment *models.Comment, receipt models.CommentReadReceipt) bool {
	if receipt.CommentID != comment.CommentID {
		return false
	}
	if comment.ReadBy(receipt.UserID) {
		return false
	}
	comment.ReadReceipts = append(comment.ReadReceipts, receipt)
	return true
}

// MarkRead records that userID has read the comment, at most once. Own
// comments never generate a receipt. Returns the new receipt and whether a
// row was actually created.
func MarkRead(db *gorm.DB, comment *models.Comment, userID int) (*models.CommentReadReceipt, bool, error) {
	if comment.UserID == userID {
		return nil, false, nil
	}
	if comment.ReadBy(userID) {
		return nil, false, nil
	}

	// The payload's embedded receipts may be stale; re-check before insert.
	var existing models.CommentReadReceipt
	err := db.Where("comment_id = ? AND user_id = ?", comment.CommentID, userID).
		First(&existing).Error
	if err == nil {
		FoldReceipt(comment, existing)
		return nil, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	receipt := models.CommentReadReceipt{
		CommentID: comment.CommentID,
		UserID:    userID,
		ReadAt:    time.Now(),
	}
	if err := db.Create(&receipt).Error; err != nil {
		return nil, false, err
	}

	FoldReceipt(comment, receipt)
	invalidateReceiptDetails(comment.CommentID)
	return &receipt, true, nil
}

// MarkVisibleRead marks every listed comment the viewer can see, skipping
// comments already read and the viewer's own. Missing ids are ignored; a
// screen may report a comment that was deleted since render.
func MarkVisibleRead(db *gorm.DB, parentType string, parentID int, commentIDs []int, userID int) ([]models.CommentReadReceipt, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}

	var comments []models.Comment
	err := db.Preload("ReadReceipts").
		Where("comment_id IN ? AND parent_type = ? AND parent_id = ? AND delete_at IS NULL", commentIDs, parentType, parentID).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	var created []models.CommentReadReceipt
	for i := range comments {
		receipt, ok, err := MarkRead(db, &comments[i], userID)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, *receipt)
		}
	}
	return created, nil
}

// receiptDetailsCache holds resolved receipt details (reader names) for the
// process lifetime, fetched lazily on demand rather than eagerly per message.
var receiptDetailsCache = struct {
	sync.RWMutex
	byComment map[int][]models.CommentReadReceipt
}{byComment: make(map[int][]models.CommentReadReceipt)}

func invalidateReceiptDetails(commentID int) {
	receiptDetailsCache.Lock()
	defer receiptDetailsCache.Unlock()
	delete(receiptDetailsCache.byComment, commentID)
}

// ClearReceiptDetailsCache drops every cached entry.
func ClearReceiptDetailsCache() {
	receiptDetailsCache.Lock()
	defer receiptDetailsCache.Unlock()
	receiptDetailsCache.byComment = make(map[int][]models.CommentReadReceipt)
}

// ReceiptDetails returns the full receipt list for a comment with reader
// names resolved, cached after the first fetch.
func ReceiptDetails(db *gorm.DB, commentID int) ([]models.CommentReadReceipt, error) {
	receiptDetailsCache.RLock()
	cached, ok := receiptDetailsCache.byComment[commentID]
	receiptDetailsCache.RUnlock()
	if ok {
		return cached, nil
	}

	var receipts []models.CommentReadReceipt
	err := db.Preload("Reader").
		Where("comment_id = ?", commentID).
		Order("read_at ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}

	receiptDetailsCache.Lock()
	receiptDetailsCache.byComment[commentID] = receipts
	receiptDetailsCache.Unlock()
	return receipts, nil
}
