package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accounting-portal-api/models"
	"accounting-portal-api/services"
	"accounting-portal-api/utils"
)

// resolveCommentParent checks the parent item exists, carries a discussion
// thread and belongs to the caller's entity scope.
func resolveCommentParent(c *gin.Context) (string, int, bool) {
	kind, itemID, ok := parseItemParams(c)
	if !ok {
		return "", 0, false
	}
	if kind != models.ItemTypeNotice && kind != models.ItemTypeTask {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item type has no discussion thread"})
		return "", 0, false
	}

	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return "", 0, false
	}
	if _, err := services.ResolveItem(getDB(), kind, itemID, entityID); err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return "", 0, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return "", 0, false
	}
	return kind, itemID, true
}

func fetchComments(kind string, itemID int) ([]models.Comment, error) {
	var comments []models.Comment
	err := getDB().Preload("Author").Preload("ReadReceipts").
		Where("parent_type = ? AND parent_id = ? AND delete_at IS NULL", kind, itemID).
		Order("create_at ASC, comment_id ASC").
		Find(&comments).Error
	return comments, err
}

// GetComments serves the full thread for an item. This endpoint backs both
// the initial fetch and the periodic poll; the client merges by comment id
// either way. With ?view=grouped the response is bucketed by calendar day
// (tz_offset, minutes east of UTC) with consecutive-author grouping.
func GetComments(c *gin.Context) {
	kind, itemID, ok := resolveCommentParent(c)
	if !ok {
		return
	}

	comments, err := fetchComments(kind, itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	if hub != nil {
		hub.PrimeStream(kind, itemID, comments)
	}

	if c.Query("view") == "grouped" {
		offsetMinutes, _ := strconv.Atoi(c.Query("tz_offset"))
		loc := time.FixedZone("viewer", offsetMinutes*60)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"days":    services.GroupForDisplay(comments, time.Now(), loc),
			"total":   len(comments),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"comments": comments,
		"total":    len(comments),
	})
}

type createCommentRequest struct {
	Message       string  `json:"message"`
	AttachmentURL *string `json:"attachment_url"`
}

// CreateComment stores a comment and pushes it to the parent's room. The
// author's own connections are skipped on broadcast; the caller's pending
// draft becomes the confirmed copy from this response.
func CreateComment(c *gin.Context) {
	kind, itemID, ok := resolveCommentParent(c)
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	message := utils.SanitizeInput(req.Message)
	if message == "" && (req.AttachmentURL == nil || strings.TrimSpace(*req.AttachmentURL) == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message or attachment is required"})
		return
	}

	comment := models.Comment{
		ParentType: kind,
		ParentID:   itemID,
		UserID:     userID,
		Message:    message,
		CreateAt:   time.Now(),
	}
	if req.AttachmentURL != nil {
		if url := strings.TrimSpace(*req.AttachmentURL); url != "" {
			comment.AttachmentURL = &url
		}
	}

	if err := getDB().Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	// Return the canonical copy with the author resolved for display.
	var stored models.Comment
	if err := getDB().Preload("Author").Preload("ReadReceipts").
		Where("comment_id = ?", comment.CommentID).
		First(&stored).Error; err != nil {
		stored = comment
	}

	if hub != nil {
		hub.BroadcastNewComment(stored)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"comment": stored,
	})
}

type markReadRequest struct {
	CommentIDs []int `json:"comment_ids" binding:"required"`
}

// MarkCommentsRead records read receipts for the comments the viewer has
// actually seen. Marks are at-most-once per (comment, user); own comments
// and already-read comments are skipped silently.
func MarkCommentsRead(c *gin.Context) {
	kind, itemID, ok := resolveCommentParent(c)
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := services.MarkVisibleRead(getDB(), kind, itemID, req.CommentIDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record read receipts"})
		return
	}

	if hub != nil {
		for _, receipt := range created {
			hub.BroadcastReceipt(kind, itemID, receipt)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"marked":  len(created),
	})
}

// GetCommentReceipts serves the full receipt list for one comment, resolved
// lazily (names included) and cached server side.
func GetCommentReceipts(c *gin.Context) {
	kind, itemID, ok := resolveCommentParent(c)
	if !ok {
		return
	}

	commentID, err := strconv.Atoi(c.Param("comment_id"))
	if err != nil || commentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	// The comment must belong to this thread.
	var comment models.Comment
	err = getDB().Where("comment_id = ? AND parent_type = ? AND parent_id = ? AND delete_at IS NULL", commentID, kind, itemID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment"})
		return
	}

	receipts, err := services.ReceiptDetails(getDB(), commentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load read receipts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"receipts": receipts,
		"total":    len(receipts),
	})
}
