package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accounting-portal-api/models"
	"accounting-portal-api/services"
	"accounting-portal-api/utils"
)

type decisionRequest struct {
	Action  string `json:"action" binding:"required"`
	Remarks string `json:"remarks"`
}

// PostDecision executes a review action on one item: validate, transition,
// then answer with the canonical item and the next queue target. The
// navigation target is computed from the queue state captured before the
// transition; computing it afterwards walks off by one.
func PostDecision(c *gin.Context) {
	kind, itemID, ok := parseItemParams(c)
	if !ok {
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}
	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.Remarks = utils.SanitizeInput(req.Remarks)

	item, err := services.ResolveItem(getDB(), kind, itemID, entityID)
	if err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return
	}

	// Capture the pre-action queue before anything mutates.
	siblings, err := services.ResolveSiblings(getDB(), kind, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review queue"})
		return
	}
	preQueue := services.FilterPending(siblings, actor.Role)
	preIndex := services.PositionOf(preQueue, item.ItemID)

	meta := services.TransitionMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	updated, err := services.Transition(getDB(), item, req.Action, actor, req.Remarks, meta)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRemarksRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Remarks are required for this action"})
		case errors.Is(err, services.ErrNotPermitted):
			c.JSON(http.StatusForbidden, gin.H{"error": "Action not permitted"})
		case errors.Is(err, services.ErrClosurePending):
			c.JSON(http.StatusConflict, gin.H{"error": "A closure request is already pending"})
		case errors.Is(err, services.ErrNoClosurePending):
			c.JSON(http.StatusConflict, gin.H{"error": "No pending closure request to resolve"})
		case errors.Is(err, services.ErrEntityNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply decision"})
		}
		return
	}

	services.NotifyDecision(getDB(), updated, req.Action, actor, req.Remarks)
	if hub != nil {
		hub.BroadcastStatusChange(updated, actor.UserID)
	}

	next, err := services.NextAfter(getDB(), kind, preQueue, preIndex, entityID, actor.Role)
	if err != nil {
		// Navigation is best effort; the decision itself already committed.
		next = services.NextTarget{Done: true}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"item":    updated,
		"next":    next,
	})
}

// GetNextReviewTarget answers "what should I review now": the first pending
// invoice for the actor's role, falling back to vouchers, else done.
func GetNextReviewTarget(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}
	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	for _, kind := range []string{models.ItemTypeInvoice, models.ItemTypeVoucher} {
		siblings, err := services.ResolveSiblings(getDB(), kind, entityID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review queue"})
			return
		}
		queue := services.FilterPending(siblings, actor.Role)
		if len(queue) > 0 {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"next":    services.NextTarget{Item: &queue[0]},
				"pending": len(queue),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"next":    services.NextTarget{Done: true},
	})
}

// GetClosureRequest returns the parent's pending closure request, if any.
func GetClosureRequest(c *gin.Context) {
	kind, itemID, ok := parseItemParams(c)
	if !ok {
		return
	}
	if kind != models.ItemTypeNotice && kind != models.ItemTypeTask {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item type has no closure lifecycle"})
		return
	}

	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}
	if _, err := services.ResolveItem(getDB(), kind, itemID, entityID); err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return
	}

	var request models.ClosureRequest
	err := getDB().Preload("Requester").
		Where("parent_type = ? AND parent_id = ? AND status = ?", kind, itemID, models.ClosureStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "request": nil})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load closure request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
}

// GetStatusHistory lists the item's status changes, newest first.
func GetStatusHistory(c *gin.Context) {
	kind, itemID, ok := parseItemParams(c)
	if !ok {
		return
	}
	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}
	if _, err := services.ResolveItem(getDB(), kind, itemID, entityID); err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return
	}

	var history []models.ItemStatusHistory
	if err := getDB().Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}
