package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"accounting-portal-api/models"
	"accounting-portal-api/services"
)

func parseItemParams(c *gin.Context) (string, int, bool) {
	kind := c.Param("kind")
	if !models.ValidItemType(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item type"})
		return "", 0, false
	}
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return "", 0, false
	}
	return kind, itemID, true
}

// GetReviewItems lists the scope's items of one kind. With ?pending=1 only
// the actor's review queue is returned, in queue order.
func GetReviewItems(c *gin.Context) {
	kind := c.Param("kind")
	if !models.ValidItemType(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item type"})
		return
	}

	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	items, err := services.ResolveSiblings(getDB(), kind, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}

	if c.Query("pending") == "1" {
		role, _ := getCurrentRole(c)
		queue := services.FilterPending(items, role)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"items":   queue,
			"total":   len(queue),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   items,
		"total":   len(items),
	})
}

// GetReviewItem returns one item plus its position in the actor's pending
// queue, so the detail screen knows where it sits before acting.
func GetReviewItem(c *gin.Context) {
	kind, itemID, ok := parseItemParams(c)
	if !ok {
		return
	}

	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	item, err := services.ResolveItem(getDB(), kind, itemID, entityID)
	if err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return
	}

	role, _ := getCurrentRole(c)
	siblings, err := services.ResolveSiblings(getDB(), kind, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review queue"})
		return
	}
	queue := services.FilterPending(siblings, role)
	position := services.PositionOf(queue, item.ItemID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"item":     item,
		"queue":    queue,
		"position": position,
	})
}

// GetCompanyProfile serves the entity's profile. A missing profile is the
// normal first-load state, answered with created=false instead of a 404.
func GetCompanyProfile(c *gin.Context) {
	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	profile, created, err := services.ResolveCompanyProfile(getDB(), entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load company profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": created,
		"profile": profile,
	})
}

// SaveCompanyProfile upserts the entity's profile, completing the lenient
// first-load path.
func SaveCompanyProfile(c *gin.Context) {
	entityID, ok := getCurrentEntityID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req models.CompanyProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.EntityID = entityID

	if err := services.SaveCompanyProfile(getDB(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save company profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": req,
	})
}
