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
)

// resolveCollaboratorParent accepts any reviewable kind; collaborators are
// attached to notices and tasks in practice but the table is kind agnostic.
func resolveCollaboratorParent(c *gin.Context) (string, int, bool) {
	kind, itemID, ok := parseItemParams(c)
	if !ok {
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

// GetCollaborators lists everyone attached to an item.
func GetCollaborators(c *gin.Context) {
	kind, itemID, ok := resolveCollaboratorParent(c)
	if !ok {
		return
	}

	var collaborators []models.Collaborator
	err := getDB().Preload("User").
		Where("parent_type = ? AND parent_id = ?", kind, itemID).
		Order("create_at ASC").
		Find(&collaborators).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collaborators"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"collaborators": collaborators,
		"total":         len(collaborators),
	})
}

type addCollaboratorRequest struct {
	UserID int `json:"user_id" binding:"required"`
}

// AddCollaborator attaches a user to an item. The (item, user) pair is
// unique; adding the same user twice is a conflict, not a second row.
func AddCollaborator(c *gin.Context) {
	kind, itemID, ok := resolveCollaboratorParent(c)
	if !ok {
		return
	}
	actorID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req addCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	var user models.User
	if err := getDB().Where("user_id = ? AND delete_at IS NULL", req.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	var existing int64
	getDB().Model(&models.Collaborator{}).
		Where("parent_type = ? AND parent_id = ? AND user_id = ?", kind, itemID, req.UserID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a collaborator"})
		return
	}

	collaborator := models.Collaborator{
		ParentType: kind,
		ParentID:   itemID,
		UserID:     req.UserID,
		AddedBy:    actorID,
		CreateAt:   time.Now(),
	}
	if err := getDB().Create(&collaborator).Error; err != nil {
		// The unique index is the real guard against a concurrent add.
		if strings.Contains(err.Error(), "Duplicate entry") {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a collaborator"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add collaborator"})
		return
	}

	getDB().Preload("User").
		Where("collaborator_id = ?", collaborator.CollaboratorID).
		First(&collaborator)

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"collaborator": collaborator,
	})
}

// RemoveCollaborator detaches a user from an item. Removing a user who is
// not attached succeeds with nothing to do.
func RemoveCollaborator(c *gin.Context) {
	kind, itemID, ok := resolveCollaboratorParent(c)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	result := getDB().
		Where("parent_type = ? AND parent_id = ? AND user_id = ?", kind, itemID, userID).
		Delete(&models.Collaborator{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove collaborator"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": result.RowsAffected,
	})
}
