package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accounting-portal-api/config"
	"accounting-portal-api/realtime"
	"accounting-portal-api/services"
)

// hub is the process-wide realtime hub, wired from main before the router
// starts serving.
var hub *realtime.Hub

// SetHub installs the realtime hub used by comment and review handlers.
func SetHub(h *realtime.Hub) {
	hub = h
}

func getDB() *gorm.DB { return config.DB }

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

func getCurrentRole(c *gin.Context) (string, bool) {
	if v, ok := c.Get("roleName"); ok {
		if role, ok := v.(string); ok {
			return role, true
		}
	}
	return "", false
}

func getCurrentEntityID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("entityID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

// currentActor bundles the identity fields the status machine gates on.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userID, okUser := getCurrentUserID(c)
	role, okRole := getCurrentRole(c)
	if !okUser || !okRole {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: role}, true
}
