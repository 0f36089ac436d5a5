package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"accounting-portal-api/config"
	"accounting-portal-api/models"
	"accounting-portal-api/utils"
)

// Notification event keys, matched against notification_message.event_key.
const (
	EventReviewApproved  = "review.approved"
	EventReviewRejected  = "review.rejected"
	EventClosureRequest  = "closure.requested"
	EventClosureApproved = "closure.approved"
	EventClosureRejected = "closure.rejected"
)

type templatedMessage struct {
	Title string
	Body  string
}

func fetchNotificationTemplate(db *gorm.DB, eventKey, sendTo string) (*models.NotificationMessage, error) {
	var tmpl models.NotificationMessage
	if err := db.Where("event_key = ? AND send_to = ? AND is_active = 1", eventKey, sendTo).
		First(&tmpl).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func applyTemplatePlaceholders(text string, data map[string]string) string {
	result := text
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// defaultMessages backs events that have no row in notification_message yet.
var defaultMessages = map[string]templatedMessage{
	EventReviewApproved:  {Title: "{{item_type}} approved", Body: "{{item_number}} was approved by {{actor_name}}."},
	EventReviewRejected:  {Title: "{{item_type}} rejected", Body: "{{item_number}} was rejected by {{actor_name}}: {{remarks}}"},
	EventClosureRequest:  {Title: "Closure requested", Body: "{{actor_name}} requested closure of {{item_number}}."},
	EventClosureApproved: {Title: "Closure approved", Body: "{{item_number}} was closed by {{actor_name}}."},
	EventClosureRejected: {Title: "Closure rejected", Body: "Closure of {{item_number}} was rejected by {{actor_name}}: {{remarks}}"},
}

func buildTemplatedMessage(db *gorm.DB, eventKey, sendTo string, data map[string]string) (templatedMessage, error) {
	if tmpl, err := fetchNotificationTemplate(db, eventKey, sendTo); err == nil {
		return templatedMessage{
			Title: applyTemplatePlaceholders(tmpl.TitleTemplate, data),
			Body:  applyTemplatePlaceholders(tmpl.BodyTemplate, data),
		}, nil
	}

	fallback, ok := defaultMessages[eventKey]
	if !ok {
		return templatedMessage{}, fmt.Errorf("no notification template for event %s", eventKey)
	}
	return templatedMessage{
		Title: applyTemplatePlaceholders(fallback.Title, data),
		Body:  applyTemplatePlaceholders(fallback.Body, data),
	}, nil
}

func decisionEventKey(action string) string {
	switch action {
	case ActionApprove, ActionTag:
		return EventReviewApproved
	case ActionReject:
		return EventReviewRejected
	case ActionRequestClose:
		return EventClosureRequest
	case ActionApproveClose:
		return EventClosureApproved
	case ActionRejectClose:
		return EventClosureRejected
	}
	return ""
}

func notificationType(action string) string {
	switch action {
	case ActionReject, ActionRejectClose:
		return "error"
	case ActionApprove, ActionTag, ActionApproveClose:
		return "success"
	}
	return "info"
}

// NotifyDecision records an in-app notification for the people affected by a
// review action and emails the item creator on rejections and closure
// resolutions. Failures here never fail the decision; they are logged and
// the caller moves on.
func NotifyDecision(db *gorm.DB, item *models.ReviewItem, action string, actor Actor, remarks string) {
	eventKey := decisionEventKey(action)
	if eventKey == "" {
		return
	}

	var actorUser models.User
	actorName := fmt.Sprintf("user %d", actor.UserID)
	if err := db.Where("user_id = ?", actor.UserID).First(&actorUser).Error; err == nil {
		actorName = actorUser.FullName()
	}

	data := map[string]string{
		"item_type":   item.ItemType,
		"item_number": item.ItemNumber,
		"actor_name":  actorName,
		"remarks":     remarks,
		"status":      item.Status,
	}
	if fd := item.FinancialDetail; item.IsFinancial() && fd != nil {
		data["amount"] = utils.FormatAmount(fd.Amount, fd.Currency)
		data["document_date"] = utils.FormatDisplayDatePtr(fd.DocumentDate)
	}
	if wd := item.WorkDetail; wd != nil {
		data["title"] = wd.Title
		data["due_date"] = utils.FormatDisplayDatePtr(wd.DueDate)
	}

	recipients := map[int]string{item.CreatedBy: "creator"}
	if item.AssignedTo != nil {
		recipients[*item.AssignedTo] = "assignee"
	}
	delete(recipients, actor.UserID)

	for userID, sendTo := range recipients {
		msg, err := buildTemplatedMessage(db, eventKey, sendTo, data)
		if err != nil {
			log.Printf("Warning: notification template for %s/%s: %v", eventKey, sendTo, err)
			continue
		}

		relatedID := uint(item.ItemID)
		notification := models.Notification{
			UserID:        uint(userID),
			Title:         msg.Title,
			Message:       msg.Body,
			Type:          notificationType(action),
			RelatedItemID: &relatedID,
			CreateAt:      time.Now(),
		}
		if err := db.Create(&notification).Error; err != nil {
			log.Printf("Warning: failed to store notification for user %d: %v", userID, err)
		}
	}

	// Email only on outcomes the creator must act on.
	switch eventKey {
	case EventReviewRejected, EventClosureApproved, EventClosureRejected:
		var creator models.User
		if err := db.Where("user_id = ? AND delete_at IS NULL", item.CreatedBy).First(&creator).Error; err != nil {
			return
		}
		msg, err := buildTemplatedMessage(db, eventKey, "creator", data)
		if err != nil {
			return
		}
		if err := config.SendMail([]string{creator.Email}, msg.Title, "<p>"+msg.Body+"</p>"); err != nil {
			log.Printf("Warning: failed to send decision email to %s: %v", creator.Email, err)
		}
	}
}
