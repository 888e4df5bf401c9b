package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/config"
	"github.com/sports-hub/sports-hub-api/databases"
	"github.com/sports-hub/sports-hub-api/models"
)

// notificationLogSize is the per-user bound on the notification log; the
// oldest entries are evicted first.
const notificationLogSize = 10

// Notifier exported for testing purposes
type Notifier struct {
	UDB databases.UserDatabase
	HDB databases.NotificationHistoryDatabase
	SDB databases.ScheduledNotificationDatabase
	Hub *NotificationHub
}

// NotificationRequest is one fan-out order: content plus target selector
type NotificationRequest struct {
	Title            string `json:"title"`
	Message          string `json:"message"`
	Icon             string `json:"icon"`
	Target           string `json:"target"`
	Priority         string `json:"priority"`
	SpecificEmail    string `json:"specificEmail"`
	BulkEmails       string `json:"bulkEmails"`
	Scheduled        bool   `json:"scheduled"`
	ScheduleDateTime string `json:"scheduleDateTime"`
}

// SendHandler accepts a notification order from an admin. Future-dated
// orders are persisted for the scheduler; everything else fans out now.
func (n Notifier) SendHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no identity in context"))
		return
	}

	var req NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" || req.Message == "" || req.Icon == "" || req.Target == "" {
		config.ErrorStatus("Missing required notification fields.", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}
	if req.Target == models.TargetSpecific && req.SpecificEmail == "" {
		config.ErrorStatus("Specific user email is required.", http.StatusBadRequest, w, fmt.Errorf("missing specificEmail"))
		return
	}
	if req.Target == models.TargetBulk && req.BulkEmails == "" {
		config.ErrorStatus("Bulk emails are required.", http.StatusBadRequest, w, fmt.Errorf("missing bulkEmails"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if req.Scheduled && req.ScheduleDateTime != "" {
		sendAt, err := time.Parse(time.RFC3339, req.ScheduleDateTime)
		if err != nil {
			config.ErrorStatus("Invalid schedule date time.", http.StatusBadRequest, w, err)
			return
		}
		if sendAt.After(time.Now()) {
			_, err := n.SDB.InsertOne(ctx, models.ScheduledNotification{
				Title:         req.Title,
				Message:       req.Message,
				Icon:          req.Icon,
				Target:        req.Target,
				Priority:      priorityOrDefault(req.Priority),
				SpecificEmail: req.SpecificEmail,
				BulkEmails:    req.BulkEmails,
				SendAt:        sendAt,
				SentBy:        claims.FullName,
				CreatedAt:     time.Now(),
			})
			if err != nil {
				config.ErrorStatus("Failed to schedule notification.", http.StatusInternalServerError, w, err)
				return
			}
			zap.S().Infow("notification scheduled", "sendAt", sendAt, "target", req.Target)
			writeMessage(w, http.StatusOK, "Notification scheduled successfully!")
			return
		}
		// a schedule time already in the past falls through to immediate send
	}

	sentCount, realTimeDelivered, err := n.Dispatch(ctx, req, claims.FullName)
	if err != nil {
		config.ErrorStatus("Failed to send notification.", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]interface{}{
		"message":           "Notification sent successfully!",
		"sentCount":         sentCount,
		"realTimeDelivered": realTimeDelivered,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// Dispatch resolves the target selector, persists the notification into each
// matching user's bounded log, attempts realtime delivery, and appends a
// history record. Persistence is durable; realtime is best-effort and
// counted separately.
func (n Notifier) Dispatch(ctx context.Context, req NotificationRequest, sentBy string) (int64, int, error) {
	filter, targetUsers, err := n.resolveTarget(ctx, req)
	if err != nil {
		return 0, 0, err
	}

	notification := models.Notification{
		Icon:      req.Icon,
		Title:     req.Title,
		Body:      req.Message,
		Priority:  priorityOrDefault(req.Priority),
		Timestamp: time.Now(),
	}

	res, err := n.UDB.UpdateMany(ctx, filter, bson.M{
		"$push": bson.M{
			"notifications": bson.M{
				"$each":  bson.A{notification},
				"$slice": -notificationLogSize,
			},
		},
	})
	if err != nil {
		return 0, 0, err
	}

	realTimeDelivered := 0
	for _, email := range targetUsers {
		if n.Hub.Send(email, notification) {
			realTimeDelivered++
		}
	}

	// history is recorded regardless of delivery outcome
	_, err = n.HDB.InsertOne(ctx, models.NotificationHistory{
		Title:       req.Title,
		Message:     req.Message,
		Icon:        req.Icon,
		Target:      req.Target,
		Priority:    priorityOrDefault(req.Priority),
		SentCount:   res.ModifiedCount,
		TargetUsers: targetUsers,
		SentAt:      time.Now(),
		SentBy:      sentBy,
	})
	if err != nil {
		zap.S().Errorw("failed to save notification history", "error", err)
	}

	zap.S().Infow("notification sent",
		"persisted", res.ModifiedCount,
		"realtime", realTimeDelivered,
		"target", req.Target,
	)
	return res.ModifiedCount, realTimeDelivered, nil
}

// resolveTarget turns a selector into the mongo filter used for the
// persisted push plus the concrete recipient email list used for the
// realtime attempt
func (n Notifier) resolveTarget(ctx context.Context, req NotificationRequest) (bson.M, []string, error) {
	switch req.Target {
	case models.TargetAll:
		emails, err := n.collectEmails(ctx, bson.M{})
		return bson.M{}, emails, err
	case models.TargetTeamMembers:
		filter := bson.M{"joinedTeams.0": bson.M{"$exists": true}}
		emails, err := n.collectEmails(ctx, filter)
		return filter, emails, err
	case models.TargetNonTeamMembers:
		filter := bson.M{"$or": bson.A{
			bson.M{"joinedTeams": bson.M{"$exists": false}},
			bson.M{"joinedTeams": bson.M{"$size": 0}},
		}}
		emails, err := n.collectEmails(ctx, filter)
		return filter, emails, err
	case models.TargetSpecific:
		return bson.M{"email": req.SpecificEmail}, []string{req.SpecificEmail}, nil
	case models.TargetBulk:
		var emails []string
		for _, email := range strings.Split(req.BulkEmails, ",") {
			if trimmed := strings.TrimSpace(email); trimmed != "" {
				emails = append(emails, trimmed)
			}
		}
		return bson.M{"email": bson.M{"$in": emails}}, emails, nil
	default:
		return nil, nil, fmt.Errorf("unknown notification target %q", req.Target)
	}
}

func (n Notifier) collectEmails(ctx context.Context, filter bson.M) ([]string, error) {
	users, err := n.UDB.Find(ctx, filter, options.Find().SetProjection(bson.M{"email": 1}))
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, user := range users {
		emails = append(emails, user.Email)
	}
	return emails, nil
}

func priorityOrDefault(priority string) string {
	if priority == "" {
		return "normal"
	}
	return priority
}

// HistoryHandler returns the paginated notification audit log, newest first
func (n Notifier) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 20
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	records, err := n.HDB.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.M{"sentAt": -1}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)),
	)
	if err != nil {
		config.ErrorStatus("Failed to fetch notification history.", http.StatusInternalServerError, w, err)
		return
	}
	if len(records) == 0 {
		records = []models.NotificationHistory{}
	}

	total, err := n.HDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("Failed to fetch notification history.", http.StatusInternalServerError, w, err)
		return
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	b, _ := json.Marshal(map[string]interface{}{
		"notifications": records,
		"pagination": map[string]interface{}{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
