package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases/mocks"
	"github.com/sports-hub/sports-hub-api/models"
)

func adminRequest(method, target, body string) *http.Request {
	req := identityRequest(method, target, body, "Site Admin")
	claims := &api.AccessClaims{
		UserID:   "64b0c8a7e13f1a2b3c4d5e6f",
		Email:    "admin@college.edu",
		FullName: "Site Admin",
		Role:     models.RoleAdmin,
	}
	return req.WithContext(api.WithIdentity(req.Context(), claims))
}

func TestNotifier_SendMissingFields(t *testing.T) {
	n := handlers.Notifier{Hub: handlers.NewNotificationHub()}

	req := adminRequest("POST", "/api/admin/notifications/send", `{"title":"Hello"}`)
	rr := httptest.NewRecorder()

	n.SendHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Missing required notification fields.")
}

func TestNotifier_SendSpecificRequiresEmail(t *testing.T) {
	n := handlers.Notifier{Hub: handlers.NewNotificationHub()}

	body := `{"title":"Hello","message":"World","icon":"📣","target":"specific"}`
	req := adminRequest("POST", "/api/admin/notifications/send", body)
	rr := httptest.NewRecorder()

	n.SendHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Specific user email is required.")
}

func TestNotifier_DispatchSpecificPushesBoundedLog(t *testing.T) {
	udb := &mocks.UserDatabase{}
	hdb := &mocks.NotificationHistoryDatabase{}
	insertResult := &mocks.InsertOneResultHelper{}

	udb.On("UpdateMany", mock.Anything,
		bson.M{"email": "jane@college.edu"},
		mock.MatchedBy(func(update bson.M) bool {
			push, ok := update["$push"].(bson.M)
			if !ok {
				return false
			}
			spec, ok := push["notifications"].(bson.M)
			// the log is capped at the ten most recent entries
			return ok && spec["$slice"] == -10
		}),
	).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	hdb.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	n := handlers.Notifier{UDB: udb, HDB: hdb, Hub: handlers.NewNotificationHub()}

	sent, realtime, err := n.Dispatch(context.Background(), handlers.NotificationRequest{
		Title:         "Practice moved",
		Message:       "Court 2 at 6pm",
		Icon:          "🏸",
		Target:        models.TargetSpecific,
		SpecificEmail: "jane@college.edu",
	}, "Site Admin")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, 0, realtime)
	udb.AssertExpectations(t)
}

func TestNotifier_DispatchBulkSplitsAndTrimsEmails(t *testing.T) {
	udb := &mocks.UserDatabase{}
	hdb := &mocks.NotificationHistoryDatabase{}
	insertResult := &mocks.InsertOneResultHelper{}

	udb.On("UpdateMany", mock.Anything,
		bson.M{"email": bson.M{"$in": []string{"a@college.edu", "b@college.edu"}}},
		mock.Anything,
	).Return(&mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil)
	hdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(record models.NotificationHistory) bool {
		return record.SentCount == 2 && len(record.TargetUsers) == 2
	})).Return(insertResult, nil)

	n := handlers.Notifier{UDB: udb, HDB: hdb, Hub: handlers.NewNotificationHub()}

	sent, _, err := n.Dispatch(context.Background(), handlers.NotificationRequest{
		Title:      "Semester schedule",
		Message:    "Published",
		Icon:       "📅",
		Target:     models.TargetBulk,
		BulkEmails: " a@college.edu , b@college.edu ,",
	}, "Site Admin")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), sent)
	hdb.AssertExpectations(t)
}

func TestNotifier_DispatchTeamMembersFilter(t *testing.T) {
	udb := &mocks.UserDatabase{}
	hdb := &mocks.NotificationHistoryDatabase{}
	insertResult := &mocks.InsertOneResultHelper{}

	filter := bson.M{"joinedTeams.0": bson.M{"$exists": true}}
	udb.On("Find", mock.Anything, filter, mock.Anything).Return([]models.User{
		{Email: "a@college.edu"},
		{Email: "b@college.edu"},
	}, nil)
	udb.On("UpdateMany", mock.Anything, filter, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil)
	hdb.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	n := handlers.Notifier{UDB: udb, HDB: hdb, Hub: handlers.NewNotificationHub()}

	sent, _, err := n.Dispatch(context.Background(), handlers.NotificationRequest{
		Title:   "Team update",
		Message: "Jerseys arrived",
		Icon:    "👕",
		Target:  models.TargetTeamMembers,
	}, "Site Admin")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), sent)
}

func TestNotifier_DispatchUnknownTarget(t *testing.T) {
	n := handlers.Notifier{Hub: handlers.NewNotificationHub()}

	_, _, err := n.Dispatch(context.Background(), handlers.NotificationRequest{
		Title:   "x",
		Message: "y",
		Icon:    "z",
		Target:  "everyone-ever",
	}, "Site Admin")

	assert.Error(t, err)
}

func TestNotifier_DispatchRecordsHistoryEvenWithZeroDeliveries(t *testing.T) {
	udb := &mocks.UserDatabase{}
	hdb := &mocks.NotificationHistoryDatabase{}
	insertResult := &mocks.InsertOneResultHelper{}

	udb.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)
	hdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(record models.NotificationHistory) bool {
		return record.SentCount == 0
	})).Return(insertResult, nil)

	n := handlers.Notifier{UDB: udb, HDB: hdb, Hub: handlers.NewNotificationHub()}

	sent, realtime, err := n.Dispatch(context.Background(), handlers.NotificationRequest{
		Title:         "Hello",
		Message:       "World",
		Icon:          "📣",
		Target:        models.TargetSpecific,
		SpecificEmail: "ghost@college.edu",
	}, "Site Admin")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), sent)
	assert.Equal(t, 0, realtime)
	hdb.AssertExpectations(t)
}

func TestNotifier_SendSchedulesFutureNotification(t *testing.T) {
	udb := &mocks.UserDatabase{}
	sdb := &mocks.ScheduledNotificationDatabase{}
	insertResult := &mocks.InsertOneResultHelper{}

	sendAt := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	sdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(pending models.ScheduledNotification) bool {
		return pending.Title == "Finals" && pending.SentBy == "Site Admin"
	})).Return(insertResult, nil)

	n := handlers.Notifier{UDB: udb, SDB: sdb, Hub: handlers.NewNotificationHub()}

	body := fmt.Sprintf(`{"title":"Finals","message":"Good luck","icon":"🏆","target":"all","scheduled":true,"scheduleDateTime":%q}`, sendAt)
	req := adminRequest("POST", "/api/admin/notifications/send", body)
	rr := httptest.NewRecorder()

	n.SendHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "Notification scheduled successfully!"}`, rr.Body.String())
	udb.AssertNotCalled(t, "UpdateMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifier_HistoryPagination(t *testing.T) {
	hdb := &mocks.NotificationHistoryDatabase{}
	hdb.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.NotificationHistory{
		{Title: "first"}, {Title: "second"},
	}, nil)
	hdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(42), nil)

	n := handlers.Notifier{HDB: hdb, Hub: handlers.NewNotificationHub()}

	req := adminRequest("GET", "/api/admin/notifications/history?page=2&limit=20", "")
	rr := httptest.NewRecorder()

	n.HistoryHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Notifications []models.NotificationHistory `json:"notifications"`
		Pagination    struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, int64(42), resp.Pagination.Total)
	assert.Equal(t, int64(3), resp.Pagination.Pages)
}
