package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases/mocks"
	"github.com/sports-hub/sports-hub-api/models"
)

func TestScheduler_DispatchDueNotifications(t *testing.T) {
	sndb := &mocks.ScheduledNotificationDatabase{}
	udb := &mocks.UserDatabase{}
	hdb := &mocks.NotificationHistoryDatabase{}

	pendingID := primitive.NewObjectID()
	sndb.On("Find", mock.Anything, mock.Anything).Return([]models.ScheduledNotification{{
		ID:            pendingID,
		Title:         "Finals",
		Message:       "Good luck",
		Icon:          "🏆",
		Target:        models.TargetSpecific,
		SpecificEmail: "jane@college.edu",
		SentBy:        "Site Admin",
	}}, nil)
	udb.On("UpdateMany", mock.Anything, bson.M{"email": "jane@college.edu"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	hdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(record models.NotificationHistory) bool {
		return record.SentBy == "Site Admin" && record.Title == "Finals"
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	sndb.On("DeleteOne", mock.Anything, bson.M{"_id": pendingID}).Return(int64(1), nil)

	s := New(sndb, nil, handlers.Notifier{UDB: udb, HDB: hdb, Hub: handlers.NewNotificationHub()})
	s.dispatchDueNotifications()

	sndb.AssertExpectations(t)
	udb.AssertExpectations(t)
	hdb.AssertExpectations(t)
}

func TestScheduler_DispatchRemovesPendingRecordOnFailure(t *testing.T) {
	sndb := &mocks.ScheduledNotificationDatabase{}

	pendingID := primitive.NewObjectID()
	sndb.On("Find", mock.Anything, mock.Anything).Return([]models.ScheduledNotification{{
		ID:     pendingID,
		Title:  "Broken",
		Target: "no-such-selector",
		SentBy: "Site Admin",
	}}, nil)
	// the pending record is removed even when dispatch fails
	sndb.On("DeleteOne", mock.Anything, bson.M{"_id": pendingID}).Return(int64(1), nil)

	s := New(sndb, nil, handlers.Notifier{Hub: handlers.NewNotificationHub()})
	s.dispatchDueNotifications()

	sndb.AssertExpectations(t)
}

func TestScheduler_SweepExpiredTokens(t *testing.T) {
	tdb := &mocks.RefreshTokenDatabase{}
	tdb.On("DeleteMany", mock.Anything, mock.MatchedBy(func(filter bson.M) bool {
		_, ok := filter["expiresAt"]
		return ok
	})).Return(int64(3), nil)

	s := New(nil, tdb, handlers.Notifier{})
	s.sweepExpiredTokens()

	tdb.AssertExpectations(t)
}

func TestScheduler_StartAndStop(t *testing.T) {
	sndb := &mocks.ScheduledNotificationDatabase{}
	tdb := &mocks.RefreshTokenDatabase{}

	s := New(sndb, tdb, handlers.Notifier{Hub: handlers.NewNotificationHub()})
	s.Start()
	s.Stop()

	assert.NotNil(t, s.cron)
}
