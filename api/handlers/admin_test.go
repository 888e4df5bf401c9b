package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases/mocks"
	"github.com/sports-hub/sports-hub-api/models"
)

func TestAdmin_LoginIssuesAccessTokenOnly(t *testing.T) {
	adb := &mocks.AdminDatabase{}
	adminID := primitive.NewObjectID()
	adb.On("FindOne", mock.Anything, bson.M{"email": "admin@college.edu"}).Return(&models.Admin{
		ID:       adminID,
		Email:    "admin@college.edu",
		Password: hashFor(t, "letmein"),
		FullName: "Site Admin",
		Role:     models.RoleAdmin,
	}, nil)
	adb.On("UpdateOne", mock.Anything, bson.M{"_id": adminID}, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	tm := api.NewTokenManager("access-secret", "refresh-secret")
	a := handlers.Admin{ADB: adb, TM: tm}

	req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(`{"email":"admin@college.edu","password":"letmein"}`))
	rr := httptest.NewRecorder()

	a.LoginHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful!", resp["message"])
	assert.NotEmpty(t, resp["accessToken"])
	// admins get no refresh flow
	assert.NotContains(t, resp, "refreshToken")

	claims, err := tm.VerifyAccess(resp["accessToken"].(string))
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAdmin_LoginWrongPassword(t *testing.T) {
	adb := &mocks.AdminDatabase{}
	adb.On("FindOne", mock.Anything, mock.Anything).Return(&models.Admin{
		Email:    "admin@college.edu",
		Password: hashFor(t, "letmein"),
	}, nil)

	a := handlers.Admin{ADB: adb, TM: api.NewTokenManager("access-secret", "refresh-secret")}

	req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(`{"email":"admin@college.edu","password":"wrong"}`))
	rr := httptest.NewRecorder()

	a.LoginHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials.")
}

func TestAdmin_ResetPasswordBumpsTokenVersionAndRevokesTokens(t *testing.T) {
	udb := &mocks.UserDatabase{}
	tdb := &mocks.RefreshTokenDatabase{}
	userID := primitive.NewObjectID()

	udb.On("FindOne", mock.Anything, bson.M{"_id": userID}).Return(&models.User{
		ID:       userID,
		Email:    "jane@college.edu",
		FullName: "Jane Doe",
	}, nil)
	udb.On("UpdateOne", mock.Anything, bson.M{"_id": userID}, mock.MatchedBy(func(update bson.M) bool {
		inc, ok := update["$inc"].(bson.M)
		if !ok || inc["tokenVersion"] != 1 {
			return false
		}
		set, ok := update["$set"].(bson.M)
		return ok && set["password"] != ""
	})).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	tdb.On("DeleteMany", mock.Anything, bson.M{"userId": userID.Hex()}).Return(int64(2), nil)

	a := handlers.Admin{UDB: udb, TDB: tdb}

	req := httptest.NewRequest("POST", "/api/admin/users/"+userID.Hex()+"/reset-password", nil)
	req = mux.SetURLVars(req, map[string]string{"userId": userID.Hex()})
	rr := httptest.NewRecorder()

	a.ResetPasswordHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Password reset successfully. Temporary password emailed to user.", resp["message"])
	assert.NotEmpty(t, resp["tempPassword"])
	assert.NotContains(t, resp["tempPassword"], "-")

	udb.AssertExpectations(t)
	tdb.AssertExpectations(t)
}

func TestAdmin_UpdateUserNotFound(t *testing.T) {
	udb := &mocks.UserDatabase{}
	udb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	a := handlers.Admin{UDB: udb}

	userID := primitive.NewObjectID().Hex()
	req := httptest.NewRequest("PUT", "/api/admin/users/"+userID, strings.NewReader(`{"status":"suspended"}`))
	req = mux.SetURLVars(req, map[string]string{"userId": userID})
	rr := httptest.NewRecorder()

	a.UpdateUserHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "User not found.")
}

func TestAdmin_DeleteUserCascades(t *testing.T) {
	udb := &mocks.UserDatabase{}
	edb := &mocks.EventDatabase{}
	tdb := &mocks.RefreshTokenDatabase{}
	userID := primitive.NewObjectID()

	udb.On("FindOne", mock.Anything, bson.M{"_id": userID}).Return(&models.User{
		ID:       userID,
		Email:    "jane@college.edu",
		FullName: "Jane Doe",
	}, nil)
	edb.On("UpdateMany", mock.Anything,
		bson.M{"team.members": "Jane Doe"},
		bson.M{"$pull": bson.M{"team.members": "Jane Doe"}},
	).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	tdb.On("DeleteMany", mock.Anything, bson.M{"userId": userID.Hex()}).Return(int64(1), nil)
	udb.On("DeleteOne", mock.Anything, bson.M{"_id": userID}).Return(int64(1), nil)

	a := handlers.Admin{UDB: udb, EDB: edb, TDB: tdb}

	req := httptest.NewRequest("DELETE", "/api/admin/users/"+userID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"userId": userID.Hex()})
	rr := httptest.NewRecorder()

	a.DeleteUserHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "User deleted successfully."}`, rr.Body.String())
	edb.AssertExpectations(t)
	tdb.AssertExpectations(t)
}

func TestAdmin_CreateEventAssignsNextID(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("Find", mock.Anything, bson.M{}, mock.Anything).Return([]models.Event{{EventID: 7}}, nil)
	edb.On("InsertOne", mock.Anything, mock.MatchedBy(func(event models.Event) bool {
		return event.EventID == 8 &&
			event.Team != nil &&
			event.Team.Members != nil &&
			len(event.Team.Members) == 0
	})).Return(&mocks.InsertOneResultHelper{}, nil)

	a := handlers.Admin{EDB: edb}

	body := `{
		"name": "Annual Badminton Tournament",
		"date": "2026-10-12",
		"team": {"name": "Smash Masters", "maxSlots": 4, "requirements": {"minRegNumber": "2021", "minExperience": 2}}
	}`
	req := httptest.NewRequest("POST", "/api/admin/events", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.CreateEventHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Event created successfully!")
	edb.AssertExpectations(t)
}

func TestAdmin_CreateEventFirstEventGetsIDOne(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("Find", mock.Anything, bson.M{}, mock.Anything).Return([]models.Event{}, nil)
	edb.On("InsertOne", mock.Anything, mock.MatchedBy(func(event models.Event) bool {
		return event.EventID == 1 && event.Team == nil
	})).Return(&mocks.InsertOneResultHelper{}, nil)

	a := handlers.Admin{EDB: edb}

	req := httptest.NewRequest("POST", "/api/admin/events", strings.NewReader(`{"name":"Fun Run","date":"2026-09-20"}`))
	rr := httptest.NewRecorder()

	a.CreateEventHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	edb.AssertExpectations(t)
}

func TestAdmin_CreateEventMissingFields(t *testing.T) {
	a := handlers.Admin{}

	req := httptest.NewRequest("POST", "/api/admin/events", strings.NewReader(`{"name":"No Date"}`))
	rr := httptest.NewRecorder()

	a.CreateEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Event name and date are required.")
}

func TestAdmin_UpdateEventNeverTouchesRoster(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("UpdateOne", mock.Anything, bson.M{"id": 2}, mock.MatchedBy(func(update bson.M) bool {
		set := update["$set"].(bson.M)
		_, touchesRoster := set["team.members"]
		return !touchesRoster && set["team.maxSlots"] == 6
	})).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	a := handlers.Admin{EDB: edb}

	body := `{"team": {"name": "Smash Masters", "maxSlots": 6, "requirements": {"minRegNumber": "2021", "minExperience": 2}}}`
	req := httptest.NewRequest("PUT", "/api/admin/events/2", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	a.UpdateEventHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "Event updated successfully!"}`, rr.Body.String())
	edb.AssertExpectations(t)
}

func TestAdmin_DeleteEventClearsMirroredMemberships(t *testing.T) {
	edb := &mocks.EventDatabase{}
	udb := &mocks.UserDatabase{}

	edb.On("DeleteOne", mock.Anything, bson.M{"id": 2}).Return(int64(1), nil)
	udb.On("UpdateMany", mock.Anything,
		bson.M{"joinedTeams.eventId": 2},
		bson.M{"$pull": bson.M{"joinedTeams": bson.M{"eventId": 2}}},
	).Return(&mongo.UpdateResult{MatchedCount: 3, ModifiedCount: 3}, nil)

	a := handlers.Admin{EDB: edb, UDB: udb}

	req := httptest.NewRequest("DELETE", "/api/admin/events/2", nil)
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	a.DeleteEventHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "Event deleted successfully!"}`, rr.Body.String())
	udb.AssertExpectations(t)
}

func TestAdmin_DeleteEventNotFound(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("DeleteOne", mock.Anything, bson.M{"id": 99}).Return(int64(0), nil)

	a := handlers.Admin{EDB: edb}

	req := httptest.NewRequest("DELETE", "/api/admin/events/99", nil)
	req = mux.SetURLVars(req, map[string]string{"eventId": "99"})
	rr := httptest.NewRecorder()

	a.DeleteEventHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Event not found.")
}

func TestAdmin_CreateCategoryDuplicate(t *testing.T) {
	cdb := &mocks.CategoryDatabase{}
	duplicate := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	cdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, duplicate)

	a := handlers.Admin{CDB: cdb}

	req := httptest.NewRequest("POST", "/api/admin/categories", strings.NewReader(`{"name":"Badminton","icon":"🏸"}`))
	rr := httptest.NewRecorder()

	a.CreateCategoryHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Category already exists.")
}

func TestAdmin_UpdateSettingsUpserts(t *testing.T) {
	sdb := &mocks.SettingsDatabase{}
	sdb.On("UpdateOne", mock.Anything, bson.M{},
		mock.MatchedBy(func(update bson.M) bool {
			set := update["$set"].(bson.M)
			return set["appName"] == "SportsHub" && set["maxTeamSize"] == 8
		}),
		mock.MatchedBy(func(opts *options.UpdateOptions) bool {
			return opts.Upsert != nil && *opts.Upsert
		}),
	).Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	a := handlers.Admin{SDB: sdb}

	body := `{"appName":"SportsHub","maxTeamSize":8,"emailDomain":"college.edu","minPasswordLength":8,"sessionTimeout":30}`
	req := httptest.NewRequest("PUT", "/api/admin/settings", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.UpdateSettingsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "Settings updated successfully!"}`, rr.Body.String())
	sdb.AssertExpectations(t)
}

func TestAdmin_AnalyticsSkipsTeamlessEvents(t *testing.T) {
	udb := &mocks.UserDatabase{}
	edb := &mocks.EventDatabase{}
	hdb := &mocks.NotificationHistoryDatabase{}

	udb.On("CountDocuments", mock.Anything, bson.M{}).Return(int64(120), nil)
	udb.On("CountDocuments", mock.Anything, bson.M{"joinedTeams.0": bson.M{"$exists": true}}).Return(int64(45), nil)
	hdb.On("CountDocuments", mock.Anything, bson.M{}).Return(int64(30), nil)
	edb.On("Find", mock.Anything, bson.M{}, mock.Anything).Return([]models.Event{
		{EventID: 1, Name: "Fun Run"},
		{EventID: 2, Name: "Annual Badminton Tournament", Team: &models.Team{
			Name:     "Smash Masters",
			MaxSlots: 4,
			Members:  []string{"Jane Doe", "John Roe"},
		}},
	}, nil)

	a := handlers.Admin{UDB: udb, EDB: edb, HDB: hdb}

	req := httptest.NewRequest("GET", "/api/admin/analytics", nil)
	rr := httptest.NewRecorder()

	a.AnalyticsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		TotalUsers        int64 `json:"totalUsers"`
		TotalEvents       int   `json:"totalEvents"`
		TeamMembers       int64 `json:"teamMembers"`
		NotificationsSent int64 `json:"notificationsSent"`
		TeamFill          []struct {
			EventID  int    `json:"eventId"`
			Team     string `json:"team"`
			Members  int    `json:"members"`
			MaxSlots int    `json:"maxSlots"`
		} `json:"teamFill"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(120), resp.TotalUsers)
	assert.Equal(t, 2, resp.TotalEvents)
	assert.Equal(t, int64(45), resp.TeamMembers)
	assert.Equal(t, int64(30), resp.NotificationsSent)
	assert.Len(t, resp.TeamFill, 1)
	assert.Equal(t, "Smash Masters", resp.TeamFill[0].Team)
	assert.Equal(t, 2, resp.TeamFill[0].Members)
}
