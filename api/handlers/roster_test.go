package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases/mocks"
	"github.com/sports-hub/sports-hub-api/models"
)

func identityRequest(method, target, body, fullName string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	claims := &api.AccessClaims{
		UserID:   "64b0c8a7e13f1a2b3c4d5e6f",
		Email:    "jane@college.edu",
		FullName: fullName,
		Role:     models.RoleUser,
	}
	return req.WithContext(api.WithIdentity(req.Context(), claims))
}

func badmintonEvent(members ...string) *models.Event {
	return &models.Event{
		EventID: 2,
		Name:    "Annual Badminton Tournament",
		Emoji:   "🏸",
		Team: &models.Team{
			Name:     "Smash Masters",
			MaxSlots: 4,
			Members:  members,
			Requirements: models.TeamRequirements{
				MinRegNumber:  "2021",
				MinExperience: 2,
			},
		},
	}
}

func TestRoster_JoinEventSuccess(t *testing.T) {
	edb := &mocks.EventDatabase{}
	udb := &mocks.UserDatabase{}

	edb.On("FindOne", mock.Anything, mock.Anything).Return(badmintonEvent("Rahul Patel"), nil)
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	udb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	ro := handlers.Roster{EDB: edb, UDB: udb}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123","userExperience":3}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "Successfully joined Smash Masters!"}`, rr.Body.String())
	udb.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoster_JoinEventAlreadyMember(t *testing.T) {
	edb := &mocks.EventDatabase{}
	udb := &mocks.UserDatabase{}

	edb.On("FindOne", mock.Anything, mock.Anything).Return(badmintonEvent("Jane Doe"), nil)

	ro := handlers.Roster{EDB: edb, UDB: udb}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123","userExperience":3}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "You are already a member of this team.")
	edb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoster_JoinEventRegYearTooLate(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("FindOne", mock.Anything, mock.Anything).Return(badmintonEvent(), nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	// enrolled 2023, team requires 2021 or earlier
	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2023001","userExperience":5}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Minimum registration year is 2021.")
}

func TestRoster_JoinEventMalformedRegNumber(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("FindOne", mock.Anything, mock.Anything).Return(badmintonEvent(), nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	// a reg number whose prefix is not a year reads as ineligible, not a 500
	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"AB12","userExperience":5}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Minimum registration year is 2021.")
}

func TestRoster_JoinEventInsufficientExperience(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("FindOne", mock.Anything, mock.Anything).Return(badmintonEvent(), nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123","userExperience":1}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Minimum 2 years of experience required.")
}

func TestRoster_JoinEventTeamFull(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("FindOne", mock.Anything, mock.Anything).Return(
		badmintonEvent("Rahul Patel", "Priya Shah", "Arjun Mehta", "Sneha Iyer"), nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123","userExperience":3}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sorry, this team is full.")
	edb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoster_JoinEventRejectionOrder(t *testing.T) {
	// a full team the applicant already belongs to reports membership, not capacity
	edb := &mocks.EventDatabase{}
	edb.On("FindOne", mock.Anything, mock.Anything).Return(
		badmintonEvent("Jane Doe", "Priya Shah", "Arjun Mehta", "Sneha Iyer"), nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123","userExperience":3}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "You are already a member of this team.")
}

func TestRoster_JoinEventLostCapacityRace(t *testing.T) {
	edb := &mocks.EventDatabase{}
	udb := &mocks.UserDatabase{}

	// first read sees one free slot; conditional write modifies nothing
	// because a concurrent join filled it; re-read reports the full roster
	edb.On("FindOne", mock.Anything, mock.Anything).Return(
		badmintonEvent("Rahul Patel", "Priya Shah", "Arjun Mehta"), nil).Once()
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)
	edb.On("FindOne", mock.Anything, mock.Anything).Return(
		badmintonEvent("Rahul Patel", "Priya Shah", "Arjun Mehta", "Sneha Iyer"), nil).Once()

	ro := handlers.Roster{EDB: edb, UDB: udb}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123","userExperience":3}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sorry, this team is full.")
	udb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoster_JoinEventMissingFields(t *testing.T) {
	ro := handlers.Roster{EDB: &mocks.EventDatabase{}, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/events/2/join", `{"userRegNumber":"2020123"}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "2"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Registration number and experience are required.")
}

func TestRoster_JoinEventInvalidID(t *testing.T) {
	ro := handlers.Roster{EDB: &mocks.EventDatabase{}, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/events/abc/join", `{"userRegNumber":"2020123","userExperience":3}`, "Jane Doe")
	req = mux.SetURLVars(req, map[string]string{"eventId": "abc"})
	rr := httptest.NewRecorder()

	ro.JoinEventHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid event ID format.")
}

func TestRoster_LeaveTeamSuccess(t *testing.T) {
	edb := &mocks.EventDatabase{}
	udb := &mocks.UserDatabase{}

	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	udb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	ro := handlers.Roster{EDB: edb, UDB: udb}

	req := identityRequest("POST", "/api/teams/leave", `{"teamName":"Smash Masters"}`, "Jane Doe")
	rr := httptest.NewRecorder()

	ro.LeaveTeamHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "You have left Smash Masters."}`, rr.Body.String())
}

func TestRoster_LeaveTeamNotFound(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/teams/leave", `{"teamName":"Ghost Team"}`, "Jane Doe")
	rr := httptest.NewRecorder()

	ro.LeaveTeamHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Team not found.")
}

func TestRoster_LeaveTeamNotAMember(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 0}, nil)

	ro := handlers.Roster{EDB: edb, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/teams/leave", `{"teamName":"Smash Masters"}`, "Jane Doe")
	rr := httptest.NewRecorder()

	ro.LeaveTeamHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "You were not a member of this team.")
}

func TestRoster_LeaveTeamMissingName(t *testing.T) {
	ro := handlers.Roster{EDB: &mocks.EventDatabase{}, UDB: &mocks.UserDatabase{}}

	req := identityRequest("POST", "/api/teams/leave", `{}`, "Jane Doe")
	rr := httptest.NewRecorder()

	ro.LeaveTeamHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Team name is required.")
}
