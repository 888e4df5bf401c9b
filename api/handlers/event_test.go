package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases/mocks"
	"github.com/sports-hub/sports-hub-api/models"
)

func TestEvent_EventsHandlerEmptyReturnsArray(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("Find", mock.Anything, bson.M{}, mock.Anything).Return(nil, nil)

	e := handlers.Event{DB: edb}

	req := httptest.NewRequest("GET", "/api/events", nil)
	rr := httptest.NewRecorder()

	e.EventsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestEvent_EventsHandlerListsEvents(t *testing.T) {
	edb := &mocks.EventDatabase{}
	edb.On("Find", mock.Anything, bson.M{}, mock.Anything).Return([]models.Event{
		*badmintonEvent("Jane Doe"),
	}, nil)

	e := handlers.Event{DB: edb}

	req := httptest.NewRequest("GET", "/api/events", nil)
	rr := httptest.NewRecorder()

	e.EventsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Annual Badminton Tournament")
}

func TestEvent_ChatHistoryFiltersByTeam(t *testing.T) {
	mdb := &mocks.ChatMessageDatabase{}
	mdb.On("Find", mock.Anything, bson.M{"teamName": "Smash Masters"}, mock.Anything).Return([]models.ChatMessage{
		{TeamName: "Smash Masters", Sender: "Jane Doe", Text: "Practice at 6"},
	}, nil)

	e := handlers.Event{MDB: mdb}

	req := httptest.NewRequest("GET", "/api/chat/Smash%20Masters", nil)
	req = mux.SetURLVars(req, map[string]string{"teamName": "Smash Masters"})
	rr := httptest.NewRecorder()

	e.ChatHistoryHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Practice at 6")
	mdb.AssertExpectations(t)
}
