package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/config"
	"github.com/sports-hub/sports-hub-api/databases"
	"github.com/sports-hub/sports-hub-api/models"
)

// Event exported for testing purposes
type Event struct {
	DB  databases.EventDatabase
	MDB databases.ChatMessageDatabase
}

// EventsHandler returns every event sorted by public id ascending
func (e Event) EventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	events, err := e.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"id": 1}))
	if err != nil {
		config.ErrorStatus("Failed to fetch events", http.StatusInternalServerError, w, err)
		return
	}
	if len(events) == 0 {
		events = []models.Event{}
	}

	b, err := json.Marshal(events)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ChatHistoryHandler returns up to 100 messages for a team, oldest first
func (e Event) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	teamName := mux.Vars(r)["teamName"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := e.MDB.Find(ctx,
		bson.M{"teamName": teamName},
		options.Find().SetSort(bson.M{"timestamp": 1}).SetLimit(100),
	)
	if err != nil {
		config.ErrorStatus("Failed to fetch chat messages", http.StatusInternalServerError, w, err)
		return
	}
	if len(messages) == 0 {
		messages = []models.ChatMessage{}
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
