package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/config"
	"github.com/sports-hub/sports-hub-api/databases"
	"github.com/sports-hub/sports-hub-api/models"
)

// Roster exported for testing purposes
type Roster struct {
	EDB databases.EventDatabase
	UDB databases.UserDatabase
}

type joinRequest struct {
	UserRegNumber  string `json:"userRegNumber"`
	UserExperience *int   `json:"userExperience"`
}

type leaveRequest struct {
	TeamName string `json:"teamName"`
}

// JoinEventHandler admits the authenticated user onto an event's team.
// Eligibility is pre-checked for precise rejection messages, and the final
// write re-asserts membership and capacity in its filter so two racing
// joins cannot overshoot maxSlots.
func (ro Roster) JoinEventHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no identity in context"))
		return
	}
	fullName := claims.FullName

	eventID, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		config.ErrorStatus("Invalid event ID format.", http.StatusBadRequest, w, err)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.UserRegNumber == "" || req.UserExperience == nil {
		config.ErrorStatus("Registration number and experience are required.", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	event, err := ro.EDB.FindOne(ctx, bson.M{"id": eventID})
	if err != nil {
		config.ErrorStatus("Event not found.", http.StatusNotFound, w, err)
		return
	}
	if event.Team == nil {
		config.ErrorStatus("Team information not found for this event.", http.StatusNotFound, w, fmt.Errorf("event %d has no team", eventID))
		return
	}

	if reason, status := admit(event.Team, fullName, req.UserRegNumber, *req.UserExperience); reason != "" {
		config.ErrorStatus(reason, status, w, fmt.Errorf("join rejected"))
		return
	}

	// Single conditional update: append only while the applicant is absent
	// and the roster is below capacity. The eligibility checks above are
	// advisory; this filter is what actually holds the invariant under
	// concurrent joins.
	res, err := ro.EDB.UpdateOne(ctx,
		bson.M{
			"id":           eventID,
			"team.members": bson.M{"$ne": fullName},
			"$expr":        bson.M{"$lt": bson.A{bson.M{"$size": "$team.members"}, "$team.maxSlots"}},
		},
		bson.M{
			"$push": bson.M{"team.members": fullName},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		config.ErrorStatus("Failed to join team. Please try again.", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		// lost a race since the read above; re-read for the precise reason
		current, err := ro.EDB.FindOne(ctx, bson.M{"id": eventID})
		if err != nil || current.Team == nil {
			config.ErrorStatus("Event not found.", http.StatusNotFound, w, fmt.Errorf("event vanished during join"))
			return
		}
		if containsMember(current.Team.Members, fullName) {
			config.ErrorStatus("You are already a member of this team.", http.StatusBadRequest, w, fmt.Errorf("duplicate join"))
			return
		}
		config.ErrorStatus("Sorry, this team is full.", http.StatusBadRequest, w, fmt.Errorf("team at capacity"))
		return
	}

	// Mirror write; the event roster above is authoritative. A retry after
	// a failure here is safe: the conditional filter rejects the duplicate.
	_, err = ro.UDB.UpdateOne(ctx,
		bson.M{"fullName": fullName},
		bson.M{
			"$push": bson.M{"joinedTeams": models.JoinedTeam{
				EventID:   eventID,
				EventName: event.Name,
				TeamName:  event.Team.Name,
				Emoji:     event.Emoji,
				JoinedAt:  time.Now(),
			}},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		config.ErrorStatus("Failed to join team. Please try again.", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user joined team",
		"user", fullName,
		"team", event.Team.Name,
		"eventId", eventID,
	)
	writeMessage(w, http.StatusOK, fmt.Sprintf("Successfully joined %s!", event.Team.Name))
}

// admit runs the eligibility checks in order and returns the first
// rejection reason, empty if the applicant qualifies. Ordering matters:
// membership, then registration year, then experience, then capacity.
func admit(team *models.Team, fullName, regNumber string, experience int) (string, int) {
	if containsMember(team.Members, fullName) {
		return "You are already a member of this team.", http.StatusBadRequest
	}

	minRegYear, err := strconv.Atoi(team.Requirements.MinRegNumber)
	if err != nil {
		minRegYear = 0
	}
	regYear, err := parseRegYear(regNumber)
	if err != nil || regYear > minRegYear {
		return fmt.Sprintf("Application rejected. Minimum registration year is %s.", team.Requirements.MinRegNumber), http.StatusBadRequest
	}

	if experience < team.Requirements.MinExperience {
		return fmt.Sprintf("Application rejected. Minimum %d years of experience required.", team.Requirements.MinExperience), http.StatusBadRequest
	}

	if len(team.Members) >= team.MaxSlots {
		return "Sorry, this team is full.", http.StatusBadRequest
	}
	return "", 0
}

// parseRegYear extracts the 4-digit enrollment year prefix of a registration
// number. Malformed numbers are a rejection, not a fault.
func parseRegYear(regNumber string) (int, error) {
	if len(regNumber) < 4 {
		return 0, fmt.Errorf("registration number too short")
	}
	return strconv.Atoi(regNumber[:4])
}

func containsMember(members []string, fullName string) bool {
	for _, m := range members {
		if m == fullName {
			return true
		}
	}
	return false
}

// LeaveTeamHandler removes the authenticated user from a team by team name.
// When multiple events share a team name, the first match is affected.
func (ro Roster) LeaveTeamHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no identity in context"))
		return
	}
	fullName := claims.FullName

	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.TeamName == "" {
		config.ErrorStatus("Team name is required.", http.StatusBadRequest, w, fmt.Errorf("missing teamName"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := ro.EDB.UpdateOne(ctx,
		bson.M{"team.name": req.TeamName},
		bson.M{
			"$pull": bson.M{"team.members": fullName},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		config.ErrorStatus("Failed to leave team.", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("Team not found.", http.StatusNotFound, w, fmt.Errorf("no team named %q", req.TeamName))
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("You were not a member of this team.", http.StatusBadRequest, w, fmt.Errorf("not a member"))
		return
	}

	_, err = ro.UDB.UpdateOne(ctx,
		bson.M{"fullName": fullName},
		bson.M{
			"$pull": bson.M{"joinedTeams": bson.M{"teamName": req.TeamName}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		config.ErrorStatus("Failed to leave team.", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user left team", "user", fullName, "team", req.TeamName)
	writeMessage(w, http.StatusOK, fmt.Sprintf("You have left %s.", req.TeamName))
}
