package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/config"
	"github.com/sports-hub/sports-hub-api/databases"
	"github.com/sports-hub/sports-hub-api/models"
	templates "github.com/sports-hub/sports-hub-api/templates/html"
)

// Admin exported for testing purposes
type Admin struct {
	ADB databases.AdminDatabase
	UDB databases.UserDatabase
	EDB databases.EventDatabase
	CDB databases.CategoryDatabase
	SDB databases.SettingsDatabase
	TDB databases.RefreshTokenDatabase
	HDB databases.NotificationHistoryDatabase
	TM  *api.TokenManager
}

// LoginHandler authenticates an admin account. Admin sessions carry an
// access token only; there is no refresh flow for the elevated role.
func (a Admin) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		config.ErrorStatus("Email and password are required.", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := a.ADB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("Invalid credentials.", http.StatusBadRequest, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("Invalid credentials.", http.StatusBadRequest, w, err)
		return
	}

	pair, err := a.TM.IssuePair(admin.ID.Hex(), admin.Email, admin.FullName, admin.Role, 0)
	if err != nil {
		config.ErrorStatus("Server error during login.", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := a.ADB.UpdateOne(ctx, bson.M{"_id": admin.ID}, bson.M{"$set": bson.M{"lastLogin": time.Now()}}); err != nil {
		zap.S().Warnw("failed to record admin login", "email", admin.Email, "error", err)
	}

	b, _ := json.Marshal(map[string]interface{}{
		"message":     "Login successful!",
		"admin":       admin,
		"accessToken": pair.AccessToken,
	})
	zap.S().Infow("admin logged in", "email", admin.Email, "role", admin.Role)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UsersHandler lists every registered user, passwords excluded
func (a Admin) UsersHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := a.UDB.Find(ctx, bson.M{}, options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		config.ErrorStatus("Failed to fetch users.", http.StatusInternalServerError, w, err)
		return
	}
	if len(users) == 0 {
		users = []models.User{}
	}

	b, err := json.Marshal(users)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateUserHandler edits a user's account fields
func (a Admin) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		config.ErrorStatus("Invalid user ID format.", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		FullName     string `json:"fullName"`
		MobileNumber string `json:"mobileNumber"`
		Status       string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		set["fullName"] = req.FullName
	}
	if req.MobileNumber != "" {
		set["mobileNumber"] = req.MobileNumber
	}
	if req.Status != "" {
		set["status"] = req.Status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.UDB.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("Failed to update user.", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("User not found.", http.StatusNotFound, w, fmt.Errorf("no user %s", userID.Hex()))
		return
	}

	writeMessage(w, http.StatusOK, "User updated successfully.")
}

// DeleteUserHandler removes a user account, pulls their name from every
// event roster, and revokes their refresh tokens
func (a Admin) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		config.ErrorStatus("Invalid user ID format.", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := a.UDB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("User not found.", http.StatusNotFound, w, err)
		return
	}

	if _, err := a.EDB.UpdateMany(ctx,
		bson.M{"team.members": user.FullName},
		bson.M{"$pull": bson.M{"team.members": user.FullName}},
	); err != nil {
		config.ErrorStatus("Failed to remove user from teams.", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := a.TDB.DeleteMany(ctx, bson.M{"userId": userID.Hex()}); err != nil {
		zap.S().Warnw("failed to revoke refresh tokens for deleted user", "user", user.Email, "error", err)
	}

	count, err := a.UDB.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil || count == 0 {
		config.ErrorStatus("Failed to delete user.", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user deleted", "email", user.Email)
	writeMessage(w, http.StatusOK, "User deleted successfully.")
}

// ResetPasswordHandler sets a temporary password on a user account, bumps
// their token version so outstanding refresh tokens die, revokes stored
// tokens, and emails the temporary password
func (a Admin) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		config.ErrorStatus("Invalid user ID format.", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := a.UDB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("User not found.", http.StatusNotFound, w, err)
		return
	}

	tempPassword := strings.Split(uuid.NewString(), "-")[0]
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("Failed to reset password.", http.StatusInternalServerError, w, err)
		return
	}

	_, err = a.UDB.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": bson.M{"password": string(hashed), "updatedAt": time.Now()},
			"$inc": bson.M{"tokenVersion": 1},
		},
	)
	if err != nil {
		config.ErrorStatus("Failed to reset password.", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := a.TDB.DeleteMany(ctx, bson.M{"userId": userID.Hex()}); err != nil {
		zap.S().Warnw("failed to revoke refresh tokens after password reset", "user", user.Email, "error", err)
	}

	go sendPasswordResetEmail(user.Email, user.FullName, tempPassword)

	zap.S().Infow("password reset", "user", user.Email)
	b, _ := json.Marshal(map[string]interface{}{
		"message":      "Password reset successfully. Temporary password emailed to user.",
		"tempPassword": tempPassword,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// sendPasswordResetEmail sends the temporary password using SendGrid
func sendPasswordResetEmail(toEmail, toName, tempPassword string) {
	from := mail.NewEmail("SportsHub", "no-reply@sportshub.edu")
	to := mail.NewEmail(toName, toEmail)
	html := templates.RenderPasswordResetEmail(toName, tempPassword)
	plain := fmt.Sprintf("Hi %s, your SportsHub password was reset by an administrator. Temporary password: %s", toName, tempPassword)
	message := mail.NewSingleEmail(from, "Your SportsHub password has been reset", to, plain, html)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send password reset email", "error", err, "to", toEmail)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "to", toEmail)
		return
	}
	zap.S().Infow("password reset email sent", "to", toEmail)
}

type eventRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Emoji       string `json:"emoji"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
	Team        *struct {
		Name         string                  `json:"name"`
		MaxSlots     int                     `json:"maxSlots"`
		Requirements models.TeamRequirements `json:"requirements"`
	} `json:"team"`
}

// CreateEventHandler inserts an event with the next sequential public id
func (a Admin) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Name == "" || req.Date == "" {
		config.ErrorStatus("Event name and date are required.", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	nextID := 1
	latest, err := a.EDB.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.M{"id": -1}).
		SetLimit(1),
	)
	if err != nil {
		config.ErrorStatus("Failed to create event.", http.StatusInternalServerError, w, err)
		return
	}
	if len(latest) > 0 {
		nextID = latest[0].EventID + 1
	}

	now := time.Now()
	event := models.Event{
		EventID:     nextID,
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Category:    req.Category,
		Emoji:       req.Emoji,
		Difficulty:  req.Difficulty,
		Description: req.Description,
		CreatedAt:   now,
	}
	if req.Team != nil {
		event.Team = &models.Team{
			Name:         req.Team.Name,
			MaxSlots:     req.Team.MaxSlots,
			Members:      []string{},
			Requirements: req.Team.Requirements,
		}
	}

	if _, err := a.EDB.InsertOne(ctx, event); err != nil {
		config.ErrorStatus("Failed to create event.", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("event created", "id", nextID, "name", req.Name)
	b, _ := json.Marshal(map[string]interface{}{
		"message": "Event created successfully!",
		"event":   event,
	})
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateEventHandler edits an event's fields. The team roster is never
// touched here; members change only through join and leave.
func (a Admin) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventID, ok := eventIDFromRequest(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Date != "" {
		set["date"] = req.Date
	}
	if req.Time != "" {
		set["time"] = req.Time
	}
	if req.Location != "" {
		set["location"] = req.Location
	}
	if req.Category != "" {
		set["category"] = req.Category
	}
	if req.Emoji != "" {
		set["emoji"] = req.Emoji
	}
	if req.Difficulty != "" {
		set["difficulty"] = req.Difficulty
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Team != nil {
		set["team.name"] = req.Team.Name
		set["team.maxSlots"] = req.Team.MaxSlots
		set["team.requirements"] = req.Team.Requirements
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.EDB.UpdateOne(ctx, bson.M{"id": eventID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("Failed to update event.", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("Event not found.", http.StatusNotFound, w, fmt.Errorf("no event %d", eventID))
		return
	}

	writeMessage(w, http.StatusOK, "Event updated successfully!")
}

// DeleteEventHandler removes an event and clears the mirrored membership
// entries from every user who had joined its team
func (a Admin) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventID, ok := eventIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := a.EDB.DeleteOne(ctx, bson.M{"id": eventID})
	if err != nil {
		config.ErrorStatus("Failed to delete event.", http.StatusInternalServerError, w, err)
		return
	}
	if count == 0 {
		config.ErrorStatus("Event not found.", http.StatusNotFound, w, fmt.Errorf("no event %d", eventID))
		return
	}

	if _, err := a.UDB.UpdateMany(ctx,
		bson.M{"joinedTeams.eventId": eventID},
		bson.M{"$pull": bson.M{"joinedTeams": bson.M{"eventId": eventID}}},
	); err != nil {
		zap.S().Warnw("failed to clear mirrored memberships for deleted event", "eventId", eventID, "error", err)
	}

	zap.S().Infow("event deleted", "id", eventID)
	writeMessage(w, http.StatusOK, "Event deleted successfully!")
}

// CategoriesHandler lists every sport category
func (a Admin) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	categories, err := a.CDB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		config.ErrorStatus("Failed to fetch categories.", http.StatusInternalServerError, w, err)
		return
	}
	if len(categories) == 0 {
		categories = []models.Category{}
	}

	b, err := json.Marshal(categories)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateCategoryHandler inserts a sport category; names are unique
func (a Admin) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Name == "" {
		config.ErrorStatus("Category name is required.", http.StatusBadRequest, w, fmt.Errorf("missing name"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := a.CDB.InsertOne(ctx, models.Category{
		Name:      req.Name,
		Icon:      req.Icon,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("Category already exists.", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("Failed to create category.", http.StatusInternalServerError, w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Category created successfully!")
}

// UpdateCategoryHandler edits a category's name or icon
func (a Admin) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	categoryID, err := primitive.ObjectIDFromHex(mux.Vars(r)["categoryId"])
	if err != nil {
		config.ErrorStatus("Invalid category ID format.", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Icon != "" {
		set["icon"] = req.Icon
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.CDB.UpdateOne(ctx, bson.M{"_id": categoryID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("Category already exists.", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("Failed to update category.", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("Category not found.", http.StatusNotFound, w, fmt.Errorf("no category %s", categoryID.Hex()))
		return
	}

	writeMessage(w, http.StatusOK, "Category updated successfully!")
}

// DeleteCategoryHandler removes a sport category
func (a Admin) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	categoryID, err := primitive.ObjectIDFromHex(mux.Vars(r)["categoryId"])
	if err != nil {
		config.ErrorStatus("Invalid category ID format.", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := a.CDB.DeleteOne(ctx, bson.M{"_id": categoryID})
	if err != nil {
		config.ErrorStatus("Failed to delete category.", http.StatusInternalServerError, w, err)
		return
	}
	if count == 0 {
		config.ErrorStatus("Category not found.", http.StatusNotFound, w, fmt.Errorf("no category %s", categoryID.Hex()))
		return
	}

	writeMessage(w, http.StatusOK, "Category deleted successfully!")
}

// SettingsHandler returns the system settings document
func (a Admin) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	settings, err := a.SDB.FindOne(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("Settings not found.", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(settings)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateSettingsHandler upserts the single system settings document
func (a Admin) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.SystemSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	upsert := true
	_, err := a.SDB.UpdateOne(ctx, bson.M{},
		bson.M{"$set": bson.M{
			"appName":                  req.AppName,
			"maxTeamSize":              req.MaxTeamSize,
			"emailDomain":              req.EmailDomain,
			"eventDuration":            req.EventDuration,
			"minPasswordLength":        req.MinPasswordLength,
			"sessionTimeout":           req.SessionTimeout,
			"requireEmailVerification": req.RequireEmailVerification,
			"updatedAt":                time.Now(),
		}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	if err != nil {
		config.ErrorStatus("Failed to update settings.", http.StatusInternalServerError, w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Settings updated successfully!")
}

// AnalyticsHandler reports headline counts and per-team fill levels
func (a Admin) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	totalUsers, err := a.UDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("Failed to fetch analytics.", http.StatusInternalServerError, w, err)
		return
	}
	teamMembers, err := a.UDB.CountDocuments(ctx, bson.M{"joinedTeams.0": bson.M{"$exists": true}})
	if err != nil {
		config.ErrorStatus("Failed to fetch analytics.", http.StatusInternalServerError, w, err)
		return
	}
	notificationsSent, err := a.HDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("Failed to fetch analytics.", http.StatusInternalServerError, w, err)
		return
	}

	events, err := a.EDB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"id": 1}))
	if err != nil {
		config.ErrorStatus("Failed to fetch analytics.", http.StatusInternalServerError, w, err)
		return
	}

	type teamFill struct {
		EventID  int    `json:"eventId"`
		Name     string `json:"name"`
		Team     string `json:"team"`
		Members  int    `json:"members"`
		MaxSlots int    `json:"maxSlots"`
	}
	fills := make([]teamFill, 0, len(events))
	for _, event := range events {
		if event.Team == nil {
			continue
		}
		fills = append(fills, teamFill{
			EventID:  event.EventID,
			Name:     event.Name,
			Team:     event.Team.Name,
			Members:  len(event.Team.Members),
			MaxSlots: event.Team.MaxSlots,
		})
	}

	b, _ := json.Marshal(map[string]interface{}{
		"totalUsers":        totalUsers,
		"totalEvents":       len(events),
		"teamMembers":       teamMembers,
		"notificationsSent": notificationsSent,
		"teamFill":          fills,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
