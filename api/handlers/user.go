package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

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
)

// User exported for testing purposes
type User struct {
	DB  databases.UserDatabase
	TDB databases.RefreshTokenDatabase
	TM  *api.TokenManager
}

type registerRequest struct {
	FullName  string `json:"fullName"`
	StudentID string `json:"studentID"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterHandler creates a user account with a welcome notification
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.FullName == "" || req.StudentID == "" || req.Email == "" || req.Password == "" {
		config.ErrorStatus("All fields are required.", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := u.DB.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": req.Email},
		bson.M{"studentID": req.StudentID},
	}})
	if err == nil && existing != nil {
		if existing.Email == req.Email {
			config.ErrorStatus("User with this email already exists.", http.StatusBadRequest, w, fmt.Errorf("duplicate email"))
		} else {
			config.ErrorStatus("User with this student ID already exists.", http.StatusBadRequest, w, fmt.Errorf("duplicate studentID"))
		}
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	newUser := models.User{
		FullName:     req.FullName,
		StudentID:    req.StudentID,
		Email:        req.Email,
		Password:     string(hashed),
		MobileNumber: "",
		JoinedTeams:  []models.JoinedTeam{},
		TokenVersion: 0,
		Status:       "active",
		Notifications: []models.Notification{{
			Icon:      "🎉",
			Title:     fmt.Sprintf("Welcome %s!", req.FullName),
			Body:      "Your account has been created successfully. Explore events and join the fun.",
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := u.DB.InsertOne(ctx, newUser)
	if err != nil {
		// the unique indexes catch the race the pre-check above can miss
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("User with this email already exists.", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("Server error during registration.", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("new user registered", "id", res.Decode())
	writeMessage(w, http.StatusCreated, "User registered successfully!")
}

// LoginHandler verifies credentials and returns the user with a token pair
func (u User) LoginHandler(w http.ResponseWriter, r *http.Request) {
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

	user, err := u.DB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("Invalid credentials.", http.StatusBadRequest, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("Invalid credentials.", http.StatusBadRequest, w, err)
		return
	}

	pair, err := u.TM.IssuePair(user.ID.Hex(), user.Email, user.FullName, models.RoleUser, user.TokenVersion)
	if err != nil {
		config.ErrorStatus("Server error during login.", http.StatusInternalServerError, w, err)
		return
	}
	if err := storeRefreshToken(ctx, u.TDB, user.ID.Hex(), pair.RefreshToken); err != nil {
		// never hand out a refresh token without a durable record
		config.ErrorStatus("Server error during login.", http.StatusInternalServerError, w, err)
		return
	}

	_, err = u.DB.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{
			"$set": bson.M{"lastLogin": time.Now()},
			"$push": bson.M{
				"notifications": bson.M{
					"$each": bson.A{models.Notification{
						Icon:      "👋",
						Title:     fmt.Sprintf("Welcome back, %s!", user.FullName),
						Body:      "Ready to join some exciting tournaments?",
						Timestamp: time.Now(),
					}},
					"$slice": -10,
				},
			},
		},
	)
	if err != nil {
		zap.S().Warnw("failed to record login", "email", user.Email, "error", err)
	}

	b, err := json.Marshal(map[string]interface{}{
		"message": "Login successful!",
		"user": models.UserResponse{
			ID:            user.ID,
			FullName:      user.FullName,
			Email:         user.Email,
			StudentID:     user.StudentID,
			MobileNumber:  user.MobileNumber,
			AvatarURL:     user.AvatarURL,
			JoinedTeams:   user.JoinedTeams,
			Notifications: user.Notifications,
		},
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RefreshTokenHandler rotates a refresh token: the presented token must be
// signature-valid, have a live stored record, and match the user's current
// token version. The old record is deleted before the new one is stored, so
// a rotated token is single-use.
func (u User) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		config.ErrorStatus("Refresh token required", http.StatusUnauthorized, w, fmt.Errorf("missing refresh token"))
		return
	}

	claims, err := u.TM.VerifyRefresh(req.RefreshToken)
	if err != nil {
		config.ErrorStatus("Invalid refresh token", http.StatusForbidden, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// capability check against the server-side allow-list; a revoked token
	// is dead even while its signature is still valid
	if _, err := u.TDB.FindOne(ctx, bson.M{"token": req.RefreshToken}); err != nil {
		config.ErrorStatus("Refresh token not found or expired", http.StatusForbidden, w, err)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		config.ErrorStatus("Invalid refresh token", http.StatusForbidden, w, err)
		return
	}
	user, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("User not found", http.StatusNotFound, w, err)
		return
	}
	if user.TokenVersion != claims.TokenVersion {
		config.ErrorStatus("Token version mismatch", http.StatusForbidden, w, fmt.Errorf("token version %d, current %d", claims.TokenVersion, user.TokenVersion))
		return
	}

	pair, err := u.TM.IssuePair(user.ID.Hex(), user.Email, user.FullName, models.RoleUser, user.TokenVersion)
	if err != nil {
		config.ErrorStatus("Failed to refresh token", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := u.TDB.DeleteOne(ctx, bson.M{"token": req.RefreshToken}); err != nil {
		config.ErrorStatus("Failed to refresh token", http.StatusInternalServerError, w, err)
		return
	}
	if err := storeRefreshToken(ctx, u.TDB, user.ID.Hex(), pair.RefreshToken); err != nil {
		config.ErrorStatus("Failed to refresh token", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(pair)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LogoutHandler revokes the presented refresh token
func (u User) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req refreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.RefreshToken != "" {
		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()
		if _, err := u.TDB.DeleteOne(ctx, bson.M{"token": req.RefreshToken}); err != nil {
			zap.S().Warnw("failed to remove refresh token on logout", "error", err)
		}
	}

	if claims, ok := api.IdentityFromContext(r.Context()); ok {
		zap.S().Infow("user logged out", "user", claims.FullName)
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// UpdateProfileHandler updates the authenticated user's profile fields
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no identity in context"))
		return
	}

	var req struct {
		FullName     string `json:"fullName"`
		MobileNumber string `json:"mobileNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.FullName == "" {
		config.ErrorStatus("Full name is required.", http.StatusBadRequest, w, fmt.Errorf("missing fullName"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	after := options.After
	user, err := u.DB.FindOneAndUpdate(ctx,
		bson.M{"email": claims.Email},
		bson.M{"$set": bson.M{
			"fullName":     req.FullName,
			"mobileNumber": req.MobileNumber,
			"updatedAt":    time.Now(),
		}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	if err != nil {
		config.ErrorStatus("User not found.", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"message": "Profile updated successfully!",
		"user": models.UserResponse{
			ID:           user.ID,
			FullName:     user.FullName,
			Email:        user.Email,
			StudentID:    user.StudentID,
			MobileNumber: user.MobileNumber,
		},
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("profile updated", "email", claims.Email)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkNotificationsReadHandler flags every entry in the user's notification
// log as read
func (u User) MarkNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no identity in context"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.DB.UpdateOne(ctx,
		bson.M{"email": claims.Email},
		bson.M{"$set": bson.M{"notifications.$[].read": true}},
	)
	if err != nil {
		config.ErrorStatus("Failed to mark notifications as read.", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("User not found.", http.StatusNotFound, w, fmt.Errorf("no user for %s", claims.Email))
		return
	}

	writeMessage(w, http.StatusOK, "Notifications marked as read.")
}

func storeRefreshToken(ctx context.Context, tdb databases.RefreshTokenDatabase, userID, token string) error {
	_, err := tdb.InsertOne(ctx, models.RefreshToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(api.RefreshTokenTTL),
	})
	return err
}
