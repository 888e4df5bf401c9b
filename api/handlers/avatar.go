package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/config"
	"github.com/sports-hub/sports-hub-api/databases"
)

// maxAvatarBytes caps avatar uploads at 5 MB
const maxAvatarBytes = 5 << 20

// Avatar exported for testing purposes
type Avatar struct {
	UDB databases.UserDatabase
}

// UploadHandler stores a user's avatar image in Cloudinary and records the
// secure delivery URL on their account. Credentials come from CLOUDINARY_URL.
func (a Avatar) UploadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no identity in context"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		config.ErrorStatus("Avatar file too large or malformed.", http.StatusBadRequest, w, err)
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		config.ErrorStatus("Avatar file is required.", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	cld, err := cloudinary.New()
	if err != nil {
		config.ErrorStatus("Avatar upload is not configured.", http.StatusInternalServerError, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	overwrite := true
	resp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    "sportshub/avatars",
		PublicID:  claims.UserID,
		Overwrite: &overwrite,
	})
	if err != nil {
		config.ErrorStatus("Failed to upload avatar.", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := a.UDB.UpdateOne(ctx,
		bson.M{"email": claims.Email},
		bson.M{"$set": bson.M{"avatarUrl": resp.SecureURL, "updatedAt": time.Now()}},
	); err != nil {
		config.ErrorStatus("Failed to save avatar.", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("avatar updated", "email", claims.Email)
	b, _ := json.Marshal(map[string]string{
		"message":   "Avatar updated successfully!",
		"avatarUrl": resp.SecureURL,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
