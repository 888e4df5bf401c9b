package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sports-hub/sports-hub-api/models"
)

// DefaultAdminEmail is the seeded administrator account, created only when
// the admins collection is empty.
const DefaultAdminEmail = "admin@college.edu"

const defaultAdminPassword = "admin123"

// Bootstrap creates the indexes and seeds the default admin, categories,
// system settings and sample events. Seeding is count-gated so a restart
// against a populated database is a no-op.
func Bootstrap(ctx context.Context, db DatabaseHelper) error {
	if err := createIndexes(ctx, db); err != nil {
		zap.S().Warnw("some indexes may already exist", "error", err)
	}

	if err := seedDefaultAdmin(ctx, db); err != nil {
		return err
	}
	if err := seedDefaultCategories(ctx, db); err != nil {
		return err
	}
	if err := seedSystemSettings(ctx, db); err != nil {
		return err
	}
	return seedDefaultEvents(ctx, db)
}

func createIndexes(ctx context.Context, db DatabaseHelper) error {
	unique := options.Index().SetUnique(true)

	indexSets := map[string][]mongo.IndexModel{
		userCollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "studentID", Value: 1}}, Options: unique},
		},
		eventCollectionName: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		},
		chatMessageCollectionName: {
			{Keys: bson.D{{Key: "teamName", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		},
		adminCollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		refreshTokenCollectionName: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: unique},
			// store-side TTL safety net, independent of rotation logic
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		categoryCollectionName: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		notificationHistoryCollectionName: {
			{Keys: bson.D{{Key: "sentAt", Value: 1}}},
			{Keys: bson.D{{Key: "target", Value: 1}}},
		},
	}

	for name, indexes := range indexSets {
		if err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return err
		}
	}
	return nil
}

func seedDefaultAdmin(ctx context.Context, db DatabaseHelper) error {
	adb := NewAdminDatabase(db)
	count, err := adb.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = adb.InsertOne(ctx, models.Admin{
		Email:     DefaultAdminEmail,
		Password:  string(hashed),
		FullName:  "SportsHub Administrator",
		Role:      models.RoleSuperAdmin,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	zap.S().Infow("default admin created", "email", DefaultAdminEmail)
	return nil
}

func seedDefaultCategories(ctx context.Context, db DatabaseHelper) error {
	cdb := NewCategoryDatabase(db)
	count, err := cdb.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return err
	}

	now := time.Now()
	defaults := []interface{}{
		models.Category{Name: "Cricket", Icon: "🏏", CreatedAt: now},
		models.Category{Name: "Football", Icon: "⚽", CreatedAt: now},
		models.Category{Name: "Badminton", Icon: "🏸", CreatedAt: now},
		models.Category{Name: "Table Tennis", Icon: "🏓", CreatedAt: now},
		models.Category{Name: "Basketball", Icon: "🏀", CreatedAt: now},
		models.Category{Name: "Volleyball", Icon: "🏐", CreatedAt: now},
	}
	if err := cdb.InsertMany(ctx, defaults); err != nil {
		return err
	}
	zap.S().Info("default categories created")
	return nil
}

func seedSystemSettings(ctx context.Context, db DatabaseHelper) error {
	sdb := NewSettingsDatabase(db)
	count, err := sdb.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return err
	}

	now := time.Now()
	_, err = sdb.InsertOne(ctx, models.SystemSettings{
		AppName:           "SportsHub",
		MaxTeamSize:       11,
		EmailDomain:       "@college.edu",
		EventDuration:     2,
		MinPasswordLength: 6,
		SessionTimeout:    30,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return err
	}
	zap.S().Info("default system settings created")
	return nil
}

func seedDefaultEvents(ctx context.Context, db DatabaseHelper) error {
	edb := NewEventDatabase(db)
	count, err := edb.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return err
	}

	now := time.Now()
	defaults := []models.Event{
		{
			EventID:     1,
			Name:        "Cricket Intercollege Championship",
			Date:        "2025-10-12",
			Time:        "09:00 AM",
			Location:    "Main Cricket Ground",
			Category:    "Cricket",
			Emoji:       "🏏",
			Difficulty:  "Advanced",
			Description: "Annual intercollege cricket championship featuring top teams from across the region.",
			Team: &models.Team{
				Name:     "Warriors",
				MaxSlots: 11,
				Members:  []string{"Aditya Kumar"},
				Requirements: models.TeamRequirements{
					MinRegNumber:  "2020",
					MinExperience: 2,
				},
			},
			CreatedAt: now,
		},
		{
			EventID:     2,
			Name:        "Annual Badminton Tournament",
			Date:        "2025-11-08",
			Time:        "10:00 AM",
			Location:    "Indoor Sports Hall",
			Category:    "Badminton",
			Emoji:       "🏸",
			Difficulty:  "Intermediate",
			Description: "Singles and doubles badminton tournament open to all skill levels.",
			Team: &models.Team{
				Name:     "Shuttlers",
				MaxSlots: 4,
				Members:  []string{"Rahul Patel"},
				Requirements: models.TeamRequirements{
					MinRegNumber:  "2021",
					MinExperience: 1,
				},
			},
			CreatedAt: now,
		},
		{
			EventID:     3,
			Name:        "Football Premier League",
			Date:        "2025-12-02",
			Time:        "03:30 PM",
			Location:    "Central Stadium",
			Category:    "Football",
			Emoji:       "⚽",
			Difficulty:  "Expert",
			Description: "Professional-level football league with experienced players only.",
			Team: &models.Team{
				Name:     "Strikers United",
				MaxSlots: 11,
				Members:  []string{"Krishna Rao"},
				Requirements: models.TeamRequirements{
					MinRegNumber:  "2019",
					MinExperience: 3,
				},
			},
			CreatedAt: now,
		},
		{
			EventID:     4,
			Name:        "Table Tennis Championship",
			Date:        "2025-12-15",
			Time:        "12:30 PM",
			Location:    "TT Arena",
			Category:    "Table Tennis",
			Emoji:       "🏓",
			Difficulty:  "Intermediate",
			Description: "Fast-paced table tennis tournament with singles and doubles categories.",
			Team: &models.Team{
				Name:     "Spin Masters",
				MaxSlots: 4,
				Members:  []string{"Priya Jain"},
				Requirements: models.TeamRequirements{
					MinRegNumber:  "2021",
					MinExperience: 1,
				},
			},
			CreatedAt: now,
		},
	}

	for _, event := range defaults {
		if _, err := edb.InsertOne(ctx, event); err != nil {
			return err
		}
	}
	zap.S().Info("default events initialized in database")
	return nil
}
