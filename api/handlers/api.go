package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/config"
	"github.com/sports-hub/sports-hub-api/databases"
	"github.com/sports-hub/sports-hub-api/models"
)

// App stores the router, db connection and shared hubs, so it can be reused
type App struct {
	Router          *mux.Router
	Config          config.Config
	TokenManager    *api.TokenManager
	NotificationHub *NotificationHub
	ChatHub         *ChatHub
	dbHelper        databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	udb := databases.NewUserDatabase(a.dbHelper)
	edb := databases.NewEventDatabase(a.dbHelper)
	tdb := databases.NewRefreshTokenDatabase(a.dbHelper)
	mdb := databases.NewChatMessageDatabase(a.dbHelper)

	u := User{DB: udb, TDB: tdb, TM: a.TokenManager}
	e := Event{DB: edb, MDB: mdb}
	ro := Roster{EDB: edb, UDB: udb}
	av := Avatar{UDB: udb}
	rt := Realtime{NotificationHub: a.NotificationHub, ChatHub: a.ChatHub, MDB: mdb}
	adm := Admin{
		ADB: databases.NewAdminDatabase(a.dbHelper),
		UDB: udb,
		EDB: edb,
		CDB: databases.NewCategoryDatabase(a.dbHelper),
		SDB: databases.NewSettingsDatabase(a.dbHelper),
		TDB: tdb,
		HDB: databases.NewNotificationHistoryDatabase(a.dbHelper),
		TM:  a.TokenManager,
	}
	notifier := a.Notifier()

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/", rootHandler).Methods("GET")

	// websocket routes stay off this subrouter; the timeout middleware would
	// kill long-lived connections
	apiCreate := r.PathPrefix("/api").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/register", http.HandlerFunc(u.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/login", http.HandlerFunc(u.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/refresh", http.HandlerFunc(u.RefreshTokenHandler)).Methods("POST")
	apiCreate.Handle("/logout", api.Middleware(a.TokenManager, http.HandlerFunc(u.LogoutHandler))).Methods("POST")

	apiCreate.Handle("/events", http.HandlerFunc(e.EventsHandler)).Methods("GET")
	apiCreate.Handle("/categories", http.HandlerFunc(adm.CategoriesHandler)).Methods("GET")

	apiCreate.Handle("/events/{eventId}/join", api.Middleware(a.TokenManager, http.HandlerFunc(ro.JoinEventHandler))).Methods("POST")
	apiCreate.Handle("/teams/leave", api.Middleware(a.TokenManager, http.HandlerFunc(ro.LeaveTeamHandler))).Methods("POST")

	apiCreate.Handle("/profile/update", api.Middleware(a.TokenManager, http.HandlerFunc(u.UpdateProfileHandler))).Methods("POST")
	apiCreate.Handle("/profile/avatar-upload", api.Middleware(a.TokenManager, http.HandlerFunc(av.UploadHandler))).Methods("POST")
	apiCreate.Handle("/notifications/mark-read", api.Middleware(a.TokenManager, http.HandlerFunc(u.MarkNotificationsReadHandler))).Methods("POST")
	apiCreate.Handle("/chat/{teamName}", api.Middleware(a.TokenManager, http.HandlerFunc(e.ChatHistoryHandler))).Methods("GET")

	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.LoginHandler)).Methods("POST")

	adminCreate := apiCreate.PathPrefix("/admin").Subrouter()
	adminCreate.Handle("/users", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.UsersHandler))).Methods("GET")
	adminCreate.Handle("/users/{userId}", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.UpdateUserHandler))).Methods("PUT")
	adminCreate.Handle("/users/{userId}", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.DeleteUserHandler))).Methods("DELETE")
	adminCreate.Handle("/users/{userId}/reset-password", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.ResetPasswordHandler))).Methods("POST")

	adminCreate.Handle("/events", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.CreateEventHandler))).Methods("POST")
	adminCreate.Handle("/events/{eventId}", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.UpdateEventHandler))).Methods("PUT")
	adminCreate.Handle("/events/{eventId}", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.DeleteEventHandler))).Methods("DELETE")

	adminCreate.Handle("/categories", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.CreateCategoryHandler))).Methods("POST")
	adminCreate.Handle("/categories/{categoryId}", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.UpdateCategoryHandler))).Methods("PUT")
	adminCreate.Handle("/categories/{categoryId}", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.DeleteCategoryHandler))).Methods("DELETE")

	adminCreate.Handle("/settings", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.SettingsHandler))).Methods("GET")
	adminCreate.Handle("/settings", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.UpdateSettingsHandler))).Methods("PUT")

	adminCreate.Handle("/notifications/send", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(notifier.SendHandler))).Methods("POST")
	adminCreate.Handle("/notifications/history", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(notifier.HistoryHandler))).Methods("GET")

	adminCreate.Handle("/analytics", api.AdminMiddleware(a.TokenManager, http.HandlerFunc(adm.AnalyticsHandler))).Methods("GET")

	// websocket endpoints authenticate in-band with register and join frames
	r.HandleFunc("/ws/notifications", rt.NotificationsWebSocketHandler)
	r.HandleFunc("/ws/chat", rt.ChatWebSocketHandler)

	return r
}

// Notifier builds the notification fan-out used by the router and the
// scheduler, sharing the same hub so realtime delivery reaches live sockets
func (a *App) Notifier() Notifier {
	return Notifier{
		UDB: databases.NewUserDatabase(a.dbHelper),
		HDB: databases.NewNotificationHistoryDatabase(a.dbHelper),
		SDB: databases.NewScheduledNotificationDatabase(a.dbHelper),
		Hub: a.NotificationHub,
	}
}

// ScheduledNotificationDB exposes the pending notification store for the scheduler
func (a *App) ScheduledNotificationDB() databases.ScheduledNotificationDatabase {
	return databases.NewScheduledNotificationDatabase(a.dbHelper)
}

// RefreshTokenDB exposes the refresh token store for the scheduler sweep
func (a *App) RefreshTokenDB() databases.RefreshTokenDatabase {
	return databases.NewRefreshTokenDatabase(a.dbHelper)
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("sports-hub-api has connected to the database")

	if err := databases.Bootstrap(context.Background(), a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to bootstrap database")
		return err
	}

	a.TokenManager = api.NewTokenManager(a.Config.JWTSecret, a.Config.JWTRefreshSecret)
	a.NotificationHub = NewNotificationHub()
	a.ChatHub = NewChatHub()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(map[string]interface{}{
		"message":   "SportsHub Backend API",
		"status":    "Running",
		"version":   "3.0.0",
		"timestamp": time.Now(),
	})
	w.Write(b)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// writeMessage writes a single-field json message body with the given status
func writeMessage(w http.ResponseWriter, status int, message string) {
	b, _ := json.Marshal(models.MessageResponse{Message: message})
	w.WriteHeader(status)
	w.Write(b)
}

// eventIDFromRequest parses the public event id path variable; on failure it
// writes the 400 response and returns false
func eventIDFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	eventID, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		config.ErrorStatus("Invalid event ID format.", http.StatusBadRequest, w, err)
		return 0, false
	}
	return eventID, true
}
