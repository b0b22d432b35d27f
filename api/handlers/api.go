package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/schoolhub/school-messaging-api/api"
	"github.com/schoolhub/school-messaging-api/api/scheduler"
	"github.com/schoolhub/school-messaging-api/config"
	"github.com/schoolhub/school-messaging-api/databases"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/messaging"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	adb := databases.NewAccountDatabase(a.dbHelper)
	m := api.MiddlewareDB{DB: adb}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	mdb := databases.NewMessageDatabase(a.dbHelper)
	resolver := directory.NewResolver(
		databases.NewStudentDatabase(a.dbHelper),
		databases.NewTeacherDatabase(a.dbHelper),
		databases.NewAdminDatabase(a.dbHelper),
	)
	counter := messaging.NewCounter(mdb)
	store := messaging.NewStore(mdb, resolver, counter)

	msg := Message{Store: store, Counter: counter, Resolver: resolver}
	p := Participant{Resolver: resolver}
	d := Digest{ADB: adb, Config: a.Config}

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/message", api.Middleware(http.HandlerFunc(msg.SendMessageHandler))).Methods("POST")
	apiCreate.Handle("/message/{message_id}", api.Middleware(http.HandlerFunc(msg.MessageByIDHandler))).Methods("GET")
	apiCreate.Handle("/message/{message_id}", api.Middleware(http.HandlerFunc(msg.DeleteMessageHandler))).Methods("DELETE")
	apiCreate.Handle("/messages/inbox/{kind}/{participant_id}", api.Middleware(http.HandlerFunc(msg.InboxHandler))).Methods("GET")
	apiCreate.Handle("/messages/sent/{kind}/{participant_id}", api.Middleware(http.HandlerFunc(msg.SentHandler))).Methods("GET")
	apiCreate.Handle("/messages/unread-count/{kind}/{participant_id}", api.Middleware(http.HandlerFunc(msg.UnreadCountHandler))).Methods("GET")
	apiCreate.Handle("/messages/unread-count/{kind}/{participant_id}/refresh", api.Middleware(http.HandlerFunc(msg.RefreshUnreadCountHandler))).Methods("POST")

	apiCreate.Handle("/participant/{kind}/{participant_id}", api.Middleware(http.HandlerFunc(p.ParticipantHandler))).Methods("GET")

	// reached from email links, deliberately outside the auth middleware
	apiCreate.Handle("/digest/unsubscribe/{token}", http.HandlerFunc(d.UnsubscribeHandler)).Methods("GET")

	return r
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
	zap.S().Info("school-messaging-api has connected to the database")

	// initialize api router
	a.initializeRoutes()

	// start the unread digest scheduler
	a.Scheduler = scheduler.New(
		databases.NewMessageDatabase(a.dbHelper),
		databases.NewAccountDatabase(a.dbHelper),
		directory.NewResolver(
			databases.NewStudentDatabase(a.dbHelper),
			databases.NewTeacherDatabase(a.dbHelper),
			databases.NewAdminDatabase(a.dbHelper),
		),
		a.Config,
	)
	a.Scheduler.Start()

	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}
