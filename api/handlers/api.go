package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/databases"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/metrics"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// App stores the router, the live case store and the db connection, so they
// can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Store    *dispatch.Store
	Audit    *audit.Log
	Archive  databases.ArchivedCaseDatabase
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.NewAuth(&a.Config)
	m.SetupGoGuardian()

	r := mux.NewRouter()

	notifier := NewNotifier()
	cases := Case{Store: a.Store}
	mission := Mission{Store: a.Store, Notifier: notifier}
	triageH := Triage{Store: a.Store, Audit: a.Audit}
	sos := Sos{Store: a.Store, Audit: a.Audit, Notifier: notifier}
	auditH := Audit{Log: a.Audit, DB: databases.NewAuditEventDatabase(a.dbHelper)}
	session := Session{Config: a.Config, Audit: a.Audit}
	socket := NewCaseSocket(a.Store, a.Config)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.Handle("/metrics", metrics.Handler())
	r.Handle("/ws", socket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(metrics.Middleware)
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", m.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/session", m.Middleware(http.HandlerFunc(session.CreateSessionHandler))).Methods("POST")

	apiCreate.Handle("/cases", m.Middleware(http.HandlerFunc(cases.CaseHandler))).Methods("GET")
	apiCreate.Handle("/case", m.Middleware(http.HandlerFunc(cases.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}", m.Middleware(http.HandlerFunc(cases.CaseByIDHandler))).Methods("GET")

	apiCreate.Handle("/case/{case_id}/dispatch", m.Middleware(http.HandlerFunc(mission.DispatchHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/accept", m.Middleware(http.HandlerFunc(mission.AcceptHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/phase", m.Middleware(http.HandlerFunc(mission.AdvancePhaseHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/evacuate", m.Middleware(http.HandlerFunc(mission.StartEvacuationHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/cancel", m.Middleware(http.HandlerFunc(mission.CancelHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/finalize", m.Middleware(http.HandlerFunc(mission.FinalizeHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/priority", m.Middleware(http.HandlerFunc(mission.EscalatePriorityHandler))).Methods("PUT")

	apiCreate.Handle("/triage", m.Middleware(http.HandlerFunc(triageH.ClassifyHandler))).Methods("POST")
	apiCreate.Handle("/triage/protocol", m.Middleware(http.HandlerFunc(triageH.ProtocolHandler))).Methods("GET")

	apiCreate.Handle("/sos", m.Middleware(http.HandlerFunc(sos.TriggerHandler))).Methods("POST")

	apiCreate.Handle("/audit", m.Middleware(http.HandlerFunc(auditH.RecentHandler))).Methods("GET")
	apiCreate.Handle("/audit/archive", m.Middleware(http.HandlerFunc(auditH.ArchiveHandler))).Methods("GET")

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
	zap.S().Info("ssm-dispatch-api has connected to the database")

	a.Audit = audit.New(databases.NewAuditEventDatabase(a.dbHelper))
	a.Store = dispatch.NewStore(a.Audit)
	a.Archive = databases.NewArchivedCaseDatabase(a.dbHelper)

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// InitializeForTesting wires the router against an in-memory store without a
// database connection
func (a *App) InitializeForTesting(store *dispatch.Store, log *audit.Log, dbHelper databases.DatabaseHelper) {
	a.Store = store
	a.Audit = log
	a.dbHelper = dbHelper
	a.Archive = databases.NewArchivedCaseDatabase(dbHelper)
	a.initializeRoutes()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
