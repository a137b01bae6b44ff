package api

import (
	"net/http"

	"github.com/agrirobotics/datalake/api/middleware"
	"github.com/agrirobotics/datalake/api/resources"
	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/ingestservice"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.AuthMiddleware
	resources *resources.Resources
}

func NewRouter(svc *ingestservice.IngestService, tokens *auth.TokenService, maxUploadSize int64, health http.HandlerFunc) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewAuthMiddleware(tokens, svc),
		resources: resources.NewResources(svc, tokens, maxUploadSize),
	}

	r.resources.SetHealthCheck(health)
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/token", r.resources.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/token/", r.resources.Auth.Login).Methods(http.MethodPost)

	// Protected routes: every ingest endpoint, image upload and
	// predictions included, runs behind the same auth middleware.
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Missions
	missions := protected.PathPrefix("/missions").Subrouter()
	missions.HandleFunc("", r.resources.Missions.ListMissions).Methods(http.MethodGet)
	missions.HandleFunc("/", r.resources.Missions.ListMissions).Methods(http.MethodGet)
	missions.HandleFunc("", r.resources.Missions.CreateMission).Methods(http.MethodPost)
	missions.HandleFunc("/", r.resources.Missions.CreateMission).Methods(http.MethodPost)
	missions.HandleFunc("/{id:[0-9]+}", r.resources.Missions.GetMission).Methods(http.MethodGet)
	missions.HandleFunc("/{id:[0-9]+}/robot_state", r.resources.Missions.GetRobotStates).Methods(http.MethodGet)
	missions.HandleFunc("/{id:[0-9]+}/robot_state", r.resources.Missions.AddRobotStates).Methods(http.MethodPost)
	missions.HandleFunc("/{id:[0-9]+}/robot_state/latest", r.resources.Missions.GetLatestRobotState).Methods(http.MethodGet)
	missions.HandleFunc("/{id:[0-9]+}/agri_events", r.resources.Missions.GetAgriEvents).Methods(http.MethodGet)
	missions.HandleFunc("/{id:[0-9]+}/agri_events", r.resources.Missions.AddAgriEvents).Methods(http.MethodPost)
	missions.HandleFunc("/{mission_id:[0-9]+}/images", r.resources.Images.UploadImage).Methods(http.MethodPost)

	// Images
	images := protected.PathPrefix("/images").Subrouter()
	images.HandleFunc("/{image_id:[0-9]+}/predictions", r.resources.Images.AddPredictions).Methods(http.MethodPost)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
