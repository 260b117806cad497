// Package api provides the HTTP API for CareMate.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/api/handler"
	"github.com/caremate/caremate/internal/api/middleware"
	"github.com/caremate/caremate/internal/consultation"
	"github.com/caremate/caremate/internal/conversation"
	"github.com/caremate/caremate/internal/medication"
	"github.com/caremate/caremate/internal/record"
	"github.com/caremate/caremate/internal/user"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version             string
	BuildTime           string
	Logger              zerolog.Logger
	ServiceName         string
	Metrics             *middleware.Metrics
	UserService         *user.Service
	ConversationService *conversation.Service
	ConsultationService *consultation.Service
	RecordService       *record.Service
	MedicationService   *medication.Service
	StatusReporter      handler.StatusReporter
	ReadyChecks         []handler.ReadyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "caremate-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.StatusReporter, cfg.ReadyChecks)
	userHandler := handler.NewUserHandler(cfg.UserService)
	conversationHandler := handler.NewConversationHandler(cfg.ConversationService, cfg.ConsultationService)
	recordHandler := handler.NewRecordHandler(cfg.RecordService)
	medicationHandler := handler.NewMedicationHandler(cfg.MedicationService)

	// Create rate limit middleware for different endpoint categories
	chatRateLimit := middleware.RateLimitByIP(middleware.ChatRateLimit)         // 20 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
			r.Get("/assistant", opsHandler.AssistantStatus)
		})

		// User endpoints - standard rate limiting
		r.Route("/users", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)

				// Health records
				r.Route("/records", func(r chi.Router) {
					r.Get("/", recordHandler.ListRecords)
					r.Post("/", recordHandler.CreateRecord)
					r.Route("/{recordId}", func(r chi.Router) {
						r.Get("/", recordHandler.GetRecord)
						r.Put("/", recordHandler.UpdateRecord)
						r.Delete("/", recordHandler.DeleteRecord)
					})
				})

				// Medications
				r.Route("/medications", func(r chi.Router) {
					r.Get("/", medicationHandler.ListMedications)
					r.Post("/", medicationHandler.CreateMedication)
					r.Route("/{medicationId}", func(r chi.Router) {
						r.Get("/", medicationHandler.GetMedication)
						r.Put("/", medicationHandler.UpdateMedication)
						r.Delete("/", medicationHandler.DeleteMedication)
					})
				})
			})
		})

		// Conversation endpoints
		r.Route("/conversations", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", conversationHandler.ListConversations)
			r.With(standardRateLimit).Post("/", conversationHandler.CreateConversation)
			r.Route("/{conversationId}", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", conversationHandler.GetConversation)
				r.With(standardRateLimit).Delete("/", conversationHandler.DeleteConversation)
				r.With(standardRateLimit).Get("/messages", conversationHandler.ListMessages)
				// Message send hits the assistant providers, so it gets
				// the stricter chat limit.
				r.With(chatRateLimit).Post("/messages", conversationHandler.SendMessage)
			})
		})
	})

	return r
}
