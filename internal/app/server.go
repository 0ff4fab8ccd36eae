package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sahyog-labs/disha/internal/api/handlers"
	appMiddleware "github.com/sahyog-labs/disha/internal/api/middlewares"
	"github.com/sahyog-labs/disha/internal/config"
	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, dbClient core.DbClient, careers *services.CareerService, assistant *services.AssistantService, plans *services.PlanService) *Server {
	authHandler := handlers.NewAuthHandler(dbClient, cfg)
	onboardingHandler := handlers.NewOnboardingHandler(dbClient, plans)
	collegeHandler := handlers.NewCollegeHandler(dbClient)
	quizHandler := handlers.NewQuizHandler(dbClient)
	careerHandler := handlers.NewCareerHandler(careers)
	assistantHandler := handlers.NewAssistantHandler(assistant)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)
		api.Get("/colleges", collegeHandler.List)
		api.Post("/quiz/submit", quizHandler.Submit)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
			protected.Get("/auth/me", authHandler.Me)
			protected.Post("/onboarding", onboardingHandler.Save)
			protected.Get("/onboarding", onboardingHandler.Get)
			protected.Get("/career-mapping/{course}", careerHandler.GetMapping)
			protected.Post("/career-mapping/{course}/regenerate", careerHandler.Regenerate)
			protected.Get("/assistant/history", assistantHandler.History)
			protected.Post("/assistant/chat", assistantHandler.Chat)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
