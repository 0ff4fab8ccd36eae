package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sahyog-labs/disha/internal/config"
	db "github.com/sahyog-labs/disha/internal/core/database"
	"github.com/sahyog-labs/disha/internal/core/llm"
	"github.com/sahyog-labs/disha/internal/services"
)

type App struct {
	DBClient *db.DatabaseClient
	LLM      *llm.GeminiLLM
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM provider: %w", err)
	}

	careerSvc := services.NewCareerService(dbClient, llmProvider, services.DefaultFallbackLibrary())
	assistantSvc := services.NewAssistantService(dbClient, llmProvider)
	planSvc := services.NewPlanService(dbClient, llmProvider)

	server := NewServer(cfg, dbClient, careerSvc, assistantSvc, planSvc)

	return &App{
		DBClient: dbClient.(*db.DatabaseClient),
		LLM:      llmProvider,
		Server:   server,
	}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
