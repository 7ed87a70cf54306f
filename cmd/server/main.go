package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nearbuy/backend/config"
	httpDelivery "github.com/nearbuy/backend/internal/delivery/http"
	"github.com/nearbuy/backend/internal/domain"
	"github.com/nearbuy/backend/internal/infrastructure/gemini"
	"github.com/nearbuy/backend/internal/infrastructure/storage"
	"github.com/nearbuy/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting NearBuy Backend v1.2.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Storage: %s", cfg.Storage.Type)

	// Initialize infrastructure dependencies
	var (
		lists    domain.SavedListRepository
		searches domain.SavedSearchRepository
	)
	switch cfg.Storage.Type {
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open sqlite store at %s: %v", cfg.Storage.Path, err)
		}
		defer store.Close()
		log.Printf("SQLite store: %s", cfg.Storage.Path)
		lists, searches = store, store
	default:
		store := storage.NewMemoryStore()
		log.Printf("WARNING: in-memory store, saved lists and searches are lost on restart")
		lists, searches = store, store
	}

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.RouteModel)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}
	log.Printf("Gemini models: search=%s route=%s", cfg.Gemini.Model, cfg.Gemini.RouteModel)

	// Initialize usecase layer
	searchService := usecase.NewSearchService(geminiClient)
	routeService := usecase.NewRouteService(geminiClient)
	listService := usecase.NewListService(geminiClient, lists)
	savedSearchService := usecase.NewSavedSearchService(searches)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, routeService, listService, savedSearchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
