package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tfml/tender-console/internal/agent"
	"github.com/tfml/tender-console/internal/db"
	"github.com/tfml/tender-console/internal/docgen"
	"github.com/tfml/tender-console/internal/handlers"
	"github.com/tfml/tender-console/internal/mailer"
	"github.com/tfml/tender-console/internal/repository"
	"github.com/tfml/tender-console/internal/router"
	"github.com/tfml/tender-console/internal/router/config"
	"github.com/tfml/tender-console/internal/services"
	"github.com/tfml/tender-console/internal/session"
	"github.com/tfml/tender-console/internal/templates"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	letterTemplates := templates.NewLoader()
	if cfg.TemplatesDir != "" {
		if err := letterTemplates.LoadFromDir(cfg.TemplatesDir); err != nil {
			logger.Printf("failed to load letter templates: %v", err)
		}
	}

	docWriter, err := docgen.NewWriter(cfg.DocsDir)
	if err != nil {
		log.Fatalf("error initializing document writer: %v", err)
	}

	tenderRepo := repository.NewPostgresTenderRepository(dbPool)
	logMailer := mailer.NewLogMailer(logger)
	sessions := session.NewStore(session.Settings{
		DefaultRecipient: cfg.DefaultRecipient,
		BidEmail:         cfg.BidEmail,
		BidPhone:         cfg.BidPhone,
	})

	tenderService := services.NewTenderService(tenderRepo, agent.NewClient(cfg.AgentURL))
	draftService := services.NewDraftService(tenderRepo, docWriter, letterTemplates, logMailer, cfg.BidEmail)

	if cfg.SeedSampleData {
		seeder := services.NewSeeder(tenderRepo, draftService, logger)
		if err := seeder.Run(context.Background()); err != nil {
			logger.Printf("failed to seed sample data: %v", err)
		}
	}

	tenderHandler := handlers.NewTenderHandler(tenderService, logger, 5*time.Second)
	draftHandler := handlers.NewDraftHandler(draftService, sessions, logger, 5*time.Second)
	settingsHandler := handlers.NewSettingsHandler(sessions, logger)

	routes := router.InitRoutes(tenderHandler, draftHandler, settingsHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
