package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/internal/repository"
	"github.com/noah-isme/ethics-case-api/pkg/config"
	"github.com/noah-isme/ethics-case-api/pkg/database"
	"github.com/noah-isme/ethics-case-api/pkg/logger"
)

// case-seed applies the schema and registers demo cases for local runs.
func main() {
	var (
		migrationPath string
		count         int
		severity      string
		timeout       time.Duration
	)
	flag.StringVar(&migrationPath, "migration", "migrations/0001_case_workflow.sql", "Schema file to apply; empty skips it")
	flag.IntVar(&count, "count", 3, "Number of REGISTERED cases to create")
	flag.StringVar(&severity, "severity", string(models.SeverityMedium), "Severity of the created cases")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	sev := models.Severity(severity)
	if sev.Rank() == 0 {
		log.Fatalf("unknown severity %q", severity)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if migrationPath != "" {
		schema, err := os.ReadFile(migrationPath)
		if err != nil {
			logr.Fatal("failed to read migration", zap.String("path", migrationPath), zap.Error(err))
		}
		if _, err := db.ExecContext(ctx, string(schema)); err != nil {
			logr.Fatal("failed to apply migration", zap.String("path", migrationPath), zap.Error(err))
		}
		logr.Info("migration applied", zap.String("path", migrationPath))
	}

	repo := repository.NewCaseRepository(db)
	for i := 0; i < count; i++ {
		c := &models.Case{
			Severity:    sev,
			Categories:  []string{"conduct"},
			Description: fmt.Sprintf("Demo report %d", i+1),
			Version:     1,
		}
		if err := repo.Create(ctx, c); err != nil {
			logr.Fatal("failed to create case", zap.Error(err))
		}
		fmt.Printf("%s\t%s\t%s\n", c.ID, c.Protocol, c.Status)
	}
}
