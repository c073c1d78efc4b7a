package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	repo "github.com/joseph-ayodele/port-compliance/internal/repository"
)

func main() {
	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		log.Println("ERROR: DB_DSN env var is required")
		log.Println("  example: export DB_DSN='file:/var/lib/portd/analyses.db'")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repo.Open(ctx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer repo.Close(db, nil)

	if err := repo.HealthCheck(ctx, db, 1*time.Second); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Println("DB health: OK")

	recs, err := repo.NewAnalysisRepository(db, nil).List(ctx, 20)
	if err != nil {
		log.Fatalf("listing analyses: %v", err)
	}
	log.Printf("recent analyses: %d", len(recs))
	for _, r := range recs {
		score := "-"
		if v := r.Result.Verdict; v != nil {
			score = strconv.Itoa(v.ConformityScore)
		}
		log.Printf("- [%s] %s %s %s score=%s", r.CreatedAt.Format(time.RFC3339), r.SessionID, r.Result.DocumentType, r.FileName, score)
	}
}
