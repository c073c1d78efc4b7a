package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

func openTestDB(t *testing.T) AnalysisRepository {
	t.Helper()
	cfg := common.DatabaseConfig{DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared", MaxOpenConns: 2}
	db, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := HealthCheck(context.Background(), db, time.Second); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	return NewAnalysisRepository(db, nil)
}

func record(session string, score int, at time.Time) *entity.AnalysisRecord {
	return &entity.AnalysisRecord{
		SessionID: session,
		FileName:  "due.pdf",
		SHA256:    "abc",
		Model:     "gpt-4o",
		CreatedAt: at,
		Result: entity.ProcessingResult{
			Status:       constants.ProcessingSuccess,
			DocumentType: "DUE",
			Verdict: &entity.Verdict{
				Valid:           score >= 70,
				FieldsFound:     []string{"navio"},
				FieldsMissing:   []string{"carga"},
				Observations:    []string{},
				ConformityScore: score,
				Recommendations: []string{},
				Kind:            constants.VerdictAI,
			},
			PageCount: 2,
		},
	}
}

func TestAnalysisRepository_InsertGet(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	rec := record("s1", 80, time.Time{})
	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID == uuid.Nil || rec.CreatedAt.IsZero() {
		t.Fatal("Insert should assign id and timestamp")
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Result.Verdict == nil || got.Result.Verdict.ConformityScore != 80 || got.Result.PageCount != 2 {
		t.Errorf("round trip: got %+v", got.Result)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, rec.CreatedAt)
	}

	_, err = repo.Get(ctx, uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}
}

func TestAnalysisRepository_ListBySession(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	for i, r := range []*entity.AnalysisRecord{
		record("s1", 10, base),
		record("s1", 20, base.Add(500*time.Millisecond)),
		record("s2", 30, base.Add(time.Second)),
		record("s1", 40, base.Add(2*time.Second)),
	} {
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := repo.ListBySession(ctx, "s1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len: got %d, want 3", len(got))
	}
	wantScores := []int{40, 20, 10}
	for i, w := range wantScores {
		if got[i].Result.Verdict.ConformityScore != w {
			t.Errorf("order[%d]: got %d, want %d", i, got[i].Result.Verdict.ConformityScore, w)
		}
	}

	limited, _ := repo.ListBySession(ctx, "s1", 1)
	if len(limited) != 1 {
		t.Errorf("limit: got %d", len(limited))
	}
	all, _ := repo.List(ctx, 0)
	if len(all) != 4 {
		t.Errorf("List: got %d, want 4", len(all))
	}
}

func TestAnalysisRepository_RejectedResult(t *testing.T) {
	repo := openTestDB(t)
	rec := &entity.AnalysisRecord{
		SessionID: "s1",
		FileName:  "foto.png",
		Result: entity.ProcessingResult{
			Status:       constants.ProcessingError,
			Message:      "Formato de arquivo inválido. Apenas PDF é aceito.",
			DocumentType: "DUE",
		},
	}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Result.Verdict != nil || got.Result.Message == "" {
		t.Errorf("got %+v", got.Result)
	}
}
