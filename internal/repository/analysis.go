package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

type AnalysisRepository interface {
	Insert(ctx context.Context, rec *entity.AnalysisRecord) error
	Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisRecord, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*entity.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]*entity.AnalysisRecord, error)
}

type analysisRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewAnalysisRepository(db *sql.DB, logger *slog.Logger) AnalysisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisRepository{db: db, logger: logger, now: time.Now}
}

// fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectCols = `SELECT id, session_id, vessel_id, file_name, sha256, model, result_json, created_at FROM analyses`

// Insert assigns ID and CreatedAt when unset.
func (r *analysisRepository) Insert(ctx context.Context, rec *entity.AnalysisRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	valid, score := 0, 0
	if v := rec.Result.Verdict; v != nil {
		if v.Valid {
			valid = 1
		}
		score = v.ConformityScore
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO analyses (id, session_id, vessel_id, file_name, sha256, document_type, status, valid, score, model, result_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.SessionID, rec.VesselID, rec.FileName, rec.SHA256,
		rec.Result.DocumentType, string(rec.Result.Status), valid, score, rec.Model,
		string(resultJSON), rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		r.logger.Error("failed to insert analysis", "id", rec.ID, "error", err)
		return fmt.Errorf("%w: insert analysis: %w", common.ErrDatabase, err)
	}
	r.logger.Debug("analysis stored", "id", rec.ID, "session_id", rec.SessionID, "document_type", rec.Result.DocumentType)
	return nil
}

func (r *analysisRepository) Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisRecord, error) {
	row := r.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("ANALYSIS_NOT_FOUND", "analysis not found: "+id.String(), common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get analysis: %w", common.ErrDatabase, err)
	}
	return rec, nil
}

// ListBySession returns the session's records, newest first. limit <= 0 means no limit.
func (r *analysisRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entity.AnalysisRecord, error) {
	return r.query(ctx, selectCols+` WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, sessionID, sqlLimit(limit))
}

func (r *analysisRepository) List(ctx context.Context, limit int) ([]*entity.AnalysisRecord, error) {
	return r.query(ctx, selectCols+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, sqlLimit(limit))
}

func (r *analysisRepository) query(ctx context.Context, q string, args ...any) ([]*entity.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list analyses", "error", err)
		return nil, fmt.Errorf("%w: list analyses: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan analysis: %w", common.ErrDatabase, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list analyses: %w", common.ErrDatabase, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*entity.AnalysisRecord, error) {
	var (
		rec        entity.AnalysisRecord
		id         string
		resultJSON string
		createdAt  string
	)
	if err := s.Scan(&id, &rec.SessionID, &rec.VesselID, &rec.FileName, &rec.SHA256, &rec.Model, &resultJSON, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1 // sqlite: no limit
	}
	return limit
}
