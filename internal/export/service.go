package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/repository"
	"github.com/joseph-ayodele/port-compliance/internal/utils"
)

const sheet = "Conformidade"

var headers = []string{
	"Data",
	"Tipo de Documento",
	"Arquivo",
	"Status",
	"Válido",
	"Score",
	"Campos Encontrados",
	"Campos Faltantes",
	"Observações",
	"Recomendações",
}

// Service produces XLSX compliance reports from the analysis history.
type Service struct {
	analyses repository.AnalysisRepository
	logger   *slog.Logger
}

func NewService(analyses repository.AnalysisRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{analyses: analyses, logger: logger}
}

// ExportAnalysesXLSX returns a workbook of the session's analyses, newest first.
func (s *Service) ExportAnalysesXLSX(ctx context.Context, sessionID string) ([]byte, error) {
	start := time.Now()
	recs, err := s.analyses.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	b, err := WriteAnalysesXLSX(recs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"session_id", sessionID,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// WriteAnalysesXLSX renders records into a single "Conformidade" sheet.
func WriteAnalysesXLSX(recs []*entity.AnalysisRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, utils.FormatBR(r.CreatedAt))
		write(2, r.Result.DocumentType)
		write(3, r.FileName)
		write(4, string(r.Result.Status))

		v := r.Result.Verdict
		if v == nil {
			// rejected upload: no verdict, keep the reason
			write(5, "")
			write(6, "")
			write(9, r.Result.Message)
			continue
		}
		write(5, yesNo(v.Valid))
		write(6, v.ConformityScore)
		write(7, strings.Join(v.FieldsFound, ", "))
		write(8, strings.Join(v.FieldsMissing, ", "))
		write(9, strings.Join(v.Observations, "; "))
		write(10, strings.Join(v.Recommendations, "; "))
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // date
	_ = f.SetColWidth(sheet, "B", "C", 24)
	_ = f.SetColWidth(sheet, "D", "F", 10)
	_ = f.SetColWidth(sheet, "G", "H", 36)
	_ = f.SetColWidth(sheet, "I", "J", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
