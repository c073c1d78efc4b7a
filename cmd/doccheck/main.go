package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/internal/app"
	"github.com/joseph-ayodele/port-compliance/internal/async"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/filecheck"
	"github.com/joseph-ayodele/port-compliance/internal/ingest"
)

// line is one JSON line on stdout per processed document.
type line struct {
	Path         string                   `json:"path"`
	DocumentType string                   `json:"document_type"`
	VesselID     string                   `json:"vessel_id,omitempty"`
	SHA256       string                   `json:"sha256"`
	Result       *entity.ProcessingResult `json:"result,omitempty"`
	Error        string                   `json:"error,omitempty"`
	ElapsedMS    int64                    `json:"elapsed_ms"`
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		root     = flag.String("root", "", "directory laid out as <root>/<DocumentType>/*.pdf")
		file     = flag.String("file", "", "single PDF to check (requires --type)")
		docType  = flag.String("type", "", "document type for --file")
		vesselID = flag.String("vessel", "", "vessel id to attach results to (optional)")
		out      = flag.String("out", "", "write an XLSX report of the run to this path (optional)")
		workers  = flag.Int("workers", 4, "concurrent documents")
		timeout  = flag.Duration("timeout", 2*time.Minute, "per-document processing timeout")
		watch    = flag.Bool("watch", false, "keep watching --root for new documents")
		sess     = flag.String("session", "doccheck", "session id the results are stored under")
	)
	flag.Parse()

	if (*root == "") == (*file == "") {
		printError("Error: exactly one of --root or --file is required\n")
		os.Exit(2)
	}
	if *file != "" && *docType == "" {
		printError("Error: --type is required with --file\n")
		os.Exit(2)
	}
	if *watch && *root == "" {
		printError("Error: --watch requires --root\n")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	logger := cfg.Log.NewLoggerTo(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if !a.Processor.Available() {
		printError("Error: %v (set OPENAI_API_KEY or LLM_PROVIDER=vertex with VERTEX_PROJECT)\n", common.ErrAnalyzerUnavailable)
		os.Exit(3)
	}

	var (
		docs    sync.Map // job id -> ingest.Document
		enc     = json.NewEncoder(os.Stdout)
		encMu   sync.Mutex
		failed  atomic.Int32
		handled atomic.Int32
	)
	queue := async.NewQueue(a.Sessions.Get(*sess), logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(2*(*workers)),
		async.WithProcessTimeout(*timeout),
		async.WithResultHandler(func(r async.Result) {
			l := line{
				DocumentType: r.Job.DocumentType,
				VesselID:     r.Job.VesselID,
				ElapsedMS:    r.Elapsed.Milliseconds(),
			}
			if v, ok := docs.LoadAndDelete(r.Job.ID); ok {
				d := v.(ingest.Document)
				l.Path, l.SHA256 = d.Path, d.SHA256
			}
			if r.Err != nil {
				l.Error = r.Err.Error()
				failed.Add(1)
			}
			if r.Result.Status != "" {
				res := r.Result
				l.Result = &res
			}
			handled.Add(1)
			encMu.Lock()
			defer encMu.Unlock()
			_ = enc.Encode(l)
		}),
	)

	precheck := filecheck.NewValidator(a.Catalog)
	submit := func(d ingest.Document) error {
		fv, err := precheck.Validate(d.Size, d.MIMEType, d.DocumentType)
		if err != nil {
			failed.Add(1)
			encMu.Lock()
			_ = enc.Encode(line{Path: d.Path, DocumentType: d.DocumentType, SHA256: d.SHA256, Error: err.Error()})
			encMu.Unlock()
			return nil
		}
		if !fv.Accepted() {
			logger.Info("doccheck.precheck.rejected", "path", d.Path, "size_mb", fv.SizeMB, "mime", fv.DeclaredMIMEType)
		}
		up, err := ingest.Load(d)
		if err != nil {
			failed.Add(1)
			logger.Error("doccheck.load_failed", "path", d.Path, "error", err)
			return nil
		}
		job := async.Job{ID: uuid.New(), DocumentType: d.DocumentType, VesselID: *vesselID, Upload: up}
		docs.Store(job.ID, d)
		return queue.Enqueue(ctx, job)
	}

	switch {
	case *file != "":
		abs, _ := filepath.Abs(*file)
		d, err := ingest.Describe(filepath.Dir(filepath.Dir(abs)), abs)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		d.DocumentType = *docType
		if err := submit(d); err != nil {
			logger.Error("doccheck.enqueue_failed", "error", err)
		}
	case *watch:
		docCh, errCh, err := ingest.Watch(ctx, ingest.WatchConfig{Root: *root, InitialScan: true, Logger: logger})
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("doccheck.watching", "root", *root)
		for docCh != nil {
			select {
			case d, ok := <-docCh:
				if !ok {
					docCh = nil
					continue
				}
				if err := submit(d); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("doccheck.enqueue_failed", "path", d.Path, "error", err)
				}
			case err, ok := <-errCh:
				if ok {
					logger.Warn("doccheck.watch_error", "error", err)
				} else {
					errCh = nil
				}
			}
		}
	default:
		found, stats, scanErrs, err := ingest.Scan(*root)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		for _, e := range scanErrs {
			logger.Warn("doccheck.scan_failed", "path", e.Path, "error", e.Err)
			failed.Add(1)
		}
		logger.Info("doccheck.scanned",
			"root", *root,
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"skipped", stats.Skipped,
		)
		for _, d := range found {
			if err := submit(d); err != nil {
				logger.Error("doccheck.enqueue_failed", "path", d.Path, "error", err)
				break
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *timeout+10*time.Second)
	defer cancel()
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Warn("doccheck.shutdown", "error", err)
	}

	if *out != "" {
		data, err := a.Exporter.ExportAnalysesXLSX(context.Background(), *sess)
		if err != nil {
			logger.Error("doccheck.export_failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("doccheck.export_failed", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("doccheck.report_written", "path", *out)
	}

	logger.Info("doccheck.done", "processed", handled.Load(), "failed", failed.Load())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
