// Package ingest discovers compliance documents on disk. Documents live under
// <root>/<DocumentType>/<file>.pdf; the folder name selects the rule entry.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
)

// Document is one file found under a document-type folder.
type Document struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	DocumentType string `json:"document_type"`
	Size         int64  `json:"size"`
	MIMEType     string `json:"mime_type"`
	SHA256       string `json:"sha256"`
}

// Stats summarizes a scan.
type Stats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanError records a file that matched but could not be described.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string { return e.Path + ": " + e.Err.Error() }

// Scan walks root two levels deep. Hidden entries are ignored, files placed directly in
// root are skipped, and per-file failures are returned alongside the documents.
func Scan(root string) ([]Document, Stats, []ScanError, error) {
	if strings.TrimSpace(root) == "" {
		return nil, Stats{}, nil, errors.New("root path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, Stats{}, nil, err
	}
	if !info.IsDir() {
		return nil, Stats{}, nil, fmt.Errorf("%s is not a directory", root)
	}

	var (
		docs   []Document
		stats  Stats
		failed []ScanError
	)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if path == root {
			return walkErr
		}
		if walkErr != nil {
			failed = append(failed, ScanError{Path: path, Err: walkErr})
			stats.Failed++
			return nil
		}
		if IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		depth := depthOf(root, path)
		if d.IsDir() {
			if depth > 1 {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if depth != 2 || !Allowed(path) {
			stats.Skipped++
			return nil
		}
		stats.Matched++

		doc, err := Describe(root, path)
		if err != nil {
			failed = append(failed, ScanError{Path: path, Err: err})
			stats.Failed++
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return docs, stats, failed, fmt.Errorf("walk: %w", err)
	}
	return docs, stats, failed, nil
}

// Describe stats and hashes one file. The document type is its parent folder name.
func Describe(root, path string) (Document, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Document{}, err
	}
	docType := filepath.Base(filepath.Dir(rel))
	if docType == "." || docType == "" {
		return Document{}, fmt.Errorf("%s is not inside a document type folder", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Document{}, err
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Document{}, fmt.Errorf("hash: %w", err)
	}
	return Document{
		Path:         path,
		Name:         filepath.Base(path),
		DocumentType: docType,
		Size:         info.Size(),
		MIMEType:     constants.MIMEFromExt(filepath.Ext(path)),
		SHA256:       hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Load reads the document into an upload for the pipeline.
func Load(doc Document) (pipeline.Upload, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return pipeline.Upload{}, err
	}
	mime := doc.MIMEType
	if mime == "" {
		mime = constants.MIMEFromExt(filepath.Ext(doc.Path))
	}
	return pipeline.Upload{Name: doc.Name, Data: data, MIMEType: mime}, nil
}

func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return -1
	}
	return len(strings.Split(filepath.ToSlash(rel), "/"))
}
