package rules

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Documents []Entry `yaml:"documents"`
}

// Load reads a YAML rule catalog:
//
//	documents:
//	  - document_type: DUE
//	    required_fields: [numero_due, navio]
//	    format: PDF
//	    max_size_mb: 10
//	    description: Declaração Única de Exportação
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if len(f.Documents) == 0 {
		return nil, fmt.Errorf("decode rules: no documents defined")
	}
	return New(f.Documents...)
}

// LoadFile reads a YAML rule catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// FromConfig returns the catalog at path, or the default catalog when path is empty.
func FromConfig(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
