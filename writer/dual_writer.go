package writer

import (
	"fmt"
	"sync"

	"github.com/ukwa-discovery/title-export/models"
)

// DualWriter outputs the OAI-PMH XML and the JSONL record dump
// simultaneously.
type DualWriter struct {
	xmlWriter  *XMLWriter
	jsonWriter *JSONWriter
	mu         sync.Mutex
}

// NewDualWriter creates a writer producing both output forms.
func NewDualWriter(xmlFilename, jsonFilename string) (*DualWriter, error) {
	xmlWriter, err := NewXMLWriter(xmlFilename)
	if err != nil {
		return nil, fmt.Errorf("create xml writer: %w", err)
	}

	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		xmlWriter.Close()
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	return &DualWriter{
		xmlWriter:  xmlWriter,
		jsonWriter: jsonWriter,
	}, nil
}

// Write writes the result through both writers.
func (dw *DualWriter) Write(result *models.ExportResult) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if err := dw.xmlWriter.Write(result); err != nil {
		return fmt.Errorf("xml write failed: %w", err)
	}
	if err := dw.jsonWriter.Write(result); err != nil {
		return fmt.Errorf("json write failed: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	var errs []error
	if err := dw.xmlWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("xml close failed: %w", err))
	}
	if err := dw.jsonWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("json close failed: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors: %v", errs)
	}
	return nil
}

// Validate validates both output files.
func (dw *DualWriter) Validate() error {
	var errs []error
	if err := dw.xmlWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("xml validation failed: %w", err))
	}
	if err := dw.jsonWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("json validation failed: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %v", errs)
	}
	return nil
}
