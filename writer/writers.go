// Package writer persists export results to durable storage.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ukwa-discovery/title-export/models"
	"github.com/ukwa-discovery/title-export/oaipmh"
)

// OutputWriter defines the interface for export output.
type OutputWriter interface {
	Write(result *models.ExportResult) error
	Close() error
	Validate() error
}

// XMLWriter serializes the record set as OAI-PMH XML. The document is
// staged in a temporary file and only renamed into place on Close, so a
// failed run leaves no partial output behind.
type XMLWriter struct {
	path  string
	tmp   *os.File
	wrote bool
	mu    sync.Mutex
}

// NewXMLWriter stages an XML output file next to its final location.
func NewXMLWriter(filename string) (*XMLWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".title-export-*.xml")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}

	return &XMLWriter{
		path: filename,
		tmp:  tmp,
	}, nil
}

// Write serializes the records into the staging file.
func (xw *XMLWriter) Write(result *models.ExportResult) error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	data, err := oaipmh.Serialize(result.Records)
	if err != nil {
		return fmt.Errorf("serialize records: %w", err)
	}
	if _, err := xw.tmp.Write(data); err != nil {
		return fmt.Errorf("write staging file: %w", err)
	}
	xw.wrote = true
	return nil
}

// Close publishes the staged document, or discards it if nothing was
// written.
func (xw *XMLWriter) Close() error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	if err := xw.tmp.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	if !xw.wrote {
		os.Remove(xw.tmp.Name())
		return nil
	}
	if err := os.Rename(xw.tmp.Name(), xw.path); err != nil {
		return fmt.Errorf("publish xml output: %w", err)
	}
	return nil
}

// Validate ensures the published file exists and has content.
func (xw *XMLWriter) Validate() error {
	info, err := os.Stat(xw.path)
	if err != nil {
		return fmt.Errorf("stat xml output: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("xml output is empty")
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records, one per publication,
// as an operator-inspectable sidecar to the XML export.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends records in JSONL format.
func (jw *JSONWriter) Write(result *models.ExportResult) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, rec := range result.Records {
		if rec == nil {
			continue
		}
		if err := jw.encoder.Encode(rec); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
