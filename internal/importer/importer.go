// Package importer feeds finalized session records from third-party
// exports into the historical store and reconciles duplicates after.
// Per-format parsing happens upstream; sources hand over records in the
// normalized interchange shape.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/feltline/feltline/internal/domain/history"
)

// Source yields normalized finalized session records. Next returns
// io.EOF when the source is exhausted.
type Source interface {
	Next() (*history.Record, error)
}

// HistoryService receives imported records and runs the duplicate sweep.
type HistoryService interface {
	Write(ctx context.Context, userID string, rec *history.Record) (string, error)
	SweepDuplicates(ctx context.Context, userID string) (int, error)
}

// Result summarizes a batch import run.
type Result struct {
	Imported          int
	Failed            int
	DuplicatesRemoved int
}

// Importer submits records through the history service.
type Importer struct {
	history HistoryService
	logger  *slog.Logger
}

// New creates an importer.
func New(history HistoryService, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{history: history, logger: logger}
}

// Run drains the source, writing each record, then sweeps duplicates.
// Individual write failures are counted and logged; a source read
// failure aborts the run.
func (i *Importer) Run(ctx context.Context, userID string, src Source) (Result, error) {
	var res Result
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading import source: %w", err)
		}

		if _, err := i.history.Write(ctx, userID, rec); err != nil {
			res.Failed++
			i.logger.Warn("skipping unimportable record", "user", userID, "error", err)
			continue
		}
		res.Imported++
	}

	removed, err := i.history.SweepDuplicates(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("sweeping duplicates: %w", err)
	}
	res.DuplicatesRemoved = removed

	i.logger.Info("import finished",
		"user", userID,
		"imported", res.Imported,
		"failed", res.Failed,
		"duplicates_removed", res.DuplicatesRemoved,
	)
	return res, nil
}

// JSONLines reads newline-delimited record objects.
type JSONLines struct {
	dec *json.Decoder
}

// NewJSONLines creates a source over a JSON Lines stream.
func NewJSONLines(r io.Reader) *JSONLines {
	return &JSONLines{dec: json.NewDecoder(r)}
}

// Next decodes the next record.
func (s *JSONLines) Next() (*history.Record, error) {
	var rec history.Record
	if err := s.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &rec, nil
}
