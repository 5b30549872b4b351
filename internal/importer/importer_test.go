package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/importer"
	"github.com/stretchr/testify/require"
)

type fakeHistoryService struct {
	written    []history.Record
	sweepCount int
	swept      bool
}

func (f *fakeHistoryService) Write(_ context.Context, _ string, rec *history.Record) (string, error) {
	if rec.GameName == "bad" {
		return "", errors.New("rejected")
	}
	f.written = append(f.written, *rec)
	return rec.ID, nil
}

func (f *fakeHistoryService) SweepDuplicates(_ context.Context, _ string) (int, error) {
	f.swept = true
	return f.sweepCount, nil
}

const sampleJSONL = `{"id":"r1","game_name":"NL Hold'em","stakes":"2/5","start_time":"2025-06-01T19:00:00Z","end_time":"2025-06-01T21:00:00Z","hours_played":2,"buy_in":50000,"cashout":72000,"profit":22000,"created_at":"2025-06-01T21:00:00Z"}
{"id":"r2","game_name":"bad","stakes":"1/2","start_time":"2025-06-02T19:00:00Z","end_time":"2025-06-02T20:00:00Z","hours_played":1,"buy_in":20000,"cashout":0,"created_at":"2025-06-02T20:00:00Z"}
{"id":"r3","game_name":"PLO","stakes":"1/2","start_time":"2025-06-03T19:00:00Z","end_time":"2025-06-03T23:00:00Z","hours_played":4,"buy_in":30000,"cashout":61000,"profit":31000,"created_at":"2025-06-03T23:00:00Z"}
`

func TestImporter_Run(t *testing.T) {
	svc := &fakeHistoryService{sweepCount: 1}
	imp := importer.New(svc, nil)

	result, err := imp.Run(context.Background(), "u1", importer.NewJSONLines(strings.NewReader(sampleJSONL)))
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Equal(t, 1, result.Failed)
	require.Equal(t, 1, result.DuplicatesRemoved)
	require.True(t, svc.swept)
	require.Len(t, svc.written, 2)
	require.Equal(t, "r1", svc.written[0].ID)
	require.Equal(t, "r3", svc.written[1].ID)
}

func TestImporter_EmptySourceStillSweeps(t *testing.T) {
	svc := &fakeHistoryService{}
	imp := importer.New(svc, nil)

	result, err := imp.Run(context.Background(), "u1", importer.NewJSONLines(strings.NewReader("")))
	require.NoError(t, err)
	require.Zero(t, result.Imported)
	require.True(t, svc.swept)
}

func TestImporter_MalformedInputAborts(t *testing.T) {
	svc := &fakeHistoryService{}
	imp := importer.New(svc, nil)

	_, err := imp.Run(context.Background(), "u1", importer.NewJSONLines(strings.NewReader("{broken")))
	require.Error(t, err)
	require.False(t, svc.swept)
}
