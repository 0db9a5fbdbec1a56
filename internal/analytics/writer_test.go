package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	pkgbigquery "github.com/sueworkspace/sungji-drop/pkg/bigquery"
)

type insertCall struct {
	table    string
	rowCount int
}

type fakeInserter struct {
	responses []error
	calls     []insertCall
	index     int
}

func (f *fakeInserter) InsertRows(_ context.Context, table string, rows []any) error {
	f.calls = append(f.calls, insertCall{table: table, rowCount: len(rows)})
	var err error
	if f.index < len(f.responses) {
		err = f.responses[f.index]
	}
	f.index++
	return err
}

func newWriterWithFakeInserter(t *testing.T) (*BigQueryWriter, *fakeInserter) {
	t.Helper()
	writer, err := NewWriter(&pkgbigquery.Client{}, WriterConfig{Table: "marketplace_events"})
	require.NoError(t, err)

	fake := &fakeInserter{}
	writer.client = fake
	return writer, fake
}

func TestNewWriterValidation(t *testing.T) {
	_, err := NewWriter(nil, WriterConfig{Table: "marketplace_events"})
	assert.Error(t, err)

	_, err = NewWriter(&pkgbigquery.Client{}, WriterConfig{Table: " "})
	assert.Error(t, err)
}

func TestWriterRetriesOnTransientError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	fake.responses = []error{
		&googleapi.Error{Code: http.StatusServiceUnavailable},
		nil,
	}

	err := writer.InsertMarketplace(context.Background(), MarketplaceEventRow{EventID: "1"})
	require.NoError(t, err)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, "marketplace_events", fake.calls[1].table)
	assert.Empty(t, writer.buffer)
}

func TestWriterStopsOnPermanentError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	fake.responses = []error{
		&googleapi.Error{Code: http.StatusBadRequest},
	}

	err := writer.InsertMarketplace(context.Background(), MarketplaceEventRow{EventID: "1"})
	require.Error(t, err)
	assert.Len(t, fake.calls, 1)
}

func TestWriterBatching(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batchSize = 2

	require.NoError(t, writer.InsertMarketplace(context.Background(), MarketplaceEventRow{EventID: "1"}))
	assert.Empty(t, fake.calls)

	require.NoError(t, writer.InsertMarketplace(context.Background(), MarketplaceEventRow{EventID: "2"}))
	require.Len(t, fake.calls, 1)
	assert.Equal(t, 2, fake.calls[0].rowCount)
}

func TestWriterFlush(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batchSize = 10

	require.NoError(t, writer.InsertMarketplace(context.Background(), MarketplaceEventRow{EventID: "1"}))
	require.NoError(t, writer.Flush(context.Background()))
	require.Len(t, fake.calls, 1)
	assert.Empty(t, writer.buffer)
}

func TestEncodeJSON(t *testing.T) {
	nj, err := EncodeJSON(map[string]any{"foo": "bar"})
	require.NoError(t, err)
	assert.True(t, nj.Valid)

	nj, err = EncodeJSON(nil)
	require.NoError(t, err)
	assert.False(t, nj.Valid)

	raw := json.RawMessage(`{"foo":"baz"}`)
	nj, err = EncodeJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, string(raw), nj.JSONVal)
}
