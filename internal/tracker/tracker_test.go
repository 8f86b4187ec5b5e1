package tracker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"btctracker/internal/coindesk"
	"btctracker/internal/config"
	"btctracker/internal/tracker"
)

const payload = `{"time":{"updated":"2021-06-01T00:00:00Z"},"bpi":{"USD":{"code":"USD","rate":"35,000.00"}}}`

func testConfig(t *testing.T, endpoint string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workbook.Path = filepath.Join(t.TempDir(), "btcprices.xlsx")
	cfg.Coindesk.Endpoint = endpoint
	cfg.Locale = "en_US"
	return cfg
}

func TestRun_EndToEnd_FreshWorkbook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	client := coindesk.NewClient(coindesk.WithBaseURL(cfg.Coindesk.Endpoint))

	res, err := tracker.Run(context.Background(), cfg, client)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Row)
	assert.InDelta(t, 35000.00, res.Price, 1e-9)
	assert.True(t, res.Quote.UpdatedAt.Equal(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)))

	f, err := excelize.OpenFile(cfg.Workbook.Path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Bitcoin Prices", f.GetSheetName(0))

	v, err := f.GetCellValue("Bitcoin Prices", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2021-06-01 00:00:00", v)

	v, err = f.GetCellValue("Bitcoin Prices", "C3")
	require.NoError(t, err)
	assert.Equal(t, "$35,000", v)
}

func TestRun_AppendsAfterExistingRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	client := coindesk.NewClient(coindesk.WithBaseURL(cfg.Coindesk.Endpoint))

	// Two runs back to back: the second lands on the next row.
	_, err := tracker.Run(context.Background(), cfg, client)
	require.NoError(t, err)
	res, err := tracker.Run(context.Background(), cfg, client)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Row)
}

func TestRun_FetchFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	client := coindesk.NewClient(coindesk.WithBaseURL(cfg.Coindesk.Endpoint))

	_, err := tracker.Run(context.Background(), cfg, client)
	require.Error(t, err)

	// Nothing was persisted for a run that never reached save.
	_, err = os.Stat(cfg.Workbook.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_BadRateAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"time":{"updated":"2021-06-01T00:00:00Z"},"bpi":{"USD":{"rate":"not a number"}}}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	client := coindesk.NewClient(coindesk.WithBaseURL(cfg.Coindesk.Endpoint))

	_, err := tracker.Run(context.Background(), cfg, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
}

type stuckClient struct{}

func (stuckClient) CurrentPrice(ctx context.Context) (coindesk.Quote, error) {
	<-ctx.Done()
	return coindesk.Quote{}, ctx.Err()
}

func TestRun_ContextCancellation(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tracker.Run(ctx, cfg, stuckClient{})
	require.ErrorIs(t, err, context.Canceled)
}
