package api

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/metrics"
	"github.com/DrDelphi/EgldRaffle/raffle"
	"github.com/DrDelphi/EgldRaffle/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCoordinator struct {
	consumer raffle.RandomnessConsumer
	lastID   uint64
}

func (s *stubCoordinator) AddConsumer(_ uint64, consumer raffle.RandomnessConsumer) error {
	s.consumer = consumer
	return nil
}

func (s *stubCoordinator) RequestRandomWords(context.Context, data.RandomnessRequest) (uint64, error) {
	s.lastID++
	return s.lastID, nil
}

type noopTransferer struct{}

func (noopTransferer) Transfer(context.Context, string, *big.Int) error {
	return nil
}

type testAPI struct {
	server *httptest.Server
	raffle *raffle.Raffle
	coord  *stubCoordinator
	now    *atomic.Int64
}

func newTestAPI(t *testing.T) *testAPI {
	store, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "raffle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := &atomic.Int64{}
	now.Store(1700000000)
	coord := &stubCoordinator{}
	cfg := data.RaffleConfig{
		EntranceFee:   big.NewInt(100),
		Interval:      time.Minute,
		MinimumPayout: big.NewInt(250),
		NumWords:      1,
	}
	r, err := raffle.New(cfg, "erd1owner", store, coord, noopTransferer{}, raffle.WithClock(func() time.Time { return time.Unix(now.Load(), 0) }))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	server := httptest.NewServer(Handler(r, reg, collector))
	t.Cleanup(server.Close)

	return &testAPI{server: server, raffle: r, coord: coord, now: now}
}

func (a *testAPI) get(t *testing.T, path string, v interface{}) int {
	res, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()

	if v != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}

	return res.StatusCode
}

func TestInfoAndUpkeep(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	require.NoError(t, a.raffle.Enter(ctx, "alice", big.NewInt(100)))
	require.NoError(t, a.raffle.Enter(ctx, "bob", big.NewInt(150)))

	info := &data.RaffleInfo{}
	require.Equal(t, http.StatusOK, a.get(t, "/raffle", info))
	assert.Equal(t, uint64(2), info.Entrants)
	assert.Equal(t, "Open", info.StateName)
	assert.Equal(t, int64(200), info.Pool.Int64())
	assert.Equal(t, int64(25), info.FeeBalance.Int64())
	assert.Equal(t, "erd1owner", info.Owner)

	upkeep := &UpkeepResponse{}
	require.Equal(t, http.StatusOK, a.get(t, "/upkeep", upkeep))
	assert.False(t, upkeep.UpkeepNeeded)

	a.now.Add(120)
	require.Equal(t, http.StatusOK, a.get(t, "/upkeep", upkeep))
	assert.True(t, upkeep.UpkeepNeeded)
}

func TestRoundsAndEntries(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	require.NoError(t, a.raffle.Enter(ctx, "alice", big.NewInt(100)))
	require.NoError(t, a.raffle.Enter(ctx, "alice", big.NewInt(100)))
	a.now.Add(120)
	require.NoError(t, a.raffle.PerformUpkeep(ctx, nil))
	require.NoError(t, a.coord.consumer.FulfillRandomWords(ctx, a.coord.lastID, []*big.Int{big.NewInt(1)}))

	round := &RoundResponse{}
	require.Equal(t, http.StatusOK, a.get(t, "/rounds/0", round))
	assert.True(t, round.Failed)
	assert.Equal(t, []string{"alice", "alice"}, round.Entrants)
	assert.Equal(t, int64(180), round.RefundTotal.Int64())

	entries := &EntriesResponse{}
	require.Equal(t, http.StatusOK, a.get(t, "/rounds/0/entries/alice", entries))
	assert.Equal(t, uint64(2), entries.Entries)
	require.Equal(t, http.StatusOK, a.get(t, "/rounds/0/entries/bob", entries))
	assert.Zero(t, entries.Entries)

	errRes := &errorResponse{}
	assert.Equal(t, http.StatusNotFound, a.get(t, "/rounds/5", errRes))
	assert.Contains(t, errRes.Error, "round not found")
	assert.Equal(t, http.StatusNotFound, a.get(t, "/rounds/abc", nil))
}

func TestOnlyReadsAreRouted(t *testing.T) {
	a := newTestAPI(t)

	res, err := http.Post(a.server.URL+"/raffle", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	res, err = http.Post(a.server.URL+"/fulfill", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestMetricsEndpointRefreshesGauges(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, a.raffle.Enter(context.Background(), "alice", big.NewInt(100)))

	res, err := http.Get(a.server.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "raffle_current_entrants 1")
}
