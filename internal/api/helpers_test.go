package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
	"github.com/Belphemur/ReelRoulette/internal/reveal"
	"github.com/Belphemur/ReelRoulette/internal/services"
	"github.com/Belphemur/ReelRoulette/internal/settings"
)

// fakeClient serves canned sections.
type fakeClient struct {
	mu          sync.Mutex
	sections    map[int][]models.CatalogItem
	failing     map[int]error
	identity    *models.ServerIdentity
	validateErr error
	listed      []models.Section
	listErr     error
	fetched     []models.Credentials
}

func (f *fakeClient) Validate(_ context.Context, _ models.Credentials) (*models.ServerIdentity, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.identity, nil
}

func (f *fakeClient) Identity(_ context.Context, _ models.Credentials) (*models.ServerIdentity, error) {
	if f.identity == nil {
		return nil, &apperrors.ErrConnectivity{Reason: apperrors.ReasonUnreachable, Err: fmt.Errorf("no identity")}
	}
	return f.identity, nil
}

func (f *fakeClient) ListSections(context.Context, models.Credentials) ([]models.Section, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func (f *fakeClient) FetchSection(_ context.Context, creds models.Credentials, sectionID int) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, creds)
	if err, ok := f.failing[sectionID]; ok {
		return nil, err
	}
	return f.sections[sectionID], nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) lastCredentials() models.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fetched) == 0 {
		return models.Credentials{}
	}
	return f.fetched[len(f.fetched)-1]
}

type countingReporter struct {
	mu    sync.Mutex
	count int
}

func (c *countingReporter) ReportMismatch(*apperrors.ErrReconciliationMismatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingReporter) reported() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func makeItems(sectionID, n int) []models.CatalogItem {
	items := make([]models.CatalogItem, n)
	for i := range items {
		id := strconv.Itoa(sectionID*1000 + i)
		items[i] = models.CatalogItem{
			ID:               id,
			Key:              "/library/metadata/" + id,
			SectionID:        sectionID,
			Title:            fmt.Sprintf("Title %s", id),
			PosterSourcePath: "/library/metadata/" + id + "/thumb/1700000000",
		}
	}
	return items
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Sections: []config.SectionConfig{{ID: 1, Name: "Movies"}, {ID: 2, Name: "TV Shows"}},
	}
	cfg.Spin.MinDuration = "4s"
	cfg.Spin.MaxDuration = "6s"
	cfg.Spin.FrameInterval = "16ms"
	cfg.Spin.ViewTTL = "1h"
	cfg.Spin.MaxViews = 16
	cfg.Spin.SettleTolerance = "250ms"
	return cfg
}

type testEnv struct {
	handler  http.Handler
	clock    *clockwork.FakeClock
	client   *fakeClient
	reporter *countingReporter
	settings settings.Store
}

func newTestEnv(t *testing.T, fc *fakeClient) *testEnv {
	t.Helper()
	cfg := testConfig()
	clock := clockwork.NewFakeClock()
	reporter := &countingReporter{}
	selector := services.NewSelectorWithRand(rand.New(rand.NewPCG(7, 11)))

	store, err := settings.NewMemoryStore(cfg, 16)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	server := NewServer(Dependencies{
		Config:     cfg,
		Client:     fc,
		Aggregator: services.NewLibraryAggregator(fc, cfg),
		Selector:   selector,
		Settings:   store,
		Views:      reveal.NewRegistry(16, time.Hour, SequencerFactory(cfg, selector, reporter, clock)),
		Clock:      clock,
		Logger:     zerolog.Nop(),
	})
	return &testEnv{handler: server.Router(), clock: clock, client: fc, reporter: reporter, settings: store}
}

func defaultClient() *fakeClient {
	return &fakeClient{
		sections: map[int][]models.CatalogItem{1: makeItems(1, 4), 2: makeItems(2, 3)},
		identity: &models.ServerIdentity{MachineIdentifier: "abc123", FriendlyName: "Den"},
	}
}

// do sends a request with credentials headers unless the caller set its own.
func (e *testEnv) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

var plexHeaders = map[string]string{headerServer: "plex.test", headerToken: "tok"}

func withView(view string) map[string]string {
	h := map[string]string{headerView: view}
	for k, v := range plexHeaders {
		h[k] = v
	}
	return h
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}
