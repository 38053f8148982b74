package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/config"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/memory"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                      config.EnvDev,
		ServiceName:                 "gps-gamemodel-test",
		HTTPAddr:                    ":0",
		StorageDriver:               config.StorageMemory,
		CORSAllowedOrigins:          []string{"*"},
		ReadTimeout:                 time.Second,
		WriteTimeout:                time.Second,
		GameModelWindow:             10,
		MinutesFromGPS:              true,
		IdentityFuzzyThreshold:      0.6,
		IdentityTieEpsilon:          0.02,
		RecomputeWorkers:            2,
		RosterCacheEnabled:          true,
		RosterCacheTTL:              time.Minute,
		RosterCircuitEnabled:        true,
		RosterCircuitFailureCount:   3,
		RosterCircuitOpenTimeout:    time.Second,
		RosterCircuitHalfOpenMaxReq: 1,
	}
}

func TestBuild_MemoryStorage(t *testing.T) {
	t.Parallel()

	c, err := Build(context.Background(), memoryConfig(), nil)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	defer c.Close()

	if c.DB() != nil {
		t.Fatalf("expected no database handle for memory storage")
	}

	summary, err := c.GameModels.RecomputeTeam(context.Background(), memory.DemoClubID, memory.DemoTeamID)
	if err != nil {
		t.Fatalf("recompute demo team: %v", err)
	}
	if summary.Players != len(memory.SeedRoster()) || summary.Failed != 0 {
		t.Fatalf("unexpected team recompute: %+v", summary)
	}
}

func TestNewHTTPServer_ServesHealthz(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	c, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}

	srv, err := NewHTTPServer(cfg, c, nil)
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), c.Registry.Version()) {
		t.Fatalf("expected registry version in health body: %s", rec.Body.String())
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := NewHTTPServer(cfg, &Container{}, nil); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
