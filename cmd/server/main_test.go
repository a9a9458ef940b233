package main

import (
	"context"
	"testing"
	"time"

	metricsinmem "sodaclicker/internal/adapter/metrics/inmemory"
	filerepo "sodaclicker/internal/adapter/repo/file"
	"sodaclicker/internal/config"
	"sodaclicker/internal/domain/economy"

	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		FrameInterval: 10 * time.Millisecond,
		JWTSecret:     []byte("secret"),
		TokenTTL:      time.Hour,
		Balance:       economy.DefaultBalance(),
	}
}

func TestBuildRepos_DefaultsToMemory(t *testing.T) {
	repos, err := buildRepos(context.Background(), testConfig())
	require.NoError(t, err)
	require.Equal(t, "memory", repos.Backend)
	require.NotNil(t, repos.Saves)
	require.NotNil(t, repos.TxManager)
}

func TestBuildRepos_UsesSaveDir(t *testing.T) {
	cfg := testConfig()
	cfg.SaveDir = t.TempDir()
	repos, err := buildRepos(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "file", repos.Backend)
	_, ok := repos.Saves.(*filerepo.SaveRepo)
	require.True(t, ok, "expected file save repo, got %T", repos.Saves)
}

func TestBuildApp_OpenedSessionDrinksOnItsOwn(t *testing.T) {
	repos, err := buildRepos(context.Background(), testConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, _ := buildApp(ctx, testConfig(), repos, metricsinmem.NewRecorder())
	s, err := sessions.Open(context.Background(), "p1")
	require.NoError(t, err)

	// Pretend the last drink was long ago so the next frame completes one.
	_ = s.Do(func(g *economy.Game) error {
		g.State.LastDrinkTime = time.Now().Add(-time.Hour)
		return nil
	})
	require.Eventually(t, func() bool {
		var sips int64
		s.View(func(g *economy.Game) { sips = g.State.Sips.Int64() })
		return sips >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sessions.CloseAll(context.Background()))
	_, open := sessions.Get("p1")
	require.False(t, open)
}

func TestStartReaper_ClosesIdleSessions(t *testing.T) {
	cfg := testConfig()
	repos, err := buildRepos(context.Background(), cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, _ := buildApp(ctx, cfg, repos, metricsinmem.NewRecorder())
	require.Nil(t, startReaper(ctx, sessions))

	sessions.IdleTTL = 50 * time.Millisecond
	reaper := startReaper(ctx, sessions)
	require.NotNil(t, reaper)
	defer reaper.Stop()

	_, err = sessions.Open(context.Background(), "p1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sessions.Len() == 0 }, 3*time.Second, 20*time.Millisecond)

	rec, err := repos.Saves.GetByPlayerID(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.Version)
}
