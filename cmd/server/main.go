package main

import (
	"context"
	"time"

	httpadapter "sodaclicker/internal/adapter/http"
	metricsinmem "sodaclicker/internal/adapter/metrics/inmemory"
	filerepo "sodaclicker/internal/adapter/repo/file"
	gormrepo "sodaclicker/internal/adapter/repo/gorm"
	"sodaclicker/internal/adapter/repo/memory"
	"sodaclicker/internal/app/action"
	"sodaclicker/internal/app/auth"
	"sodaclicker/internal/app/drinkloop"
	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/app/replay"
	"sodaclicker/internal/app/save"
	"sodaclicker/internal/app/session"
	"sodaclicker/internal/app/status"
	"sodaclicker/internal/app/tick"
	"sodaclicker/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		hlog.Fatalf("load config: %v", err)
	}
	hlog.SetLevel(cfg.LogLevel)
	if cfg.EphemeralSecret {
		hlog.Warn("SODA_JWT_SECRET is not set; session tokens will not survive a restart")
	}

	repos, err := buildRepos(context.Background(), cfg)
	if err != nil {
		hlog.Fatalf("build repos: %v", err)
	}
	hlog.Infof("storage backend: %s", repos.Backend)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kpi := metricsinmem.NewRecorder()
	sessions, h := buildApp(rootCtx, cfg, repos, kpi)
	reaper := startReaper(rootCtx, sessions)

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr), server.WithExitWaitTime(2*time.Second))
	h.RegisterRoutes(s)
	// Spin handles SIGINT/SIGTERM; flush every open session before exit.
	s.OnShutdown = append(s.OnShutdown, func(ctx context.Context) {
		if reaper != nil {
			reaper.Stop()
		}
		cancel()
		if err := sessions.CloseAll(ctx); err != nil {
			hlog.CtxErrorf(ctx, "flush sessions on shutdown: %v", err)
		}
	})

	hlog.Infof("sodaclicker server listening on %s", cfg.HTTPAddr)
	s.Spin()
}

type repoSet struct {
	Backend    string
	Saves      ports.SaveRepository
	Events     ports.EventRepository
	Creds      ports.CredentialRepository
	Executions ports.PurchaseExecutionRepository
	TxManager  ports.TxManager
}

// buildRepos prefers postgres, then a save directory, then process memory.
// Credentials, events and purchase records stay in memory unless postgres
// is configured.
func buildRepos(ctx context.Context, cfg config.Config) (repoSet, error) {
	if cfg.DBDSN != "" {
		db, err := gormrepo.OpenPostgresWithOptions(ctx, cfg.DBDSN, gormrepo.DefaultOptions())
		if err != nil {
			return repoSet{}, err
		}
		applied, err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir)
		if err != nil {
			return repoSet{}, err
		}
		if len(applied) > 0 {
			hlog.Infof("applied migrations: %v", applied)
		}
		return repoSet{
			Backend:    "postgres",
			Saves:      gormrepo.NewSaveRepo(db),
			Events:     gormrepo.NewEventRepo(db),
			Creds:      gormrepo.NewCredentialRepo(db),
			Executions: gormrepo.NewPurchaseExecutionRepo(db),
			TxManager:  gormrepo.NewTxManager(db),
		}, nil
	}

	store := memory.NewStore()
	set := repoSet{
		Backend:    "memory",
		Saves:      memory.NewSaveRepo(store),
		Events:     memory.NewEventRepo(store),
		Creds:      memory.NewCredentialRepo(store),
		Executions: memory.NewPurchaseExecutionRepo(store),
		TxManager:  memory.NewTxManager(store),
	}
	if cfg.SaveDir != "" {
		saves, err := filerepo.NewSaveRepo(cfg.SaveDir)
		if err != nil {
			return repoSet{}, err
		}
		set.Backend = "file"
		set.Saves = saves
	}
	return set, nil
}

// buildApp wires the use cases. Every opened session gets a drink loop bound
// to loopCtx, so the loops outlive the request that opened them.
func buildApp(loopCtx context.Context, cfg config.Config, repos repoSet, kpi *metricsinmem.Recorder) (*session.Manager, httpadapter.Handler) {
	now := time.Now
	sessions := session.NewManager(cfg.Balance, repos.Saves)
	sessions.Events = repos.Events
	sessions.Metrics = kpi
	sessions.Now = now
	sessions.IdleTTL = cfg.SessionIdleTTL

	tickUC := tick.UseCase{Sessions: sessions, Metrics: kpi, Now: now}
	sessions.OnOpen = func(s *session.Session) {
		r := drinkloop.New("drink:"+s.PlayerID, cfg.FrameInterval, tickUC.Frame(s))
		r.OnFailure = kpi.RecordTickFailure
		r.Start(loopCtx)
		s.AttachLoop(r)
	}

	h := httpadapter.Handler{
		RegisterUC: auth.RegisterUseCase{
			Credentials: repos.Creds,
			Saves:       repos.Saves,
			TxManager:   repos.TxManager,
			Balance:     cfg.Balance,
			Now:         now,
		},
		AuthUC:      auth.VerifyUseCase{Credentials: repos.Creds},
		Tokens:      auth.TokenIssuer{Secret: cfg.JWTSecret, Issuer: "sodaclicker", TTL: cfg.TokenTTL},
		ClickUC:     action.ClickUseCase{Sessions: sessions, Metrics: kpi, Now: now},
		PurchaseUC:  action.PurchaseUseCase{Sessions: sessions, Executions: repos.Executions, Metrics: kpi, Now: now},
		TickUC:      tickUC,
		StatusUC:    status.UseCase{Sessions: sessions, Now: now},
		SaveUC:      save.SaveUseCase{Sessions: sessions, Now: now},
		ExportUC:    save.ExportUseCase{Sessions: sessions},
		ImportUC:    save.ImportUseCase{Sessions: sessions, Now: now},
		ResetUC:     save.ResetUseCase{Sessions: sessions, Now: now},
		CloseUC:     save.CloseUseCase{Sessions: sessions},
		ReplayUC:    replay.UseCase{Events: repos.Events},
		KPI:         kpi,
		CORSOrigins: cfg.CORSOrigins,
	}
	return sessions, h
}

// startReaper closes idle sessions every quarter TTL until ctx ends. It
// returns nil when idle close is disabled.
func startReaper(ctx context.Context, sessions *session.Manager) *drinkloop.Runner {
	if sessions.IdleTTL <= 0 {
		return nil
	}
	every := sessions.IdleTTL / 4
	if every < time.Second {
		every = time.Second
	}
	r := drinkloop.New("session-reaper", every, func(ctx context.Context, _ time.Time) error {
		closed, err := sessions.CloseIdle(ctx)
		if len(closed) > 0 {
			hlog.CtxInfof(ctx, "closed %d idle sessions", len(closed))
		}
		return err
	})
	r.Start(ctx)
	return r
}
