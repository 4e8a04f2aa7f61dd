package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/config"
	"areasense/internal/db"
	httpx "areasense/internal/http"
	"areasense/internal/jobs"
	"areasense/internal/route"
	"areasense/internal/store"
	"areasense/internal/tip"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, gdb, err := store.Open(cfg.DatabaseURL, connect)
	if err != nil {
		log.Fatal(err)
	}
	if gdb == nil {
		log.Printf("INFO: [Store] using in-memory store")
		if cfg.CatalogPath != "" {
			if err := seed(ctx, st, cfg.CatalogPath); err != nil {
				log.Fatal(err)
			}
		}
	}

	resolver := area.NewResolver(st, cfg.AreaMaxRadiusKm)
	if err := resolver.Rebuild(ctx, "startup"); err != nil {
		log.Fatal(err)
	}

	var notifier *area.Notifier
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("WARN: [Redis] ping failed, replicas will not be notified: %v", err)
		}
		notifier = &area.Notifier{Redis: rdb}
		watcher := &area.Watcher{Redis: rdb, Resolver: resolver}
		go watcher.Run(ctx)
	}

	// worker
	if gdb != nil {
		host, _ := os.Hostname()
		worker := &jobs.Worker{
			ID:       "reindex-" + host,
			Repo:     &jobs.Repo{DB: gdb},
			Resolver: resolver,
			Notifier: notifier,
			Poll:     cfg.ReindexPoll,
		}
		go worker.Run(ctx)
	}

	providers, err := route.ParseProviders(cfg.RouteProviders)
	if err != nil {
		log.Fatalf("ROUTE_PROVIDERS: %v", err)
	}

	tipSvc := tip.NewService(st, tip.Config{
		MaxTextLength: cfg.TipMaxLength,
		ApproveKarma:  cfg.KarmaApprove,
		RejectKarma:   cfg.KarmaReject,
		VoteKarma:     cfg.KarmaVoteWeight,
		HalfLife:      cfg.RankHalfLife,
	})

	r := httpx.NewRouter(cfg, httpx.Deps{
		Areas:    &area.Service{Repo: st, Resolver: resolver},
		Tips:     tipSvc,
		Queue:    &tip.Queue{Repo: st},
		Router:   route.NewRouter(providers, nil), // the server only plans
		Profiles: st,
		JWT:      auth.NewJWT(cfg.JWTSecret),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("INFO: [HTTP] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func connect(dsn string) (*gorm.DB, error) {
	gdb, err := db.Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func seed(ctx context.Context, st store.Store, path string) error {
	c, err := area.LoadCatalog(path)
	if err != nil {
		return err
	}
	if err := st.ImportCatalog(ctx, c); err != nil {
		return err
	}
	log.Printf("INFO: [Store] seeded %d areas from %s", len(c.Areas), path)
	return nil
}
