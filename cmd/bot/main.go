package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/config"
	"CoinSentinel/internal/engine"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/scheduler"
	"CoinSentinel/internal/server"
	"CoinSentinel/internal/store"
	"CoinSentinel/internal/trade"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CoinSentinel starting...")

	// Load .env if present, then config
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	cooldown, err := cfg.CooldownWindow()
	if err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Provider == "kraken" {
		fetcher = collector.NewKrakenFetcher(cfg.Proxy)
	} else {
		fetcher = collector.NewCoinGeckoFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] price feed: %s (%s)", fetcher.Name(), cfg.DataSource.Symbol)

	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.Windows)

	// Init state store: redis when configured, JSON file as fallback
	var st store.Store
	if cfg.State.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, cfg.State.RedisAddr, cfg.State.RedisPassword, cfg.State.RedisDB)
		if err != nil {
			log.Fatalf("[FATAL] init redis store: %v", err)
		}
		st = rs
		log.Printf("[INFO] trade state store: redis (%s)", cfg.State.RedisAddr)
	} else if cfg.State.FilePath != "" {
		st = store.NewFileStore(cfg.State.FilePath)
		log.Printf("[INFO] trade state store: file (%s)", cfg.State.FilePath)
	} else {
		st = store.NewMemoryStore()
		log.Println("[WARN] no durable state store configured, cooldown state is in-memory only")
	}
	defer st.Close()

	tm := trade.NewManager(st, cooldown)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Engine and the caller-owned last-signal read model
	eng := engine.New(col, tm, tn, rec, cfg.Strategy)
	latest := engine.NewLatest()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng, tm, st, latest)
	if err := sched.Register(cfg.Schedule.TickCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// HTTP API
	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.New(eng, tm, latest).Router(),
	}
	go func() {
		log.Printf("[INFO] HTTP API listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing tick now")
		go sched.RunTickNow()
	}

	log.Println("[INFO] CoinSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}

	log.Println("[INFO] CoinSentinel stopped")
}
