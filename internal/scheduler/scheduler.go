package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"CoinSentinel/internal/engine"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/store"
	"CoinSentinel/internal/trade"
)

// tickTimeout bounds one full pipeline run, network included.
const tickTimeout = 60 * time.Second

// Scheduler drives the engine on a cron tick and answers Telegram commands.
type Scheduler struct {
	Cron   *cron.Cron
	Engine *engine.Engine
	Trade  *trade.Manager
	Store  store.Store
	Latest *engine.Latest
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng *engine.Engine, tm *trade.Manager, st store.Store, latest *engine.Latest) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Engine: eng,
		Trade:  tm,
		Store:  st,
		Latest: latest,
		Ctx:    ctx,
	}
}

// Register registers the tick task.
func (s *Scheduler) Register(tickCron string) error {
	if _, err := s.Cron.AddFunc(tickCron, s.tick); err != nil {
		return fmt.Errorf("register tick task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunTickNow executes the tick immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunTickNow() {
	s.tick()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(s.Ctx, tickTimeout)
	defer cancel()

	res, err := s.Engine.Run(ctx, engine.Options{})
	if err != nil {
		log.Printf("[ERROR] tick: %v", err)
		if res == nil || res.Signal == nil {
			return
		}
	}
	s.Latest.Set(res.Signal)

	if res.Resolution.Suppressed {
		log.Printf("[INFO] tick: action suppressed by cooldown (score=%d)", res.Signal.Score)
	} else {
		log.Printf("[INFO] tick: action=%s score=%d price=%.2f", res.Signal.Action, res.Signal.Score, res.Signal.Price)
	}
}

// HandleCommand serves Telegram commands from the polling loop.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/signal":
		return notifier.FormatSignalSummary(s.Latest.Get())

	case "/check":
		ctx, cancel := context.WithTimeout(s.Ctx, tickTimeout)
		defer cancel()
		res, err := s.Engine.Run(ctx, engine.Options{})
		if err != nil {
			return fmt.Sprintf("❌ check failed: %v", err)
		}
		s.Latest.Set(res.Signal)
		return notifier.FormatSignalSummary(res.Signal)

	case "/test":
		ctx, cancel := context.WithTimeout(s.Ctx, tickTimeout)
		defer cancel()
		res, err := s.Engine.Run(ctx, engine.Options{Force: true})
		if err != nil {
			return fmt.Sprintf("❌ test failed: %v", err)
		}
		s.Latest.Set(res.Signal)
		return "" // the forced alert itself is the reply

	case "/state":
		ctx, cancel := context.WithTimeout(s.Ctx, 10*time.Second)
		defer cancel()
		st, ok, err := s.Store.Get(ctx)
		if err != nil {
			return fmt.Sprintf("❌ read state: %v", err)
		}
		return notifier.FormatTradeState(st, ok)

	case "/reset":
		ctx, cancel := context.WithTimeout(s.Ctx, 10*time.Second)
		defer cancel()
		if err := s.Trade.Reset(ctx); err != nil {
			return fmt.Sprintf("❌ reset failed: %v", err)
		}
		return "✅ cooldown state reset"

	case "/help", "/start":
		return helpText()

	default:
		if command != "" && command[0] == '/' {
			return helpText()
		}
		return ""
	}
}

func helpText() string {
	return "Commands:\n" +
		"/signal — last computed signal\n" +
		"/check — evaluate now\n" +
		"/test — forced test alert (state untouched)\n" +
		"/state — cooldown state\n" +
		"/reset — clear cooldown state\n" +
		"/help — this message"
}
