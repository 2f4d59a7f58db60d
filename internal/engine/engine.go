// Package engine runs the full tick pipeline: collect, evaluate, resolve
// against the cooldown state, and dispatch the alert.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/strategy"
	"CoinSentinel/internal/trade"
)

// Notifier is the outbound alert collaborator. Delivery failure never
// invalidates the computed signal.
type Notifier interface {
	Send(text string) (notifier.Delivery, error)
}

// Options control one invocation. Force bypasses gating for manual and
// operational testing; Override substitutes an explicit action.
type Options struct {
	Force    bool
	Override model.Action
}

// Result is the outcome of one tick.
type Result struct {
	Signal     *model.Signal
	Resolution trade.Resolution
	Notified   bool
	Delivery   *notifier.Delivery
	NotifyErr  error
}

// Engine wires the pipeline collaborators together. It holds no mutable
// state of its own; the last computed signal lives in a caller-owned Latest.
type Engine struct {
	Collector  *collector.Collector
	Trade      *trade.Manager
	Notifier   Notifier
	Recorder   recorder.Recorder
	Thresholds strategy.Thresholds
}

// New creates an Engine.
func New(col *collector.Collector, tm *trade.Manager, n Notifier, rec recorder.Recorder, th strategy.Thresholds) *Engine {
	return &Engine{Collector: col, Trade: tm, Notifier: n, Recorder: rec, Thresholds: th}
}

// Run executes one tick.
//
// An upstream feed failure returns an error and produces no signal; the
// cooldown record is never touched on a failed fetch. A series too short
// after filtering degrades to a neutral signal instead of failing. A state
// store failure suppresses the action (fail closed) and surfaces the error
// alongside the computed signal.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	series, snap, err := e.Collector.Collect(ctx)
	if err != nil {
		if errors.Is(err, calculator.ErrInsufficientData) {
			sig := e.degradedSignal(series, err)
			e.record(sig)
			return &Result{Signal: sig}, nil
		}
		return nil, err
	}

	ev := strategy.Evaluate(snap, e.Thresholds)
	now := time.Now()

	res, stateErr := e.Trade.Apply(ctx, ev.Tentative, snap, now, opts.Force, opts.Override)

	sig := &model.Signal{
		At:         now,
		Verdict:    res.Action != model.ActionNone,
		Action:     res.Action,
		Score:      ev.Score,
		Price:      snap.Price,
		Indicators: *snap,
		Reason:     ev.Reasons,
	}
	result := &Result{Signal: sig, Resolution: res}
	e.record(sig)

	if stateErr != nil {
		return result, stateErr
	}

	// Alert gate: forced invocations always notify, real ones only on action.
	if opts.Force || res.Action != model.ActionNone {
		msg := notifier.FormatAlert(sig, res.Forced)
		delivery, nerr := e.Notifier.Send(msg)
		result.Notified = true
		result.Delivery = &delivery
		result.NotifyErr = nerr
		if nerr != nil {
			log.Printf("[WARN] alert delivery failed: %v", nerr)
		}
		if err := e.Recorder.RecordAlert(&recorder.AlertEvent{
			Action:     res.Action,
			Price:      sig.Price,
			Score:      sig.Score,
			Forced:     res.Forced,
			Delivered:  delivery.Delivered,
			StatusCode: delivery.StatusCode,
		}); err != nil {
			log.Printf("[ERROR] record alert: %v", err)
		}
	}

	return result, nil
}

// degradedSignal builds the neutral, well-formed signal for a series that is
// too short after filtering.
func (e *Engine) degradedSignal(series *model.PriceSeries, cause error) *model.Signal {
	price := 0.0
	if series != nil {
		if closes := model.Sanitize(series.Closes()); len(closes) > 0 {
			price = closes[len(closes)-1]
		}
	}
	return &model.Signal{
		At:     time.Now(),
		Action: model.ActionNone,
		Price:  price,
		Reason: []string{fmt.Sprintf("no evaluation: %v", cause)},
	}
}

func (e *Engine) record(sig *model.Signal) {
	if err := e.Recorder.RecordSignal(sig); err != nil {
		log.Printf("[ERROR] record signal: %v", err)
	}
}
