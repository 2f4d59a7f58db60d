package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSentinel/internal/model"
	"CoinSentinel/internal/store"
)

const window = 6 * time.Hour

func buySnap() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		Price:    50000,
		EMAShort: 49900,
		EMALong:  49000,
		Change1h: 0.2,
		Rebound:  0.4,
	}
}

func TestResolve_IdleBuyPersists(t *testing.T) {
	now := time.Now()
	out := Resolve(model.ActionBuy, model.DefaultTradeState(), buySnap(), now, window)
	if out.Action != model.ActionBuy {
		t.Fatalf("expected BUY, got %s", out.Action)
	}
	if !out.Persist {
		t.Fatal("a real BUY must persist state")
	}
	if out.NewState.LastAction != model.ActionBuy || out.NewState.LastPrice != 50000 {
		t.Errorf("unexpected new state: %+v", out.NewState)
	}
	if !out.NewState.LastAt.Equal(now) {
		t.Errorf("LastAt should be now, got %v", out.NewState.LastAt)
	}
}

func TestResolve_IdleSellDoesNotPersist(t *testing.T) {
	out := Resolve(model.ActionSell, model.DefaultTradeState(), buySnap(), time.Now(), window)
	if out.Action != model.ActionSell {
		t.Fatalf("expected SELL, got %s", out.Action)
	}
	if out.Persist {
		t.Error("SELL must not write state")
	}
}

func TestResolve_CooldownSuppresses(t *testing.T) {
	now := time.Now()
	st := model.TradeState{LastAction: model.ActionBuy, LastAt: now.Add(-time.Hour), LastPrice: 49500}

	out := Resolve(model.ActionBuy, st, buySnap(), now, window)
	if out.Action != model.ActionNone || !out.Suppressed {
		t.Errorf("expected suppressed NONE, got %+v", out)
	}
	if out.Persist {
		t.Error("suppression must not write state")
	}
}

func TestResolve_CooldownExpiredBehavesAsIdle(t *testing.T) {
	now := time.Now()
	st := model.TradeState{LastAction: model.ActionBuy, LastAt: now.Add(-window), LastPrice: 49500}

	out := Resolve(model.ActionBuy, st, buySnap(), now, window)
	if out.Action != model.ActionBuy || !out.Persist {
		t.Errorf("elapsed >= window should behave as IDLE, got %+v", out)
	}
}

func TestResolve_EmergencyExit(t *testing.T) {
	now := time.Now()
	st := model.TradeState{LastAction: model.ActionBuy, LastAt: now.Add(-time.Hour), LastPrice: 49500}

	tests := []struct {
		name string
		snap *model.IndicatorSnapshot
	}{
		{"sharp 1h drop", &model.IndicatorSnapshot{Price: 50000, EMAShort: 49900, Change1h: -1.5}},
		{"price under EMA floor", &model.IndicatorSnapshot{Price: 49000, EMAShort: 49500, Change1h: 0}},
	}
	for _, tt := range tests {
		out := Resolve(model.ActionNone, st, tt.snap, now, window)
		if out.Action != model.ActionSell || !out.Emergency {
			t.Errorf("%s: expected emergency SELL, got %+v", tt.name, out)
		}
		if out.Persist {
			t.Errorf("%s: emergency SELL must not write state", tt.name)
		}
	}
}

func TestManager_BuyThenCooldown(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := NewManager(mem, window)
	now := time.Now()

	res, err := m.Apply(ctx, model.ActionBuy, buySnap(), now, false, "")
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if res.Action != model.ActionBuy || !res.Persisted {
		t.Fatalf("expected persisted BUY, got %+v", res)
	}

	// Second qualifying BUY inside the window is suppressed, state unchanged.
	before, _, _ := mem.Get(ctx)
	res, err = m.Apply(ctx, model.ActionBuy, buySnap(), now.Add(30*time.Minute), false, "")
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if res.Action != model.ActionNone || !res.Suppressed {
		t.Fatalf("expected suppression inside cooldown, got %+v", res)
	}
	after, _, _ := mem.Get(ctx)
	if !after.LastAt.Equal(before.LastAt) || after.LastPrice != before.LastPrice {
		t.Error("suppressed tick must not mutate state")
	}

	// After the window a new BUY goes through again.
	res, err = m.Apply(ctx, model.ActionBuy, buySnap(), now.Add(window+time.Minute), false, "")
	if err != nil {
		t.Fatalf("third apply: %v", err)
	}
	if res.Action != model.ActionBuy || !res.Persisted {
		t.Errorf("expected BUY after cooldown elapsed, got %+v", res)
	}
}

func TestManager_EmergencyDuringCooldown(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := NewManager(mem, window)
	now := time.Now()

	if _, err := m.Apply(ctx, model.ActionBuy, buySnap(), now, false, ""); err != nil {
		t.Fatalf("seed buy: %v", err)
	}
	before, _, _ := mem.Get(ctx)

	crash := &model.IndicatorSnapshot{Price: 49000, EMAShort: 49900, Change1h: -1.5}
	res, err := m.Apply(ctx, model.ActionNone, crash, now.Add(time.Hour), false, "")
	if err != nil {
		t.Fatalf("emergency apply: %v", err)
	}
	if res.Action != model.ActionSell || !res.Emergency {
		t.Fatalf("expected emergency SELL, got %+v", res)
	}
	after, _, _ := mem.Get(ctx)
	if !after.LastAt.Equal(before.LastAt) {
		t.Error("emergency SELL must not mutate state")
	}
}

func TestManager_ForceNeverMutatesState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := NewManager(mem, window)

	res, err := m.Apply(ctx, model.ActionNone, buySnap(), time.Now(), true, model.ActionBuy)
	if err != nil {
		t.Fatalf("forced apply: %v", err)
	}
	if res.Action != model.ActionBuy || !res.Forced {
		t.Fatalf("expected forced BUY, got %+v", res)
	}
	if _, ok, _ := mem.Get(ctx); ok {
		t.Error("forced invocation must never write state")
	}
}

func TestManager_ForceWithoutOverrideUsesTentative(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), window)

	res, err := m.Apply(context.Background(), model.ActionSell, buySnap(), time.Now(), true, "")
	if err != nil {
		t.Fatalf("forced apply: %v", err)
	}
	if res.Action != model.ActionSell {
		t.Errorf("expected tentative SELL, got %s", res.Action)
	}
}

func TestManager_EmergencyWinsOverForce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := NewManager(mem, window)
	now := time.Now()

	if _, err := m.Apply(ctx, model.ActionBuy, buySnap(), now, false, ""); err != nil {
		t.Fatalf("seed buy: %v", err)
	}
	crash := &model.IndicatorSnapshot{Price: 49000, EMAShort: 49900, Change1h: -1.5}
	res, err := m.Apply(ctx, model.ActionNone, crash, now.Add(time.Hour), true, model.ActionBuy)
	if err != nil {
		t.Fatalf("forced apply: %v", err)
	}
	if res.Action != model.ActionSell || !res.Emergency {
		t.Errorf("emergency exit must win over force, got %+v", res)
	}
}

func TestManager_FailsClosedOnStoreError(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.FailGet = errors.New("kv down")
	m := NewManager(mem, window)

	res, err := m.Apply(context.Background(), model.ActionBuy, buySnap(), time.Now(), false, "")
	if err == nil {
		t.Fatal("expected a store error")
	}
	if res.Action != model.ActionNone || !res.Suppressed {
		t.Errorf("store failure must suppress the action, got %+v", res)
	}

	mem.FailGet = nil
	mem.FailSet = errors.New("kv down")
	res, err = m.Apply(context.Background(), model.ActionBuy, buySnap(), time.Now(), false, "")
	if err == nil {
		t.Fatal("expected a store write error")
	}
	if res.Action != model.ActionNone || !res.Suppressed {
		t.Errorf("write failure must suppress the BUY, got %+v", res)
	}
}

func TestManager_Reset(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := NewManager(mem, window)

	if _, err := m.Apply(ctx, model.ActionBuy, buySnap(), time.Now(), false, ""); err != nil {
		t.Fatalf("seed buy: %v", err)
	}
	if err := m.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st, ok, _ := mem.Get(ctx)
	if !ok || st.LastAction != model.ActionNone {
		t.Errorf("expected default state after reset, got %+v", st)
	}
}
