package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/store"
	"CoinSentinel/internal/strategy"
	"CoinSentinel/internal/trade"
)

type fakeNotifier struct {
	sent []string
	fail bool
}

func (f *fakeNotifier) Send(text string) (notifier.Delivery, error) {
	f.sent = append(f.sent, text)
	if f.fail {
		return notifier.Delivery{StatusCode: 502}, errors.New("telegram down")
	}
	return notifier.Delivery{Delivered: true, StatusCode: 200}, nil
}

// risingCloses builds a series where price > EMA50 > EMA200, RSI sits in the
// healthy band, and the last closes dip and recover for a rebound.
func risingCloses() []float64 {
	closes := make([]float64, 0, 220)
	price := 48000.0
	for i := 0; i < 214; i++ {
		if i%6 < 3 {
			price += 10
		} else {
			price -= 9 // pullbacks keep RSI near the middle band
		}
		closes = append(closes, price)
	}
	// shallow dip and recovery inside the rebound window
	dip := price * 0.996
	closes = append(closes, price*0.999, dip, dip, price*0.9985, price*0.9995, price)
	return closes
}

func newTestEngine(closes []float64, mem *store.MemoryStore, fn Notifier) *Engine {
	col := collector.NewCollector(&collector.MockFetcher{Closes: closes}, "bitcoin", collector.DefaultWindows())
	tm := trade.NewManager(mem, 6*time.Hour)
	return New(col, tm, fn, recorder.NewNoopRecorder(), strategy.DefaultThresholds())
}

func TestRun_FlatMarketNoAction(t *testing.T) {
	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = 50000
	}
	fn := &fakeNotifier{}
	eng := newTestEngine(closes, store.NewMemoryStore(), fn)

	res, err := eng.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Signal.Score != 75 {
		t.Errorf("expected score 75, got %d", res.Signal.Score)
	}
	if res.Signal.Action != model.ActionNone || res.Signal.Verdict {
		t.Errorf("expected NONE verdict=false, got %+v", res.Signal)
	}
	if res.Notified || len(fn.sent) != 0 {
		t.Error("no alert expected for NONE without force")
	}
	if len(res.Signal.Reason) != 5 {
		t.Errorf("expected 5 reasons, got %d", len(res.Signal.Reason))
	}
}

func TestRun_UpstreamErrorLeavesStateUntouched(t *testing.T) {
	mem := store.NewMemoryStore()
	col := collector.NewCollector(&collector.MockFetcher{Err: collector.ErrUpstream}, "bitcoin", collector.DefaultWindows())
	eng := New(col, trade.NewManager(mem, 6*time.Hour), &fakeNotifier{}, recorder.NewNoopRecorder(), strategy.DefaultThresholds())

	res, err := eng.Run(context.Background(), Options{})
	if !errors.Is(err, collector.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if res != nil {
		t.Error("no result expected on upstream failure")
	}
	if _, ok, _ := mem.Get(context.Background()); ok {
		t.Error("state must be untouched on a failed fetch")
	}
}

func TestRun_ShortSeriesDegradesToNeutral(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 50000
	}
	eng := newTestEngine(closes, store.NewMemoryStore(), &fakeNotifier{})

	res, err := eng.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("short series must not fail hard: %v", err)
	}
	if res.Signal.Action != model.ActionNone || res.Signal.Score != 0 {
		t.Errorf("expected neutral signal, got %+v", res.Signal)
	}
	if len(res.Signal.Reason) == 0 || !strings.Contains(res.Signal.Reason[0], "no evaluation") {
		t.Errorf("expected explanatory reason, got %v", res.Signal.Reason)
	}
}

func TestRun_ForceAlwaysNotifiesNeverMutates(t *testing.T) {
	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = 50000
	}
	mem := store.NewMemoryStore()
	fn := &fakeNotifier{}
	eng := newTestEngine(closes, mem, fn)

	res, err := eng.Run(context.Background(), Options{Force: true, Override: model.ActionBuy})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Signal.Action != model.ActionBuy {
		t.Errorf("expected forced BUY, got %s", res.Signal.Action)
	}
	if !res.Notified || len(fn.sent) != 1 {
		t.Error("forced invocation must notify")
	}
	if !strings.Contains(fn.sent[0], "TEST ALERT") {
		t.Error("forced alert should be labelled as a test")
	}
	if _, ok, _ := mem.Get(context.Background()); ok {
		t.Error("forced invocation must never write state")
	}
}

func TestRun_DeliveryFailureDoesNotInvalidateSignal(t *testing.T) {
	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = 50000
	}
	fn := &fakeNotifier{fail: true}
	eng := newTestEngine(closes, store.NewMemoryStore(), fn)

	res, err := eng.Run(context.Background(), Options{Force: true})
	if err != nil {
		t.Fatalf("delivery failure must not fail the run: %v", err)
	}
	if res.NotifyErr == nil {
		t.Error("expected the delivery error in the result")
	}
	if res.Delivery == nil || res.Delivery.Delivered {
		t.Error("expected a failed delivery record")
	}
	if res.Signal.Score != 75 {
		t.Errorf("signal must be unaffected by delivery failure, got score %d", res.Signal.Score)
	}
}

func TestRun_BuyPersistsAndCoolsDown(t *testing.T) {
	mem := store.NewMemoryStore()
	fn := &fakeNotifier{}
	eng := newTestEngine(risingCloses(), mem, fn)
	ctx := context.Background()

	res, err := eng.Run(ctx, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Signal.Action != model.ActionBuy {
		t.Fatalf("expected BUY (score %d, reasons %v), got %s", res.Signal.Score, res.Signal.Reason, res.Signal.Action)
	}
	st, ok, _ := mem.Get(ctx)
	if !ok || st.LastAction != model.ActionBuy {
		t.Fatalf("expected persisted BUY state, got %+v", st)
	}
	if !res.Notified || len(fn.sent) != 1 {
		t.Error("BUY must notify")
	}

	// Same conditions on the next tick: suppressed by the cooldown.
	res, err = eng.Run(ctx, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Signal.Action != model.ActionNone || !res.Resolution.Suppressed {
		t.Errorf("expected suppression inside cooldown, got %+v", res.Resolution)
	}
	if len(fn.sent) != 1 {
		t.Error("suppressed tick must not notify")
	}
	after, _, _ := mem.Get(ctx)
	if !after.LastAt.Equal(st.LastAt) {
		t.Error("suppressed tick must not mutate state")
	}
}

func TestRun_StoreErrorFailsClosed(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.FailGet = errors.New("kv down")
	fn := &fakeNotifier{}
	eng := newTestEngine(risingCloses(), mem, fn)

	res, err := eng.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected the store error to surface")
	}
	if res == nil || res.Signal.Action != model.ActionNone {
		t.Error("store failure must suppress the action")
	}
	if res.Notified || len(fn.sent) != 0 {
		t.Error("no alert may be sent when failing closed")
	}
}

func TestLatest(t *testing.T) {
	l := NewLatest()
	if l.Get() != nil {
		t.Error("expected nil before first set")
	}
	sig := &model.Signal{Score: 42}
	l.Set(sig)
	if got := l.Get(); got == nil || got.Score != 42 {
		t.Errorf("unexpected read model value: %+v", got)
	}
}
