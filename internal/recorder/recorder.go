package recorder

import "CoinSentinel/internal/model"

// AlertEvent records one dispatched (or attempted) notification.
type AlertEvent struct {
	Action     model.Action
	Price      float64
	Score      int
	Forced     bool
	Delivered  bool
	StatusCode int
}

// Recorder persists evaluation history for later analysis.
type Recorder interface {
	RecordSignal(sig *model.Signal) error
	RecordAlert(evt *AlertEvent) error
	Close() error
}
