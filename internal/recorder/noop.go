package recorder

import "CoinSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *model.Signal) error { return nil }
func (n *NoopRecorder) RecordAlert(_ *AlertEvent) error    { return nil }
func (n *NoopRecorder) Close() error                       { return nil }
