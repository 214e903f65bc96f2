package recorder

// NoopRecorder is used when no database path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPurchase(_ *PurchaseEvent) error          { return nil }
func (n *NoopRecorder) RecordSnapshot(_ *BalanceSnapshot) error        { return nil }
func (n *NoopRecorder) RecentPurchases(_ int) ([]PurchaseEvent, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                   { return nil }
