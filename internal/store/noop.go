package store

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) RecordResearchRun(_ *ResearchRunRecord) error   { return nil }
func (n *NoopStore) RecordExecutionRun(_ *ExecutionRunRecord) error { return nil }
func (n *NoopStore) Close() error                                   { return nil }
