package live

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Options carries the shared timing configuration for every user's store.
type Options struct {
	Rules        Rules
	TickPeriod   time.Duration
	PersistEvery int
}

// Manager hands out one Store per user, running recovery the first time
// a user's store is opened.
type Manager struct {
	kv      KVStore
	history HistoryWriter
	clock   Clock
	logger  *slog.Logger
	opts    Options

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a store manager.
func NewManager(kv KVStore, history HistoryWriter, clock Clock, logger *slog.Logger, opts Options) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		kv:      kv,
		history: history,
		clock:   clock,
		logger:  logger,
		opts:    opts,
		stores:  make(map[string]*Store),
	}
}

// Store returns the user's session store, recovering any persisted
// session before the store serves its first request.
func (m *Manager) Store(ctx context.Context, userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[userID]; ok {
		return store
	}

	store := NewStore(StoreConfig{
		UserID:       userID,
		KV:           m.kv,
		History:      m.history,
		Clock:        m.clock,
		Logger:       m.logger,
		Rules:        m.opts.Rules,
		TickPeriod:   m.opts.TickPeriod,
		PersistEvery: m.opts.PersistEvery,
	})
	store.Recover(ctx)
	m.stores[userID] = store
	return store
}
