package credstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sendgate/sendgate/internal/logging"
)

// Memory is an in-process Store. Records live for the lifetime of the
// process; nothing survives a restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	logger  *slog.Logger
}

// NewMemory creates an empty in-memory credential store.
func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		records: make(map[string]Record),
		logger:  logger,
	}
}

// Put writes or overwrites the record for rec.Identity.
func (m *Memory) Put(_ context.Context, rec Record) error {
	if rec.Identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Identity] = rec
	m.logger.Debug("saved credential record",
		logging.UserHash(rec.Identity),
		slog.String("access_token", logging.SanitizeToken(rec.AccessToken)),
		slog.String("refresh_token", logging.SanitizeToken(rec.RefreshToken)),
	)
	return nil
}

// Get returns the record for identity, or ErrNotFound.
func (m *Memory) Get(_ context.Context, identity string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[identity]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
