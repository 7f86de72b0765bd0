package authflow

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultFlowTTL bounds how long a login attempt may take between the
// redirect to Google and the callback.
const DefaultFlowTTL = 10 * time.Minute

// Flow is the per-attempt authorization context. Keeping one record per
// state parameter lets concurrent logins from different browsers proceed
// independently.
type Flow struct {
	State     string
	Verifier  string
	CreatedAt int64
	ExpiresAt int64
}

// FlowStore manages in-flight authorization flows keyed by state.
type FlowStore struct {
	mu     sync.Mutex
	flows  map[string]*Flow
	ttl    time.Duration
	logger *slog.Logger
	done   chan struct{}
}

// NewFlowStore creates a flow store and starts its cleanup goroutine.
func NewFlowStore(ttl time.Duration, logger *slog.Logger) *FlowStore {
	if ttl <= 0 {
		ttl = DefaultFlowTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &FlowStore{
		flows:  make(map[string]*Flow),
		ttl:    ttl,
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.cleanup()
	return s
}

// Begin creates and stores a flow record for the given state and PKCE
// verifier.
func (s *FlowStore) Begin(state, verifier string) *Flow {
	now := time.Now()
	flow := &Flow{
		State:     state,
		Verifier:  verifier,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	s.mu.Lock()
	s.flows[state] = flow
	s.mu.Unlock()

	s.logger.Debug("began authorization flow",
		"state", state,
		"expires_at", time.Unix(flow.ExpiresAt, 0),
	)
	return flow
}

// Consume retrieves and immediately deletes the flow for state.
// One-shot consumption prevents a state parameter from being replayed.
func (s *FlowStore) Consume(state string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[state]
	if !ok {
		return nil, fmt.Errorf("authorization flow not found")
	}
	delete(s.flows, state)

	if time.Now().Unix() > flow.ExpiresAt {
		return nil, fmt.Errorf("authorization flow expired")
	}
	return flow, nil
}

// Len returns the number of in-flight flows.
func (s *FlowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// Close stops the cleanup goroutine.
func (s *FlowStore) Close() {
	close(s.done)
}

func (s *FlowStore) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *FlowStore) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	deleted := 0
	for state, flow := range s.flows {
		if now > flow.ExpiresAt {
			delete(s.flows, state)
			deleted++
		}
	}

	if deleted > 0 {
		s.logger.Debug("cleaned up expired authorization flows", "deleted", deleted)
	}
}
