package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
)

var errSessionNotFound = errors.New("session not found")

// MemoryPlanStore is an in-memory plan store, used when persistence is
// configured with the "memory" backend and in tests.
type MemoryPlanStore struct {
	mu     sync.RWMutex
	nextID int64
	plans  []domain.FitnessPlan
}

// NewMemoryPlanStore creates an empty in-memory plan store.
func NewMemoryPlanStore() *MemoryPlanStore {
	return &MemoryPlanStore{nextID: 1}
}

// Save stores one plan record and returns its assigned id.
func (s *MemoryPlanStore) Save(ctx context.Context, userID, sessionID string, payload json.RawMessage, planType domain.PlanType) (int64, error) {
	var fields payloadFields
	_ = json.Unmarshal(payload, &fields)
	if fields.PlanName == "" {
		fields.PlanName = "Custom Plan"
	}
	if fields.DurationWeeks == 0 {
		fields.DurationWeeks = 12
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := domain.FitnessPlan{
		ID:            s.nextID,
		UserID:        userID,
		SessionID:     sessionID,
		PlanName:      fields.PlanName,
		PlanType:      planType,
		PlanData:      append(json.RawMessage(nil), payload...),
		Goals:         fields.Goals,
		DurationWeeks: fields.DurationWeeks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextID++
	s.plans = append(s.plans, p)
	return p.ID, nil
}

// ListByUser returns all plans for the given user in insertion order.
func (s *MemoryPlanStore) ListByUser(ctx context.Context, userID string) ([]domain.FitnessPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.FitnessPlan
	for _, p := range s.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// MemorySessionStore is an in-memory chat session store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*domain.Session)}
}

// GetOrCreate finds an existing session by id or creates a new one.
func (s *MemorySessionStore) GetOrCreate(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if sess, ok := s.sessions[sessionID]; ok {
			snapshot := *sess
			return &snapshot, nil
		}
	}

	sess := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.sessions[sess.ID] = sess
	snapshot := *sess
	return &snapshot, nil
}

// Append adds a message to a session.
func (s *MemorySessionStore) Append(ctx context.Context, sessionID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return &StorageError{Op: "append message", Err: errSessionNotFound}
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// History returns the ordered message history for a session.
func (s *MemorySessionStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}
