// Package memory is a process-local implementation of db.Database.
// Used when DB_DRIVER=memory (local dev) and as a fixture in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agent-market/internal/repository/db"

	"github.com/google/uuid"
)

// Ensure Store implements db.Database interface
var _ db.Database = (*Store)(nil)

// Store keeps every record in maps guarded by a single RWMutex
type Store struct {
	mu            sync.RWMutex
	users         map[string]*db.User         // key: id
	usernames     map[string]string           // username → id
	agents        map[string]*db.Agent        // key: id
	subscriptions map[string]*db.Subscription // key: id
	conversations map[string]*db.Conversation // key: id
	messages      map[string][]*db.Message    // key: conversation id, append order

	now func() time.Time
}

// New creates an empty store using the wall clock
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty store that stamps records with now()
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		users:         make(map[string]*db.User),
		usernames:     make(map[string]string),
		agents:        make(map[string]*db.Agent),
		subscriptions: make(map[string]*db.Subscription),
		conversations: make(map[string]*db.Conversation),
		messages:      make(map[string][]*db.Message),
		now:           now,
	}
}

// Close is a no-op
func (s *Store) Close() error { return nil }

// ─── Users ──────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, username, email, passwordHash string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[username]; exists {
		return nil, db.ErrUsernameTaken
	}

	u := &db.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	s.usernames[username] = u.ID

	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ─── Agents ─────────────────────────────────────────────

func (s *Store) CreateAgent(_ context.Context, agent *db.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	now := s.now()
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	agent.UpdatedAt = agent.CreatedAt

	s.agents[agent.ID] = copyAgent(agent)
	return nil
}

func (s *Store) GetAgent(_ context.Context, id string) (*db.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return copyAgent(a), nil
}

func (s *Store) ListAgents(_ context.Context, filter db.AgentFilter) ([]db.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]db.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(a.Category, filter.Category) {
			continue
		}
		if query != "" && !agentMatches(a, query) {
			continue
		}
		result = append(result, *copyAgent(a))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) UpdateAgent(_ context.Context, agent *db.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.agents[agent.ID]
	if !ok {
		return db.ErrNotFound
	}
	agent.CreatedAt = existing.CreatedAt
	agent.CreatedBy = existing.CreatedBy
	agent.UpdatedAt = s.now()
	s.agents[agent.ID] = copyAgent(agent)
	return nil
}

func (s *Store) DeactivateAgent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[id]
	if !ok {
		return db.ErrNotFound
	}
	a.IsActive = false
	a.UpdatedAt = s.now()
	return nil
}

func agentMatches(a *db.Agent, query string) bool {
	if strings.Contains(strings.ToLower(a.Name), query) ||
		strings.Contains(strings.ToLower(a.Description), query) {
		return true
	}
	for _, k := range a.Keywords {
		if strings.Contains(strings.ToLower(k), query) {
			return true
		}
	}
	return false
}

func copyAgent(a *db.Agent) *db.Agent {
	cp := *a
	if a.WebhookURL != nil {
		u := *a.WebhookURL
		cp.WebhookURL = &u
	}
	cp.Keywords = append([]string(nil), a.Keywords...)
	return &cp
}

// ─── Subscriptions ──────────────────────────────────────

// CreateSubscription checks for an existing active subscription and inserts
// under the same write lock, so concurrent callers for one pair cannot both
// succeed.
func (s *Store) CreateSubscription(_ context.Context, sub *db.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.Status == "" {
		sub.Status = db.StatusActive
	}
	if sub.Status == db.StatusActive && s.findActiveLocked(sub.UserID, sub.AgentID) != nil {
		return db.ErrAlreadySubscribed
	}

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := s.now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	s.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (s *Store) GetActiveSubscription(_ context.Context, userID, agentID string) (*db.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub := s.findActiveLocked(userID, agentID)
	if sub == nil {
		return nil, db.ErrNotFound
	}
	return copySubscription(sub), nil
}

func (s *Store) ListActiveSubscriptions(_ context.Context, userID string) ([]db.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]db.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.Status == db.StatusActive {
			result = append(result, *copySubscription(sub))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) UpdateSubscriptionStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return db.ErrNotFound
	}
	if status == db.StatusActive && sub.Status != db.StatusActive {
		if s.findActiveLocked(sub.UserID, sub.AgentID) != nil {
			return db.ErrAlreadySubscribed
		}
	}
	sub.Status = status
	sub.UpdatedAt = s.now()
	return nil
}

// copySubscription copies sub including its snapshot keywords
func copySubscription(sub *db.Subscription) *db.Subscription {
	cp := *sub
	cp.Agent.Keywords = append([]string(nil), sub.Agent.Keywords...)
	return &cp
}

func (s *Store) findActiveLocked(userID, agentID string) *db.Subscription {
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.AgentID == agentID && sub.Status == db.StatusActive {
			return sub
		}
	}
	return nil
}

// ─── Conversations ──────────────────────────────────────

func (s *Store) CreateConversation(_ context.Context, conv *db.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := s.now()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	cp := *conv
	cp.AgentName = ""
	s.conversations[conv.ID] = &cp
	return nil
}

func (s *Store) GetConversation(_ context.Context, id string) (*db.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s.withAgentNameLocked(c), nil
}

func (s *Store) ListConversationsByUser(_ context.Context, userID string) ([]db.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listConversationsLocked(func(c *db.Conversation) bool { return c.UserID == userID }), nil
}

func (s *Store) ListAllConversations(_ context.Context) ([]db.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listConversationsLocked(func(*db.Conversation) bool { return true }), nil
}

func (s *Store) TouchConversation(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return db.ErrNotFound
	}
	if at.After(c.UpdatedAt) {
		c.UpdatedAt = at
	}
	return nil
}

func (s *Store) listConversationsLocked(keep func(*db.Conversation) bool) []db.Conversation {
	result := make([]db.Conversation, 0)
	for _, c := range s.conversations {
		if keep(c) {
			result = append(result, *s.withAgentNameLocked(c))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result
}

func (s *Store) withAgentNameLocked(c *db.Conversation) *db.Conversation {
	cp := *c
	if a, ok := s.agents[c.AgentID]; ok {
		cp.AgentName = a.Name
	}
	return &cp
}

// ─── Messages ───────────────────────────────────────────

// AddMessage appends msg. Timestamps are kept strictly increasing within a
// conversation so that ordering by created_at matches append order.
func (s *Store) AddMessage(_ context.Context, msg *db.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[msg.ConversationID]; !ok {
		return db.ErrNotFound
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	existing := s.messages[msg.ConversationID]
	if n := len(existing); n > 0 {
		last := existing[n-1].CreatedAt
		if !msg.CreatedAt.After(last) {
			msg.CreatedAt = last.Add(time.Microsecond)
		}
	}

	cp := *msg
	cp.Metadata = copyMetadata(msg.Metadata)
	s.messages[msg.ConversationID] = append(existing, &cp)
	return nil
}

func (s *Store) ListMessages(_ context.Context, conversationID string) ([]db.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[conversationID]
	result := make([]db.Message, 0, len(stored))
	for _, m := range stored {
		cp := *m
		cp.Metadata = copyMetadata(m.Metadata)
		result = append(result, cp)
	}
	return result, nil
}

func copyMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ─── Stats ──────────────────────────────────────────────

func (s *Store) GetStats(_ context.Context) (*db.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &db.Stats{
		TotalUsers:         len(s.users),
		TotalConversations: len(s.conversations),
		TotalAgents:        len(s.agents),
	}
	for _, a := range s.agents {
		if a.IsActive {
			stats.ActiveAgents++
		}
	}
	for _, sub := range s.subscriptions {
		if sub.Status == db.StatusActive {
			stats.ActiveSubscriptions++
		}
	}
	for _, msgs := range s.messages {
		stats.TotalMessages += len(msgs)
	}
	return stats, nil
}
