// Package session gives every operator session its own vessel registry, notification
// feed and assistant history on top of shared, stateless services.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/gateway"
	"github.com/joseph-ayodele/port-compliance/internal/notify"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
	"github.com/joseph-ayodele/port-compliance/internal/repository"
	"github.com/joseph-ayodele/port-compliance/internal/vessel"
)

const DefaultID = "default"

// Assistant is the scheduling assistant capability.
type Assistant interface {
	Consult(ctx context.Context, q entity.AssistantQuery) (entity.AssistantReply, error)
}

// Deps are shared by every controller.
type Deps struct {
	Processor        *pipeline.Processor
	Gateway          gateway.Gateway
	Assistant        Assistant
	Analyses         repository.AnalysisRepository
	ModelName        string
	MaxNotifications int
	SyncConcurrency  int // terminal sync fan-out limit, default 4
	Now              func() time.Time
	Logger           *slog.Logger
}

// Manager hands out one Controller per session id.
type Manager struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[string]*Controller
}

func NewManager(deps Deps) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SyncConcurrency <= 0 {
		deps.SyncConcurrency = 4
	}
	if deps.Gateway == nil {
		deps.Gateway = gateway.NewSimulated()
	}
	return &Manager{deps: deps, sessions: make(map[string]*Controller)}
}

// Get returns the session's controller, creating a freshly seeded one on first use.
func (m *Manager) Get(id string) *Controller {
	if id == "" {
		id = DefaultID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[id]
	if !ok {
		c = newController(id, m.deps)
		m.sessions[id] = c
		m.deps.Logger.Info("session.created", "session_id", id)
	}
	return c
}

// Drop forgets a session. Stored analyses are kept.
func (m *Manager) Drop(id string) {
	if id == "" {
		id = DefaultID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.deps.Logger.Info("session.dropped", "session_id", id)
	}
}

func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func newController(id string, deps Deps) *Controller {
	return &Controller{
		id:       id,
		deps:     deps,
		logger:   deps.Logger.With("session_id", id),
		registry: vessel.NewRegistry(deps.Now),
		feed:     notify.NewFeed(deps.MaxNotifications, deps.Now),
	}
}
