package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/eddge/learnengine/internal/learnpath"
)

var (
	_ PathRepo  = (*MemoryPathRepo)(nil)
	_ EventRepo = (*MemoryEventRepo)(nil)
)

// MemoryPathRepo is an in-process PathRepo. State is lost when the process
// exits.
type MemoryPathRepo struct {
	mu    sync.RWMutex
	paths map[string]PathRecord
}

// NewMemoryPathRepo returns an empty MemoryPathRepo.
func NewMemoryPathRepo() *MemoryPathRepo {
	return &MemoryPathRepo{paths: make(map[string]PathRecord)}
}

func (m *MemoryPathRepo) Get(_ context.Context, topicID string) (*PathRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.paths[topicID]
	if !ok {
		return nil, nil
	}
	rec.Path = rec.Path.Clone()
	return &rec, nil
}

func (m *MemoryPathRepo) Save(_ context.Context, p learnpath.Path, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, exists := m.paths[p.TopicID]
	switch {
	case expectedVersion == 0 && exists,
		expectedVersion != 0 && (!exists || cur.Version != expectedVersion):
		return 0, fmt.Errorf("save learning path %s at version %d: %w", p.TopicID, expectedVersion, ErrVersionConflict)
	}

	m.paths[p.TopicID] = PathRecord{
		TopicID:   p.TopicID,
		Version:   expectedVersion + 1,
		Path:      p.Clone(),
		UpdatedAt: time.Now().UTC(),
	}
	return expectedVersion + 1, nil
}

func (m *MemoryPathRepo) List(_ context.Context) ([]PathRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PathRecord, 0, len(m.paths))
	for _, rec := range m.paths {
		rec.Path = rec.Path.Clone()
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b PathRecord) int { return strings.Compare(a.TopicID, b.TopicID) })
	return out, nil
}

func (m *MemoryPathRepo) Delete(_ context.Context, topicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.paths, topicID)
	return nil
}

func (m *MemoryPathRepo) DeleteAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.paths)
	clear(m.paths)
	return n, nil
}

// MemoryEventRepo is an in-process EventRepo.
type MemoryEventRepo struct {
	mu       sync.Mutex
	seq      int64
	outcomes []OutcomeEvent
	llm      []LLMRequestEvent
}

// NewMemoryEventRepo returns an empty MemoryEventRepo.
func NewMemoryEventRepo() *MemoryEventRepo {
	return &MemoryEventRepo{}
}

func (m *MemoryEventRepo) AppendOutcome(_ context.Context, data OutcomeEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	data.Transitions = slices.Clone(data.Transitions)
	m.outcomes = append(m.outcomes, OutcomeEvent{
		ID:               len(m.outcomes) + 1,
		Sequence:         m.seq,
		Timestamp:        time.Now().UTC(),
		OutcomeEventData: data,
	})
	return nil
}

func (m *MemoryEventRepo) QueryOutcomes(_ context.Context, topicID string, opts QueryOpts) ([]OutcomeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []OutcomeEvent
	for i := len(m.outcomes) - 1; i >= 0; i-- {
		e := m.outcomes[i]
		if topicID != "" && e.TopicID != topicID {
			continue
		}
		if !matches(e.Sequence, e.Timestamp, opts) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryEventRepo) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.llm = append(m.llm, LLMRequestEvent{
		ID:                  len(m.llm) + 1,
		Sequence:            m.seq,
		Timestamp:           time.Now().UTC(),
		LLMRequestEventData: data,
	})
	return nil
}

func (m *MemoryEventRepo) QueryLLMEvents(_ context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LLMRequestEvent
	for i := len(m.llm) - 1; i >= 0; i-- {
		e := m.llm[i]
		if !matches(e.Sequence, e.Timestamp, opts) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryEventRepo) GetLLMEvent(_ context.Context, id int) (*LLMRequestEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > len(m.llm) {
		return nil, nil
	}
	e := m.llm[id-1]
	return &e, nil
}

func (m *MemoryEventRepo) LLMUsageByPurpose(_ context.Context) ([]LLMUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byPurpose := make(map[string]*LLMUsage)
	latency := make(map[string]int64)
	for _, e := range m.llm {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &LLMUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		latency[e.Purpose] += e.LatencyMs
	}
	out := make([]LLMUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = latency[p] / int64(u.Calls)
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b LLMUsage) int { return strings.Compare(a.Purpose, b.Purpose) })
	return out, nil
}

func matches(seq int64, ts time.Time, opts QueryOpts) bool {
	switch {
	case opts.After > 0 && seq <= opts.After:
		return false
	case opts.Before > 0 && seq >= opts.Before:
		return false
	case !opts.From.IsZero() && ts.Before(opts.From):
		return false
	case !opts.To.IsZero() && ts.After(opts.To):
		return false
	}
	return true
}
