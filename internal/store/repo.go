package store

import (
	"context"
	"errors"
	"time"

	"github.com/eddge/learnengine/internal/learnpath"
)

// ErrVersionConflict is returned by PathRepo.Save when the stored version
// differs from the version the caller loaded.
var ErrVersionConflict = errors.New("learning path was modified concurrently")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// PathRecord is a persisted learning path with its concurrency version.
type PathRecord struct {
	TopicID   string
	Version   int64
	Path      learnpath.Path
	UpdatedAt time.Time
}

// PathRepo persists one learning path per topic.
type PathRepo interface {
	// Get returns the stored path, or nil if the topic has none yet.
	Get(ctx context.Context, topicID string) (*PathRecord, error)

	// Save writes p. expectedVersion 0 inserts a new record; any other value
	// updates the record only if its version still matches. Returns the new
	// version, or ErrVersionConflict.
	Save(ctx context.Context, p learnpath.Path, expectedVersion int64) (int64, error)

	// List returns every stored path ordered by topic id.
	List(ctx context.Context) ([]PathRecord, error)

	// Delete removes a topic's path. Deleting a missing path is not an error.
	Delete(ctx context.Context, topicID string) error

	// DeleteAll removes every stored path and returns how many were removed.
	DeleteAll(ctx context.Context) (int, error)
}

// OutcomeEventData captures one node session result and what the reducer
// did with it.
type OutcomeEventData struct {
	SessionID    string
	TopicID      string
	NodeID       string
	Outcome      learnpath.Outcome
	Status       learnpath.UpdateStatus
	MasteryScore int // path mastery after the update
	Transitions  []learnpath.Transition
}

// OutcomeEvent is a stored OutcomeEventData.
type OutcomeEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	OutcomeEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events. Every event
// gets a sequence number from one counter, so events of different kinds can
// be ordered against each other.
type EventRepo interface {
	// AppendOutcome records a finished node session.
	AppendOutcome(ctx context.Context, data OutcomeEventData) error

	// QueryOutcomes returns outcome events, newest first. An empty topicID
	// matches every topic.
	QueryOutcomes(ctx context.Context, topicID string, opts QueryOpts) ([]OutcomeEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM request event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates LLM calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
