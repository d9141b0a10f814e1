// Package progress owns learner progress: it materializes learning paths
// for catalog topics, applies session outcomes through the reducer, and
// records what happened.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/eddge/learnengine/internal/catalog"
	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/store"
)

var (
	ErrTopicNotFound  = errors.New("topic not found")
	ErrNodeNotFound   = errors.New("node not found")
	ErrNodeLocked     = errors.New("node is locked")
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// Service is built once at startup and shared by the CLI, the terminal
// player and the HTTP API.
type Service struct {
	catalog *catalog.Catalog
	paths   store.PathRepo
	events  store.EventRepo
	log     *logger.Logger
	cfg     Config
}

// NewService wires a service. A nil logger discards output and unset
// config fields take their defaults.
func NewService(cat *catalog.Catalog, paths store.PathRepo, events store.EventRepo, log *logger.Logger, cfg Config) *Service {
	if log == nil {
		log = logger.Nop()
	}
	def := DefaultConfig()
	if cfg.Scoring == (learnpath.ScoringConfig{}) {
		cfg.Scoring = def.Scoring
	}
	if cfg.SeedConcurrency < 1 {
		cfg.SeedConcurrency = def.SeedConcurrency
	}
	return &Service{
		catalog: cat,
		paths:   paths,
		events:  events,
		log:     log.With("component", "progress"),
		cfg:     cfg,
	}
}

// Config returns the service settings.
func (s *Service) Config() Config { return s.cfg }

// Catalog returns the topic catalog the service serves.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Topic looks up a catalog topic.
func (s *Service) Topic(topicID string) (catalog.Topic, error) {
	t, ok := s.catalog.Get(topicID)
	if !ok {
		return catalog.Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}
	return t, nil
}

// Path returns the learning path for a topic, creating and storing it on
// first access.
func (s *Service) Path(ctx context.Context, topicID string) (learnpath.Path, error) {
	rec, _, err := s.load(ctx, topicID)
	if err != nil {
		return learnpath.Path{}, err
	}
	return rec.Path, nil
}

// Frames returns the frames of one node.
func (s *Service) Frames(ctx context.Context, topicID, nodeID string) (learnpath.Node, []frames.Frame, error) {
	p, err := s.Path(ctx, topicID)
	if err != nil {
		return learnpath.Node{}, nil, err
	}
	n, ok := p.Node(nodeID)
	if !ok {
		return learnpath.Node{}, nil, fmt.Errorf("%w: %s in %s", ErrNodeNotFound, nodeID, topicID)
	}
	return n, n.Frames, nil
}

// load returns the stored record, materializing it when absent. created
// reports whether this call stored it.
func (s *Service) load(ctx context.Context, topicID string) (*store.PathRecord, bool, error) {
	topic, err := s.Topic(topicID)
	if err != nil {
		return nil, false, err
	}
	rec, err := s.paths.Get(ctx, topicID)
	if err != nil {
		return nil, false, fmt.Errorf("load path %s: %w", topicID, err)
	}
	if rec != nil {
		return rec, false, nil
	}

	p := learnpath.NewPath(topic.ID, topic.Name)
	for _, m := range p.FrameBudgetMismatches() {
		s.log.Warn("declared frame budget differs from generated frames",
			"topic", topicID, "node", m.NodeID, "type", m.Type, "declared", m.Declared, "actual", m.Actual)
	}

	v, err := s.paths.Save(ctx, p, 0)
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		// Another writer materialized it first; ids are deterministic so
		// their copy is equivalent.
		rec, err = s.paths.Get(ctx, topicID)
		if err != nil || rec == nil {
			return nil, false, fmt.Errorf("reload path %s: %w", topicID, errors.Join(err, store.ErrVersionConflict))
		}
		return rec, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("store path %s: %w", topicID, err)
	}
	s.log.Info("learning path created", "topic", topicID, "nodes", len(p.Nodes))
	return &store.PathRecord{TopicID: topicID, Version: v, Path: p}, true, nil
}

// CompleteResult is what Complete did.
type CompleteResult struct {
	Path        learnpath.Path
	Status      learnpath.UpdateStatus
	Transitions []learnpath.Transition
	Version     int64
}

// Complete applies the outcome of a session on nodeID. An outcome that is
// not completed is recorded but leaves the path unchanged. A concurrent
// write is retried once against the fresh path.
func (s *Service) Complete(ctx context.Context, topicID, nodeID string, o learnpath.Outcome, sessionID string) (CompleteResult, error) {
	if err := o.Validate(); err != nil {
		return CompleteResult{}, fmt.Errorf("%w: %v", ErrInvalidOutcome, err)
	}

	var res CompleteResult
	for attempt := 0; ; attempt++ {
		rec, _, err := s.load(ctx, topicID)
		if err != nil {
			return CompleteResult{}, err
		}

		next, upd := learnpath.UpdateNodeStatus(rec.Path, nodeID, o)
		res = CompleteResult{Path: next, Status: upd.Status, Transitions: upd.Transitions, Version: rec.Version}

		switch upd.Status {
		case learnpath.UpdateNodeNotFound:
			return CompleteResult{}, fmt.Errorf("%w: %s in %s", ErrNodeNotFound, nodeID, topicID)
		case learnpath.UpdateNodeLocked:
			return CompleteResult{}, fmt.Errorf("%w: %s", ErrNodeLocked, nodeID)
		case learnpath.UpdateNotCompleted:
			res.Path = rec.Path
			s.record(ctx, sessionID, res, nodeID, o)
			return res, nil
		}

		v, err := s.paths.Save(ctx, next, rec.Version)
		if errors.Is(err, store.ErrVersionConflict) && attempt == 0 {
			s.log.Debug("path changed while completing node, retrying", "topic", topicID, "node", nodeID)
			continue
		}
		if err != nil {
			return CompleteResult{}, fmt.Errorf("save path %s: %w", topicID, err)
		}
		res.Version = v
		break
	}

	for _, tr := range res.Transitions {
		s.log.Info("node status changed", "topic", topicID, "node", tr.NodeID,
			"from", tr.From, "to", tr.To, "trigger", tr.Trigger)
	}
	s.record(ctx, sessionID, res, nodeID, o)
	return res, nil
}

// record appends the outcome event. The path is already saved, so a failed
// append is logged rather than returned.
func (s *Service) record(ctx context.Context, sessionID string, res CompleteResult, nodeID string, o learnpath.Outcome) {
	err := s.events.AppendOutcome(ctx, store.OutcomeEventData{
		SessionID:    sessionID,
		TopicID:      res.Path.TopicID,
		NodeID:       nodeID,
		Outcome:      o,
		Status:       res.Status,
		MasteryScore: res.Path.MasteryScore,
		Transitions:  res.Transitions,
	})
	if err != nil {
		s.log.Warn("recording outcome failed", "topic", res.Path.TopicID, "node", nodeID, "error", err)
	}
}

// Seed materializes the path of every catalog topic and returns how many
// were newly created.
func (s *Service) Seed(ctx context.Context) (int, error) {
	var created atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SeedConcurrency)
	for _, t := range s.catalog.All() {
		g.Go(func() error {
			_, fresh, err := s.load(ctx, t.ID)
			if fresh {
				created.Add(1)
			}
			return err
		})
	}
	err := g.Wait()
	return int(created.Load()), err
}

// Reset drops a topic's stored path; the next access starts it afresh.
func (s *Service) Reset(ctx context.Context, topicID string) error {
	if _, err := s.Topic(topicID); err != nil {
		return err
	}
	if err := s.paths.Delete(ctx, topicID); err != nil {
		return fmt.Errorf("reset %s: %w", topicID, err)
	}
	s.log.Info("learning path reset", "topic", topicID)
	return nil
}

// ResetAll drops every stored path and returns how many were removed.
func (s *Service) ResetAll(ctx context.Context) (int, error) {
	n, err := s.paths.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset all: %w", err)
	}
	s.log.Info("all learning paths reset", "count", n)
	return n, nil
}

// History returns the newest outcome events of a topic. limit 0 means all.
func (s *Service) History(ctx context.Context, topicID string, limit int) ([]store.OutcomeEvent, error) {
	if _, err := s.Topic(topicID); err != nil {
		return nil, err
	}
	evs, err := s.events.QueryOutcomes(ctx, topicID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", topicID, err)
	}
	return evs, nil
}

// TopicProgress is one row of the progress overview.
type TopicProgress struct {
	Topic          catalog.Topic `json:"topic"`
	Started        bool          `json:"started"`
	CompletedNodes int           `json:"completedNodes"`
	TotalNodes     int           `json:"totalNodes"`
	MasteryScore   int           `json:"masteryScore"`
	CurrentNodeID  string        `json:"currentNodeId,omitempty"`
}

// Overview lists every catalog topic with its stored progress. Topics that
// were never opened are reported as not started and are not materialized.
func (s *Service) Overview(ctx context.Context) ([]TopicProgress, error) {
	recs, err := s.paths.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	stored := make(map[string]learnpath.Path, len(recs))
	for _, r := range recs {
		stored[r.TopicID] = r.Path
	}

	topics := s.catalog.All()
	out := make([]TopicProgress, 0, len(topics))
	for _, t := range topics {
		row := TopicProgress{Topic: t, TotalNodes: learnpath.NodesPerPath}
		if p, ok := stored[t.ID]; ok {
			row.Started = true
			row.CompletedNodes = p.CompletedNodeCount
			row.TotalNodes = p.TotalNodeCount
			row.MasteryScore = p.MasteryScore
			row.CurrentNodeID = p.CurrentNodeID
		}
		out = append(out, row)
	}
	return out, nil
}
