package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eddge/learnengine/internal/learnpath"
)

// eventRepo implements EventRepo backed by the event tables and the global
// sequence counter.
type eventRepo struct {
	s *Store
}

var outcomeColumns = []string{
	"id", "sequence", "timestamp", "session_id", "topic_id", "node_id",
	"completed", "partial", "needs_support", "confidence_score",
	"update_status", "mastery_score", "transitions",
}

func (r *eventRepo) AppendOutcome(ctx context.Context, data OutcomeEventData) error {
	seqNum, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	transitions := data.Transitions
	if transitions == nil {
		transitions = []learnpath.Transition{}
	}
	tj, err := json.Marshal(transitions)
	if err != nil {
		return fmt.Errorf("marshal transitions: %w", err)
	}

	stmt := r.s.builder().Insert(tableOutcomeEvents).
		Columns(outcomeColumns[1:]...).
		Values(
			seqNum,
			time.Now().UTC(),
			data.SessionID,
			data.TopicID,
			data.NodeID,
			data.Outcome.Completed,
			data.Outcome.Partial,
			data.Outcome.NeedsSupport,
			data.Outcome.ConfidenceScore,
			string(data.Status),
			data.MasteryScore,
			string(tj),
		)
	if _, err := r.s.exec(ctx, stmt); err != nil {
		return fmt.Errorf("save outcome event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryOutcomes(ctx context.Context, topicID string, opts QueryOpts) ([]OutcomeEvent, error) {
	b := r.s.builder()
	sel := b.Select(outcomeColumns...).
		From(b.Table(tableOutcomeEvents)).
		OrderBy(entsql.Desc("sequence"))
	if topicID != "" {
		sel.Where(entsql.EQ("topic_id", topicID))
	}
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcome events: %w", err)
	}
	defer rows.Close()

	var out []OutcomeEvent
	for rows.Next() {
		var (
			e      OutcomeEvent
			status string
			tj     []byte
		)
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.TopicID, &e.NodeID,
			&e.Outcome.Completed, &e.Outcome.Partial, &e.Outcome.NeedsSupport, &e.Outcome.ConfidenceScore,
			&status, &e.MasteryScore, &tj,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outcome event: %w", err)
		}
		e.Status = learnpath.UpdateStatus(status)
		if len(tj) > 0 {
			if err := json.Unmarshal(tj, &e.Transitions); err != nil {
				return nil, fmt.Errorf("decode transitions of event %d: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// applyQueryOpts adds the QueryOpts filters and limit to a selector.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
