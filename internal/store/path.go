package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eddge/learnengine/internal/learnpath"
)

var pathColumns = []string{"topic_id", "version", "data", "updated_at"}

// pathRepo implements PathRepo with ent's SQL builders.
type pathRepo struct {
	s *Store
}

func (r *pathRepo) Get(ctx context.Context, topicID string) (*PathRecord, error) {
	b := r.s.builder()
	query, args := b.Select(pathColumns...).
		From(b.Table(tableLearningPaths)).
		Where(entsql.EQ("topic_id", topicID)).
		Query()

	rec, err := scanPath(r.s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get learning path %s: %w", topicID, err)
	}
	return rec, nil
}

func (r *pathRepo) Save(ctx context.Context, p learnpath.Path, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("marshal learning path: %w", err)
	}
	now := time.Now().UTC()
	b := r.s.builder()

	var stmt entsql.Querier
	if expectedVersion == 0 {
		stmt = b.Insert(tableLearningPaths).
			Columns(pathColumns...).
			Values(p.TopicID, 1, string(data), now).
			OnConflict(entsql.ConflictColumns("topic_id"), entsql.DoNothing())
	} else {
		stmt = b.Update(tableLearningPaths).
			Set("version", expectedVersion+1).
			Set("data", string(data)).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("topic_id", p.TopicID),
				entsql.EQ("version", expectedVersion),
			))
	}

	n, err := r.s.exec(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("save learning path %s: %w", p.TopicID, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("save learning path %s at version %d: %w", p.TopicID, expectedVersion, ErrVersionConflict)
	}
	return expectedVersion + 1, nil
}

func (r *pathRepo) List(ctx context.Context) ([]PathRecord, error) {
	b := r.s.builder()
	query, args := b.Select(pathColumns...).
		From(b.Table(tableLearningPaths)).
		OrderBy("topic_id").
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list learning paths: %w", err)
	}
	defer rows.Close()

	var out []PathRecord
	for rows.Next() {
		rec, err := scanPath(rows)
		if err != nil {
			return nil, fmt.Errorf("scan learning path: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *pathRepo) Delete(ctx context.Context, topicID string) error {
	stmt := r.s.builder().Delete(tableLearningPaths).Where(entsql.EQ("topic_id", topicID))
	if _, err := r.s.exec(ctx, stmt); err != nil {
		return fmt.Errorf("delete learning path %s: %w", topicID, err)
	}
	return nil
}

func (r *pathRepo) DeleteAll(ctx context.Context) (int, error) {
	n, err := r.s.exec(ctx, r.s.builder().Delete(tableLearningPaths))
	if err != nil {
		return 0, fmt.Errorf("delete learning paths: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPath(row rowScanner) (*PathRecord, error) {
	var (
		rec  PathRecord
		data []byte
	)
	if err := row.Scan(&rec.TopicID, &rec.Version, &data, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &rec.Path); err != nil {
		return nil, fmt.Errorf("decode learning path %s: %w", rec.TopicID, err)
	}
	return &rec, nil
}
