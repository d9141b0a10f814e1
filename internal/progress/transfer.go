package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/mod/semver"

	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/store"
)

// ExportFormat is the version written into exported documents. Imports
// accept any v1.x.y.
const ExportFormat = "v1.0.0"

// ErrBadExport wraps every reason an import document is rejected.
var ErrBadExport = errors.New("bad export document")

type exportDoc struct {
	Format     string          `json:"format"`
	ExportedAt time.Time       `json:"exportedAt"`
	Path       json.RawMessage `json:"path"`
}

// Export returns a topic's path as a versioned JSON document.
func (s *Service) Export(ctx context.Context, topicID string) ([]byte, error) {
	p, err := s.Path(ctx, topicID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode path %s: %w", topicID, err)
	}
	return json.MarshalIndent(exportDoc{
		Format:     ExportFormat,
		ExportedAt: time.Now().UTC(),
		Path:       raw,
	}, "", "  ")
}

// Import replaces the stored path of the document's topic. The document is
// schema-checked and structurally validated; aggregates are recomputed
// rather than trusted.
func (s *Service) Import(ctx context.Context, data []byte) (learnpath.Path, error) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return learnpath.Path{}, fmt.Errorf("%w: %v", ErrBadExport, err)
	}
	if !semver.IsValid(doc.Format) || semver.Major(doc.Format) != semver.Major(ExportFormat) {
		return learnpath.Path{}, fmt.Errorf("%w: unsupported format %q", ErrBadExport, doc.Format)
	}
	if len(doc.Path) == 0 {
		return learnpath.Path{}, fmt.Errorf("%w: missing path", ErrBadExport)
	}
	if err := store.ValidatePathJSON(doc.Path); err != nil {
		return learnpath.Path{}, fmt.Errorf("%w: %v", ErrBadExport, err)
	}

	var p learnpath.Path
	if err := json.Unmarshal(doc.Path, &p); err != nil {
		return learnpath.Path{}, fmt.Errorf("%w: %v", ErrBadExport, err)
	}
	if _, err := s.Topic(p.TopicID); err != nil {
		return learnpath.Path{}, err
	}
	p.Recompute()
	if err := p.Validate(); err != nil {
		return learnpath.Path{}, fmt.Errorf("%w: %v", ErrBadExport, err)
	}

	for attempt := 0; ; attempt++ {
		cur, err := s.paths.Get(ctx, p.TopicID)
		if err != nil {
			return learnpath.Path{}, fmt.Errorf("load path %s: %w", p.TopicID, err)
		}
		var version int64
		if cur != nil {
			version = cur.Version
		}
		_, err = s.paths.Save(ctx, p, version)
		if errors.Is(err, store.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return learnpath.Path{}, fmt.Errorf("store imported path %s: %w", p.TopicID, err)
		}
		break
	}
	s.log.Info("learning path imported", "topic", p.TopicID, "mastery", p.MasteryScore)
	return p, nil
}
