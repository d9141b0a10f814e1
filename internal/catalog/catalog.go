// Package catalog holds the topic reference data learning paths are built
// from. Topics are authored in YAML and never change at runtime.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultTopics []byte

// SupportedMajor is the catalog file format major version this build reads.
const SupportedMajor = "v1"

// Difficulty is an optional topic difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is empty or a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Topic is a named curriculum unit.
type Topic struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	SubjectID  string     `yaml:"subject_id" json:"subjectId"`
	ChapterID  string     `yaml:"chapter_id" json:"chapterId"`
	Difficulty Difficulty `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
}

type file struct {
	Version string  `yaml:"version"`
	Topics  []Topic `yaml:"topics"`
}

// Catalog is an immutable, indexed set of topics.
type Catalog struct {
	version string
	topics  map[string]Topic
	sorted  []Topic
}

// Load parses and validates a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	version := f.Version
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return nil, fmt.Errorf("catalog version %q is not a semantic version", f.Version)
	}
	if major := semver.Major(version); major != SupportedMajor {
		return nil, fmt.Errorf("catalog version %s not supported (want %s.x)", version, SupportedMajor)
	}

	c := &Catalog{
		version: version,
		topics:  make(map[string]Topic, len(f.Topics)),
		sorted:  slices.Clone(f.Topics),
	}
	if err := validateTopics(f.Topics); err != nil {
		return nil, err
	}
	for _, t := range f.Topics {
		c.topics[t.ID] = t
	}
	slices.SortFunc(c.sorted, func(a, b Topic) int {
		if n := strings.Compare(a.SubjectID, b.SubjectID); n != 0 {
			return n
		}
		if n := strings.Compare(a.ChapterID, b.ChapterID); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return c, nil
}

// LoadFile loads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultTopics))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// FromEnv loads the catalog named by EDDGE_CATALOG, or the embedded one.
func FromEnv() (*Catalog, error) {
	if path := os.Getenv("EDDGE_CATALOG"); path != "" {
		return LoadFile(path)
	}
	return Default(), nil
}

// Version returns the catalog's semantic version.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of topics.
func (c *Catalog) Len() int { return len(c.sorted) }

// Get returns a topic by ID.
func (c *Catalog) Get(id string) (Topic, bool) {
	t, ok := c.topics[id]
	return t, ok
}

// All returns every topic ordered by subject, chapter and id.
func (c *Catalog) All() []Topic {
	return slices.Clone(c.sorted)
}

// BySubject returns the topics of one subject in catalog order.
func (c *Catalog) BySubject(subjectID string) []Topic {
	var out []Topic
	for _, t := range c.sorted {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	return out
}

// Subjects returns the distinct subject ids in catalog order.
func (c *Catalog) Subjects() []string {
	var out []string
	for _, t := range c.sorted {
		if !slices.Contains(out, t.SubjectID) {
			out = append(out, t.SubjectID)
		}
	}
	return out
}

// Validate re-checks the catalog's topics.
func (c *Catalog) Validate() error {
	return validateTopics(c.sorted)
}

func validateTopics(topics []Topic) error {
	var errs []string
	seen := make(map[string]bool, len(topics))

	if len(topics) == 0 {
		errs = append(errs, "catalog has no topics")
	}
	for i, t := range topics {
		prefix := fmt.Sprintf("topic %d (%s)", i, t.ID)
		if t.ID == "" {
			errs = append(errs, fmt.Sprintf("topic %d: empty id", i))
		} else if seen[t.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate id", prefix))
		}
		seen[t.ID] = true

		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Sprintf("%s: empty name", prefix))
		}
		if t.SubjectID == "" {
			errs = append(errs, fmt.Sprintf("%s: empty subject", prefix))
		}
		if !t.Difficulty.Valid() {
			errs = append(errs, fmt.Sprintf("%s: unknown difficulty %q", prefix, t.Difficulty))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
