package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("embedded catalog invalid: %v", err)
	}
	if c.Version() != "v1.2.0" {
		t.Errorf("version = %q", c.Version())
	}

	topic, ok := c.Get("phy-kinematics")
	if !ok {
		t.Fatal("phy-kinematics not found")
	}
	if topic.Name != "Motion in a Straight Line" || topic.SubjectID != "physics" {
		t.Errorf("unexpected topic: %+v", topic)
	}
}

func TestGet_NotFound(t *testing.T) {
	if _, ok := Default().Get("NONEXISTENT"); ok {
		t.Error("Get(NONEXISTENT) should not be found")
	}
}

func TestAll_Sorted(t *testing.T) {
	all := Default().All()
	for i := 1; i < len(all); i++ {
		a, b := all[i-1], all[i]
		if a.SubjectID > b.SubjectID || (a.SubjectID == b.SubjectID && a.ChapterID > b.ChapterID) {
			t.Errorf("topics out of order: %s before %s", a.ID, b.ID)
		}
	}
}

func TestBySubject(t *testing.T) {
	c := Default()
	phys := c.BySubject("physics")
	if len(phys) != 4 {
		t.Errorf("physics topics = %d, want 4", len(phys))
	}
	for _, tp := range phys {
		if tp.SubjectID != "physics" {
			t.Errorf("%s has subject %s", tp.ID, tp.SubjectID)
		}
	}
	if got := c.BySubject("history"); len(got) != 0 {
		t.Errorf("unknown subject returned %d topics", len(got))
	}

	subjects := c.Subjects()
	if strings.Join(subjects, ",") != "biology,chemistry,maths,physics" {
		t.Errorf("subjects = %v", subjects)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad version",
			yaml:    "version: latest\ntopics:\n  - {id: a, name: A, subject_id: s}\n",
			wantErr: "not a semantic version",
		},
		{
			name:    "future major",
			yaml:    "version: v2.0.0\ntopics:\n  - {id: a, name: A, subject_id: s}\n",
			wantErr: "not supported",
		},
		{
			name:    "duplicate id",
			yaml:    "version: v1.0.0\ntopics:\n  - {id: a, name: A, subject_id: s}\n  - {id: a, name: B, subject_id: s}\n",
			wantErr: "duplicate id",
		},
		{
			name:    "empty name",
			yaml:    "version: v1.0.0\ntopics:\n  - {id: a, name: '', subject_id: s}\n",
			wantErr: "empty name",
		},
		{
			name:    "unknown difficulty",
			yaml:    "version: v1.0.0\ntopics:\n  - {id: a, name: A, subject_id: s, difficulty: brutal}\n",
			wantErr: `unknown difficulty "brutal"`,
		},
		{
			name:    "unknown field",
			yaml:    "version: v1.0.0\ntopics:\n  - {id: a, name: A, subject_id: s, colour: red}\n",
			wantErr: "colour",
		},
		{
			name:    "no topics",
			yaml:    "version: v1.0.0\ntopics: []\n",
			wantErr: "no topics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_VersionWithoutPrefix(t *testing.T) {
	c, err := Load(strings.NewReader("version: 1.4.2\ntopics:\n  - {id: a, name: A, subject_id: s}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Version() != "v1.4.2" {
		t.Errorf("version = %q", c.Version())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	data := "version: v1.0.0\ntopics:\n  - id: t1\n    name: Kinematics\n    subject_id: physics\n    chapter_id: ch1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := c.Get("t1"); !ok {
		t.Error("t1 not loaded")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("EDDGE_CATALOG", "")
	c, err := FromEnv()
	if err != nil || c.Len() != Default().Len() {
		t.Fatalf("FromEnv without override: %v", err)
	}

	t.Setenv("EDDGE_CATALOG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for missing override file")
	}
}
