// Package content loads the read-only keyed records shown on the hologram
// panels. Records are loaded once at startup; Get never mutates.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Known record keys. Panels are bound to keys by index in the scene layout.
const (
	KeyAbout    = "about"
	KeyProjects = "projects"
	KeySkills   = "skills"
	KeyContact  = "contact"
)

type Record struct {
	Key      string   `yaml:"key" json:"key"`
	Title    string   `yaml:"title" json:"title"`
	Subtitle string   `yaml:"subtitle" json:"subtitle"`
	Body     string   `yaml:"body" json:"body"`
	Links    []Link   `yaml:"links,omitempty" json:"links,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

type Store struct {
	byKey  map[string]Record
	keys   []string
	digest string
}

type fileFormat struct {
	Records []Record `yaml:"records"`
}

func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ff fileFormat
	if err := yaml.Unmarshal(raw, &ff); err != nil {
		return nil, fmt.Errorf("content.yaml: %w", err)
	}
	if len(ff.Records) == 0 {
		return nil, fmt.Errorf("content.yaml: no records")
	}

	s := &Store{byKey: map[string]Record{}}
	for _, r := range ff.Records {
		if r.Key == "" {
			return nil, fmt.Errorf("content.yaml: record with empty key")
		}
		if _, dup := s.byKey[r.Key]; dup {
			return nil, fmt.Errorf("content.yaml: duplicate key %q", r.Key)
		}
		s.byKey[r.Key] = r
		s.keys = append(s.keys, r.Key)
	}
	sort.Strings(s.keys)

	// Digest over canonical JSON in sorted key order so clients can cache.
	h := sha256.New()
	for _, k := range s.keys {
		b, err := json.Marshal(s.byKey[k])
		if err != nil {
			return nil, err
		}
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	s.digest = hex.EncodeToString(h.Sum(nil))[:16]
	return s, nil
}

func (s *Store) Get(key string) (Record, bool) {
	r, ok := s.byKey[key]
	return r, ok
}

func (s *Store) Keys() []string { return append([]string(nil), s.keys...) }

func (s *Store) Digest() string { return s.digest }
