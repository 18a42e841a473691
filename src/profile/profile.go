package profile

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
)

// Field is one profile entry: a label and its stored values. A field may
// carry several values (e.g. two phone numbers); value order is preserved.
type Field struct {
	Label  string   `yaml:"label"`
	Values []string `yaml:"values"`
}

type document struct {
	Fields []Field `yaml:"fields"`
}

// PresetLabels seed a fresh profile file so the user only has to fill in
// values. These mirror the common fields of a Chinese job-application form.
var PresetLabels = []string{
	"姓名",
	"身份证",
	"电话",
	"手机",
	"邮箱",
	"地址",
	"邮编",
	"毕业院校",
	"专业",
	"工作经历",
	"技能",
	"学历",
	"出生日期",
	"性别",
	"民族",
	"政治面貌",
	"婚姻状况",
	"籍贯",
	"现居住地",
	"期望薪资",
	"求职意向",
	"自我评价",
	"项目经验",
	"获奖情况",
}

// Store owns the profile file. All reads return snapshots; mutation goes
// through Set/Delete/Rename which persist immediately.
type Store struct {
	mu     sync.RWMutex
	path   string
	fields []Field
}

// Open loads the profile at path, creating a preset template when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.seed(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) seed() error {
	fields := make([]Field, 0, len(PresetLabels))
	for _, label := range PresetLabels {
		fields = append(fields, Field{Label: label})
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fields
	return s.persist()
}

// Reload re-reads the file, replacing the in-memory snapshot.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}
	s.fields = doc.Fields
	log.Printf("Profile: loaded %d fields from %s", len(doc.Fields), s.path)
	return nil
}

// Fields returns a snapshot of all fields in load order.
func (s *Store) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = Field{Label: f.Label, Values: append([]string(nil), f.Values...)}
	}
	return out
}

// Values returns the stored values for label, or nil if unknown.
func (s *Store) Values(label string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.fields {
		if f.Label == label {
			return append([]string(nil), f.Values...)
		}
	}
	return nil
}

// Set replaces the values of label, appending the field if it is new.
func (s *Store) Set(label string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.fields {
		if s.fields[i].Label == label {
			s.fields[i].Values = append([]string(nil), values...)
			found = true
			break
		}
	}
	if !found {
		s.fields = append(s.fields, Field{Label: label, Values: append([]string(nil), values...)})
	}
	return s.persist()
}

// Delete removes the field with the given label.
func (s *Store) Delete(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.fields {
		if s.fields[i].Label == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown field %q", label)
	}
	s.fields = append(s.fields[:idx], s.fields[idx+1:]...)
	return s.persist()
}

// Rename changes a field's label in place, keeping its position and values.
func (s *Store) Rename(oldLabel, newLabel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fields {
		if s.fields[i].Label == oldLabel {
			s.fields[i].Label = newLabel
			return s.persist()
		}
	}
	return fmt.Errorf("unknown field %q", oldLabel)
}

// persist marshals the current fields to the backing file. Callers must hold
// s.mu, so mutation and persistence are one critical section and two
// concurrent mutations cannot save in swapped order.
func (s *Store) persist() error {
	doc := document{Fields: s.fields}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
