package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings holds the runtime-mutable part of the configuration: values
// operators change through bot commands while the process runs. Every
// mutation is persisted before it is acknowledged, so a restart picks up
// the latest state.
type Settings struct {
	mu   sync.RWMutex
	path string
	data settingsFile
}

type settingsFile struct {
	OutreachURL string `yaml:"outreach_url"`
}

// LoadSettings reads the settings file, treating a missing file as empty
// defaults.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{path: path}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s.data); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// OutreachURL returns the stored funnel link, or "" when unset.
func (s *Settings) OutreachURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.OutreachURL
}

// SetOutreachURL validates, stores, and persists the funnel link.
func (s *Settings) SetOutreachURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("outreach url %q: %w", raw, errInvalidURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data.OutreachURL
	s.data.OutreachURL = raw
	if err := s.save(); err != nil {
		s.data.OutreachURL = prev
		return err
	}
	return nil
}

// ClearOutreachURL removes the funnel link and persists the change.
func (s *Settings) ClearOutreachURL() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data.OutreachURL
	s.data.OutreachURL = ""
	if err := s.save(); err != nil {
		s.data.OutreachURL = prev
		return err
	}
	return nil
}

var errInvalidURL = errors.New("not an absolute url")

// save is called with the write lock held.
func (s *Settings) save() error {
	b, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
