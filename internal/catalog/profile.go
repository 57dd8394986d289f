package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

// RecordProfile holds the captured display identity.
const RecordProfile = "profile"

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NewProfile derives the login identity from a display name.
func NewProfile(name string) models.Profile {
	name = strings.TrimSpace(name)
	local := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(name), "."), ".")
	if local == "" {
		local = "student"
	}
	email := local + "@planunsch.edu"
	return models.Profile{
		Name:      name,
		Email:     email,
		AvatarURL: "https://i.pravatar.cc/150?u=" + url.QueryEscape(email),
	}
}

// Profile returns the stored profile, if a user has logged in.
func (s *Store) Profile() (models.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p models.Profile
	found, err := s.records.Load(RecordProfile, &p)
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("loading profile: %w", err)
	}
	return p, found, nil
}

// SetProfile stores the profile for name.
func (s *Store) SetProfile(name string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := NewProfile(name)
	if err := s.records.Save(RecordProfile, p); err != nil {
		return models.Profile{}, fmt.Errorf("saving profile: %w", err)
	}
	return p, nil
}

// ClearProfile forgets the logged-in profile. Subjects and events are kept.
func (s *Store) ClearProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.Delete(RecordProfile); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}
