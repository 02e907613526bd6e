// Package credential stores issued-credential rows. Rows are append-only;
// superseding touches a timestamp and verification always reads the newest.
package credential

import (
	"context"
	"slices"
	"sync"
	"time"

	"campuscard/internal/card/models"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
)

// InMemory is a slice-backed credential store for tests and local
// development.
type InMemory struct {
	mu          sync.RWMutex
	credentials []models.IssuedCredential
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(_ context.Context, c *models.IssuedCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = append(s.credentials, *c)
	return nil
}

func (s *InMemory) Touch(_ context.Context, credentialID id.CredentialID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.credentials {
		if s.credentials[i].ID == credentialID {
			t := now
			s.credentials[i].SupersededAt = &t
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) FindLatestBySubject(_ context.Context, subjectID id.SubjectID, types ...id.SubjectType) (*models.IssuedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.IssuedCredential
	for i := range s.credentials {
		c := &s.credentials[i]
		if c.SubjectID != subjectID || !slices.Contains(types, c.SubjectType) {
			continue
		}
		if latest == nil || c.IssuedAt.After(latest.IssuedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// All returns a copy of every row; test helper.
func (s *InMemory) All() []models.IssuedCredential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.IssuedCredential, len(s.credentials))
	copy(out, s.credentials)
	return out
}
