// Package template stores card layout templates. Templates are authored by
// an external workflow; this service reads them and bumps the usage counter.
package template

import (
	"context"
	"sync"

	"campuscard/internal/card/models"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
)

// InMemory is a map-backed template store for tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	templates map[id.TemplateID]*models.Template
}

func NewInMemory() *InMemory {
	return &InMemory{templates: make(map[id.TemplateID]*models.Template)}
}

// Put inserts or replaces a template.
func (s *InMemory) Put(t *models.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	cp.Fields = append([]models.TemplateField(nil), t.Fields...)
	s.templates[t.ID] = &cp
}

func (s *InMemory) FindByID(_ context.Context, templateID id.TemplateID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	cp.Fields = append([]models.TemplateField(nil), t.Fields...)
	return &cp, nil
}

func (s *InMemory) IncrementUsage(_ context.Context, templateID id.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[templateID]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.UsageCount++
	return nil
}

// UsageCount reports the current counter; test helper.
func (s *InMemory) UsageCount(templateID id.TemplateID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.templates[templateID]; ok {
		return t.UsageCount
	}
	return 0
}
