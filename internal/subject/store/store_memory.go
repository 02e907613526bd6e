package store

import (
	"context"
	"sync"

	"campuscard/internal/subject"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
)

// InMemory is a map-backed subject store for tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	persons map[id.SubjectID]*subject.Person
}

func NewInMemory() *InMemory {
	return &InMemory{persons: make(map[id.SubjectID]*subject.Person)}
}

// Put inserts or replaces a subject record.
func (s *InMemory) Put(p *subject.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.persons[p.ID] = &cp
}

func (s *InMemory) FindByID(_ context.Context, subjectID id.SubjectID) (*subject.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[subjectID]
	if !ok || p.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) FindStudent(_ context.Context, kind id.IdentifierKind, value string) (*subject.Person, error) {
	if value == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if p.IsDeleted() || p.Student == nil {
			continue
		}
		var match bool
		switch kind {
		case id.IdentRollNumber:
			match = p.Student.RollNumber == value
		case id.IdentAdmissionNumber:
			match = p.Student.AdmissionNumber == value
		case id.IdentSubjectID:
			match = p.ID.String() == value
		default:
			match = p.Student.StudentID == value
		}
		if match {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindTeacher(_ context.Context, identifier string) (*subject.Person, error) {
	if identifier == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if p.IsDeleted() || p.Teacher == nil {
			continue
		}
		if p.Teacher.EmployeeID == identifier || p.ID.String() == identifier {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindStaff(_ context.Context, identifier string) (*subject.Person, error) {
	if identifier == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if p.IsDeleted() || p.Staff == nil {
			continue
		}
		if p.Staff.EmployeeID == identifier || p.ID.String() == identifier {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
