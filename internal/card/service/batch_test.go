package service

import (
	"github.com/google/uuid"

	id "campuscard/pkg/domain"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/platform/audit"
)

func (s *CardServiceSuite) TestRenderBatchAllSucceed() {
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)
	a := s.seedStudent()
	b := s.seedStudent()

	outcomes := s.service.RenderBatch(s.ctx, template.ID, []id.SubjectID{a.ID, b.ID}, nil, "2026 Spring")
	s.Require().Len(outcomes, 2)

	s.Run("outcomes in input order", func() {
		s.Equal(a.ID, outcomes[0].SubjectID)
		s.Equal(b.ID, outcomes[1].SubjectID)
	})

	for _, o := range outcomes {
		s.NoError(o.Err)
		s.False(o.CredentialID.IsNil())
	}

	s.Run("batch name recorded on every credential", func() {
		rows := s.credentials.All()
		s.Require().Len(rows, 2)
		for _, row := range rows {
			s.Equal("2026 Spring", row.BatchName)
		}
	})

	s.Run("usage counted once per issued card", func() {
		s.Equal(2, s.templates.UsageCount(template.ID))
	})

	s.Run("batch completion audited", func() {
		var completed []audit.Event
		for _, e := range s.auditStore.Events() {
			if e.Action == audit.ActionBatchCompleted {
				completed = append(completed, e)
			}
		}
		s.Require().Len(completed, 1)
		s.Equal("2 issued, 0 failed", completed[0].Outcome)
		s.Equal("2026 Spring", completed[0].BatchName)
	})
}

func (s *CardServiceSuite) TestRenderBatchIsolatesFailures() {
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)
	good := s.seedStudent()
	missing := id.SubjectID(uuid.New())
	mismatched := s.seedTeacher()

	outcomes := s.service.RenderBatch(s.ctx, template.ID,
		[]id.SubjectID{good.ID, missing, mismatched.ID}, nil, "")
	s.Require().Len(outcomes, 3)

	s.NoError(outcomes[0].Err)
	s.False(outcomes[0].CredentialID.IsNil())

	s.Require().Error(outcomes[1].Err)
	s.True(dErrors.HasCode(outcomes[1].Err, dErrors.CodeNotFound))

	s.Require().Error(outcomes[2].Err)
	s.True(dErrors.HasCode(outcomes[2].Err, dErrors.CodeTypeMismatch))

	s.Run("only successes touch storage", func() {
		s.Len(s.credentials.All(), 1)
		s.Equal(1, s.templates.UsageCount(template.ID))
	})
}

func (s *CardServiceSuite) TestRenderBatchSharesOneIssuanceInstant() {
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)
	a := s.seedStudent()
	b := s.seedStudent()
	c := s.seedStudent()

	outcomes := s.service.RenderBatch(s.ctx, template.ID, []id.SubjectID{a.ID, b.ID, c.ID}, nil, "")
	for _, o := range outcomes {
		s.Require().NoError(o.Err)
	}

	rows := s.credentials.All()
	s.Require().Len(rows, 3)
	for _, row := range rows {
		s.Equal(s.now, row.IssuedAt, "every card in a batch shares the pinned timestamp")
		s.Require().NotNil(row.ExpiryDate)
		s.Equal(s.now.Add(DefaultValidity), *row.ExpiryDate)
	}
}

func (s *CardServiceSuite) TestRenderBatchEmptyInput() {
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	outcomes := s.service.RenderBatch(s.ctx, template.ID, nil, nil, "")
	s.Empty(outcomes)
	s.Empty(s.credentials.All())
}

func (s *CardServiceSuite) TestRenderBatchWithBoundedConcurrency() {
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	limited := New(
		s.subjects, s.templates, s.credentials,
		s.service.school, s.service.resolver, frontendBase,
		WithBatchLimit(2),
	)

	var ids []id.SubjectID
	for i := 0; i < 10; i++ {
		ids = append(ids, s.seedStudent().ID)
	}
	outcomes := limited.RenderBatch(s.ctx, template.ID, ids, nil, "bulk")
	s.Require().Len(outcomes, 10)
	for i, o := range outcomes {
		s.Equal(ids[i], o.SubjectID)
		s.NoError(o.Err)
	}
	s.Len(s.credentials.All(), 10)
}
