//go:build integration

package credential_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campuscard/internal/card/models"
	credentialstore "campuscard/internal/card/store/credential"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
	"campuscard/pkg/testutil/containers"
)

type CredentialPostgresSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	store      *credentialstore.Postgres
	subjectID  id.SubjectID
	templateID id.TemplateID
}

func TestCredentialPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CredentialPostgresSuite))
}

func (s *CredentialPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = credentialstore.NewPostgres(s.postgres.DB)
}

func (s *CredentialPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "issued_credentials", "templates", "subjects")
	s.Require().NoError(err)

	subjectRow := uuid.New()
	_, err = s.postgres.DB.Exec(`
		INSERT INTO subjects (id, first_name) VALUES ($1, 'Asha')
	`, subjectRow)
	s.Require().NoError(err)
	s.subjectID = id.SubjectID(subjectRow)

	templateRow := uuid.New()
	_, err = s.postgres.DB.Exec(`
		INSERT INTO templates (id, name, subject_type, status, width_mm, height_mm, orientation)
		VALUES ($1, 'Standard Card', 'STUDENT', 'ACTIVE', 85.6, 54, 'landscape')
	`, templateRow)
	s.Require().NoError(err)
	s.templateID = id.TemplateID(templateRow)
}

func (s *CredentialPostgresSuite) newCredential(subjectType id.SubjectType, issuedAt time.Time) *models.IssuedCredential {
	return &models.IssuedCredential{
		ID:          id.CredentialID(uuid.New()),
		SubjectID:   s.subjectID,
		SubjectType: subjectType,
		TemplateID:  s.templateID,
		IssuedAt:    issuedAt,
	}
}

func (s *CredentialPostgresSuite) TestCreateAndFindLatest() {
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	older := s.newCredential(id.SubjectStudent, base)
	newer := s.newCredential(id.SubjectStudent, base.Add(time.Hour))
	newer.BatchName = "2026 Spring"
	expiry := base.AddDate(1, 0, 0)
	newer.ExpiryDate = &expiry

	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	got, err := s.store.FindLatestBySubject(ctx, s.subjectID, id.SubjectStudent)
	s.Require().NoError(err)
	s.Equal(newer.ID, got.ID)
	s.Equal("2026 Spring", got.BatchName)
	s.Require().NotNil(got.ExpiryDate)
	s.True(got.ExpiryDate.Equal(expiry))
	s.Nil(got.SupersededAt)
}

func (s *CredentialPostgresSuite) TestEmptyBatchNameStoresNull() {
	ctx := context.Background()
	c := s.newCredential(id.SubjectStudent, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, c))

	var batch *string
	err := s.postgres.DB.QueryRow(`SELECT batch_name FROM issued_credentials WHERE id = $1`,
		uuid.UUID(c.ID)).Scan(&batch)
	s.Require().NoError(err)
	s.Nil(batch)

	got, err := s.store.FindLatestBySubject(ctx, s.subjectID, id.SubjectStudent)
	s.Require().NoError(err)
	s.Empty(got.BatchName)
}

func (s *CredentialPostgresSuite) TestTypeFilterMatchesAny() {
	ctx := context.Background()
	c := s.newCredential(id.SubjectStaffNoLogin, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, c))

	_, err := s.store.FindLatestBySubject(ctx, s.subjectID, id.SubjectStaff)
	s.ErrorIs(err, sentinel.ErrNotFound)

	got, err := s.store.FindLatestBySubject(ctx, s.subjectID, id.SubjectStaff, id.SubjectStaffNoLogin)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
}

func (s *CredentialPostgresSuite) TestTouchSetsSupersededAt() {
	ctx := context.Background()
	c := s.newCredential(id.SubjectStudent, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, c))

	mark := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Touch(ctx, c.ID, mark))

	got, err := s.store.FindLatestBySubject(ctx, s.subjectID, id.SubjectStudent)
	s.Require().NoError(err)
	s.Require().NotNil(got.SupersededAt)
	s.True(got.SupersededAt.Equal(mark))

	s.Run("unknown credential", func() {
		err := s.store.Touch(ctx, id.CredentialID(uuid.New()), mark)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
