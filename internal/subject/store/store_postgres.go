package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"campuscard/internal/subject"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/sentinel"
)

// Postgres reads subjects with their sub-profiles in one left-joined query.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const subjectColumns = `
	s.id, s.first_name, s.last_name, s.email, s.phone, s.address,
	s.date_of_birth, s.blood_group, s.photo, s.deleted_at,
	sp.student_id, sp.roll_number, sp.admission_number, sp.class, sp.section,
	sp.father_name, sp.father_phone, sp.mother_name, sp.mother_phone,
	tp.employee_id, tp.designation, tp.department, tp.subjects,
	tp.qualification, tp.experience_years, tp.joining_date,
	fp.employee_id, fp.designation, fp.department, fp.position, fp.shift,
	fp.working_hours, fp.employment_date`

const subjectFrom = `
	FROM subjects s
	LEFT JOIN student_profiles sp ON sp.subject_id = s.id
	LEFT JOIN teacher_profiles tp ON tp.subject_id = s.id
	LEFT JOIN staff_profiles fp ON fp.subject_id = s.id`

func (s *Postgres) FindByID(ctx context.Context, subjectID id.SubjectID) (*subject.Person, error) {
	query := `SELECT` + subjectColumns + subjectFrom + `
	WHERE s.id = $1 AND s.deleted_at IS NULL`
	return s.queryOne(ctx, query, uuid.UUID(subjectID))
}

func (s *Postgres) FindStudent(ctx context.Context, kind id.IdentifierKind, value string) (*subject.Person, error) {
	if value == "" {
		return nil, sentinel.ErrNotFound
	}
	column := "sp.student_id"
	switch kind {
	case id.IdentRollNumber:
		column = "sp.roll_number"
	case id.IdentAdmissionNumber:
		column = "sp.admission_number"
	case id.IdentSubjectID:
		return s.findWithProfile(ctx, value, "sp.subject_id IS NOT NULL")
	}
	query := `SELECT` + subjectColumns + subjectFrom + `
	WHERE ` + column + ` = $1 AND s.deleted_at IS NULL`
	return s.queryOne(ctx, query, value)
}

func (s *Postgres) FindTeacher(ctx context.Context, identifier string) (*subject.Person, error) {
	return s.findEmployee(ctx, identifier, "tp.employee_id", "tp.subject_id IS NOT NULL")
}

func (s *Postgres) FindStaff(ctx context.Context, identifier string) (*subject.Person, error) {
	return s.findEmployee(ctx, identifier, "fp.employee_id", "fp.subject_id IS NOT NULL")
}

// findEmployee tries the employee-ID column first, then falls back to the
// subject row ID when the identifier happens to be a UUID.
func (s *Postgres) findEmployee(ctx context.Context, identifier, employeeColumn, profileGuard string) (*subject.Person, error) {
	if identifier == "" {
		return nil, sentinel.ErrNotFound
	}
	query := `SELECT` + subjectColumns + subjectFrom + `
	WHERE ` + employeeColumn + ` = $1 AND s.deleted_at IS NULL`
	p, err := s.queryOne(ctx, query, identifier)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	return s.findWithProfile(ctx, identifier, profileGuard)
}

func (s *Postgres) findWithProfile(ctx context.Context, identifier, profileGuard string) (*subject.Person, error) {
	rowID, err := uuid.Parse(identifier)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	query := `SELECT` + subjectColumns + subjectFrom + `
	WHERE s.id = $1 AND ` + profileGuard + ` AND s.deleted_at IS NULL`
	return s.queryOne(ctx, query, rowID)
}

func (s *Postgres) queryOne(ctx context.Context, query string, arg any) (*subject.Person, error) {
	var (
		p          subject.Person
		rowID      uuid.UUID
		email      sql.NullString
		phone      sql.NullString
		address    sql.NullString
		dob        sql.NullTime
		bloodGroup sql.NullString
		photo      sql.NullString
		deletedAt  sql.NullTime

		stuID, roll, admission, class, section         sql.NullString
		fatherName, fatherPhone, motherName, motPhone  sql.NullString
		tEmpID, tDesignation, tDepartment              sql.NullString
		tSubjects                                      pq.StringArray
		tQualification                                 sql.NullString
		tExperience                                    sql.NullInt64
		tJoining                                       sql.NullTime
		fEmpID, fDesignation, fDepartment              sql.NullString
		fPosition, fShift, fWorkingHours               sql.NullString
		fEmployment                                    sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&rowID, &p.FirstName, &p.LastName, &email, &phone, &address,
		&dob, &bloodGroup, &photo, &deletedAt,
		&stuID, &roll, &admission, &class, &section,
		&fatherName, &fatherPhone, &motherName, &motPhone,
		&tEmpID, &tDesignation, &tDepartment, &tSubjects,
		&tQualification, &tExperience, &tJoining,
		&fEmpID, &fDesignation, &fDepartment, &fPosition, &fShift,
		&fWorkingHours, &fEmployment,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query subject: %w", err)
	}

	p.ID = id.SubjectID(rowID)
	p.Email = email.String
	p.Phone = phone.String
	p.Address = address.String
	p.BloodGroup = bloodGroup.String
	p.Photo = photo.String
	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}

	if stuID.Valid || roll.Valid || admission.Valid {
		p.Student = &subject.StudentProfile{
			StudentID:       stuID.String,
			RollNumber:      roll.String,
			AdmissionNumber: admission.String,
			Class:           class.String,
			Section:         section.String,
			FatherName:      fatherName.String,
			FatherPhone:     fatherPhone.String,
			MotherName:      motherName.String,
			MotherPhone:     motPhone.String,
		}
	}
	if tEmpID.Valid {
		p.Teacher = &subject.TeacherProfile{
			EmployeeID:      tEmpID.String,
			Designation:     tDesignation.String,
			Department:      tDepartment.String,
			Subjects:        tSubjects,
			Qualification:   tQualification.String,
			ExperienceYears: int(tExperience.Int64),
		}
		if tJoining.Valid {
			t := tJoining.Time
			p.Teacher.JoiningDate = &t
		}
	}
	if fEmpID.Valid {
		p.Staff = &subject.StaffProfile{
			EmployeeID:   fEmpID.String,
			Designation:  fDesignation.String,
			Department:   fDepartment.String,
			Position:     fPosition.String,
			Shift:        fShift.String,
			WorkingHours: fWorkingHours.String,
		}
		if fEmployment.Valid {
			t := fEmployment.Time
			p.Staff.EmploymentDate = &t
		}
	}
	return &p, nil
}
