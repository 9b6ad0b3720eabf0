package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
)

// NopLogger discards everything; handler and service tests do not assert on
// log output.
type NopLogger struct{}

func (NopLogger) Debug(msg string, args ...interface{}) {}
func (NopLogger) Info(msg string, args ...interface{})  {}
func (NopLogger) Warn(msg string, args ...interface{})  {}
func (NopLogger) Error(msg string, args ...interface{}) {}
func (NopLogger) Fatal(msg string, args ...interface{}) {}

func CreateStudent(t *testing.T, repo student.Repository, firstName, lastName, email string, status student.Status) student.Student {
	t.Helper()
	tstamp := time.Now().UTC()
	s, err := repo.CreateStudent(context.Background(), student.Student{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateContract(t *testing.T, repo contract.Repository, studentID int, status contract.Status, terms contract.PaymentTerms) contract.Contract {
	t.Helper()
	tstamp := time.Now().UTC()
	c := contract.Contract{
		StudentID:          studentID,
		Status:             status,
		StartDate:          tstamp,
		EndDate:            tstamp.AddDate(0, 6, 0),
		DurationMonths:     6,
		MinLessonsPerMonth: 4,
		LessonDurationMins: 45,
		RatePerLesson:      32.5,
		Payment:            terms,
		CreatedAt:          tstamp,
		UpdatedAt:          tstamp,
	}
	if status == contract.StatusActive {
		c.SignedAt = tstamp
	}
	c, err := repo.CreateContract(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateContract() failed: %v", err)
	}
	return c
}

func CreateSubject(t *testing.T, repo mediation.Repository, studentID int, subject string) mediation.StudentSubject {
	t.Helper()
	ss, err := repo.CreateStudentSubject(context.Background(), mediation.StudentSubject{
		StudentID: studentID,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return ss
}

func CreateEngagement(t *testing.T, repo engagement.Repository, contractID, subjectID, teacherID int) engagement.Engagement {
	t.Helper()
	tstamp := time.Now().UTC()
	e, err := repo.CreateEngagement(context.Background(), engagement.Engagement{
		ContractID:       contractID,
		StudentSubjectID: subjectID,
		TeacherID:        teacherID,
		TeacherRate:      18,
		Status:           engagement.StatusActive,
		CreatedAt:        tstamp,
		UpdatedAt:        tstamp,
	})
	if err != nil {
		t.Fatalf("CreateEngagement() failed: %v", err)
	}
	return e
}
