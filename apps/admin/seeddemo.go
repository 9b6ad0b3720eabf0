package main

import (
	"context"
	"fmt"

	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
)

// seedDemo loads a handful of students and subjects for local development.
func (cli *commandLine) seedDemo() error {
	ctx := context.Background()

	students := []student.NewStudent{
		{FirstName: "Mara", LastName: "Schneider", Email: "mara.schneider@example.com", City: "Leipzig", AcademicLevel: "Klasse 8"},
		{FirstName: "Jonas", LastName: "Keller", Email: "jonas.keller@example.com", City: "Dresden", AcademicLevel: "Klasse 10"},
		{FirstName: "Aylin", LastName: "Yilmaz", Email: "aylin.yilmaz@example.com", City: "Leipzig", AcademicLevel: "Klasse 6"},
	}
	subjects := [][]string{
		{"Mathematik", "Englisch"},
		{"Physik"},
		{"Deutsch", "Mathematik"},
	}

	for i, ns := range students {
		s, err := cli.studentSvc.Create(ctx, ns)
		if err != nil {
			return err
		}
		for _, subj := range subjects[i] {
			if _, err := cli.mediationSvc.CreateSubject(ctx, mediation.NewStudentSubject{
				StudentID: s.ID,
				Subject:   subj,
			}); err != nil {
				return err
			}
		}
		fmt.Printf("seeded student %d: %s\n", s.ID, s.FullName())
	}
	return nil
}
