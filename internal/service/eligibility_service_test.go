package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

func gradePtr(g float64) *float64 { return &g }

type mockSubjectList struct {
	subjects   []models.Subject
	lastFilter models.SubjectFilter
}

func (m *mockSubjectList) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	m.lastFilter = filter
	filtered := make([]models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		if filter.YearLevel > 0 && s.YearLevel != filter.YearLevel {
			continue
		}
		filtered = append(filtered, s)
	}
	total := len(filtered)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start > total {
			start = total
		}
		end := start + filter.PageSize
		if end > total {
			end = total
		}
		filtered = filtered[start:end]
	}
	return filtered, total, nil
}

type mockHistoryRepo struct {
	history models.History
}

func (m *mockHistoryRepo) ListByStudent(ctx context.Context, studentID string) (models.History, error) {
	return m.history, nil
}

type mockEnrollmentReader struct {
	record *models.EnrollmentRecord
}

func (m *mockEnrollmentReader) FindByStudentTerm(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.EnrollmentRecord, error) {
	if m.record == nil {
		return nil, sql.ErrNoRows
	}
	return m.record, nil
}

type mockRoster struct {
	students map[string]models.Student
}

func (m *mockRoster) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockChecker struct {
	missing map[string][]string
}

func (m *mockChecker) Satisfied(ctx context.Context, history models.History, subject models.Subject, termCtx models.TermContext) (bool, []string, error) {
	gaps := m.missing[subject.Code]
	return len(gaps) == 0, gaps, nil
}

func eligibilityFixture(t *testing.T, irregular bool, history models.History, current *models.EnrollmentRecord, missing map[string][]string, subjects ...models.Subject) (*EligibilityService, *mockSubjectList) {
	t.Helper()
	catalog := &mockSubjectList{subjects: subjects}
	roster := &mockRoster{students: map[string]models.Student{
		"stu-1": {ID: "stu-1", ProgramID: "prog-1", YearLevel: 2, Irregular: irregular},
	}}
	svc := NewEligibilityService(
		catalog,
		&mockHistoryRepo{history: history},
		&mockEnrollmentReader{record: current},
		roster,
		&mockChecker{missing: missing},
		nil, nil,
	)
	return svc, catalog
}

func classifyReq() ClassifyRequest {
	return ClassifyRequest{StudentID: "stu-1", Term: models.TermFirst, AcademicYear: "2025-2026"}
}

func statusByCode(results []models.SubjectEligibility) map[string]models.SubjectEligibility {
	out := make(map[string]models.SubjectEligibility, len(results))
	for _, r := range results {
		out[r.Subject.Code] = r
	}
	return out
}

func TestClassifyRegularStudentGetsYearLevelCatalog(t *testing.T) {
	svc, catalog := eligibilityFixture(t, false, nil, nil, nil,
		models.Subject{Code: "CS201", YearLevel: 2, Term: models.TermFirst},
		models.Subject{Code: "CS301", YearLevel: 3, Term: models.TermFirst},
	)

	results, err := svc.ClassifyEligibility(context.Background(), classifyReq())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "CS201", results[0].Subject.Code)
	assert.Equal(t, models.EligibilityEligible, results[0].Status)
	assert.Equal(t, 2, catalog.lastFilter.YearLevel)
}

func TestClassifyPriorityOrder(t *testing.T) {
	failedOld := 4.5
	history := models.History{
		{SubjectCode: "PASSED1", Section: "A", Term: models.TermFirst, AcademicYear: "2024-2025", Grade: gradePtr(2.0)},
		{SubjectCode: "OLDFAIL", Section: "A", Term: models.TermFirst, AcademicYear: "2023-2024", Grade: &failedOld},
		{SubjectCode: "NEWFAIL", Section: "A", Term: models.TermFirst, AcademicYear: "2024-2025", Grade: gradePtr(5.0)},
	}
	current := &models.EnrollmentRecord{Status: models.StatusSubmitted}
	current.ReplaceSubjects([]models.EnrolledSubject{{SubjectCode: "CURRENT1", Section: "A", Units: 3}})

	// A passed subject that is also currently enrolled must report ENROLLED.
	history = append(history, models.AcademicRecordEntry{
		SubjectCode: "CURRENT1", Section: "A", Term: models.TermSecond, AcademicYear: "2024-2025", Grade: gradePtr(2.0),
	})

	missing := map[string][]string{"BLOCKED1": {"CS100"}}
	svc, _ := eligibilityFixture(t, true, history, current, missing,
		models.Subject{Code: "CURRENT1", Term: models.TermFirst},
		models.Subject{Code: "PASSED1", Term: models.TermFirst},
		models.Subject{Code: "OLDFAIL", Term: models.TermFirst},
		models.Subject{Code: "NEWFAIL", Term: models.TermFirst},
		models.Subject{Code: "BLOCKED1", Term: models.TermFirst},
		models.Subject{Code: "OPEN1", Term: models.TermFirst},
	)

	results, err := svc.ClassifyEligibility(context.Background(), classifyReq())
	require.NoError(t, err)
	byCode := statusByCode(results)

	assert.Equal(t, models.EligibilityEnrolled, byCode["CURRENT1"].Status)
	assert.Equal(t, models.EligibilityPassed, byCode["PASSED1"].Status)
	assert.Equal(t, models.EligibilityRetake, byCode["NEWFAIL"].Status)
	assert.Equal(t, models.EligibilityBlocked, byCode["OLDFAIL"].Status)
	assert.Equal(t, "cannot retake, failed more than one year ago", byCode["OLDFAIL"].Reason)
	assert.Equal(t, models.EligibilityBlocked, byCode["BLOCKED1"].Status)
	assert.Equal(t, "missing prerequisites: CS100", byCode["BLOCKED1"].Reason)
	assert.Equal(t, models.EligibilityEligible, byCode["OPEN1"].Status)
}

func TestClassifyRetakeWindowBoundary(t *testing.T) {
	cases := []struct {
		name       string
		failedYear string
		want       models.EligibilityStatus
	}{
		{"same year", "2025-2026", models.EligibilityRetake},
		{"one year ago", "2024-2025", models.EligibilityRetake},
		{"two years ago", "2023-2024", models.EligibilityBlocked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history := models.History{
				{SubjectCode: "CS101", Section: "A", Term: models.TermFirst, AcademicYear: tc.failedYear, Grade: gradePtr(4.0)},
			}
			svc, _ := eligibilityFixture(t, true, history, nil, nil,
				models.Subject{Code: "CS101", Term: models.TermFirst},
			)

			results, err := svc.ClassifyEligibility(context.Background(), classifyReq())
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tc.want, results[0].Status)
		})
	}
}

func TestClassifyWalksCatalogBeyondOnePage(t *testing.T) {
	subjects := make([]models.Subject, 0, classifyPageSize+30)
	for i := 0; i < classifyPageSize+30; i++ {
		subjects = append(subjects, models.Subject{
			Code: fmt.Sprintf("SUBJ%03d", i),
			Term: models.TermFirst,
		})
	}
	svc, _ := eligibilityFixture(t, true, nil, nil, nil, subjects...)

	results, err := svc.ClassifyEligibility(context.Background(), classifyReq())
	require.NoError(t, err)
	assert.Len(t, results, classifyPageSize+30)
}

func TestVerifySelectionRejectsBlockedSubjects(t *testing.T) {
	history := models.History{
		{SubjectCode: "OLDFAIL", Section: "A", Term: models.TermFirst, AcademicYear: "2023-2024", Grade: gradePtr(4.5)},
	}
	missing := map[string][]string{"NOPREREQ": {"CS100"}}
	svc, _ := eligibilityFixture(t, true, history, nil, missing)

	termCtx := models.TermContext{Term: models.TermFirst, AcademicYear: "2025-2026"}
	err := svc.VerifySelection(context.Background(), "stu-1", termCtx, []models.Subject{
		{Code: "OLDFAIL", Term: models.TermFirst},
		{Code: "NOPREREQ", Term: models.TermFirst},
		{Code: "OPEN1", Term: models.TermFirst},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "OLDFAIL: cannot retake, failed more than one year ago")
	assert.Contains(t, appErr.Message, "NOPREREQ: missing prerequisites: CS100")
}

func TestVerifySelectionAllowsEligibleSubjects(t *testing.T) {
	svc, _ := eligibilityFixture(t, true, nil, nil, nil)
	termCtx := models.TermContext{Term: models.TermFirst, AcademicYear: "2025-2026"}
	err := svc.VerifySelection(context.Background(), "stu-1", termCtx, []models.Subject{
		{Code: "OPEN1", Term: models.TermFirst},
	})
	require.NoError(t, err)
}

func TestVerifySelectionRegularStudentBypasses(t *testing.T) {
	missing := map[string][]string{"NOPREREQ": {"CS100"}}
	svc, _ := eligibilityFixture(t, false, nil, nil, missing)
	termCtx := models.TermContext{Term: models.TermFirst, AcademicYear: "2025-2026"}
	err := svc.VerifySelection(context.Background(), "stu-1", termCtx, []models.Subject{
		{Code: "NOPREREQ", Term: models.TermFirst},
	})
	require.NoError(t, err)
}

func TestClassifyUnknownStudent(t *testing.T) {
	svc, _ := eligibilityFixture(t, true, nil, nil, nil)
	_, err := svc.ClassifyEligibility(context.Background(), ClassifyRequest{
		StudentID: "ghost", Term: models.TermFirst, AcademicYear: "2025-2026",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassifyRejectsBreakTerm(t *testing.T) {
	svc, _ := eligibilityFixture(t, true, nil, nil, nil)
	_, err := svc.ClassifyEligibility(context.Background(), ClassifyRequest{
		StudentID: "stu-1", Term: models.TermBreak, AcademicYear: "2025-2026",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
