package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int64) *int64       { return &v }

func TestProgressScenario(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "c1", EnrollmentStatus: models.EnrollmentEnrolled, CompletionStatus: models.CompletionCompleted, CompletedAt: "2024-01-10"},
		{UserID: "u2", CourseID: "c1", EnrollmentStatus: models.EnrollmentInProgress, CompletionStatus: models.CompletionInProgress},
	}

	stats := Progress(records, nil)
	assert.Equal(t, 2, stats.TotalLearners)
	assert.Equal(t, 2, stats.TotalEnrollments)
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, 50, stats.CompletionRate)
}

func TestProgressEmptyCollection(t *testing.T) {
	stats := Progress(nil, nil)
	assert.Equal(t, 0, stats.TotalLearners)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Equal(t, 0, stats.AvgTimeSpentMinutes)
	assert.Empty(t, stats.Courses)
	assert.Empty(t, stats.Trend)
}

func TestProgressZeroEnrollmentsYieldsZeroRate(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "c1", EnrollmentStatus: models.EnrollmentDropped, CompletionStatus: models.CompletionCompleted},
	}
	stats := Progress(records, nil)
	assert.Equal(t, 0, stats.TotalEnrollments)
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, 0, stats.CompletionRate)
}

func TestCompletionPredicate(t *testing.T) {
	cases := []struct {
		name   string
		record models.ProgressRecord
		want   bool
	}{
		{"status completed", models.ProgressRecord{CompletionStatus: models.CompletionCompleted}, true},
		{"status passed", models.ProgressRecord{CompletionStatus: models.CompletionPassed}, true},
		{"timestamp only", models.ProgressRecord{CompletionStatus: models.CompletionInProgress, CompletedAt: "2024-02-01"}, true},
		{"failed without timestamp", models.ProgressRecord{CompletionStatus: models.CompletionFailed}, false},
		{"nothing set", models.ProgressRecord{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.record.Completed())
		})
	}
}

func TestEffectiveProgressResolutionOrder(t *testing.T) {
	assert.Equal(t, float64(100), models.ProgressRecord{CompletionStatus: models.CompletionPassed, ProgressPercent: floatPtr(30)}.EffectiveProgress())
	assert.Equal(t, float64(42), models.ProgressRecord{ProgressPercent: floatPtr(42), Score: floatPtr(90)}.EffectiveProgress())
	assert.Equal(t, float64(90), models.ProgressRecord{Score: floatPtr(90)}.EffectiveProgress())
	assert.Equal(t, float64(0), models.ProgressRecord{}.EffectiveProgress())
	assert.Equal(t, float64(100), models.ProgressRecord{ProgressPercent: floatPtr(150)}.EffectiveProgress())
	assert.Equal(t, float64(0), models.ProgressRecord{Score: floatPtr(-5)}.EffectiveProgress())
}

func TestProgressAvgTimeSpent(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "c1", EnrollmentStatus: models.EnrollmentEnrolled, TimeSpentSeconds: intPtr(600)},
		{UserID: "u2", CourseID: "c1", EnrollmentStatus: models.EnrollmentEnrolled, TimeSpentSeconds: intPtr(300)},
		{UserID: "u3", CourseID: "c1", EnrollmentStatus: models.EnrollmentEnrolled}, // absent counts as 0
	}
	stats := Progress(records, nil)
	// (600+300+0)/3/60 = 5
	assert.Equal(t, 5, stats.AvgTimeSpentMinutes)
}

func TestProgressCourseBreakdownSortedByEnrollment(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "small", EnrollmentStatus: models.EnrollmentEnrolled},
		{UserID: "u1", CourseID: "tie-a", EnrollmentStatus: models.EnrollmentEnrolled},
		{UserID: "u2", CourseID: "tie-a", EnrollmentStatus: models.EnrollmentEnrolled, CompletionStatus: models.CompletionCompleted},
		{UserID: "u1", CourseID: "tie-b", EnrollmentStatus: models.EnrollmentEnrolled},
		{UserID: "u3", CourseID: "tie-b", EnrollmentStatus: models.EnrollmentInProgress, CompletionStatus: models.CompletionInProgress},
		{UserID: "u1", CourseID: "big", EnrollmentStatus: models.EnrollmentEnrolled},
		{UserID: "u2", CourseID: "big", EnrollmentStatus: models.EnrollmentEnrolled},
		{UserID: "u3", CourseID: "big", EnrollmentStatus: models.EnrollmentEnrolled},
	}
	courses := []models.Course{{CourseID: "big", Title: "Big Course"}}

	stats := Progress(records, courses)
	ids := make([]string, len(stats.Courses))
	for i, group := range stats.Courses {
		ids[i] = group.CourseID
	}
	// tie-a and tie-b both have 2 enrolled; first-seen order wins the tie.
	assert.Equal(t, []string{"big", "tie-a", "tie-b", "small"}, ids)
	assert.Equal(t, "Big Course", stats.Courses[0].Title)

	tieA := stats.Courses[1]
	assert.Equal(t, 2, tieA.Enrolled)
	assert.Equal(t, 1, tieA.Completed)
	assert.Equal(t, 50, tieA.CompletionRate)

	tieB := stats.Courses[2]
	assert.Equal(t, 1, tieB.InProgress)
	assert.Equal(t, 0, tieB.CompletionRate)
}

func TestMonthlyTrendKeepsLastSixMonths(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "c1", EnrolledAt: "2023-09-01"},
		{UserID: "u1", CourseID: "c2", EnrolledAt: "2023-10-05"},
		{UserID: "u2", CourseID: "c1", EnrolledAt: "2023-11-12"},
		{UserID: "u2", CourseID: "c2", EnrolledAt: "2023-12-20"},
		{UserID: "u3", CourseID: "c1", EnrolledAt: "2024-01-03"},
		{UserID: "u3", CourseID: "c2", EnrolledAt: "2024-02-14", CompletedAt: "2024-03-01T10:00:00Z"},
		{UserID: "u4", CourseID: "c1", EnrolledAt: "2024-03-18"},
	}

	trend := Progress(records, nil).Trend
	assert.Len(t, trend, 6)
	assert.Equal(t, "2023-10", trend[0].Month)
	assert.Equal(t, "2024-03", trend[5].Month)
	assert.Equal(t, 1, trend[5].Enrollments)
	assert.Equal(t, 1, trend[5].Completions)
}

func TestMonthlyTrendIgnoresUnparseableTimestamps(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "c1", EnrolledAt: "not-a-date"},
		{UserID: "u2", CourseID: "c1", EnrolledAt: "2024-01-05"},
	}
	trend := Progress(records, nil).Trend
	assert.Len(t, trend, 1)
	assert.Equal(t, "2024-01", trend[0].Month)
}

func TestProgressToleratesDuplicatePairs(t *testing.T) {
	records := []models.ProgressRecord{
		{UserID: "u1", CourseID: "c1", EnrollmentStatus: models.EnrollmentEnrolled},
		{UserID: "u1", CourseID: "c1", EnrollmentStatus: models.EnrollmentEnrolled, CompletionStatus: models.CompletionCompleted},
	}
	stats := Progress(records, nil)
	assert.Equal(t, 1, stats.TotalLearners)
	assert.Equal(t, 2, stats.TotalEnrollments)
	assert.Equal(t, 1, stats.TotalCompletions)
}
