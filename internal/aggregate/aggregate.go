// Package aggregate derives dashboard statistics from progress records. All
// functions are pure and operate on whatever window of records the caller
// loaded; they never span pages on their own.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/openlearn-dev/lms-admin-api/internal/models"
)

// Stats summarises a collection of progress records.
type Stats struct {
	TotalLearners       int               `json:"totalLearners"`
	TotalEnrollments    int               `json:"totalEnrollments"`
	TotalCompletions    int               `json:"totalCompletions"`
	CompletionRate      int               `json:"completionRate"`
	AvgTimeSpentMinutes int               `json:"avgTimeSpentMinutes"`
	Courses             []CourseBreakdown `json:"courses"`
	Trend               []TrendBucket     `json:"trend"`
}

// CourseBreakdown is the per-course slice of the summary.
type CourseBreakdown struct {
	CourseID       string `json:"courseId"`
	Title          string `json:"title,omitempty"`
	Enrolled       int    `json:"enrolled"`
	Completed      int    `json:"completed"`
	InProgress     int    `json:"inProgress"`
	CompletionRate int    `json:"completionRate"`
}

// TrendBucket counts enrollments and completions for one YYYY-MM month.
type TrendBucket struct {
	Month       string `json:"month"`
	Enrollments int    `json:"enrollments"`
	Completions int    `json:"completions"`
}

const trendWindow = 6

// Progress computes summary statistics over the given records. Course titles
// are resolved from the catalog when the records themselves carry none.
func Progress(records []models.ProgressRecord, courses []models.Course) Stats {
	stats := Stats{
		Courses: []CourseBreakdown{},
		Trend:   []TrendBucket{},
	}

	titles := make(map[string]string, len(courses))
	for _, course := range courses {
		titles[course.CourseID] = course.Title
	}

	learners := make(map[string]struct{})
	var timeSpentTotal int64

	courseIdx := make(map[string]int)
	for _, record := range records {
		learners[record.UserID] = struct{}{}
		timeSpentTotal += record.TimeSpent()

		idx, seen := courseIdx[record.CourseID]
		if !seen {
			idx = len(stats.Courses)
			courseIdx[record.CourseID] = idx
			title := record.CourseTitle
			if title == "" {
				title = titles[record.CourseID]
			}
			stats.Courses = append(stats.Courses, CourseBreakdown{CourseID: record.CourseID, Title: title})
		}
		group := &stats.Courses[idx]

		if record.ActiveEnrollment() {
			stats.TotalEnrollments++
			group.Enrolled++
		}
		if record.Completed() {
			stats.TotalCompletions++
			group.Completed++
		} else if record.CompletionStatus == models.CompletionInProgress || record.EnrollmentStatus == models.EnrollmentInProgress {
			group.InProgress++
		}
	}

	stats.TotalLearners = len(learners)
	stats.CompletionRate = ratePercent(stats.TotalCompletions, stats.TotalEnrollments)
	if len(records) > 0 {
		stats.AvgTimeSpentMinutes = int(math.Round(float64(timeSpentTotal) / float64(len(records)) / 60))
	}

	for i := range stats.Courses {
		group := &stats.Courses[i]
		group.CompletionRate = ratePercent(group.Completed, group.Enrolled)
	}
	// Stable keeps first-seen course order for equal enrollment counts.
	sort.SliceStable(stats.Courses, func(i, j int) bool {
		return stats.Courses[i].Enrolled > stats.Courses[j].Enrolled
	})

	stats.Trend = monthlyTrend(records)
	return stats
}

// ratePercent rounds completed/enrolled to a whole percentage, yielding 0 on
// a zero denominator rather than NaN.
func ratePercent(completed, enrolled int) int {
	if enrolled <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(enrolled) * 100))
}

// monthlyTrend buckets enrolledAt and completedAt independently by YYYY-MM
// and returns the last six months that saw any activity, oldest first.
func monthlyTrend(records []models.ProgressRecord) []TrendBucket {
	type counts struct{ enrollments, completions int }
	buckets := make(map[string]*counts)

	bump := func(raw string, completion bool) {
		month, ok := monthKey(raw)
		if !ok {
			return
		}
		b := buckets[month]
		if b == nil {
			b = &counts{}
			buckets[month] = b
		}
		if completion {
			b.completions++
		} else {
			b.enrollments++
		}
	}
	for _, record := range records {
		bump(record.EnrolledAt, false)
		bump(record.CompletedAt, true)
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)
	if len(months) > trendWindow {
		months = months[len(months)-trendWindow:]
	}

	trend := make([]TrendBucket, 0, len(months))
	for _, month := range months {
		b := buckets[month]
		trend = append(trend, TrendBucket{Month: month, Enrollments: b.enrollments, Completions: b.completions})
	}
	return trend
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02"}

// monthKey extracts YYYY-MM from a backend timestamp. The backend is not
// consistent about formats, so both RFC 3339 and bare dates are accepted.
func monthKey(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("2006-01"), true
		}
	}
	return "", false
}
