package lms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/models"
	"github.com/openlearn-dev/lms-admin-api/pkg/config"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.BackendConfig{BaseURL: server.URL, Timeout: 2 * time.Second, ServiceToken: "svc-token"}
	return New(cfg, zap.NewNop(), nil)
}

func TestClientProgressPageSendsCursorParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var gotQuery map[string]string
	router.GET("/api/admin/progress", func(c *gin.Context) {
		gotQuery = map[string]string{
			"paginated":         c.Query("paginated"),
			"limit":             c.Query("limit"),
			"courseId":          c.Query("courseId"),
			"continuationToken": c.Query("continuationToken"),
		}
		c.JSON(http.StatusOK, gin.H{
			"data": []gin.H{
				{"userId": "u1", "courseId": "c1", "enrollmentStatus": "enrolled"},
			},
			"continuationToken": "next-cursor",
		})
	})

	client := newTestClient(t, router)
	page, err := client.ProgressPage(context.Background(), "c1", "prev-cursor", 25)
	require.NoError(t, err)

	assert.Equal(t, "1", gotQuery["paginated"])
	assert.Equal(t, "25", gotQuery["limit"])
	assert.Equal(t, "c1", gotQuery["courseId"])
	assert.Equal(t, "prev-cursor", gotQuery["continuationToken"])

	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].UserID)
	assert.Equal(t, "next-cursor", page.NextToken)
}

func TestClientProgressPageOmitsEmptyParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/admin/progress", func(c *gin.Context) {
		_, hasCourse := c.GetQuery("courseId")
		_, hasToken := c.GetQuery("continuationToken")
		assert.False(t, hasCourse)
		assert.False(t, hasToken)
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{}, "continuationToken": ""})
	})

	client := newTestClient(t, router)
	page, err := client.ProgressPage(context.Background(), "", "", 50)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextToken)
}

func TestClientReportFetcherCapturesCourseTitle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/admin/reports/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"rows": []gin.H{
				{"id": "1", "username": "jane", "courseTitle": "Intro"},
			},
			"courseTitle":       "Intro",
			"continuationToken": "",
		})
	})

	client := newTestClient(t, router)
	var title string
	fetch := client.ReportFetcher("c1", &title)
	page, err := fetch(context.Background(), "", 100)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "jane", page.Items[0].Username)
	assert.Equal(t, "Intro", title)
}

func TestClientMapsBackendErrorPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/admin/courses", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such catalog"})
	})

	client := newTestClient(t, router)
	_, err := client.Courses(context.Background())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "no such catalog", appErr.Message)
}

func TestClientMapsServerErrorToUpstream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/admin/courses", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "boom")
	})

	client := newTestClient(t, router)
	_, err := client.Courses(context.Background())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestClientMapsUnreachableBackendToUpstream(t *testing.T) {
	cfg := config.BackendConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}
	client := New(cfg, zap.NewNop(), nil)

	_, err := client.Courses(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
}

func TestClientForwardsServiceToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var gotAuth string
	router.POST("/api/admin/verbs", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		c.JSON(http.StatusCreated, gin.H{"id": "v1", "iri": "http://adlnet.gov/expapi/verbs/completed"})
	})

	client := newTestClient(t, router)
	created, err := client.CreateVerb(context.Background(), models.Verb{
		IRI:     "http://adlnet.gov/expapi/verbs/completed",
		Display: "completed",
		Enabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer svc-token", gotAuth)
	assert.Equal(t, "v1", created.ID)
}
