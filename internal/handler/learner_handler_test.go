package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
)

type fakeLearnerSrv struct {
	session *dto.SessionResponse
	meta    *models.PageMeta
	err     error
	lastOp  string
	lastID  string
}

func (f *fakeLearnerSrv) result() (*dto.SessionResponse, *models.PageMeta, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.session, f.meta, nil
}

func (f *fakeLearnerSrv) Create(context.Context, dto.CreateSessionRequest) (*dto.SessionResponse, *models.PageMeta, error) {
	f.lastOp = "create"
	return f.result()
}

func (f *fakeLearnerSrv) Get(_ context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error) {
	f.lastOp, f.lastID = "get", id
	return f.result()
}

func (f *fakeLearnerSrv) Next(_ context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error) {
	f.lastOp, f.lastID = "next", id
	return f.result()
}

func (f *fakeLearnerSrv) Prev(_ context.Context, id string) (*dto.SessionResponse, *models.PageMeta, error) {
	f.lastOp, f.lastID = "prev", id
	return f.result()
}

func (f *fakeLearnerSrv) Update(_ context.Context, id string, _ dto.UpdateSessionRequest) (*dto.SessionResponse, *models.PageMeta, error) {
	f.lastOp, f.lastID = "update", id
	return f.result()
}

func (f *fakeLearnerSrv) Close(_ context.Context, id string) error {
	f.lastOp, f.lastID = "close", id
	return f.err
}

func sampleSession() (*dto.SessionResponse, *models.PageMeta) {
	return &dto.SessionResponse{
			SessionID: "s1",
			Items:     []models.ProgressRecord{{UserID: "u1", CourseID: "c1"}},
			ExpiresAt: time.Now().Add(time.Hour),
		}, &models.PageMeta{
			PageIndex: 1,
			PageSize:  50,
			HasNext:   true,
			HasPrev:   true,
		}
}

func TestLearnerHandlerCreateSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLearnerSrv{}
	srv.session, srv.meta = sampleSession()
	handler := NewLearnerHandler(srv)

	body, _ := json.Marshal(dto.CreateSessionRequest{CourseID: "c1"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/learners/sessions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateSession(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data       map[string]interface{} `json:"data"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "s1", envelope.Data["sessionId"])
	assert.Equal(t, float64(1), envelope.Pagination["page_index"])
	assert.Equal(t, true, envelope.Pagination["has_next"])
}

func TestLearnerHandlerStepRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLearnerSrv{}
	srv.session, srv.meta = sampleSession()
	handler := NewLearnerHandler(srv)

	router := gin.New()
	router.POST("/learners/sessions/:id/next", handler.NextPage)
	router.POST("/learners/sessions/:id/prev", handler.PrevPage)
	router.DELETE("/learners/sessions/:id", handler.CloseSession)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/learners/sessions/s1/next", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "next", srv.lastOp)
	assert.Equal(t, "s1", srv.lastID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/learners/sessions/s1/prev", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prev", srv.lastOp)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/learners/sessions/s1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "close", srv.lastOp)
}

func TestLearnerHandlerSessionNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLearnerSrv{err: appErrors.ErrSessionNotFound}
	handler := NewLearnerHandler(srv)

	router := gin.New()
	router.GET("/learners/sessions/:id", handler.GetSession)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/learners/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLearnerHandlerStepWhileLoadingConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLearnerSrv{err: appErrors.ErrFetchInFlight}
	handler := NewLearnerHandler(srv)

	router := gin.New()
	router.POST("/learners/sessions/:id/next", handler.NextPage)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/learners/sessions/s1/next", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
