// Package lms wraps the upstream LMS backend REST API. Every collection the
// admin console shows is fetched through this client; the gateway itself
// stores nothing.
package lms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/models"
	"github.com/openlearn-dev/lms-admin-api/internal/paging"
	"github.com/openlearn-dev/lms-admin-api/pkg/config"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
)

// Observer receives upstream request timings. Implemented by the metrics
// service; nil disables instrumentation.
type Observer interface {
	ObserveUpstream(endpoint string, status int, duration time.Duration)
}

// Client talks to the upstream LMS backend.
type Client struct {
	http     *resty.Client
	logger   *zap.Logger
	observer Observer
}

// New builds a client from backend configuration.
func New(cfg config.BackendConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.ServiceToken != "" {
		httpClient.SetAuthToken(cfg.ServiceToken)
	}
	return &Client{http: httpClient, logger: logger, observer: observer}
}

// errorBody is the backend's failure payload shape.
type errorBody struct {
	Error string `json:"error"`
}

// progressEnvelope is the paginated progress response shape.
type progressEnvelope struct {
	Data              []models.ProgressRecord `json:"data"`
	ContinuationToken string                  `json:"continuationToken"`
}

// reportEnvelope is the paginated report response shape.
type reportEnvelope struct {
	Rows              []models.ReportRow `json:"rows"`
	CourseTitle       string             `json:"courseTitle"`
	ContinuationToken string             `json:"continuationToken"`
}

// ReportPage is one window of the user report plus its course label.
type ReportPage struct {
	Rows        []models.ReportRow
	CourseTitle string
	NextToken   string
}

// Courses lists the course catalog.
func (c *Client) Courses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.get(ctx, "/api/admin/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ProgressPage fetches one page of progress records. An empty courseID means
// all courses; an empty token requests the first page.
func (c *Client) ProgressPage(ctx context.Context, courseID, token string, limit int) (paging.Page[models.ProgressRecord], error) {
	params := map[string]string{
		"paginated": "1",
		"limit":     fmt.Sprintf("%d", limit),
	}
	if courseID != "" {
		params["courseId"] = courseID
	}
	if token != "" {
		params["continuationToken"] = token
	}
	var envelope progressEnvelope
	if err := c.get(ctx, "/api/admin/progress", params, &envelope); err != nil {
		return paging.Page[models.ProgressRecord]{}, err
	}
	return paging.Page[models.ProgressRecord]{Items: envelope.Data, NextToken: envelope.ContinuationToken}, nil
}

// ProgressFetcher adapts ProgressPage to the pagination controller, pinning
// the course filter so a walk or browse session cannot drift when the caller
// later changes filters.
func (c *Client) ProgressFetcher(courseID string) paging.FetchFunc[models.ProgressRecord] {
	return func(ctx context.Context, token string, limit int) (paging.Page[models.ProgressRecord], error) {
		return c.ProgressPage(ctx, courseID, token, limit)
	}
}

// ReportUsersPage fetches one page of flattened report rows.
func (c *Client) ReportUsersPage(ctx context.Context, courseID, token string, limit int) (ReportPage, error) {
	params := map[string]string{
		"limit": fmt.Sprintf("%d", limit),
	}
	if courseID != "" {
		params["courseId"] = courseID
	}
	if token != "" {
		params["continuationToken"] = token
	}
	var envelope reportEnvelope
	if err := c.get(ctx, "/api/admin/reports/users", params, &envelope); err != nil {
		return ReportPage{}, err
	}
	return ReportPage{Rows: envelope.Rows, CourseTitle: envelope.CourseTitle, NextToken: envelope.ContinuationToken}, nil
}

// ReportFetcher adapts ReportUsersPage to the walker. The course title from
// the most recent page is written to title when non-nil.
func (c *Client) ReportFetcher(courseID string, title *string) paging.FetchFunc[models.ReportRow] {
	return func(ctx context.Context, token string, limit int) (paging.Page[models.ReportRow], error) {
		page, err := c.ReportUsersPage(ctx, courseID, token, limit)
		if err != nil {
			return paging.Page[models.ReportRow]{}, err
		}
		if title != nil && page.CourseTitle != "" {
			*title = page.CourseTitle
		}
		return paging.Page[models.ReportRow]{Items: page.Rows, NextToken: page.NextToken}, nil
	}
}

// Users lists accounts known to the backend.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser registers a new account upstream.
func (c *Client) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	var created models.User
	if err := c.send(ctx, http.MethodPost, "/api/admin/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser modifies an account upstream.
func (c *Client) UpdateUser(ctx context.Context, id string, user models.User) (*models.User, error) {
	var updated models.User
	if err := c.send(ctx, http.MethodPut, "/api/admin/users/"+id, user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes an account upstream.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/admin/users/"+id, nil, nil)
}

// CreateCourse adds a catalog entry upstream.
func (c *Client) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	var created models.Course
	if err := c.send(ctx, http.MethodPost, "/api/admin/courses", course, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCourse modifies a catalog entry upstream.
func (c *Client) UpdateCourse(ctx context.Context, id string, course models.Course) (*models.Course, error) {
	var updated models.Course
	if err := c.send(ctx, http.MethodPut, "/api/admin/courses/"+id, course, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCourse removes a catalog entry upstream.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/admin/courses/"+id, nil, nil)
}

// Providers lists content providers.
func (c *Client) Providers(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	if err := c.get(ctx, "/api/admin/providers", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// CreateProvider registers a content provider upstream.
func (c *Client) CreateProvider(ctx context.Context, provider models.Provider) (*models.Provider, error) {
	var created models.Provider
	if err := c.send(ctx, http.MethodPost, "/api/admin/providers", provider, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProvider modifies a provider, including its course assignments.
func (c *Client) UpdateProvider(ctx context.Context, id string, provider models.Provider) (*models.Provider, error) {
	var updated models.Provider
	if err := c.send(ctx, http.MethodPut, "/api/admin/providers/"+id, provider, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProvider removes a provider upstream.
func (c *Client) DeleteProvider(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/admin/providers/"+id, nil, nil)
}

// Verbs lists the configured xAPI verbs.
func (c *Client) Verbs(ctx context.Context) ([]models.Verb, error) {
	var verbs []models.Verb
	if err := c.get(ctx, "/api/admin/verbs", nil, &verbs); err != nil {
		return nil, err
	}
	return verbs, nil
}

// CreateVerb adds an xAPI verb configuration upstream.
func (c *Client) CreateVerb(ctx context.Context, verb models.Verb) (*models.Verb, error) {
	var created models.Verb
	if err := c.send(ctx, http.MethodPost, "/api/admin/verbs", verb, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateVerb modifies an xAPI verb configuration upstream.
func (c *Client) UpdateVerb(ctx context.Context, id string, verb models.Verb) (*models.Verb, error) {
	var updated models.Verb
	if err := c.send(ctx, http.MethodPut, "/api/admin/verbs/"+id, verb, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteVerb removes an xAPI verb configuration upstream.
func (c *Client) DeleteVerb(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/admin/verbs/"+id, nil, nil)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	start := time.Now()
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if params != nil {
		req.SetQueryParams(params)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	c.observe(path, resp, start)
	return c.wrap(path, resp, err)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	start := time.Now()
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	c.observe(path, resp, start)
	return c.wrap(path, resp, err)
}

func (c *Client) observe(endpoint string, resp *resty.Response, start time.Time) {
	if c.observer == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	c.observer.ObserveUpstream(endpoint, status, time.Since(start))
}

// wrap normalises transport failures and backend error payloads into typed
// errors. Nothing is retried; retry is always a fresh user action.
func (c *Client) wrap(path string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Warn("lms backend request failed", zap.String("path", path), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "lms backend unreachable")
	}
	if resp == nil || !resp.IsError() {
		return nil
	}

	message := appErrors.ErrUpstream.Message
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		message = body.Error
	}
	c.logger.Warn("lms backend returned error",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.String("message", message))

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, message)
	default:
		return appErrors.Clone(appErrors.ErrUpstream, message)
	}
}
