// Package client is the consumer side of the feedbackdesk API: a thin HTTP
// client plus a synchronizing local store (see sync.go) that dashboards and
// CLIs build on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

// Client talks to a feedbackdesk backend with bearer-token auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the capability token up front (e.g. restored from storage).
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the capability token used on subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// APIError is a non-2xx response with the server's message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Session is the identity returned by login/register.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, &session)
	if err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// Register creates an account and installs the returned token on the client.
func (c *Client) Register(ctx context.Context, name, email, password, role string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil,
		map[string]string{"name": name, "email": email, "password": password, "role": role}, &session)
	if err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// ListFeedbacks fetches one page of the feedback listing.
func (c *Client) ListFeedbacks(ctx context.Context, filters services.ListFilters, page int) (*services.FeedbackPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.Category != "" {
		query.Set("category", filters.Category)
	}
	if filters.Priority != "" {
		query.Set("priority", filters.Priority)
	}
	if filters.SubmittedBy != "" {
		query.Set("submittedBy", filters.SubmittedBy)
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	var result services.FeedbackPage
	if err := c.do(ctx, http.MethodGet, "/api/feedbacks", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Attachment is a file submitted alongside a new feedback record.
type Attachment struct {
	Filename string
	Reader   io.Reader
}

// CreateFeedback submits a new record, as multipart when an attachment is
// included.
func (c *Client) CreateFeedback(ctx context.Context, in services.CreateFeedbackInput, attachment *Attachment) (*models.FeedbackView, error) {
	var view models.FeedbackView

	if attachment == nil {
		if err := c.do(ctx, http.MethodPost, "/api/feedbacks", nil, in, &view); err != nil {
			return nil, err
		}
		return &view, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"priority":    in.Priority,
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("file", attachment.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, attachment.Reader); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/feedbacks", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.send(req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateFeedback sends a partial update; only the keys present in fields are
// applied, and an explicit nil value clears a clearable field (assignedTo,
// estimatedResolutionDate).
func (c *Client) UpdateFeedback(ctx context.Context, id string, fields map[string]any) (*models.FeedbackView, error) {
	var view models.FeedbackView
	if err := c.do(ctx, http.MethodPut, "/api/feedbacks/"+id, nil, fields, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteFeedback removes a record (submitter or admin only).
func (c *Client) DeleteFeedback(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/feedbacks/"+id, nil, nil, nil)
}

// AddComment appends a comment and returns the updated record.
func (c *Client) AddComment(ctx context.Context, feedbackID, text string) (*models.FeedbackView, error) {
	var view models.FeedbackView
	err := c.do(ctx, http.MethodPost, "/api/feedbacks/"+feedbackID+"/comments", nil,
		map[string]string{"text": text}, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteComment removes a comment and returns the updated record.
func (c *Client) DeleteComment(ctx context.Context, feedbackID, commentID string) (*models.FeedbackView, error) {
	var view models.FeedbackView
	err := c.do(ctx, http.MethodDelete, "/api/feedbacks/"+feedbackID+"/comments/"+commentID, nil, nil, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Analytics fetches the grouped counts summary.
func (c *Client) Analytics(ctx context.Context) (*services.Analytics, error) {
	var analytics services.Analytics
	if err := c.do(ctx, http.MethodGet, "/api/feedbacks/analytics", nil, nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// Notifications fetches the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead flips a notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := c.do(ctx, http.MethodPut, "/api/notifications/"+id+"/read", nil, nil, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

// Developers fetches the assignment roster.
func (c *Client) Developers(ctx context.Context) ([]models.UserRef, error) {
	var refs []models.UserRef
	if err := c.do(ctx, http.MethodGet, "/api/auth/developers", nil, nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
