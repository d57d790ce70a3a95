package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

const defaultDebounce = 500 * time.Millisecond

// Store keeps a local copy of feedback, roster, notification and analytics
// state for a UI. Filter and search changes are debounced: only the most
// recently scheduled refresh runs. A refresh already in flight is never
// cancelled, but its result is dropped if a later refresh has landed first
// (last-write-wins on local state only).
type Store struct {
	client         *Client
	debounce       time.Duration
	refreshTimeout time.Duration

	mu    sync.Mutex
	timer *time.Timer

	// generation orders refreshes; applied is the newest one whose result
	// has been written into the cache.
	generation uint64
	applied    uint64

	feedbacks     []models.FeedbackView
	page          int
	pages         int
	total         int64
	filters       services.ListFilters
	searchQuery   string
	developers    []models.UserRef
	notifications []models.Notification
	analytics     services.Analytics
}

type StoreOption func(*Store)

// WithDebounce overrides the quiet period before a filter/search change
// triggers a refresh.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) { s.debounce = d }
}

func NewStore(c *Client, opts ...StoreOption) *Store {
	s := &Store{
		client:         c,
		debounce:       defaultDebounce,
		refreshTimeout: 15 * time.Second,
		page:           1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSearch updates the search text, resets to page 1 and schedules a
// debounced refresh.
func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	if s.searchQuery == query {
		s.mu.Unlock()
		return
	}
	s.searchQuery = query
	s.page = 1
	s.mu.Unlock()
	s.scheduleRefresh()
}

// SetFilter updates one filter field, resets to page 1 and schedules a
// debounced refresh. Empty value clears the filter.
func (s *Store) SetFilter(key, value string) {
	s.mu.Lock()
	switch key {
	case "status":
		s.filters.Status = value
	case "category":
		s.filters.Category = value
	case "priority":
		s.filters.Priority = value
	case "submittedBy":
		s.filters.SubmittedBy = value
	default:
		s.mu.Unlock()
		return
	}
	s.page = 1
	s.mu.Unlock()
	s.scheduleRefresh()
}

// SetPage moves to another page and refreshes immediately; paging does not
// debounce.
func (s *Store) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	go s.runRefresh()
}

// scheduleRefresh (re)arms the debounce timer. Re-triggering within the quiet
// period cancels the pending run, so a burst of changes produces one fetch.
func (s *Store) scheduleRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.runRefresh)
}

func (s *Store) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()
	s.Refresh(ctx)
}

// Refresh fetches the feedback page, developer roster, analytics and
// notifications concurrently and applies them unless a newer refresh already
// has.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	seq := s.generation
	filters := s.filters
	filters.Search = s.searchQuery
	page := s.page
	s.mu.Unlock()

	var (
		feedbackPage  *services.FeedbackPage
		developers    []models.UserRef
		analytics     *services.Analytics
		notifications []models.Notification
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		feedbackPage, err = s.client.ListFeedbacks(gctx, filters, page)
		return err
	})
	g.Go(func() (err error) {
		developers, err = s.client.Developers(gctx)
		return err
	})
	g.Go(func() (err error) {
		analytics, err = s.client.Analytics(gctx)
		return err
	})
	g.Go(func() (err error) {
		notifications, err = s.client.Notifications(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		// A newer refresh finished first; this result is stale.
		return nil
	}
	s.applied = seq
	s.feedbacks = feedbackPage.Items
	s.pages = feedbackPage.Pages
	s.total = feedbackPage.Total
	s.developers = developers
	s.analytics = *analytics
	s.notifications = notifications
	return nil
}

// refreshAnalytics re-fetches only the summary, after a mutation.
func (s *Store) refreshAnalytics(ctx context.Context) {
	analytics, err := s.client.Analytics(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.analytics = *analytics
	s.mu.Unlock()
}

// CreateFeedback submits a record and prepends it to the cached page.
func (s *Store) CreateFeedback(ctx context.Context, in services.CreateFeedbackInput, attachment *Attachment) (*models.FeedbackView, error) {
	view, err := s.client.CreateFeedback(ctx, in, attachment)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.feedbacks = append([]models.FeedbackView{*view}, s.feedbacks...)
	s.total++
	s.mu.Unlock()

	s.refreshAnalytics(ctx)
	return view, nil
}

// UpdateStatus sets a record's status and patches the cache.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	return s.applyUpdate(ctx, id, map[string]any{"status": status})
}

// AssignDeveloper assigns (or, with an empty id, unassigns) a developer.
func (s *Store) AssignDeveloper(ctx context.Context, feedbackID, developerID string) error {
	patch := map[string]any{"assignedTo": developerID}
	if developerID == "" {
		patch["assignedTo"] = nil
	}
	return s.applyUpdate(ctx, feedbackID, patch)
}

// EditFeedback applies an arbitrary partial update.
func (s *Store) EditFeedback(ctx context.Context, id string, fields map[string]any) error {
	return s.applyUpdate(ctx, id, fields)
}

func (s *Store) applyUpdate(ctx context.Context, id string, fields map[string]any) error {
	view, err := s.client.UpdateFeedback(ctx, id, fields)
	if err != nil {
		return err
	}
	s.replaceFeedback(*view)
	s.refreshAnalytics(ctx)
	return nil
}

// AddComment posts a comment and patches the cached record.
func (s *Store) AddComment(ctx context.Context, feedbackID, text string) error {
	view, err := s.client.AddComment(ctx, feedbackID, text)
	if err != nil {
		return err
	}
	s.replaceFeedback(*view)
	return nil
}

// DeleteComment removes a comment and patches the cached record.
func (s *Store) DeleteComment(ctx context.Context, feedbackID, commentID string) error {
	view, err := s.client.DeleteComment(ctx, feedbackID, commentID)
	if err != nil {
		return err
	}
	s.replaceFeedback(*view)
	return nil
}

// DeleteFeedback removes a record. On failure the cache is left untouched and
// the server's message comes back as the error.
func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	if err := s.client.DeleteFeedback(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.feedbacks[:0]
	for _, fb := range s.feedbacks {
		if fb.ID != id {
			kept = append(kept, fb)
		}
	}
	s.feedbacks = kept
	if s.total > 0 {
		s.total--
	}
	s.mu.Unlock()

	s.refreshAnalytics(ctx)
	return nil
}

// MarkNotificationRead flips a notification optimistically and confirms with
// the server; a rejected call rolls the flip back.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	flipped := false
	for i := range s.notifications {
		if s.notifications[i].ID.Hex() == id && !s.notifications[i].Read {
			s.notifications[i].Read = true
			flipped = true
			break
		}
	}
	s.mu.Unlock()

	_, err := s.client.MarkNotificationRead(ctx, id)
	if err != nil && flipped {
		s.mu.Lock()
		for i := range s.notifications {
			if s.notifications[i].ID.Hex() == id {
				s.notifications[i].Read = false
				break
			}
		}
		s.mu.Unlock()
	}
	return err
}

func (s *Store) replaceFeedback(view models.FeedbackView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.feedbacks {
		if s.feedbacks[i].ID == view.ID {
			s.feedbacks[i] = view
			return
		}
	}
}

// Feedbacks returns a copy of the cached feedback page.
func (s *Store) Feedbacks() []models.FeedbackView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FeedbackView, len(s.feedbacks))
	copy(out, s.feedbacks)
	return out
}

// Notifications returns a copy of the cached notifications.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Developers returns a copy of the cached roster.
func (s *Store) Developers() []models.UserRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserRef, len(s.developers))
	copy(out, s.developers)
	return out
}

// Analytics returns the cached summary.
func (s *Store) Analytics() services.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analytics
}

// Pagination returns the cached page position.
func (s *Store) Pagination() (page, pages int, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.pages, s.total
}
