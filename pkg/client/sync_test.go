package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

// fakeBackend serves just enough of the API for the Store.
type fakeBackend struct {
	mu    sync.Mutex
	items []models.FeedbackView

	listCalls      atomic.Int64
	analyticsCalls atomic.Int64

	// When set, the first list request blocks until the channel closes.
	gateFirstList chan struct{}
	gatedOnce     sync.Once
	firstListSeen chan struct{}

	deleteStatus   int
	markReadStatus int
	notification   models.Notification
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		items: []models.FeedbackView{
			{ID: "fb-1", Title: "Broken login", Status: "Submitted", Comments: []models.Comment{}},
		},
		firstListSeen: make(chan struct{}),
		notification:  models.Notification{ID: primitive.NewObjectID(), Recipient: "user-1", Message: "hi"},
	}
}

func (f *fakeBackend) handler() http.Handler {
	mux := chi.NewRouter()

	mux.Get("/api/feedbacks", func(w http.ResponseWriter, r *http.Request) {
		n := f.listCalls.Add(1)
		if f.gateFirstList != nil && n == 1 {
			f.gatedOnce.Do(func() { close(f.firstListSeen) })
			<-f.gateFirstList
			// Stale payload: whatever was cached when the slow call began.
			writeTestJSON(w, services.FeedbackPage{
				Items: []models.FeedbackView{{ID: "stale", Title: "stale", Comments: []models.Comment{}}},
				Page:  1, Pages: 1, Total: 1,
			})
			return
		}
		f.mu.Lock()
		items := append([]models.FeedbackView(nil), f.items...)
		f.mu.Unlock()
		writeTestJSON(w, services.FeedbackPage{Items: items, Page: 1, Pages: 1, Total: int64(len(items))})
	})

	mux.Get("/api/feedbacks/analytics", func(w http.ResponseWriter, r *http.Request) {
		f.analyticsCalls.Add(1)
		writeTestJSON(w, services.Analytics{
			Total:  1,
			Status: map[string]int{"Submitted": 1}, Priority: map[string]int{}, Category: map[string]int{},
		})
	})

	mux.Get("/api/auth/developers", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, []models.UserRef{{ID: "dev-7", Name: "Dev Seven", Email: "dev7@example.com"}})
	})

	mux.Get("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, []models.Notification{f.notification})
	})

	mux.Put("/api/feedbacks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]any
		json.NewDecoder(r.Body).Decode(&fields)

		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.items {
			if f.items[i].ID == chi.URLParam(r, "id") {
				if status, ok := fields["status"].(string); ok {
					f.items[i].Status = status
				}
				writeTestJSON(w, f.items[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		writeTestJSON(w, map[string]string{"message": "Feedback not found"})
	})

	mux.Delete("/api/feedbacks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.deleteStatus != 0 {
			w.WriteHeader(f.deleteStatus)
			writeTestJSON(w, map[string]string{"message": "User not authorized to delete this feedback"})
			return
		}
		writeTestJSON(w, map[string]string{"id": chi.URLParam(r, "id"), "message": "Feedback deleted"})
	})

	mux.Put("/api/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		if f.markReadStatus != 0 {
			w.WriteHeader(f.markReadStatus)
			writeTestJSON(w, map[string]string{"message": "Not authorized"})
			return
		}
		f.notification.Read = true
		writeTestJSON(w, f.notification)
	})

	return mux
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestStore(t *testing.T, f *fakeBackend, opts ...StoreOption) *Store {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewStore(New(srv.URL, WithToken("test-token")), opts...)
}

func TestStoreRefresh_PopulatesAllState(t *testing.T) {
	store := newTestStore(t, newFakeBackend())

	require.NoError(t, store.Refresh(context.Background()))

	feedbacks := store.Feedbacks()
	require.Len(t, feedbacks, 1)
	assert.Equal(t, "Broken login", feedbacks[0].Title)

	developers := store.Developers()
	require.Len(t, developers, 1)
	assert.Equal(t, "dev-7", developers[0].ID)

	assert.Len(t, store.Notifications(), 1)
	assert.Equal(t, 1, store.Analytics().Total)

	_, pages, total := store.Pagination()
	assert.Equal(t, 1, pages)
	assert.Equal(t, int64(1), total)
}

func TestStore_DebounceCollapsesBursts(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend, WithDebounce(40*time.Millisecond))

	store.SetSearch("l")
	store.SetSearch("lo")
	store.SetFilter("status", "Open")
	store.SetSearch("login")

	// Well past the quiet period; only the last scheduled refresh may run.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int64(1), backend.listCalls.Load())
}

func TestStore_StaleRefreshResponseIsDropped(t *testing.T) {
	backend := newFakeBackend()
	backend.gateFirstList = make(chan struct{})
	store := newTestStore(t, backend)

	// Start a refresh whose list call hangs at the server.
	firstDone := make(chan error, 1)
	go func() { firstDone <- store.Refresh(context.Background()) }()
	<-backend.firstListSeen

	// A newer refresh completes while the first is still in flight.
	require.NoError(t, store.Refresh(context.Background()))

	// Let the stale response land; it must not clobber the newer state.
	close(backend.gateFirstList)
	require.NoError(t, <-firstDone)

	feedbacks := store.Feedbacks()
	require.Len(t, feedbacks, 1)
	assert.Equal(t, "Broken login", feedbacks[0].Title)
}

func TestStore_UpdateStatusPatchesCacheAndRefreshesAnalytics(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh(context.Background()))

	before := backend.analyticsCalls.Load()
	require.NoError(t, store.UpdateStatus(context.Background(), "fb-1", "Resolved"))

	feedbacks := store.Feedbacks()
	require.Len(t, feedbacks, 1)
	assert.Equal(t, "Resolved", feedbacks[0].Status)
	assert.Equal(t, before+1, backend.analyticsCalls.Load())
}

func TestStore_DeleteFailureLeavesCacheUntouched(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh(context.Background()))
	backend.deleteStatus = http.StatusUnauthorized

	err := store.DeleteFeedback(context.Background(), "fb-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "User not authorized to delete this feedback", apiErr.Message)
	assert.Len(t, store.Feedbacks(), 1, "failed delete must not mutate local state")
}

func TestStore_DeleteSuccessRemovesRecord(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.DeleteFeedback(context.Background(), "fb-1"))

	assert.Empty(t, store.Feedbacks())
	_, _, total := store.Pagination()
	assert.Equal(t, int64(0), total)
}

func TestStore_MarkNotificationReadIsOptimistic(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh(context.Background()))

	id := backend.notification.ID.Hex()
	require.NoError(t, store.MarkNotificationRead(context.Background(), id))

	notifications := store.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Read)
}

func TestStore_MarkNotificationReadRollsBackOnFailure(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh(context.Background()))
	backend.markReadStatus = http.StatusUnauthorized

	err := store.MarkNotificationRead(context.Background(), backend.notification.ID.Hex())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	notifications := store.Notifications()
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read, "rejected mark-read must not stick locally")
}
