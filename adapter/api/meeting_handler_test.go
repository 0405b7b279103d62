package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"meetdesk/internal/meetings/application/commands"
	"meetdesk/internal/meetings/application/queries"
	meetingsPersistence "meetdesk/internal/meetings/infrastructure/persistence"
	"meetdesk/internal/notify"
	remindersApplication "meetdesk/internal/reminders/application"
	remindersDomain "meetdesk/internal/reminders/domain"
	remindersPersistence "meetdesk/internal/reminders/infrastructure/persistence"
	"meetdesk/internal/shared/infrastructure/migrations"
	sharedPersistence "meetdesk/internal/shared/infrastructure/persistence"
)

// recordingNotifier keeps sent mail in memory.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (n *recordingNotifier) Send(_ context.Context, _ []string, subject, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, subject)
	return nil
}

// testStack exposes the wired server plus the backing reminder store, so
// tests can observe what survives API-level mutations.
type testStack struct {
	handler   http.Handler
	reminders remindersDomain.Repository
}

func setupTestServer(t *testing.T) http.Handler {
	return setupTestStack(t).handler
}

func setupTestStack(t *testing.T) *testStack {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, migrations.ApplySQLite(context.Background(), sqlDB))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := sharedPersistence.NewSQLiteUnitOfWork(sqlDB)
	meetingRepo := meetingsPersistence.NewSQLiteMeetingRepository(sqlDB)
	reminderRepo := remindersPersistence.NewSQLiteReminderRepository(sqlDB)

	resolver := notify.NewDirectoryResolver(map[string]string{
		"alice": "alice@example.com",
		"bob":   "bob@example.com",
	})
	notifier := &recordingNotifier{}
	queue := remindersApplication.NewQueueManager(reminderRepo, uow, logger)

	list := queries.NewListMeetingsHandler(meetingRepo)
	handler := NewMeetingHandler(MeetingHandlerConfig{
		Schedule: commands.NewScheduleMeetingHandler(meetingRepo, queue, resolver, notifier, uow, logger),
		Update:   commands.NewUpdateMeetingHandler(meetingRepo, resolver, notifier, uow, logger),
		Delete:   commands.NewDeleteMeetingHandler(meetingRepo, logger),
		List:     list,
		Get:      queries.NewGetMeetingHandler(meetingRepo),
		Export:   queries.NewExportMeetingsHandler(list),
		Logger:   logger,
	})

	return &testStack{
		handler:   NewServer(DefaultServerConfig(), handler, logger).Handler(),
		reminders: reminderRepo,
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	return data
}

func createPayload(title string) map[string]any {
	return map[string]any{
		"date":         "2025-06-02",
		"start_time":   "09:00",
		"end_time":     "10:00",
		"title":        title,
		"participants": "alice, bob",
		"category":     "it",
		"location":     "Room A",
	}
}

func TestAPI_Health(t *testing.T) {
	h := setupTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_ScheduleAndList(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", createPayload("Standup"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody(t, rec)
	assert.Equal(t, float64(1), created["created"])
	assert.NotEmpty(t, created["meeting_id"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/meetings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	listing := decodeBody(t, rec)
	assert.Equal(t, float64(1), listing["total"])
	meetings := listing["meetings"].([]any)
	first := meetings[0].(map[string]any)
	assert.Equal(t, "Standup", first["title"])
	assert.Equal(t, "2025-06-02", first["date"])
}

func TestAPI_ScheduleBulk(t *testing.T) {
	h := setupTestServer(t)

	payload := createPayload("Weekly sync")
	payload["recurrence"] = "weekly"
	payload["count"] = 4

	rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(4), decodeBody(t, rec)["created"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/meetings?from=2025-06-01&to=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decodeBody(t, rec)["total"])
}

func TestAPI_ScheduleCampaign(t *testing.T) {
	h := setupTestServer(t)

	payload := createPayload("Audit prep")
	payload["recurrence"] = "daily-business-7"

	rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody(t, rec)
	assert.Equal(t, float64(1), created["created"], "campaigns store a single meeting")
	assert.Equal(t, float64(14), created["reminders_enqueued"], "2 recipients x 7 business days")
}

func TestAPI_ScheduleValidation(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		message string
	}{
		{"missing title", func(p map[string]any) { delete(p, "title") }, "title"},
		{"bad date", func(p map[string]any) { p["date"] = "02/06/2025" }, "date"},
		{"bad start time", func(p map[string]any) { p["start_time"] = "9am" }, "start"},
		{"bad recurrence", func(p map[string]any) { p["recurrence"] = "fortnightly" }, "recurrence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := createPayload("Standup")
			tt.mutate(payload)

			rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestAPI_GetUpdateDelete(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", createPayload("Standup"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["meeting_id"].(string)

	path := fmt.Sprintf("/api/v1/meetings/%s", id)

	rec = doJSON(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Standup", decodeBody(t, rec)["title"])

	update := createPayload("Retro")
	update["date"] = "2025-06-04"
	rec = doJSON(t, h, http.MethodPut, path, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "Retro", got["title"])
	assert.Equal(t, "2025-06-04", got["date"])

	rec = doJSON(t, h, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_DeleteCampaignMeetingKeepsReminders(t *testing.T) {
	stack := setupTestStack(t)
	h := stack.handler

	payload := createPayload("Audit prep")
	payload["recurrence"] = "daily-business-7"

	rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody(t, rec)
	assert.Equal(t, float64(14), created["reminders_enqueued"])
	meetingID, err := uuid.Parse(created["meeting_id"].(string))
	require.NoError(t, err)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/meetings/%s", meetingID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The campaign outlives its meeting: every queued reminder is still
	// stored and still becomes due.
	ctx := context.Background()
	kept, err := stack.reminders.FindByMeeting(ctx, meetingID)
	require.NoError(t, err)
	assert.Len(t, kept, 14)

	afterCampaign := time.Now().AddDate(0, 0, 60)
	due, err := stack.reminders.FindDue(ctx, afterCampaign, 100)
	require.NoError(t, err)
	assert.Len(t, due, 14)
	for _, reminder := range due {
		assert.False(t, reminder.Sent())
	}
}

func TestAPI_Categories(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "hse", body["default"])
	categories := body["categories"].([]any)
	assert.Len(t, categories, 10)
	assert.Contains(t, categories, "logistics")
}

func TestAPI_UnknownAndMalformedIDs(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/meetings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/meetings/6a38d090-2f0a-4a0e-93c3-1f9c1a15e001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListFilterValidation(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/meetings?date=junk", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/meetings?from=2025-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/meetings?from=2025-06-30&to=2025-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Export(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/meetings", createPayload("Standup"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/meetings/export?date=2025-06-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"),
	)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}
