package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/hexagonhq/hexagon/internal/ctxkeys"
	"github.com/hexagonhq/hexagon/internal/db"
	"github.com/hexagonhq/hexagon/internal/model"
	"github.com/hexagonhq/hexagon/internal/repository"
	"github.com/hexagonhq/hexagon/internal/service"
)

type testServer struct {
	mux      *http.ServeMux
	database *sqlx.DB
	habits   *service.HabitService
}

// withUser stands in for the auth middleware: every request is attributed to
// the given user id.
func withUser(userID string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxkeys.WithUser(r.Context(), &model.User{ID: userID, Email: userID + "@example.com"})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func newTestServer(t *testing.T, userID string) *testServer {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	t.Cleanup(func() { _ = database.Close() })

	now := time.Now().UTC()
	for _, id := range []string{"user_a", "user_b"} {
		_, err = database.Exec(
			`INSERT INTO users (id, email, full_name, metadata, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			id, id+"@example.com", "Test User", nil, now, now,
		)
		require.NoError(t, err)
	}

	habitRepo := repository.NewHabitRepository(database)
	habits := service.NewHabitService(habitRepo)
	reset := service.NewResetService(habitRepo)

	habit := NewHabitHandler(habits)
	admin := NewAdminHandler(reset)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /habits", withUser(userID, habit.Create))
	mux.HandleFunc("GET /habits", withUser(userID, habit.List))
	mux.HandleFunc("GET /habits/{id}", withUser(userID, habit.Get))
	mux.HandleFunc("PATCH /habits/{id}/status", withUser(userID, habit.UpdateStatus))
	mux.HandleFunc("PATCH /habits/{id}/toggle-active", withUser(userID, habit.ToggleActive))
	mux.HandleFunc("PUT /habits/{id}", withUser(userID, habit.Update))
	mux.HandleFunc("DELETE /habits/{id}", withUser(userID, habit.Delete))
	mux.HandleFunc("POST /admin/habits/reset", admin.ResetHabits)

	return &testServer{mux: mux, database: database, habits: habits}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func createPayload() map[string]any {
	return map[string]any{
		"title":     "Read",
		"category":  "Learning",
		"target":    5,
		"frequency": "daily",
		"active":    true,
	}
}

func decodeHabit(t *testing.T, rec *httptest.ResponseRecorder) model.Habit {
	t.Helper()

	var habit model.Habit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &habit))
	return habit
}

func TestHabitHandler_CreateAndGet(t *testing.T) {
	ts := newTestServer(t, "user_a")

	rec := ts.do(t, http.MethodPost, "/habits", createPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeHabit(t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "user_a", created.UserID)
	require.Equal(t, model.HabitStatusPending, created.Status)
	require.Equal(t, 0, created.Progress)

	rec = ts.do(t, http.MethodGet, "/habits/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, created.ID, decodeHabit(t, rec).ID)
}

func TestHabitHandler_Create_DuplicateTitleConflict(t *testing.T) {
	ts := newTestServer(t, "user_a")

	rec := ts.do(t, http.MethodPost, "/habits", createPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	payload := createPayload()
	payload["title"] = " read "
	rec = ts.do(t, http.MethodPost, "/habits", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHabitHandler_Create_ValidationError(t *testing.T) {
	ts := newTestServer(t, "user_a")

	payload := createPayload()
	payload["target"] = 0
	rec := ts.do(t, http.MethodPost, "/habits", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/habits", "not an object")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHabitHandler_List(t *testing.T) {
	ts := newTestServer(t, "user_a")

	rec := ts.do(t, http.MethodGet, "/habits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/habits", createPayload()).Code)

	rec = ts.do(t, http.MethodGet, "/habits?offset=0&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var habits []model.Habit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &habits))
	require.Len(t, habits, 1)
}

func TestHabitHandler_UpdateStatus(t *testing.T) {
	ts := newTestServer(t, "user_a")

	created := decodeHabit(t, ts.do(t, http.MethodPost, "/habits", createPayload()))

	rec := ts.do(t, http.MethodPatch, "/habits/"+created.ID+"/status", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeHabit(t, rec)
	require.Equal(t, model.HabitStatusDone, updated.Status)
	require.Equal(t, 1, updated.Progress)

	// Unknown status value
	rec = ts.do(t, http.MethodPatch, "/habits/"+created.ID+"/status", map[string]string{"status": "paused"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHabitHandler_UpdateStatus_InactiveConflict(t *testing.T) {
	ts := newTestServer(t, "user_a")

	payload := createPayload()
	payload["active"] = false
	created := decodeHabit(t, ts.do(t, http.MethodPost, "/habits", payload))

	rec := ts.do(t, http.MethodPatch, "/habits/"+created.ID+"/status", map[string]string{"status": "done"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHabitHandler_ToggleActive(t *testing.T) {
	ts := newTestServer(t, "user_a")

	created := decodeHabit(t, ts.do(t, http.MethodPost, "/habits", createPayload()))

	rec := ts.do(t, http.MethodPatch, "/habits/"+created.ID+"/toggle-active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decodeHabit(t, rec).Active)
}

func TestHabitHandler_Update(t *testing.T) {
	ts := newTestServer(t, "user_a")

	created := decodeHabit(t, ts.do(t, http.MethodPost, "/habits", createPayload()))

	payload := createPayload()
	payload["title"] = "Read more"
	payload["target"] = 10
	rec := ts.do(t, http.MethodPut, "/habits/"+created.ID, payload)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeHabit(t, rec)
	require.Equal(t, "Read more", updated.Title)
	require.Equal(t, 10, updated.Target)
}

func TestHabitHandler_Delete(t *testing.T) {
	ts := newTestServer(t, "user_a")

	created := decodeHabit(t, ts.do(t, http.MethodPost, "/habits", createPayload()))

	rec := ts.do(t, http.MethodDelete, "/habits/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/habits/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHabitHandler_CrossUserIsNotFound(t *testing.T) {
	owner := newTestServer(t, "user_a")
	created := decodeHabit(t, owner.do(t, http.MethodPost, "/habits", createPayload()))

	// Same database, different authenticated user
	intruder := &testServer{mux: http.NewServeMux(), database: owner.database}
	habit := NewHabitHandler(owner.habits)
	intruder.mux.HandleFunc("GET /habits/{id}", withUser("user_b", habit.Get))
	intruder.mux.HandleFunc("DELETE /habits/{id}", withUser("user_b", habit.Delete))
	intruder.mux.HandleFunc("PUT /habits/{id}", withUser("user_b", habit.Update))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/habits/" + created.ID},
		{http.MethodDelete, "/habits/" + created.ID},
	} {
		rec := intruder.do(t, tc.method, tc.path, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, fmt.Sprintf("%s %s", tc.method, tc.path))
	}

	rec := intruder.do(t, http.MethodPut, "/habits/"+created.ID, createPayload())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_ResetHabits(t *testing.T) {
	ts := newTestServer(t, "user_a")

	created := decodeHabit(t, ts.do(t, http.MethodPost, "/habits", createPayload()))
	rec := ts.do(t, http.MethodPatch, "/habits/"+created.ID+"/status", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/habits/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"reset": 1}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/admin/habits/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"reset": 0}`, rec.Body.String())
}
