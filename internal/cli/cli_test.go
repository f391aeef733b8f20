package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasksync/internal/credential"
	"github.com/nhle/tasksync/internal/model"
	"github.com/nhle/tasksync/internal/session"
)

// taskServer is a minimal in-memory task API.
type taskServer struct {
	mu     sync.Mutex
	token  string
	tasks  []model.Task
	nextID int
	hits   atomic.Int64
}

func (s *taskServer) authed(w http.ResponseWriter, r *http.Request) bool {
	s.hits.Add(1)
	s.mu.Lock()
	want := "Bearer " + s.token
	s.mu.Unlock()
	if r.Header.Get("Authorization") != want {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return false
	}
	return true
}

func (s *taskServer) find(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *taskServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		s.mu.Lock()
		tok := s.token
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": tok,
			"token_type":   "bearer",
			"user":         map[string]string{"id": "u1", "email": body.Email, "full_name": "Alice", "role": "developer"},
		})
	})

	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		if !s.authed(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": s.tasks, "total": len(s.tasks), "skip": 0, "limit": 100})
	})

	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		if !s.authed(w, r) {
			return
		}
		var in model.TaskInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Title == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "Title is required"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.nextID++
		t := model.Task{
			ID:       "t" + strconv.Itoa(s.nextID),
			Title:    in.Title,
			Priority: in.Priority,
			Status:   in.Status,
			Tags:     in.Tags,
		}
		s.tasks = append([]model.Task{t}, s.tasks...)
		writeJSON(w, http.StatusCreated, map[string]any{"data": t})
	})

	mux.HandleFunc("GET /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !s.authed(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.find(r.PathValue("id"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": s.tasks[i]})
	})

	mux.HandleFunc("PUT /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !s.authed(w, r) {
			return
		}
		var patch model.TaskPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)

		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.find(r.PathValue("id"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
			return
		}
		if patch.Status != nil {
			s.tasks[i].Status = *patch.Status
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": s.tasks[i]})
	})

	mux.HandleFunc("DELETE /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !s.authed(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.find(r.PathValue("id"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
			return
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Task deleted"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type fixture struct {
	t      *testing.T
	app    *App
	server *taskServer
	config string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := &taskServer{token: "tok-1"}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.API.BaseURL = ts.URL
	cfg.Store.Path = filepath.Join(dir, "activity.db")
	cfg.Credential.Dir = filepath.Join(dir, "credentials")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, model.SaveConfig(cfgPath, cfg))

	vault := credential.NewVault(keyring.NewArrayKeyring(nil))
	app := &App{
		OpenVault: func(string) (session.Vault, error) { return vault, nil },
	}

	return &fixture{t: t, app: app, server: srv, config: cfgPath}
}

func (f *fixture) run(args ...string) (string, error) {
	f.t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(f.app)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", f.config}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (f *fixture) mustRun(args ...string) string {
	f.t.Helper()
	out, err := f.run(args...)
	require.NoError(f.t, err, "tasksync %v", args)
	return out
}

// activity returns the logged entries, newest first.
func (f *fixture) activity(args ...string) []model.Notification {
	f.t.Helper()
	out := f.mustRun(append([]string{"activity", "--json"}, args...)...)
	var entries []model.Notification
	require.NoError(f.t, json.Unmarshal([]byte(out), &entries))
	return entries
}

func (f *fixture) login() {
	f.t.Helper()
	out := f.mustRun("login", "--email", "alice@example.com", "--password", "secret")
	assert.Contains(f.t, out, "Welcome, Alice!")
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	f.login()

	out := f.mustRun("whoami")
	assert.Contains(t, out, "alice@example.com")

	out = f.mustRun("add", "Ship it", "--priority", "high", "--tags", "release, docs")
	assert.Contains(t, out, "Task created successfully: t1")

	out = f.mustRun("list", "--json")
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship it", tasks[0].Title)
	assert.Equal(t, []string{"release", "docs"}, tasks[0].Tags)
	assert.Equal(t, model.StatusTodo, tasks[0].Status)

	out = f.mustRun("done", "t1")
	assert.Contains(t, out, "t1 is done")

	out = f.mustRun("show", "t1")
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "done")

	out = f.mustRun("list", "--status", "todo")
	assert.Contains(t, out, "No tasks")

	out = f.mustRun("rm", "t1")
	assert.Contains(t, out, "Task deleted successfully")

	out = f.mustRun("activity", "--json")
	var entries []model.Notification
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, "Task deleted successfully", entries[0].Message)
	assert.Equal(t, "Welcome, Alice!", entries[3].Message)
	assert.Equal(t, "u1", entries[3].UserID)

	out = f.mustRun("logout")
	assert.Contains(t, out, "Logged out successfully")

	_, err := f.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCommandsRequireLogin(t *testing.T) {
	f := newFixture(t)

	for _, args := range [][]string{{"list"}, {"add", "x"}, {"done", "t1"}, {"rm", "t1"}, {"show", "t1"}} {
		_, err := f.run(args...)
		assert.ErrorIs(t, err, errNotLoggedIn, "%v", args)
	}
	assert.Zero(t, f.server.hits.Load())
}

func TestLoginRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("login", "--email", "alice@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect email or password")

	_, err = f.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRejectedTokenClearsSession(t *testing.T) {
	f := newFixture(t)
	f.login()

	f.server.mu.Lock()
	f.server.token = "tok-2"
	f.server.mu.Unlock()

	_, err := f.run("list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	_, err = f.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	entries := f.activity()
	require.Len(t, entries, 2)
	assert.Equal(t, "Session expired, please log in again", entries[0].Message)
	assert.Equal(t, model.SeverityInfo, entries[0].Severity)
	assert.Equal(t, "u1", entries[0].UserID)
}

func TestServerMessageSurfaces(t *testing.T) {
	f := newFixture(t)
	f.login()

	_, err := f.run("done", "missing")
	require.Error(t, err)
	assert.Equal(t, "Task not found", err.Error())

	_, err = f.run("add", "")
	require.Error(t, err)
	assert.Equal(t, "Title is required", err.Error())

	entries := f.activity("--severity", "error")
	require.Len(t, entries, 2)
	assert.Equal(t, "Title is required", entries[0].Message)
	assert.Equal(t, "Task not found", entries[1].Message)
	assert.Equal(t, "u1", entries[0].UserID)
}

func TestConfigInit(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("config", "init")
	require.Error(t, err)

	require.NoError(t, os.Remove(f.config))
	out := f.mustRun("config", "init")
	assert.Contains(t, out, "Wrote")

	cfg, err := model.LoadConfig(f.config)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Notify.TTLSec)
}
