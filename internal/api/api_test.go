package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huckwnmo101/taskdeck/internal/auth"
	"github.com/huckwnmo101/taskdeck/internal/rules"
	"github.com/huckwnmo101/taskdeck/internal/storage/sqlite"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

func newTestServer(t *testing.T, rateLimit float64) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	authMgr, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	server := NewServer(store, rules.NewService(store, rules.CascadeForwardOnly), authMgr, rateLimit)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request and decodes the JSON response into out (when
// out is non-nil)
func doJSON(t *testing.T, method, url, token string, body, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

type session struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

func register(t *testing.T, ts *httptest.Server, email string) session {
	t.Helper()
	var sess session
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	}, &sess)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, sess.Token)
	return sess
}

func createTask(t *testing.T, ts *httptest.Server, token string, body map[string]interface{}) *types.Task {
	t.Helper()
	var task types.Task
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", token, body, &task)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return &task
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, 0)

	sess := register(t, ts, "alice@example.com")
	assert.Equal(t, "alice@example.com", sess.User.Email)

	// Duplicate email conflicts
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "password123", "name": "Twin",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var login session
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, &login)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, login.Token)

	// Unknown email and wrong password get the same answer
	var badPass map[string]string
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	}, &badPass)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var badEmail map[string]string
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "password123",
	}, &badEmail)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, badPass["error"], badEmail["error"])

	var me types.User
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", login.Token, nil, &me)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t, 0)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "short", "name": "",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
	assert.Contains(t, body.Fields, "name")
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, 0)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "garbage-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	task := createTask(t, ts, sess.Token, map[string]interface{}{"title": "write report"})
	assert.Equal(t, types.StatusTodo, task.Status)
	assert.Equal(t, types.PriorityMedium, task.Priority)

	// Partial update leaves other fields alone
	var updated types.Task
	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token,
		map[string]interface{}{"priority": "high"}, &updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.PriorityHigh, updated.Priority)
	assert.Equal(t, "write report", updated.Title)

	// is_completed via update stamps completed_at but keeps the status
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token,
		map[string]interface{}{"is_completed": true}, &updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, updated.IsCompleted)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, types.StatusTodo, updated.Status)

	// Toggle flips completion and forces the status
	var toggled types.Task
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/toggle", ts.URL, task.ID), sess.Token, nil, &toggled)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, toggled.IsCompleted)
	assert.Equal(t, types.StatusTodo, toggled.Status)
	assert.Nil(t, toggled.CompletedAt)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateTaskValidation(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", sess.Token,
		map[string]interface{}{"title": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/tasks", sess.Token,
		map[string]interface{}{"title": "t", "status": "archived"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForeignIDsLookMissing(t *testing.T) {
	ts := newTestServer(t, 0)
	alice := register(t, ts, "alice@example.com")
	bob := register(t, ts, "bob@example.com")

	task := createTask(t, ts, alice.Token, map[string]interface{}{"title": "private"})

	// Bob gets the same uniform 404 everywhere
	var getErr map[string]string
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), bob.Token, nil, &getErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", getErr["error"])

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), bob.Token,
		map[string]interface{}{"title": "stolen"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/toggle", ts.URL, task.ID), bob.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/subtasks", ts.URL, task.ID), bob.Token,
		map[string]interface{}{"title": "step"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Alice still sees her task untouched
	var mine types.Task
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), alice.Token, nil, &mine)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "private", mine.Title)
}

func TestSubtaskCascade(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")
	task := createTask(t, ts, sess.Token, map[string]interface{}{"title": "two steps"})

	var s1, s2 types.Subtask
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/subtasks", ts.URL, task.ID), sess.Token,
		map[string]interface{}{"title": "step one"}, &s1)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, s1.Order)
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/subtasks", ts.URL, task.ID), sess.Token,
		map[string]interface{}{"title": "step two"}, &s2)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, s2.Order)

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%d/subtasks/%d", ts.URL, task.ID, s1.ID), sess.Token,
		map[string]interface{}{"is_completed": true}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// One of two done: parent still open
	var parent types.Task
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token, nil, &parent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, parent.IsCompleted)
	require.Len(t, parent.Subtasks, 2)

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%d/subtasks/%d", ts.URL, task.ID, s2.ID), sess.Token,
		map[string]interface{}{"is_completed": true}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Both done: parent auto-completed
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token, nil, &parent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, parent.IsCompleted)
	assert.Equal(t, types.StatusDone, parent.Status)
	assert.NotNil(t, parent.CompletedAt)
}

func TestTodayView(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	dueNow := time.Now().UnixMilli()
	dueNextWeek := time.Now().AddDate(0, 0, 7).UnixMilli()

	createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "flagged low", "is_today": true, "priority": "low",
	})
	createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "due today high", "due_date": dueNow, "priority": "high",
	})
	createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "next week", "due_date": dueNextWeek,
	})

	var view struct {
		Tasks    []*types.Task    `json:"tasks"`
		Subtasks []*types.Subtask `json:"subtasks"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/today", sess.Token, nil, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, view.Tasks, 2)
	assert.Equal(t, "due today high", view.Tasks[0].Title)
	assert.Equal(t, "flagged low", view.Tasks[1].Title)
	assert.NotNil(t, view.Subtasks)

	// Only the task neither flagged nor due today can still be added
	var available []*types.Task
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/today/available", sess.Token, nil, &available)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, available, 1)
	assert.Equal(t, "next week", available[0].Title)
}

func TestStatsEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	var category types.Category
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/categories", sess.Token,
		map[string]interface{}{"name": "Work"}, &category)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, types.DefaultCategoryColor, category.Color)

	done := createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "done task", "category_id": category.ID,
	})
	createTask(t, ts, sess.Token, map[string]interface{}{"title": "open task"})

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/toggle", ts.URL, done.ID), sess.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var overview types.Overview
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/stats/overview", sess.Token, nil, &overview)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.Overview{Total: 2, Completed: 1, CompletionRate: 50}, overview)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/stats/overview?period=nope", sess.Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var byCategory []types.CategoryStat
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/stats/categories", sess.Token, nil, &byCategory)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Work", byCategory[0].CategoryName)
	assert.Equal(t, 1, byCategory[0].Completed)
	assert.Equal(t, "Uncategorized", byCategory[1].CategoryName)
	assert.Equal(t, 1, byCategory[1].Total)
}

func TestProjectStats(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	var project types.Project
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects", sess.Token,
		map[string]interface{}{"name": "Launch"}, &project)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	done := createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "in project done", "project_id": project.ID,
	})
	createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "in project open", "project_id": project.ID,
	})
	createTask(t, ts, sess.Token, map[string]interface{}{"title": "elsewhere"})

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/toggle", ts.URL, done.ID), sess.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var overview types.Overview
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/projects/%d/stats", ts.URL, project.ID), sess.Token, nil, &overview)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.Overview{Total: 2, Completed: 1, CompletionRate: 50}, overview)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/projects/999/stats", sess.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")
	task := createTask(t, ts, sess.Token, map[string]interface{}{"title": "commented"})

	var comment types.Comment
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/comments", ts.URL, task.ID), sess.Token,
		map[string]interface{}{"content": "first note"}, &comment)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var updated types.Comment
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/comments/%d", ts.URL, comment.ID), sess.Token,
		map[string]interface{}{"content": "edited note"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "edited note", updated.Content)

	// Only the author may edit
	bob := register(t, ts, "bob@example.com")
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/comments/%d", ts.URL, comment.ID), bob.Token,
		map[string]interface{}{"content": "hijack"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/comments/%d", ts.URL, comment.ID), sess.Token, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCategoryDeleteDetaches(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	var category types.Category
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/categories", sess.Token,
		map[string]interface{}{"name": "Work"}, &category)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	task := createTask(t, ts, sess.Token, map[string]interface{}{
		"title": "categorized", "category_id": category.ID,
	})
	require.NotNil(t, task.CategoryID)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", ts.URL, category.ID), sess.Token, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var detached types.Task
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), sess.Token, nil, &detached)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, detached.CategoryID)
}

func TestListTasksFilterQuery(t *testing.T) {
	ts := newTestServer(t, 0)
	sess := register(t, ts, "alice@example.com")

	createTask(t, ts, sess.Token, map[string]interface{}{"title": "high one", "priority": "high"})
	createTask(t, ts, sess.Token, map[string]interface{}{"title": "low one", "priority": "low"})

	var tasks []*types.Task
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/tasks?priority=high", sess.Token, nil, &tasks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, tasks, 1)
	assert.Equal(t, "high one", tasks[0].Title)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?status=bogus", sess.Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, 1) // 1 req/s, burst 2

	var lastStatus int
	for i := 0; i < 5; i++ {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "", nil, nil)
		lastStatus = resp.StatusCode
		if lastStatus == http.StatusTooManyRequests {
			break
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}
