package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := service.NewService(
		repository.NewMemoryStore(),
		auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewTokenIssuer("test-secret", time.Hour),
		log,
		&config.Config{Location: time.UTC},
	)
	policy := middleware.NewPolicy(svc, log, middleware.DefaultRules())
	return NewRouter(NewHandler(svc, log), policy, log)
}

func send(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func sendForm(t *testing.T, srv http.Handler, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func signupAndSignin(t *testing.T, srv http.Handler, username string) string {
	t.Helper()
	rec := sendForm(t, srv, "/signup", "", url.Values{
		"name": {strings.ToUpper(username)}, "username": {username}, "password": {"pw-" + username},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(t, srv, "POST", "/signin", "", map[string]string{"username": username, "password": "pw-" + username})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func createItem(t *testing.T, srv http.Handler, token string, patch models.TodoPatch) models.TodoItem {
	t.Helper()
	rec := send(t, srv, "POST", "/todo", token, patch)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.TodoItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func decodeHome(t *testing.T, rec *httptest.ResponseRecorder) homeView {
	t.Helper()
	var v homeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- tests ---

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, send(t, srv, "GET", "/", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(t, srv, "POST", "/todo", "", models.TodoPatch{Description: "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, send(t, srv, "GET", "/users", "", nil).Code)
}

func TestSignup_ValidationAndConflict(t *testing.T) {
	srv := newTestServer(t)

	rec := send(t, srv, "POST", "/signup", "", models.Registration{Username: "alice", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	signupAndSignin(t, srv, "alice")
	rec = send(t, srv, "POST", "/signup", "", models.Registration{Name: "A", Username: "alice", Password: "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(t, srv, "POST", "/signin", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignup_DoesNotExposeHash(t *testing.T) {
	srv := newTestServer(t)

	rec := send(t, srv, "POST", "/signup", "", models.Registration{Name: "A", Username: "alice", Password: "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
}

func TestTodoLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")

	item := createItem(t, srv, token, models.TodoPatch{Description: "milk", Quantity: 2, StoreName: "shop"})
	assert.NotZero(t, item.ID)
	assert.False(t, item.IsComplete)

	home := decodeHome(t, send(t, srv, "GET", "/", token, nil))
	assert.Equal(t, "alice", home.Name)
	require.Len(t, home.TodoItems, 1)
	assert.Equal(t, item.ID, home.TodoItems[0].ID)

	path := "/todo/" + itoa(item.ID)
	rec := sendForm(t, srv, path, token, url.Values{
		"description": {"oat milk"}, "isComplete": {"on"}, "quantity": {"3"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var edited models.TodoItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &edited))
	assert.Equal(t, "oat milk", edited.Description)
	assert.True(t, edited.IsComplete)
	assert.Equal(t, 3, edited.Quantity)
	assert.True(t, edited.CreatedAt.Equal(item.CreatedAt))
	assert.Equal(t, item.OwnerID, edited.OwnerID)

	assert.Equal(t, http.StatusNoContent, send(t, srv, "DELETE", path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, send(t, srv, "GET", path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, send(t, srv, "DELETE", path, token, nil).Code)
}

func TestCreateTodo_BlankDescription(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")

	rec := send(t, srv, "POST", "/todo", token, models.TodoPatch{Description: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	home := decodeHome(t, send(t, srv, "GET", "/", token, nil))
	assert.Empty(t, home.TodoItems)
}

func TestForeignItem_ForbiddenNotHidden(t *testing.T) {
	srv := newTestServer(t)
	alice := signupAndSignin(t, srv, "alice")
	bob := signupAndSignin(t, srv, "bob")
	item := createItem(t, srv, alice, models.TodoPatch{Description: "alice's"})
	path := "/todo/" + itoa(item.ID)

	assert.Equal(t, http.StatusForbidden, send(t, srv, "PUT", path, bob, models.TodoPatch{Description: "mine now"}).Code)
	assert.Equal(t, http.StatusForbidden, send(t, srv, "DELETE", path, bob, nil).Code)
	assert.Equal(t, http.StatusForbidden, sendForm(t, srv, "/delete/"+itoa(item.ID), bob, url.Values{}).Code)
	assert.Equal(t, http.StatusForbidden, send(t, srv, "GET", path, bob, nil).Code)

	assert.Equal(t, http.StatusNotFound, send(t, srv, "PUT", "/todo/999", bob, models.TodoPatch{Description: "x"}).Code)

	rec := send(t, srv, "GET", path, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice's")
}

func TestFilter(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")
	open := createItem(t, srv, token, models.TodoPatch{Description: "open"})
	done := createItem(t, srv, token, models.TodoPatch{Description: "done", IsComplete: true})

	today := time.Now().UTC()
	q := url.Values{
		"startDate": {today.Format("2006-01-02")},
		"endDate":   {today.AddDate(0, 0, 1).Format("2006-01-02")},
	}

	all := decodeHome(t, send(t, srv, "GET", "/filter?"+q.Encode(), token, nil))
	assert.Len(t, all.TodoItems, 2)

	q.Set("completedCheckbox", "on")
	completed := decodeHome(t, send(t, srv, "GET", "/filter?"+q.Encode(), token, nil))
	require.Len(t, completed.TodoItems, 1)
	assert.Equal(t, done.ID, completed.TodoItems[0].ID)

	q.Set("notCompletedCheckbox", "on")
	both := decodeHome(t, send(t, srv, "GET", "/filter?"+q.Encode(), token, nil))
	assert.Len(t, both.TodoItems, 2)

	q.Del("completedCheckbox")
	notCompleted := decodeHome(t, send(t, srv, "GET", "/filter?"+q.Encode(), token, nil))
	require.Len(t, notCompleted.TodoItems, 1)
	assert.Equal(t, open.ID, notCompleted.TodoItems[0].ID)
}

func TestFilter_RejectsMalformedInput(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")

	for _, query := range []string{
		"endDate=2024-01-02",
		"startDate=2024-01-01",
		"startDate=01/01/2024&endDate=2024-01-02",
		"startDate=2024-01-01&endDate=2024-01-02&completedCheckbox=maybe",
	} {
		rec := send(t, srv, "GET", "/filter?"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestClearFilter(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")

	rec := send(t, srv, "GET", "/clear-filter", token, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSignout_RevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")

	assert.Equal(t, http.StatusOK, send(t, srv, "GET", "/", token, nil).Code)
	assert.Equal(t, http.StatusNoContent, send(t, srv, "POST", "/signout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(t, srv, "GET", "/", token, nil).Code)
}

func TestExportTodos(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndSignin(t, srv, "alice")
	createItem(t, srv, token, models.TodoPatch{Description: "bread & butter", StoreName: "bakery"})

	rec := send(t, srv, "GET", "/todo/export.xml", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(rec.Body.Bytes()))
	root := doc.SelectElement("todoItems")
	require.NotNil(t, root)
	assert.Equal(t, "alice", root.SelectAttrValue("owner", ""))
	assert.Equal(t, "1", root.SelectAttrValue("count", ""))

	desc := doc.FindElement("//todoItem/description")
	require.NotNil(t, desc)
	assert.Equal(t, "bread & butter", desc.Text())
}

func TestUserAdministration(t *testing.T) {
	srv := newTestServer(t)
	alice := signupAndSignin(t, srv, "alice")
	bobToken := signupAndSignin(t, srv, "bob")
	createItem(t, srv, bobToken, models.TodoPatch{Description: "bob's"})

	rec := send(t, srv, "GET", "/users", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "$2a$")
	bobID := users[1].ID

	rec = send(t, srv, "PUT", "/users/"+itoa(bobID), alice, models.UserUpdate{Name: "Robert", Password: "new"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Robert")

	rec = send(t, srv, "POST", "/signin", "", map[string]string{"username": "bob", "password": "new"})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNoContent, send(t, srv, "DELETE", "/users/"+itoa(bobID), alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, send(t, srv, "GET", "/users/"+itoa(bobID), alice, nil).Code)

	// bob's token still verifies but no longer maps to a user
	assert.Equal(t, http.StatusUnauthorized, send(t, srv, "GET", "/", bobToken, nil).Code)
}

func TestBuildExport_Empty(t *testing.T) {
	doc := buildExport("nobody", nil)
	root := doc.SelectElement("todoItems")
	require.NotNil(t, root)
	assert.Equal(t, "0", root.SelectAttrValue("count", ""))
	assert.Empty(t, root.SelectElements("todoItem"))
}

func TestParseFlag(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "true": true, "1": true, "off": false, "false": false, "0": false} {
		got, err := parseFlag(url.Values{"f": {in}}, "f")
		require.NoError(t, err, in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, *got, in)
	}

	got, err := parseFlag(url.Values{}, "f")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseFlag(url.Values{"f": {""}}, "f")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
