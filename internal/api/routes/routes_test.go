package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pc-inventory/internal/config"
	"pc-inventory/internal/models"
	"pc-inventory/internal/notify"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// setupTestDB initializes a test database
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), fmt.Sprintf("inventory_test_%d.db", time.Now().UnixNano()))
	cfg.Token.Secret = "test-secret-key-for-testing-only"
	cfg.Token.Issuer = "pc-inventory-test"
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Security.RateLimit.Enabled = false
	cfg.Paths.Static = t.TempDir()

	err := models.InitDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { cleanupTestDB(t) })
	return cfg
}

// cleanupTestDB closes the test database
func cleanupTestDB(t *testing.T) {
	if models.DB != nil {
		sqlDB, err := models.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	models.DB = nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// setupTestRouter creates a test router with routes
func setupTestRouter(cfg *config.Config, notifier notify.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, cfg, zap.NewNop(), notifier)
	return r
}

type testUser struct {
	user  *models.User
	token string
}

// createTestUser creates a user with its profile and returns it with its token
func createTestUser(t *testing.T, cfg *config.Config, username string, role models.Role, superuser bool) testUser {
	t.Helper()
	user, token, err := services.NewAuthService(cfg).CreateUser(services.NewUser{
		Username:    username,
		Password:    username + "123",
		Role:        role,
		IsSuperuser: superuser,
	})
	require.NoError(t, err)
	return testUser{user: user, token: token.Key}
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func createTestComputer(t *testing.T, cfg *config.Config, name, ip string) *models.Computer {
	t.Helper()
	changes := services.NewChangeService(cfg, notify.Nop{}, zap.NewNop())
	floor := 1
	location, office := "Main building", "101"
	computer, err := services.NewComputerService(cfg, changes).Create(services.ComputerInput{
		ComputerName:    &name,
		IPAddress:       &ip,
		LocationAddress: &location,
		Floor:           &floor,
		Office:          &office,
	})
	require.NoError(t, err)
	return computer
}

var computerPayload = map[string]interface{}{
	"computer_name":    "PC-NEW",
	"ip_address":       "192.168.0.10",
	"location_address": "Main building",
	"floor":            3,
	"office":           "305",
	"has_kaspersky":    true,
}

func TestRoleMatrix(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, notify.Nop{})

	employee := createTestUser(t, cfg, "employee", models.RoleEmployee, false)
	auditor := createTestUser(t, cfg, "auditor", models.RoleAuditor, false)
	admin := createTestUser(t, cfg, "admin", models.RoleAdmin, false)
	root := createTestUser(t, cfg, "root", models.RoleEmployee, true)

	computer := createTestComputer(t, cfg, "PC-001", "10.0.0.1")
	computerPath := fmt.Sprintf("/api/computers/%d", computer.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   map[string]int
	}{
		{"list computers", "GET", "/api/computers", nil,
			map[string]int{"employee": 403, "auditor": 200, "admin": 200, "root": 200}},
		{"retrieve computer", "GET", computerPath, nil,
			map[string]int{"employee": 403, "auditor": 200, "admin": 200, "root": 200}},
		{"create computer", "POST", "/api/computers", computerPayload,
			map[string]int{"employee": 403, "auditor": 403, "admin": 201, "root": 201}},
		{"computer changes", "GET", computerPath + "/changes", nil,
			map[string]int{"employee": 403, "auditor": 403, "admin": 200, "root": 200}},
		{"export", "GET", "/api/computers/export_csv", nil,
			map[string]int{"employee": 403, "auditor": 403, "admin": 200, "root": 200}},
		{"list changes", "GET", "/api/changes", nil,
			map[string]int{"employee": 403, "auditor": 403, "admin": 200, "root": 200}},
		{"create user", "POST", "/api/users", map[string]interface{}{"username": "x", "password": "y"},
			map[string]int{"employee": 403, "auditor": 403, "admin": 403}},
	}

	users := map[string]testUser{"employee": employee, "auditor": auditor, "admin": admin, "root": root}

	for _, tt := range tests {
		for name, want := range tt.want {
			t.Run(tt.name+" as "+name, func(t *testing.T) {
				w := doRequest(router, tt.method, tt.path, users[name].token, tt.body)
				assert.Equal(t, want, w.Code, w.Body.String())
				if want == http.StatusForbidden {
					assert.Equal(t, "forbidden", decode(t, w)["kind"])
				}
			})
		}
	}
}

func TestAuthentication(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, notify.Nop{})
	admin := createTestUser(t, cfg, "admin", models.RoleAdmin, false)

	t.Run("missing header is 401 not 403", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/changes", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthenticated", decode(t, w)["kind"])
	})

	t.Run("unknown token", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/computers", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/computers", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token scheme is accepted", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/computers", nil)
		req.Header.Set("Authorization", "Token "+admin.token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		require.NoError(t, models.DB.Model(&models.Token{}).
			Where("user_id = ?", admin.user.ID).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		w := doRequest(router, "GET", "/api/computers", admin.token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		response := decode(t, w)
		assert.Equal(t, "token expired", response["error"])
		assert.Equal(t, "unauthenticated", response["kind"])
	})
}

func TestLoginAndDeleteToken(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, notify.Nop{})
	createTestUser(t, cfg, "olga", models.RoleAuditor, false)

	login := func() *httptest.ResponseRecorder {
		return doRequest(router, "POST", "/api/login", "", map[string]string{"username": "olga", "password": "olga123"})
	}

	first := login()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	firstToken := decode(t, first)["token"].(string)
	assert.NotEmpty(t, decode(t, first)["expires_at"])

	second := login()
	require.Equal(t, http.StatusOK, second.Code)
	secondToken := decode(t, second)["token"].(string)

	t.Run("re-login supersedes the previous token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "GET", "/api/computers", firstToken, nil).Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "GET", "/api/computers", secondToken, nil).Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/login", "", map[string]string{"username": "olga", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid credentials", decode(t, w)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/login", "", map[string]string{"username": "olga"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete token", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/delete_token", secondToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["deleted"])

		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "GET", "/api/computers", secondToken, nil).Code)
	})
}

func TestLoginRateLimit(t *testing.T) {
	cfg := setupTestDB(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	router := setupTestRouter(cfg, notify.Nop{})

	body := map[string]string{"username": "nobody", "password": "x"}
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "POST", "/api/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "POST", "/api/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "POST", "/api/login", "", body).Code)
}

func TestUsersAndProfiles(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, notify.Nop{})
	alice := createTestUser(t, cfg, "alice", models.RoleAdmin, false)
	bob := createTestUser(t, cfg, "bob", models.RoleEmployee, false)
	root := createTestUser(t, cfg, "root", models.RoleEmployee, true)

	t.Run("list is scoped to self", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/users", bob.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["users"], 1)

		w = doRequest(router, "GET", "/api/users", root.token, nil)
		assert.Len(t, decode(t, w)["users"], 3)
	})

	t.Run("me", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/users/me", bob.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "bob", response["username"])
		assert.NotContains(t, response, "password_hash")

		w = doRequest(router, "GET", "/api/profiles/me", bob.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "employee", decode(t, w)["role"])
	})

	t.Run("other users are hidden", func(t *testing.T) {
		w := doRequest(router, "GET", fmt.Sprintf("/api/users/%d", alice.user.ID), bob.token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("editing another user is forbidden", func(t *testing.T) {
		w := doRequest(router, "PATCH", fmt.Sprintf("/api/users/%d", bob.user.ID), alice.token, map[string]string{"email": "x@example.com"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("role change needs admin", func(t *testing.T) {
		path := fmt.Sprintf("/api/profiles/%d", bob.user.Profile.ID)
		w := doRequest(router, "PATCH", path, bob.token, map[string]string{"role": "admin"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(router, "PATCH", path, root.token, map[string]string{"role": "auditor"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "auditor", decode(t, w)["role"])
	})

	t.Run("profiles cannot be created or deleted directly", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, doRequest(router, "POST", "/api/profiles", root.token, map[string]string{}).Code)
		path := fmt.Sprintf("/api/profiles/%d", bob.user.Profile.ID)
		assert.Equal(t, http.StatusMethodNotAllowed, doRequest(router, "DELETE", path, root.token, nil).Code)
	})

	t.Run("superuser creates and deletes users", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/users", root.token, map[string]interface{}{
			"username": "newbie",
			"password": "newbie123",
			"role":     "auditor",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		response := decode(t, w)
		assert.NotEmpty(t, response["token"])
		created := response["user"].(map[string]interface{})
		assert.Equal(t, "auditor", created["profile"].(map[string]interface{})["role"])

		w = doRequest(router, "POST", "/api/users", root.token, map[string]interface{}{"username": "newbie", "password": "x"})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = doRequest(router, "DELETE", fmt.Sprintf("/api/users/%v", created["id"]), root.token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestComputerEndpoints(t *testing.T) {
	cfg := setupTestDB(t)
	notifier := &recordingNotifier{}
	router := setupTestRouter(cfg, notifier)
	admin := createTestUser(t, cfg, "admin", models.RoleAdmin, false)

	var computerID float64

	t.Run("create writes no change record", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/computers", admin.token, computerPayload)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		computerID = decode(t, w)["id"].(float64)

		var count int64
		models.DB.Model(&models.Change{}).Count(&count)
		assert.Zero(t, count)
		assert.Zero(t, notifier.count())
	})

	t.Run("invalid ip", func(t *testing.T) {
		body := map[string]interface{}{}
		for k, v := range computerPayload {
			body[k] = v
		}
		body["ip_address"] = "300.1.1.1"
		w := doRequest(router, "POST", "/api/computers", admin.token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decode(t, w)["kind"])
	})

	t.Run("patch", func(t *testing.T) {
		w := doRequest(router, "PATCH", fmt.Sprintf("/api/computers/%v", computerID), admin.token, map[string]string{"comment": "new disk"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "new disk", decode(t, w)["comment"])
		assert.Equal(t, "PC-NEW", decode(t, w)["computer_name"])
	})

	t.Run("log change accepts an encoded string", func(t *testing.T) {
		w := doRequest(router, "POST", fmt.Sprintf("/api/computers/%v/log_change", computerID), admin.token,
			map[string]string{"change_description": `{"ram":"16GB"}`})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "change logged", decode(t, w)["status"])
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("log change accepts an object", func(t *testing.T) {
		w := doRequest(router, "POST", fmt.Sprintf("/api/computers/%v/log_change", computerID), admin.token,
			map[string]interface{}{"change_description": map[string]string{"action": "repair"}})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("log change rejects broken json", func(t *testing.T) {
		w := doRequest(router, "POST", fmt.Sprintf("/api/computers/%v/log_change", computerID), admin.token,
			map[string]string{"change_description": "{broken"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("log change on unknown computer", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/computers/9999/log_change", admin.token,
			map[string]interface{}{"change_description": map[string]string{"a": "b"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("per computer changes", func(t *testing.T) {
		w := doRequest(router, "GET", fmt.Sprintf("/api/computers/%v/changes", computerID), admin.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["changes"], 2)
	})

	t.Run("delete keeps snapshots", func(t *testing.T) {
		w := doRequest(router, "DELETE", fmt.Sprintf("/api/computers/%v", computerID), admin.token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(router, "GET", "/api/changes?computer_name=pc-new", admin.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		changes := decode(t, w)["changes"].([]interface{})
		require.Len(t, changes, 2)
		for _, c := range changes {
			change := c.(map[string]interface{})
			assert.Nil(t, change["computer_id"])
			assert.Equal(t, "PC-NEW", change["computer_name"])
			assert.Equal(t, "192.168.0.10", change["computer_ip"])
		}
	})

	t.Run("filters", func(t *testing.T) {
		createTestComputer(t, cfg, "ACC-01", "10.1.0.1")
		createTestComputer(t, cfg, "HR-01", "10.2.0.1")

		w := doRequest(router, "GET", "/api/computers?computer_name=acc", admin.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["computers"], 1)

		w = doRequest(router, "GET", "/api/computers?floor=abc", admin.token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doRequest(router, "GET", "/api/computers?page=1&limit=1", admin.token, nil)
		response := decode(t, w)
		assert.Len(t, response["computers"], 1)
		assert.Equal(t, float64(2), response["total"])
		assert.Equal(t, float64(2), response["total_pages"])
	})
}

func TestNotifierFailureIsReported(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, &recordingNotifier{err: errors.New("smtp down")})
	admin := createTestUser(t, cfg, "admin", models.RoleAdmin, false)
	computer := createTestComputer(t, cfg, "PC-1", "10.0.0.1")

	w := doRequest(router, "POST", fmt.Sprintf("/api/computers/%d/log_change", computer.ID), admin.token,
		map[string]interface{}{"change_description": map[string]string{"a": "b"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "notifier_failure", decode(t, w)["kind"])

	// The change record was still written.
	var count int64
	models.DB.Model(&models.Change{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func uploadCSV(router *gin.Engine, token, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "computers.csv")
	_, _ = part.Write([]byte(content))
	_ = writer.Close()

	req, _ := http.NewRequest("POST", "/api/computers/import_csv", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCSVEndpoints(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, notify.Nop{})
	admin := createTestUser(t, cfg, "admin", models.RoleAdmin, false)

	header := "computer_name,ip_address,location_address,floor,office,has_kaspersky\n"

	t.Run("import with a duplicate row", func(t *testing.T) {
		content := header +
			"PC-1,10.0.0.1,HQ,1,101,true\n" +
			"PC-2,10.0.0.2,HQ,1,102,false\n" +
			"PC-1,10.0.0.1,HQ,1,101,true\n"

		w := uploadCSV(router, admin.token, content)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decode(t, w)
		assert.Equal(t, float64(2), response["imported_count"])
		assert.Equal(t, float64(3), response["total_rows"])
		assert.Equal(t, "Imported 2 of 3 rows", response["message"])

		errs := response["errors"].([]interface{})
		require.Len(t, errs, 1)
		rowErr := errs[0].(map[string]interface{})
		assert.Equal(t, float64(3), rowErr["row"])
		assert.Equal(t, "conflict", rowErr["kind"])

		w = doRequest(router, "GET", "/api/changes?action=csv_import", admin.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		changes := decode(t, w)["changes"].([]interface{})
		require.Len(t, changes, 1)
		assert.Equal(t, "CSV import (2 pcs)", changes[0].(map[string]interface{})["computer_name"])
	})

	t.Run("import without file", func(t *testing.T) {
		w := doRequest(router, "POST", "/api/computers/import_csv", admin.token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("import with bad header", func(t *testing.T) {
		w := uploadCSV(router, admin.token, "name,ip\nPC,10.0.0.1\n")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("export", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/computers/export_csv", admin.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Equal(t, `attachment; filename="computers_export.csv"`, w.Header().Get("Content-Disposition"))

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "computer_name,ip_address,location_address,floor,office"))
		assert.True(t, strings.HasPrefix(lines[1], "PC-1,10.0.0.1,HQ,1,101"))
		assert.Contains(t, lines[1], "Да")
		assert.Contains(t, lines[2], "Нет")

		w = doRequest(router, "GET", "/api/changes?action=csv_export", admin.token, nil)
		changes := decode(t, w)["changes"].([]interface{})
		require.Len(t, changes, 1)
		description := changes[0].(map[string]interface{})["change_description"].(map[string]interface{})
		assert.Equal(t, float64(2), description["exported_count"])
	})
}

func TestDeleteChangeEndpoint(t *testing.T) {
	cfg := setupTestDB(t)
	notifier := &recordingNotifier{}
	router := setupTestRouter(cfg, notifier)
	admin := createTestUser(t, cfg, "admin", models.RoleAdmin, false)
	root := createTestUser(t, cfg, "root", models.RoleEmployee, true)
	computer := createTestComputer(t, cfg, "PC-1", "10.0.0.1")

	w := doRequest(router, "POST", fmt.Sprintf("/api/computers/%d/log_change", computer.ID), admin.token,
		map[string]interface{}{"change_description": map[string]string{"a": "b"}})
	require.Equal(t, http.StatusCreated, w.Code)
	changeID := decode(t, w)["change"].(map[string]interface{})["id"]
	path := fmt.Sprintf("/api/changes/%v", changeID)

	assert.Equal(t, http.StatusOK, doRequest(router, "GET", path, admin.token, nil).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(router, "DELETE", path, admin.token, nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "DELETE", path, root.token, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, "GET", path, root.token, nil).Code)

	// One created notification and one deleted notification.
	assert.Equal(t, 2, notifier.count())
}

func TestPublicEndpoints(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg, notify.Nop{})

	t.Run("health", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["status"])
	})

	t.Run("icons", func(t *testing.T) {
		iconDir := filepath.Join(cfg.Paths.Static, "icons")
		require.NoError(t, os.MkdirAll(iconDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(iconDir, "favicon.ico"), []byte{0, 0, 1, 0}, 0644))

		w := doRequest(router, "GET", "/icons/favicon.ico", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/x-icon", w.Header().Get("Content-Type"))

		w = doRequest(router, "GET", "/icons/missing.ico", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		doRequest(router, "GET", "/api/health", "", nil)
		w := doRequest(router, "GET", "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/api/health",status="200"}`)
	})

	t.Run("cors preflight", func(t *testing.T) {
		w := doRequest(router, "OPTIONS", "/api/computers", "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
