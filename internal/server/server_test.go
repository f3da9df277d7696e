package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/auth"
	"github.com/flowchain/flowchain/internal/config"
	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_create_tables.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	logger := zap.NewNop()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
			CookieName: "token",
		},
		Uploads: config.UploadsConfig{Dir: t.TempDir(), MaxSizeBytes: 5 << 20},
	}

	deps := Deps{
		Logger:         logger,
		Tokens:         auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Hasher:         auth.NewHasher(cfg.Auth.BcryptCost),
		Users:          repository.NewUserRepository(db, logger),
		Projects:       repository.NewProjectRepository(db, logger),
		Tasks:          repository.NewTaskRepository(db, logger),
		Timesheets:     repository.NewTimesheetRepository(db, logger),
		Partners:       repository.NewPartnerRepository(db, logger),
		Products:       repository.NewProductRepository(db, logger),
		Taxes:          repository.NewTaxRepository(db, logger),
		SalesOrders:    repository.NewSalesOrderRepository(db, logger),
		PurchaseOrders: repository.NewPurchaseOrderRepository(db, logger),
		Invoices:       repository.NewInvoiceRepository(db, logger),
		Expenses:       repository.NewExpenseRepository(db, logger),
	}

	return NewServer(cfg, deps)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func adminToken(t *testing.T, s *Server) string {
	t.Helper()
	hash, err := s.deps.Hasher.Hash("Password1")
	require.NoError(t, err)
	user := &models.User{Name: "Admin", Email: "admin@example.com", Password: hash, Role: models.RoleAdmin}
	require.NoError(t, s.deps.Users.Create(user))
	token, err := s.deps.Tokens.Generate(user)
	require.NoError(t, err)
	return token
}

func TestBootstrapFlow(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/auth/bootstrap/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["needsBootstrap"])

	w = doJSON(t, s, http.MethodPost, "/api/auth/bootstrap", gin.H{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "Password1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "First admin user created successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["role"])

	// Second bootstrap is rejected once a user exists
	w = doJSON(t, s, http.MethodPost, "/api/auth/bootstrap", gin.H{
		"name":     "Mallory",
		"email":    "mallory@example.com",
		"password": "Password1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/auth/bootstrap/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["needsBootstrap"])
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "Password1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", decode(t, w)["message"])

	w = doJSON(t, s, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := adminTokenFor(t, s, "admin@example.com")
	w = doJSON(t, s, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "admin@example.com", me["email"])
}

func adminTokenFor(t *testing.T, s *Server, email string) string {
	t.Helper()
	user, err := s.deps.Users.GetByEmail(email)
	require.NoError(t, err)
	require.NotNil(t, user)
	token, err := s.deps.Tokens.Generate(user)
	require.NoError(t, err)
	return token
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/projects", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/admin/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)

	hash, err := s.deps.Hasher.Hash("Password1")
	require.NoError(t, err)
	member := &models.User{Name: "Member", Email: "member@example.com", Password: hash, Role: models.RoleTeamMember}
	require.NoError(t, s.deps.Users.Create(member))
	token, err := s.deps.Tokens.Generate(member)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/api/admin/users", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Non-admin can still reach the regular API
	w = doJSON(t, s, http.MethodGet, "/api/projects", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/projects", gin.H{
		"name":   "Website Redesign",
		"status": "In Progress",
		"budget": 50000,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "Project created successfully", created["message"])
	projectID := created["project"].(map[string]interface{})["id"].(string)

	w = doJSON(t, s, http.MethodGet, "/api/projects/"+projectID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	// Partial update leaves untouched fields alone
	w = doJSON(t, s, http.MethodPatch, "/api/projects/"+projectID, gin.H{
		"status":   "Completed",
		"progress": 100,
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	project := decode(t, w)["project"].(map[string]interface{})
	assert.Equal(t, "Completed", project["status"])
	assert.Equal(t, "Website Redesign", project["name"])
	assert.Equal(t, float64(50000), project["budget"])

	w = doJSON(t, s, http.MethodDelete, "/api/projects/"+projectID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project deleted successfully", decode(t, w)["message"])

	w = doJSON(t, s, http.MethodGet, "/api/projects/"+projectID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartnerLifecycleBareResponses(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/partners", gin.H{
		"name": "Acme",
		"type": "customer",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	partner := decode(t, w)
	assert.Equal(t, "Acme", partner["name"])
	partnerID := partner["id"].(string)

	w = doJSON(t, s, http.MethodPut, "/api/partners/"+partnerID, gin.H{
		"email": "sales@acme.example",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	assert.Equal(t, "Acme", updated["name"])
	assert.Equal(t, "sales@acme.example", updated["email"])

	w = doJSON(t, s, http.MethodDelete, "/api/partners/"+partnerID, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/partners/"+partnerID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSalesOrderCreateZeroesAmounts(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/sales-orders", gin.H{
		"code":          "SO-001",
		"untaxedAmount": "999",
		"totalAmount":   "999",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode(t, w)
	assert.Equal(t, "0", order["untaxedAmount"])
	assert.Equal(t, "0", order["totalAmount"])
	assert.Equal(t, "Draft", order["status"])

	orderID := order["id"].(string)
	w = doJSON(t, s, http.MethodPost, "/api/sales-orders/"+orderID+"/lines", gin.H{
		"quantity":  "2",
		"unitPrice": "150.00",
		"amount":    "300.00",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/sales-orders/"+orderID+"/lines", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "300.00", lines[0]["amount"])

	// Adding a line does not move the order totals
	w = doJSON(t, s, http.MethodGet, "/api/sales-orders/"+orderID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", decode(t, w)["totalAmount"])
}

func TestTaskStampsLastModifiedBy(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/tasks", gin.H{"name": "Design"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode(t, w)["task"].(map[string]interface{})
	assert.NotEmpty(t, task["lastModifiedBy"])
	assert.Equal(t, true, task["isBillable"])
}

func TestAnalyticsEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t, s)

	project := &models.Project{Name: "Alpha", Status: models.ProjectInProgress, Cost: 100, Revenue: 250}
	require.NoError(t, s.deps.Projects.Create(project))
	task := &models.Task{Name: "Build", ProjectID: &project.ID, Status: models.TaskCompleted, IsBillable: true}
	require.NoError(t, s.deps.Tasks.Create(task))
	require.NoError(t, s.deps.Timesheets.Create(&models.Timesheet{
		TaskID: task.ID, EmployeeID: "emp-1", TimeLogged: 5, Billable: true,
	}))

	w := doJSON(t, s, http.MethodGet, "/api/analytics/kpis", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	kpis := decode(t, w)
	assert.Equal(t, float64(1), kpis["totalProjects"])
	assert.Equal(t, float64(1), kpis["tasksCompleted"])
	assert.Equal(t, float64(5), kpis["totalHours"])
	assert.Equal(t, float64(100), kpis["billablePercentage"])

	w = doJSON(t, s, http.MethodGet, "/api/analytics/kpis?billable=false", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["totalHours"])

	w = doJSON(t, s, http.MethodGet, "/api/analytics/workload-trend", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var points []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	assert.Len(t, points, 12)

	w = doJSON(t, s, http.MethodGet, "/api/analytics/filters", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSuggestCategoryUnavailableWithoutKey(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/expenses/suggest-category", gin.H{
		"name": "Team lunch",
	}, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
