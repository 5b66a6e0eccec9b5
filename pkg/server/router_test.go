package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/storeplan-api/pkg/auth"
	"github.com/arnavshah/storeplan-api/pkg/config"
	"github.com/arnavshah/storeplan-api/pkg/database"
	"github.com/arnavshah/storeplan-api/pkg/handlers"
	"github.com/arnavshah/storeplan-api/pkg/logger"
	"github.com/arnavshah/storeplan-api/pkg/metrics"
	"github.com/arnavshah/storeplan-api/pkg/scheduler"
	"github.com/arnavshah/storeplan-api/pkg/tools"
	"github.com/arnavshah/storeplan-api/pkg/workbook"
)

const routesCSV = "Plan,Store 1,Store 2\nNorth,A,B\nSouth,C,\n"

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *auth.Authenticator
}

func newTestEnv(t *testing.T, requireKey bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Database.Path = filepath.Join(t.TempDir(), "server.db")
	cfg.Auth.JWTSecret = "jwt-secret"
	cfg.Auth.APIMasterSecret = "master-secret"
	cfg.Auth.RequireAPIKey = requireKey

	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	a := auth.New(cfg.Auth, nil)
	m := metrics.NewPrometheus()
	svc := tools.NewService(
		tools.WithMetrics(m),
		tools.WithPicker(func() scheduler.Picker { return &scheduler.ScriptedPicker{} }),
	)

	h := &handlers.Handler{DB: db, Tools: svc, Auth: a, Config: cfg, Log: logger.NopLogger{}}
	return &testEnv{router: NewRouter(h, m), db: db, auth: a}
}

type filePart struct {
	field, name, body string
}

func upload(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postTool(t *testing.T, path, key string, fields map[string]string, files ...filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := upload(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	return e.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, decode(t, w)["version"])

	w = env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Monthly PJP")
}

func TestPJPDownload(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.postTool(t, "/api/tools/pjp", "", map[string]string{"month": "2024-03"},
		filePart{"file", "routes.csv", routesCSV})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, workbook.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="PJP_03_2024.xlsx"`)
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Monthly PJP")
	require.NoError(t, err)
	assert.Len(t, rows, 32)
}

func TestToolErrorStatuses(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.postTool(t, "/api/tools/pjp", "", nil, filePart{"file", "routes.csv", routesCSV})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Please select store data file and month!", body["message"])

	w = env.postTool(t, "/api/tools/concat", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select at least one file!", decode(t, w)["message"])

	w = env.postTool(t, "/api/tools/concat", "", nil, filePart{"files", "broken.xlsx", "not a zip"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.postTool(t, "/api/tools/floater", "", map[string]string{"month": "2024-02"},
		filePart{"file", "counters.xls", "garbage"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLookupJSONPreview(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.postTool(t, "/api/tools/lookup?format=json", "", nil,
		filePart{"catalogue", "catalogue.csv", "Description,SKU\nShampoo 200ml,S1\n"},
		filePart{"soh", "soh.csv", "Description,SOH store name\nshampoo,Mall A\nsoap,Mall B\n"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "lookup", body["tool"])
	assert.Equal(t, "catalogue_lookup_results.xlsx", body["file_name"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["matched"])
	assert.Equal(t, float64(1), stats["unmatched"])

	sheets := body["sheets"].([]any)
	rows := sheets[0].(map[string]any)["rows"].([]any)
	first := rows[0].(map[string]any)
	assert.Equal(t, "MATCHED", first["Match_Status"])
	assert.Equal(t, "S1", first["SKU"])
}

func TestConcatMultipleFiles(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.postTool(t, "/api/tools/concat?format=json", "", nil,
		filePart{"files", "north.csv", "Item\nSoap\n"},
		filePart{"files", "south.csv", "Item\nRice\nOil\n"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode(t, w)["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["files"])
	assert.Equal(t, float64(3), stats["rows_out"])
}

func TestValidateEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.postTool(t, "/api/tools/validate", "", nil, filePart{"file", "routes.csv", routesCSV})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["valid"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["route_count"])
	assert.Equal(t, "csv", stats["format"])

	w = env.postTool(t, "/api/tools/validate", "", nil, filePart{"file", "empty.csv", "Plan\n"})
	assert.Equal(t, false, decode(t, w)["valid"])
}

func TestToolsRequireKeyWhenConfigured(t *testing.T) {
	env := newTestEnv(t, true)
	fields := map[string]string{"month": "2024-03"}
	routes := filePart{"file", "routes.csv", routesCSV}

	w := env.postTool(t, "/api/tools/pjp", "", fields, routes)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.postTool(t, "/api/tools/pjp", "ops.forged", fields, routes)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	key := env.auth.GenerateHMACKey("ops")
	w = env.postTool(t, "/api/tools/pjp", key, fields, routes)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ops", body["key_name"])
	totals := body["totals"].(map[string]any)
	assert.Equal(t, float64(1), totals["requests"])
	assert.Equal(t, float64(31), totals["rows"])
}

func TestAdminKeyLifecycle(t *testing.T) {
	env := newTestEnv(t, false)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&database.MasterUser{Username: "root", PasswordHash: string(hash)}).Error)

	jsonReq := func(method, path, token, body string) *http.Request {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}

	w := env.do(jsonReq(http.MethodPost, "/admin/login", "", `{"username":"root","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(jsonReq(http.MethodPost, "/admin/login", "", `{"username":"root","password":"pw"}`))
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["access_token"].(string)

	w = env.do(jsonReq(http.MethodGet, "/admin/keys", "", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(jsonReq(http.MethodPost, "/admin/keys", token, `{"name":"field-team","rate_limit":1}`))
	require.Equal(t, http.StatusOK, w.Code)
	created := decode(t, w)
	key := created["key"].(string)
	id := int(created["id"].(float64))

	w = env.do(jsonReq(http.MethodGet, "/admin/keys", token, ""))
	require.Equal(t, http.StatusOK, w.Code)
	keys := decode(t, w)["keys"].([]any)
	require.Len(t, keys, 1)
	assert.NotContains(t, w.Body.String(), key)

	fields := map[string]string{"month": "2024-03"}
	routes := filePart{"file", "routes.csv", routesCSV}
	w = env.postTool(t, "/api/tools/pjp", key, fields, routes)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.postTool(t, "/api/tools/pjp", key, fields, routes)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.do(jsonReq(http.MethodPut, fmt.Sprintf("/admin/keys/%d", id), token, `{"rate_limit":5}`))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.postTool(t, "/api/tools/pjp", key, fields, routes)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(jsonReq(http.MethodGet, fmt.Sprintf("/admin/usage/%d", id), token, ""))
	require.Equal(t, http.StatusOK, w.Code)
	totals := decode(t, w)["totals"].(map[string]any)
	assert.Equal(t, float64(2), totals["requests"])

	w = env.do(jsonReq(http.MethodDelete, fmt.Sprintf("/admin/keys/%d", id), token, ""))
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	env.db.Model(&database.ToolUsage{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.postTool(t, "/api/tools/pjp", "", map[string]string{"month": "2024-03"},
		filePart{"file", "routes.csv", routesCSV})

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `storeplan_tool_runs_total{status="success",tool="pjp"} 1`)
}
