package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/config"
	"github.com/schalkje/DiagramDesigner/internal/service"
	"github.com/schalkje/DiagramDesigner/internal/storage/storagetest"
)

type testClient struct {
	t     *testing.T
	srv   *Server
	token string
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8000},
		Security: config.SecurityConfig{JWTSecret: "test-secret"},
	}
	st := storagetest.New(t)
	jwt := auth.NewJWTService(cfg.Security.JWTSecret, config.TokenLifetime)
	svc := service.New(st, jwt, zerolog.Nop())
	return &testClient{t: t, srv: New(cfg, st, svc, jwt, zerolog.Nop())}
}

// do sends a request and decodes a JSON object response.
func (tc *testClient) do(method, path string, body any) (int, map[string]any) {
	tc.t.Helper()
	rec := tc.raw(method, path, body)
	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(tc.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (tc *testClient) raw(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	rec := httptest.NewRecorder()
	tc.srv.ServeHTTP(rec, req)
	return rec
}

// create posts body and returns the id of the created row.
func (tc *testClient) create(path string, body any) uint {
	tc.t.Helper()
	code, out := tc.do(http.MethodPost, path, body)
	require.Equal(tc.t, http.StatusCreated, code, "%v", out)
	return uint(out["id"].(float64))
}

func (tc *testClient) login() {
	tc.t.Helper()
	code, out := tc.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "modeler@example.com", "username": "modeler", "password": "s3cret-pass",
	})
	require.Equal(tc.t, http.StatusCreated, code, "%v", out)
	tc.token = out["token"].(string)
}

func TestHealth(t *testing.T) {
	tc := newTestClient(t)

	code, out := tc.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, "sqlite", out["database"])
}

func TestRoutesRequireAuthentication(t *testing.T) {
	tc := newTestClient(t)

	for _, path := range []string{"/api/v1/superdomains", "/api/v1/diagrams", "/api/v1/auth/me"} {
		code, out := tc.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "authentication_error", out["error"], path)
		assert.Equal(t, "Missing authorization header", out["message"], path)
	}

	tc.token = "not-a-jwt"
	code, out := tc.do(http.MethodGet, "/api/v1/superdomains", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", out["message"])
}

func TestAuthFlow(t *testing.T) {
	tc := newTestClient(t)

	code, out := tc.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "alice@example.com", "username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, code, "%v", out)
	user := out["user"].(map[string]any)
	assert.NotContains(t, user, "passwordHash")

	code, out = tc.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "alice@example.com", "username": "alice2", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already registered", out["message"])

	code, out = tc.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "alice@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "authentication_error", out["error"])

	code, out = tc.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code, "%v", out)
	assert.Equal(t, "bearer", out["tokenType"])
	tc.token = out["token"].(string)

	code, out = tc.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, user["id"], out["id"])
	assert.Equal(t, "alice", out["username"])

	jwt := auth.NewJWTService("test-secret", config.TokenLifetime)
	claims, err := jwt.ValidateToken(tc.token)
	require.NoError(t, err)
	assert.EqualValues(t, user["id"], claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestHierarchyOverHTTP(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	sd := tc.create("/api/v1/superdomains", map[string]any{"name": "Biz"})
	dom := tc.create("/api/v1/domains", map[string]any{"superdomainId": sd, "name": "Sales"})
	ent := tc.create("/api/v1/entities", map[string]any{"domainId": dom, "name": "Customer"})

	code, out := tc.do(http.MethodPost, fmt.Sprintf("/api/v1/entities/%d/attributes", ent), map[string]any{
		"name": "email", "dataType": "String", "isNullable": false,
	})
	require.Equal(t, http.StatusCreated, code, "%v", out)
	assert.EqualValues(t, ent, out["entityId"])
	assert.Equal(t, false, out["isNullable"])

	code, out = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/entities/%d", ent), nil)
	require.Equal(t, http.StatusOK, code)
	attrs := out["attributes"].([]any)
	require.Len(t, attrs, 1)
	assert.Equal(t, "email", attrs[0].(map[string]any)["name"])

	code, out = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/domains?superdomainId=%d", sd), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 1)
	pagination := out["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["page"])
	assert.EqualValues(t, 100, pagination["pageSize"])
	assert.EqualValues(t, 1, pagination["total"])
	assert.EqualValues(t, 1, pagination["totalPages"])

	code, out = tc.do(http.MethodPost, "/api/v1/domains", map[string]any{"superdomainId": sd, "name": "Sales"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", out["error"])

	code, out = tc.do(http.MethodPost, "/api/v1/attributes", map[string]any{
		"entityId": ent, "name": "balance", "dataType": "Money",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["fieldErrors"], "dataType")

	code, _ = tc.do(http.MethodPost, "/api/v1/entities/9999/attributes", map[string]any{
		"name": "x", "dataType": "String",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, out = tc.do(http.MethodPost, "/api/v1/superdomains", map[string]any{"name": strings.Repeat("n", 101)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name must be 100 characters or less", out["message"])

	code, out = tc.do(http.MethodPut, fmt.Sprintf("/api/v1/domains/%d", dom), map[string]any{"description": "Selling things"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sales", out["name"])
	assert.Equal(t, "Selling things", out["description"])

	code, _ = tc.do(http.MethodGet, "/api/v1/domains/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSuperdomainDeleteNeedsConfirmation(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	sd := tc.create("/api/v1/superdomains", map[string]any{"name": "Biz"})
	dom := tc.create("/api/v1/domains", map[string]any{"superdomainId": sd, "name": "Sales"})
	tc.create("/api/v1/entities", map[string]any{"domainId": dom, "name": "Customer"})

	code, impact := tc.do(http.MethodGet, fmt.Sprintf("/api/v1/superdomains/%d/impact", sd), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"Sales"}, impact["affectedDomains"])

	code, out := tc.do(http.MethodDelete, fmt.Sprintf("/api/v1/superdomains/%d", sd), nil)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "confirmation_required", out["error"])
	assert.Equal(t, true, out["requiresConfirmation"])
	assert.Equal(t, []any{"Customer"}, out["affectedEntities"])

	code, _ = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/domains/%d", dom), nil)
	assert.Equal(t, http.StatusOK, code)

	code, out = tc.do(http.MethodDelete, fmt.Sprintf("/api/v1/superdomains/%d?confirm=true", sd), nil)
	require.Equal(t, http.StatusOK, code, "%v", out)
	assert.Equal(t, "Superdomain 'Biz' deleted successfully", out["message"])

	code, _ = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/domains/%d", dom), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRelationshipsOverHTTP(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	sd := tc.create("/api/v1/superdomains", map[string]any{"name": "HR"})
	dom := tc.create("/api/v1/domains", map[string]any{"superdomainId": sd, "name": "People"})
	emp := tc.create("/api/v1/entities", map[string]any{"domainId": dom, "name": "Employee"})
	dept := tc.create("/api/v1/entities", map[string]any{"domainId": dom, "name": "Department"})

	code, out := tc.do(http.MethodPost, "/api/v1/relationships", map[string]any{
		"sourceEntityId": emp, "targetEntityId": dept,
		"sourceCardinality": "ZERO_MANY", "targetCardinality": "ONE",
	})
	require.Equal(t, http.StatusCreated, code, "%v", out)
	assert.Equal(t, "N:1", out["notation"])
	assert.Equal(t, false, out["selfReferential"])

	code, out = tc.do(http.MethodPost, "/api/v1/relationships", map[string]any{
		"sourceEntityId": emp, "targetEntityId": dept,
		"sourceCardinality": "ONE", "targetCardinality": "ONE",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Multiple relationships between same entities require unique source and target roles", out["message"])

	code, out = tc.do(http.MethodPost, "/api/v1/relationships", map[string]any{
		"sourceEntityId": emp, "targetEntityId": emp,
		"sourceRole": "manager", "targetRole": "report",
		"sourceCardinality": "ZERO_ONE", "targetCardinality": "ZERO_MANY",
	})
	require.Equal(t, http.StatusCreated, code, "%v", out)
	assert.Equal(t, true, out["selfReferential"])

	code, out = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/entities/%d/relationships", emp), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 2)

	code, out = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/relationships?entityId=%d&limit=1", dept), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 1)
}

func TestDiagramsOverHTTP(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	sd := tc.create("/api/v1/superdomains", map[string]any{"name": "Biz"})
	dom := tc.create("/api/v1/domains", map[string]any{"superdomainId": sd, "name": "Sales"})
	ent := tc.create("/api/v1/entities", map[string]any{"domainId": dom, "name": "Customer"})

	d1 := tc.create("/api/v1/diagrams", map[string]any{"name": "Overview", "tags": []string{"core"}})
	d2 := tc.create("/api/v1/diagrams", map[string]any{"name": "Scratch"})

	obj := tc.create(fmt.Sprintf("/api/v1/diagrams/%d/objects", d1), map[string]any{
		"objectType": "ENTITY", "objectId": ent, "positionX": 100, "positionY": 50,
	})

	code, out := tc.do(http.MethodPost, fmt.Sprintf("/api/v1/diagrams/%d/objects", d1), map[string]any{
		"objectType": "ENTITY", "objectId": 4242, "positionX": 0, "positionY": 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Entity with ID 4242 not found", out["message"])

	code, _ = tc.do(http.MethodPut, fmt.Sprintf("/api/v1/diagrams/%d/objects/%d", d2, obj), map[string]any{"positionX": 1})
	assert.Equal(t, http.StatusNotFound, code, "placements are addressed through their own diagram")

	code, out = tc.do(http.MethodPut, fmt.Sprintf("/api/v1/diagrams/%d/objects/%d", d1, obj), map[string]any{"positionX": 1})
	require.Equal(t, http.StatusOK, code, "%v", out)
	assert.EqualValues(t, 1, out["positionX"])
	assert.EqualValues(t, 50, out["positionY"])

	code, out = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/diagrams/%d", d1), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["objects"], 1)
	assert.Empty(t, out["relationships"])
	assert.Equal(t, []any{"core"}, out["tags"])

	rec := tc.raw(http.MethodGet, fmt.Sprintf("/api/v1/diagrams/containing/entity/%d", ent), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var containing []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &containing))
	require.Len(t, containing, 1)
	assert.EqualValues(t, d1, containing[0]["id"])

	code, out = tc.do(http.MethodGet, "/api/v1/diagrams?tag=core", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, out = tc.do(http.MethodDelete, fmt.Sprintf("/api/v1/diagrams/%d/objects/%d", d1, obj), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Object removed from diagram", out["message"])

	code, _ = tc.do(http.MethodGet, fmt.Sprintf("/api/v1/entities/%d", ent), nil)
	assert.Equal(t, http.StatusOK, code)

	rec = tc.raw(http.MethodGet, fmt.Sprintf("/api/v1/diagrams/containing/entity/%d", ent), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
