package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"budgetledger/internal/handler"
	"budgetledger/internal/repository/memory"
	"budgetledger/internal/service/ledger"
	"budgetledger/pkg/config"
	"budgetledger/pkg/rbac"
	"budgetledger/pkg/trace"
	"budgetledger/pkg/util"
)

const testSecret = "test-secret"

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type server struct {
	t      *testing.T
	engine *gin.Engine
}

func newServer(t *testing.T, jwt config.JWTConfig) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := ledger.New(memory.New(), zap.NewNop())
	r := NewRouter(handler.New(l, zap.NewNop()), l, Options{JWT: jwt}, zap.NewNop())
	return &server{t: t, engine: r}
}

func (s *server) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// seed 创建 client / poc / project，返回三者 id
func (s *server) seed(token string) (clientID, pocID, projectID string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/clients", gin.H{"company": "Acme", "client_name": "Jane"}, token)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	clientID = decode(s.t, w)["id"].(string)

	w = s.do(http.MethodPost, "/api/pocs", gin.H{
		"name": "Raj", "email": "raj@acme.test", "phone": "555", "designation": "PM", "client": clientID,
	}, token)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	pocID = decode(s.t, w)["id"].(string)

	w = s.do(http.MethodPost, "/api/projects", gin.H{
		"project_name": "Portal", "code": "P-1", "client": clientID, "poc": pocID, "start_date": "2024-01-10",
	}, token)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	projectID = decode(s.t, w)["id"].(string)
	return clientID, pocID, projectID
}

func TestHealthEndpoints(t *testing.T) {
	s := newServer(t, config.JWTConfig{})

	for _, path := range []string{"/healthz", "/health", "/readyz"} {
		w := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := s.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyzReportsStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := ledger.New(memory.New(), zap.NewNop())
	r := NewRouter(handler.New(l, zap.NewNop()), pinger{err: errors.New("down")}, Options{}, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTraceHeader(t *testing.T) {
	s := newServer(t, config.JWTConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(trace.HeaderName()))

	w = s.do(http.MethodGet, "/healthz", nil, "")
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName()))
}

func TestProjectLifecycle(t *testing.T) {
	s := newServer(t, config.JWTConfig{})
	clientID, _, projectID := s.seed("")

	w := s.do(http.MethodGet, "/api/projects/"+projectID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Acme", body["client_name"])
	assert.Equal(t, "Raj", body["poc_name"])

	w = s.do(http.MethodPost, "/api/estimations", gin.H{
		"project": projectID, "version": "v1", "date": "2024-01-11", "provider": "Team",
		"development_amount": 50000, "testing_amount": 30000, "project_management_amount": 25000,
		"approval_status": "Approved",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 105000, decode(t, w)["total_amount"])

	w = s.do(http.MethodPost, "/api/payments", gin.H{
		"project": projectID, "resource": "Dev team", "currency": "EUR",
		"approved_budget": 1000, "additional_amount": 200, "payout": 1300,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := decode(t, w)
	assert.Equal(t, true, payment["is_exceeded"])
	paymentID := payment["id"].(string)

	w = s.do(http.MethodPost, "/api/milestones", gin.H{
		"payment": paymentID, "name": "Phase 1", "amount": 400, "due_date": "2024-02-01",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/payments/"+paymentID+"/milestones", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["milestones"], 1)

	w = s.do(http.MethodGet, "/api/projects/"+projectID+"/detail", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]any)
	assert.EqualValues(t, 105000, summary["estimated_total"])
	assert.EqualValues(t, 1, summary["exceeded_payments"])

	w = s.do(http.MethodGet, "/api/clients/"+clientID+"/projects", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var projects []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	assert.Len(t, projects, 1)

	w = s.do(http.MethodDelete, "/api/projects/"+projectID, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/api/payments/"+paymentID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchKeepsAbsentFields(t *testing.T) {
	s := newServer(t, config.JWTConfig{})
	clientID, _, _ := s.seed("")

	w := s.do(http.MethodPatch, "/api/clients/"+clientID, gin.H{"client_name": "Janet"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Janet", body["client_name"])
	assert.Equal(t, "Acme", body["company"])
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t, config.JWTConfig{})
	clientID, pocID, projectID := s.seed("")

	t.Run("validation", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/clients", gin.H{"company": "Acme"}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "validation_error", body["code"])
		assert.Equal(t, "client_name", body["field"])
	})

	t.Run("invalid amount", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/payments", gin.H{
			"project": projectID, "resource": "Dev", "approved_budget": -1, "payout": 0,
		}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_amount", decode(t, w)["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/clients", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad query flag", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/clients/"+clientID+"/pocs?active=maybe", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/projects/missing", nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decode(t, w)["code"])
	})

	t.Run("inconsistent reference", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/clients", gin.H{"company": "Other", "client_name": "Bob"}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		otherID := decode(t, w)["id"].(string)

		w = s.do(http.MethodPost, "/api/projects", gin.H{
			"project_name": "X", "code": "X-1", "client": otherID, "poc": pocID, "start_date": "2024-01-10",
		}, "")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "inconsistent_reference", decode(t, w)["code"])
	})

	t.Run("referenced", func(t *testing.T) {
		w := s.do(http.MethodDelete, "/api/clients/"+clientID, nil, "")
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "referenced", decode(t, w)["code"])
	})

	t.Run("invalid transition", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/additional-requests", gin.H{
			"project": projectID, "requested_amount": 500, "reason": "scope",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		requestID := decode(t, w)["id"].(string)

		w = s.do(http.MethodPost, "/api/additional-requests/"+requestID+"/approve", gin.H{"approved_by": "Lee"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Approved", decode(t, w)["status"])

		w = s.do(http.MethodPost, "/api/additional-requests/"+requestID+"/reject", nil, "")
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "invalid_transition", decode(t, w)["code"])
	})
}

func TestHolds(t *testing.T) {
	s := newServer(t, config.JWTConfig{})
	_, _, projectID := s.seed("")

	w := s.do(http.MethodPost, "/api/projects/"+projectID+"/add-hold", gin.H{"reason": "audit", "amount": 250}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	holdID := decode(t, w)["id"].(string)

	w = s.do(http.MethodPost, "/api/holds/"+holdID+"/release", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["is_active"])

	w = s.do(http.MethodPost, "/api/holds/"+holdID+"/release", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthAndPermissions(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: testSecret, Issuer: "budgetledger"}
	s := newServer(t, jwtCfg)

	token := func(subject, role string) string {
		tok, err := util.GenerateJWT(subject, role, jwtCfg.Issuer, jwtCfg.Secret, time.Hour)
		require.NoError(t, err)
		return tok
	}
	admin := token("root", rbac.RoleAdmin)
	manager := token("mia", rbac.RoleManager)
	user := token("ulf", rbac.RoleUser)

	w := s.do(http.MethodGet, "/api/clients", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/clients", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/clients", nil, token("eve", "Intruder"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, _, projectID := s.seed(user)

	w = s.do(http.MethodPost, "/api/additional-requests", gin.H{
		"project": projectID, "requested_amount": 100, "reason": "extra",
	}, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := decode(t, w)["id"].(string)

	w = s.do(http.MethodPost, "/api/additional-requests/"+requestID+"/approve", nil, user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// approved_by 缺省取 token 的 sub
	w = s.do(http.MethodPost, "/api/additional-requests/"+requestID+"/approve", nil, manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "mia", decode(t, w)["approved_by"])

	w = s.do(http.MethodDelete, "/api/projects/"+projectID, nil, manager)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/projects/"+projectID, nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
