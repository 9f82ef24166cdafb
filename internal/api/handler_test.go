package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"commerce-console/internal/client"
	"commerce-console/internal/models"
	"commerce-console/internal/orchestrator"
	"commerce-console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendStub answers just enough of the commerce and auth surface for the
// route tests; failAll flips every route into a 500.
type backendStub struct {
	mu      sync.Mutex
	failAll bool
}

func (s *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failAll
	s.mu.Unlock()
	if fail {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	switch {
	case r.URL.Path == "/products" && r.Method == http.MethodGet:
		_ = enc.Encode([]models.Product{{ID: 1, Name: "widget", Price: decimal.NewFromInt(100), Stock: 10}})
	case r.URL.Path == "/products" && r.Method == http.MethodPost:
		_ = enc.Encode(models.Product{ID: 2, Name: "created", Price: decimal.NewFromInt(10)})
	case r.URL.Path == "/groupbuys" && r.Method == http.MethodGet:
		_ = enc.Encode([]models.GroupBuy{
			{ID: 7, ProductID: 1, Discount: decimal.NewFromInt(20), MinParticipants: 5, Status: models.StatusCompleted},
			{ID: 8, ProductID: 1, Discount: decimal.NewFromInt(20), MinParticipants: 5, Status: models.StatusActive},
		})
	case strings.HasSuffix(r.URL.Path, "/join"):
		_ = enc.Encode(models.GroupBuy{ID: 8, ProductID: 1, Participants: 1, Status: models.StatusActive})
	case r.URL.Path == "/orders" && r.Method == http.MethodGet:
		_ = enc.Encode([]models.Order{})
	case r.URL.Path == "/orders" && r.Method == http.MethodPost:
		_ = enc.Encode(models.Order{ID: 11, ProductID: 1, GroupBuyID: 8, Quantity: 3, TotalPrice: decimal.NewFromInt(240)})
	case r.URL.Path == "/login":
		_ = enc.Encode(map[string]string{"token": "jwt-test"})
	case strings.HasPrefix(r.URL.Path, "/users/") && r.Method == http.MethodGet:
		_ = enc.Encode(models.User{ID: 1, Username: "admin", Email: "admin@example.com"})
	default:
		http.NotFound(w, r)
	}
}

func newRouter(t *testing.T) (*gin.Engine, *backendStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := &backendStub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	hc := srv.Client()
	console := orchestrator.New(
		client.NewCatalog(srv.URL, hc),
		client.NewGroupBuys(srv.URL, hc),
		client.NewOrders(srv.URL, hc),
		client.NewUsers(srv.URL, hc),
		session.NewManager(session.NewMemoryStore(), time.Hour),
		nil,
		5,
	)

	router := gin.New()
	NewHandler(console).SetupRoutes(router)
	return router, stub
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestListProductsReturnsPageState(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodGet, "/api/v1/products?pageSize=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []models.Product `json:"products"`
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
}

func TestListProductsInvalidFilterIsBadRequest(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodGet, "/api/v1/products?minPrice=500&maxPrice=10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "min_price")
}

func TestCreateProductValidationFieldsInResponse(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodPost, "/api/v1/products", `{"name":"","price":"abc","stock":"-1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	names := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "price")
	assert.Contains(t, names, "stock")
}

func TestJoinCompletedGroupBuyIsConflict(t *testing.T) {
	router, _ := newRouter(t)
	// prime the group-buy cache
	require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/groupbuys", "").Code)

	w := do(router, http.MethodPost, "/api/v1/groupbuys/7/join", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "completed")
}

func TestJoinActiveGroupBuySucceeds(t *testing.T) {
	router, _ := newRouter(t)
	require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/groupbuys", "").Code)

	w := do(router, http.MethodPost, "/api/v1/groupbuys/8/join", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsersWithoutSessionIsUnauthorized(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBackendFailureIsRelayed(t *testing.T) {
	router, stub := newRouter(t)
	stub.mu.Lock()
	stub.failAll = true
	stub.mu.Unlock()

	w := do(router, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "backend exploded")
}

func TestOverviewReportsPartialFailures(t *testing.T) {
	router, stub := newRouter(t)
	stub.mu.Lock()
	stub.failAll = true
	stub.mu.Unlock()

	w := do(router, http.MethodGet, "/api/v1/overview", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Failed map[string]string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Failed, "products")
	assert.Contains(t, resp.Failed, "groupbuys")
	assert.Contains(t, resp.Failed, "orders")
}

func TestInvalidPathID(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodDelete, "/api/v1/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserDetail(t *testing.T) {
	router, _ := newRouter(t)

	// detail is an authenticated view
	w := do(router, http.MethodGet, "/api/v1/users/1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.Equal(t, http.StatusOK,
		do(router, http.MethodPost, "/api/v1/login", `{"username":"admin","password":"secret"}`).Code)

	w = do(router, http.MethodGet, "/api/v1/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@example.com")
}

func TestResumeRestoresSession(t *testing.T) {
	router, _ := newRouter(t)

	w := do(router, http.MethodPost, "/api/v1/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.SessionID)

	// the browser reloads: it only has the session_id it kept from login
	require.Equal(t, http.StatusNoContent, do(router, http.MethodPost, "/api/v1/logout", "").Code)

	w = do(router, http.MethodPost, "/api/v1/resume", `{"session_id":"`+login.SessionID+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout invalidated the stored session")

	w = do(router, http.MethodPost, "/api/v1/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = do(router, http.MethodPost, "/api/v1/resume", `{"session_id":"`+login.SessionID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), login.SessionID)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestResumeRejectsUnknownOrMissingID(t *testing.T) {
	router, _ := newRouter(t)

	w := do(router, http.MethodPost, "/api/v1/resume", `{"session_id":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPost, "/api/v1/resume", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	router, _ := newRouter(t)
	w := do(router, http.MethodPost, "/api/v1/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session_id")

	// missing credentials never reach the auth backend
	w = do(router, http.MethodPost, "/api/v1/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
