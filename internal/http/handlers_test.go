package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finexus/tradedesk/internal/auth"
	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/pricing"
	"github.com/finexus/tradedesk/internal/repository/memory"
	"github.com/finexus/tradedesk/internal/service"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	store := memory.New()
	market := service.NewMarketService(store, pricing.NewSimulator(time.Hour), log)
	require.NoError(t, market.Seed(context.Background()))

	taxCfg := ledger.TaxConfig{TermThresholdDays: 365}
	svcs := Services{
		Accounts:        service.NewAccountService(store, decimal.NewFromInt(1000000), log),
		Trading:         service.NewTradingService(store, log),
		Portfolio:       service.NewPortfolioService(store, taxCfg, log),
		Market:          market,
		News:            service.NewNewsService(),
		Recommendations: service.NewRecommendationService(store, service.DefaultRecommendationConfig(365), log),
		Admin:           store,
	}
	admin := &AdminAuth{Username: "admin", Password: "secret", Tokens: auth.NewTokenStore(time.Hour)}
	return Router(svcs, admin, log)
}

func doJSON(r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine) int64 {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/register", gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "hunter2",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/login", gin.H{
		"email": "asha@example.com", "password": "hunter2",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		UserID int64 `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.UserID)
	return resp.UserID
}

func stockIDBySymbol(t *testing.T, r *gin.Engine, symbol string) int64 {
	t.Helper()
	w := doJSON(r, http.MethodGet, "/api/stocks", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stocks []models.Stock
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stocks))
	for _, stk := range stocks {
		if stk.Symbol == symbol {
			return stk.ID
		}
	}
	t.Fatalf("symbol %s not seeded", symbol)
	return 0
}

func TestRegisterLoginFlow(t *testing.T) {
	r := testRouter(t)
	userID := registerAndLogin(t, r)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/user/%d", userID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Duplicate registration is rejected.
	w = doJSON(r, http.MethodPost, "/api/register", gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "hunter2",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong password.
	w = doJSON(r, http.MethodPost, "/api/login", gin.H{
		"email": "asha@example.com", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBuySellAndPortfolio(t *testing.T) {
	r := testRouter(t)
	userID := registerAndLogin(t, r)
	stockID := stockIDBySymbol(t, r, "TCS")

	w := doJSON(r, http.MethodPost, "/api/buy", gin.H{
		"user_id": userID, "stock_id": stockID, "quantity": 10, "price": 3000,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/portfolio/%d", userID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var valuation models.PortfolioValuation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &valuation))
	require.Len(t, valuation.Holdings, 1)
	assert.Equal(t, "TCS", valuation.Holdings[0].Symbol)
	assert.Equal(t, int64(10), valuation.Holdings[0].TotalQuantity)

	// Oversell is a client error and leaves the ledger alone.
	w = doJSON(r, http.MethodPost, "/api/sell", gin.H{
		"user_id": userID, "stock_id": stockID, "quantity": 11, "price": 3500,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient holdings")

	w = doJSON(r, http.MethodPost, "/api/sell", gin.H{
		"user_id": userID, "stock_id": stockID, "quantity": 10, "price": 3500,
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBuyValidation(t *testing.T) {
	r := testRouter(t)
	userID := registerAndLogin(t, r)
	stockID := stockIDBySymbol(t, r, "TCS")

	// Missing fields fail binding.
	w := doJSON(r, http.MethodPost, "/api/buy", gin.H{"user_id": userID}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown stock.
	w = doJSON(r, http.MethodPost, "/api/buy", gin.H{
		"user_id": userID, "stock_id": 9999, "quantity": 1, "price": 100,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Not enough cash.
	w = doJSON(r, http.MethodPost, "/api/buy", gin.H{
		"user_id": userID, "stock_id": stockID, "quantity": 1000000, "price": 3000,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient funds")
}

func TestTaxReportEndpoint(t *testing.T) {
	r := testRouter(t)
	userID := registerAndLogin(t, r)
	stockID := stockIDBySymbol(t, r, "INFY")

	w := doJSON(r, http.MethodPost, "/api/buy", gin.H{
		"user_id": userID, "stock_id": stockID, "quantity": 10, "price": 1000,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPost, "/api/sell", gin.H{
		"user_id": userID, "stock_id": stockID, "quantity": 4, "price": 1200,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/tax_report/%d", userID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report models.TaxReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Details, 1)
	assert.Equal(t, models.TermShort, report.Details[0].Term)
	assert.Equal(t, "800", report.Details[0].TotalGain.String())
	assert.Equal(t, "800", report.Summary.ShortTermGain.String())
}

func TestNewsAndRecommendations(t *testing.T) {
	r := testRouter(t)
	userID := registerAndLogin(t, r)

	w := doJSON(r, http.MethodGet, "/api/news", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.NewsItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.NotEmpty(t, items)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/recommendations/%d", userID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "empty")
}

func TestMarketRefresh(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodPost, "/api/market/refresh", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Updated int `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Updated)
}

func TestUserIDParamValidation(t *testing.T) {
	r := testRouter(t)
	w := doJSON(r, http.MethodGet, "/api/portfolio/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	r := testRouter(t)

	// No token.
	w := doJSON(r, http.MethodGet, "/api/admin/tables", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Bad credentials.
	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{
		"username": "admin", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Good credentials yield a token that opens the explorer.
	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{
		"username": "admin", "password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	headers := map[string]string{"Authorization": "Bearer " + login.Token}
	w = doJSON(r, http.MethodGet, "/api/admin/tables", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stocks")

	w = doJSON(r, http.MethodGet, "/api/admin/table/stocks", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "RELIANCE")

	w = doJSON(r, http.MethodGet, "/api/admin/table/nope", nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
