package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
	"github.com/finexus/tradedesk/internal/service"
)

// Services bundles everything the router exposes.
type Services struct {
	Accounts        *service.AccountService
	Trading         *service.TradingService
	Portfolio       *service.PortfolioService
	Market          *service.MarketService
	News            *service.NewsService
	Recommendations *service.RecommendationService
	Admin           repository.AdminRepository
}

// Router wires all handlers.
func Router(svcs Services, admin *AdminAuth, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logMiddleware(logger))

	api := r.Group("/api")
	api.POST("/register", func(c *gin.Context) { handleRegister(c, svcs.Accounts) })
	api.POST("/login", func(c *gin.Context) { handleLogin(c, svcs.Accounts) })
	api.GET("/user/:userId", func(c *gin.Context) { handleGetUser(c, svcs.Accounts) })

	api.GET("/transactions/:userId", func(c *gin.Context) { handleTransactions(c, svcs.Portfolio) })
	api.GET("/portfolio/:userId", func(c *gin.Context) { handlePortfolio(c, svcs.Portfolio) })
	api.GET("/tax_report/:userId", func(c *gin.Context) { handleTaxReport(c, svcs.Portfolio) })

	api.POST("/buy", func(c *gin.Context) { handleTrade(c, svcs.Trading.ExecuteBuy) })
	api.POST("/sell", func(c *gin.Context) { handleTrade(c, svcs.Trading.ExecuteSell) })

	api.GET("/stocks", func(c *gin.Context) { handleStocks(c, svcs.Market) })
	api.POST("/market/refresh", func(c *gin.Context) { handleMarketRefresh(c, svcs.Market) })
	api.GET("/news", func(c *gin.Context) { handleNews(c, svcs.News) })
	api.GET("/recommendations/:userId", func(c *gin.Context) { handleRecommendations(c, svcs.Recommendations) })

	registerAdminRoutes(api, admin, svcs)
	return r
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tradeRequest struct {
	UserID   int64           `json:"user_id" binding:"required"`
	StockID  int64           `json:"stock_id" binding:"required"`
	Quantity int64           `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

func handleRegister(c *gin.Context, svc *service.AccountService) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	user, err := svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User registered",
		"user_id": user.ID,
	})
}

func handleLogin(c *gin.Context, svc *service.AccountService) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	user, err := svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"user_id":      user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"cash_balance": user.CashBalance,
	})
}

func handleGetUser(c *gin.Context, svc *service.AccountService) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	user, err := svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":      user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"cash_balance": user.CashBalance,
	})
}

func handleTransactions(c *gin.Context, svc *service.PortfolioService) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	txns, err := svc.GetTransactions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func handlePortfolio(c *gin.Context, svc *service.PortfolioService) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	valuation, err := svc.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuation)
}

func handleTaxReport(c *gin.Context, svc *service.PortfolioService) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	report, err := svc.GetTaxReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func handleTrade(c *gin.Context, execute func(ctx context.Context, in service.TradeInput) (*models.Transaction, error)) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	txn, err := execute(c.Request.Context(), service.TradeInput{
		UserID:   req.UserID,
		StockID:  req.StockID,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Trade executed",
		"txn_id":  txn.ID,
	})
}

func handleStocks(c *gin.Context, svc *service.MarketService) {
	stocks, err := svc.ListStocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func handleMarketRefresh(c *gin.Context, svc *service.MarketService) {
	updated, err := svc.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "updated": updated})
}

func handleNews(c *gin.Context, svc *service.NewsService) {
	c.JSON(http.StatusOK, svc.Latest())
}

func handleRecommendations(c *gin.Context, svc *service.RecommendationService) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	rec, err := svc.Analyze(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "userId must be an integer"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var insufficientHoldings *ledger.InsufficientHoldingsError
	var invalidTxn *ledger.InvalidTransactionError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnknownStock),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrDuplicateEmail),
		errors.As(err, &insufficientHoldings),
		errors.As(err, &invalidTxn):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"status": "error", "message": err.Error()})
}

func logMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"status":   c.Writer.Status(),
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		}).Info("request completed")
	}
}
