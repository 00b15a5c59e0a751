package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finexus/tradedesk/internal/auth"
)

// AdminAuth gates the database explorer endpoints behind configured
// credentials and short-lived session tokens.
type AdminAuth struct {
	Username string
	Password string
	Tokens   *auth.TokenStore
}

// Enabled reports whether admin access is configured at all. With no
// password set the admin endpoints reject everything.
func (a *AdminAuth) Enabled() bool {
	return a != nil && a.Password != ""
}

type adminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func registerAdminRoutes(api *gin.RouterGroup, admin *AdminAuth, svcs Services) {
	api.POST("/admin/login", func(c *gin.Context) { handleAdminLogin(c, admin) })

	gated := api.Group("/admin", adminMiddleware(admin))
	gated.GET("/tables", func(c *gin.Context) { handleAdminTables(c, svcs) })
	gated.GET("/table/:name", func(c *gin.Context) { handleAdminTable(c, svcs) })
}

func handleAdminLogin(c *gin.Context, admin *AdminAuth) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if !admin.Enabled() || req.Username != admin.Username || req.Password != admin.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid admin credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "token": admin.Tokens.Issue()})
}

func adminMiddleware(admin *AdminAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !admin.Enabled() || !admin.Tokens.Valid(token) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func handleAdminTables(c *gin.Context, svcs Services) {
	tables, err := svcs.Admin.ListTables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func handleAdminTable(c *gin.Context, svcs Services) {
	rows, err := svcs.Admin.TableRows(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
