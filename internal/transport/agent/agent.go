package agent

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"
)

const headerAdminSecret = "X-Admin-Secret"

// Register mounts the /agents routes. An empty adminSecret disables deletion.
func Register(rg *gin.RouterGroup, svc *directorysvc.Service, adminSecret string) {
	rg.GET("", listAgents(svc))
	rg.POST("", registerAgent(svc))
	rg.POST("/import", importAgent(svc))
	rg.GET("/:name", getAgent(svc))
	rg.DELETE("/:name", deleteAgent(svc, adminSecret))
}

// RegisterStats mounts /stats and /highlights.
func RegisterStats(rg *gin.RouterGroup, svc *directorysvc.Service) {
	rg.GET("/stats", stats(svc))
	rg.GET("/highlights", highlights(svc))
}

func listAgents(svc *directorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := domainagent.ParseQuery(c.Request.URL.Query())

		listings, err := svc.List(c.Request.Context(), q)
		if err != nil {
			internalError(c, "list agents", err)
			return
		}
		if listings == nil {
			listings = []domainagent.Listing{}
		}
		c.JSON(http.StatusOK, listings)
	}
}

func registerAgent(svc *directorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domainagent.Registration
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}

		l, _, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			writeError(c, "register agent", err)
			return
		}
		c.JSON(http.StatusCreated, l)
	}
}

func importAgent(svc *directorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directorysvc.ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}

		l, _, err := svc.Import(c.Request.Context(), req)
		if err != nil {
			writeError(c, "import agent", err)
			return
		}
		c.JSON(http.StatusCreated, l)
	}
}

func getAgent(svc *directorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := svc.Get(c.Request.Context(), c.Param("name"))
		if err != nil {
			writeError(c, "get agent", err)
			return
		}
		c.JSON(http.StatusOK, l.Detail())
	}
}

func deleteAgent(svc *directorysvc.Service, adminSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(headerAdminSecret)
		if adminSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(adminSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := svc.Delete(c.Request.Context(), c.Param("name")); err != nil {
			writeError(c, "delete agent", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func stats(svc *directorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.Stats(c.Request.Context())
		if err != nil {
			internalError(c, "stats", err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func highlights(svc *directorysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, err := svc.Highlights(c.Request.Context())
		if err != nil {
			internalError(c, "highlights", err)
			return
		}
		c.JSON(http.StatusOK, h)
	}
}

// writeError maps directory errors onto HTTP statuses.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domainagent.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domainagent.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": domainagent.ErrMissingFields.Error()})
	case errors.Is(err, domainagent.ErrInvalidField), errors.Is(err, directorysvc.ErrInvalidCard):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, directorysvc.ErrFetchCard):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		internalError(c, op, err)
	}
}

func internalError(c *gin.Context, op string, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
