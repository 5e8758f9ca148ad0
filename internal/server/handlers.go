package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	agentcore "github.com/pathfinder-app/pathfinder/internal/agent/core"
	agenttele "github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
	"github.com/pathfinder-app/pathfinder/internal/search"
)

// Planner is the orchestrator surface the HTTP handlers need.
type Planner interface {
	Analyze(ctx context.Context, query agentcore.CareerQuery) (agentcore.CareerPlan, error)
	Ready() bool
	DetailMajor(ctx context.Context, majorID string) agentcore.Major
	DetailCareer(ctx context.Context, careerID string) agentcore.Career
	DetailFuture(ctx context.Context, futureID string) agentcore.FuturePath
	GetStatus(queryID string) (agentcore.AnalysisStatus, error)
	CancelProcessing(queryID string) error
	GetPerformanceMetrics() map[string]interface{}
}

// Handler serves the career planning API.
type Handler struct {
	Orch      Planner
	Index     *search.Index
	Telemetry *agenttele.Telemetry
	Logger    *log.Logger
}

// Register attaches all routes to the given group.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/health", h.health)
	g.POST("/analyze", h.analyze)
	g.GET("/detail/major/:id", h.majorDetail)
	g.GET("/detail/career/:id", h.careerDetail)
	g.GET("/detail/future/:id", h.futureDetail)
	g.GET("/status/:id", h.status)
	g.POST("/cancel/:id", h.cancel)
	g.GET("/jobs/search", h.jobSearch)
	g.GET("/metrics/performance", h.performance)
}

func (h *Handler) health(c echo.Context) error {
	provider := "none"
	if h.Orch.Ready() {
		provider = "configured"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"orchestrator_ready": h.Orch.Ready(),
		"llm_provider":       provider,
	})
}

type analyzeRequest struct {
	Query string `json:"query"`
}

func (h *Handler) analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing 'query' field in request")
	}

	plan, err := h.Orch.Analyze(c.Request().Context(), agentcore.CareerQuery{Query: req.Query})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) majorDetail(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing major id")
	}
	return c.JSON(http.StatusOK, h.Orch.DetailMajor(c.Request().Context(), id))
}

func (h *Handler) careerDetail(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing career id")
	}
	return c.JSON(http.StatusOK, h.Orch.DetailCareer(c.Request().Context(), id))
}

func (h *Handler) futureDetail(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing future id")
	}
	return c.JSON(http.StatusOK, h.Orch.DetailFuture(c.Request().Context(), id))
}

func (h *Handler) status(c echo.Context) error {
	st, err := h.Orch.GetStatus(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) cancel(c echo.Context) error {
	if err := h.Orch.CancelProcessing(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) jobSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing 'q' parameter")
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "'limit' must be an integer between 1 and 100")
		}
		limit = parsed
	}

	hits, err := h.Index.Search(q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query": q,
		"hits":  hits,
	})
}

func (h *Handler) performance(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Orch.GetPerformanceMetrics())
}
