// internal/api/handlers/analytics_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/perfdash/backend-go/internal/domain"
	"github.com/perfdash/backend-go/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// parseWindow reads the primary window from start/end query params. Absent
// bounds are filled from the detected dataset range by the service.
func (h *AnalyticsHandler) parseWindow(c *gin.Context) domain.TimeWindow {
	return domain.TimeWindow{
		Start: strings.TrimSpace(c.Query("start")),
		End:   strings.TrimSpace(c.Query("end")),
	}
}

// parseComparison reads the comparison mode plus the custom bounds. Unknown
// modes fall back to none.
func (h *AnalyticsHandler) parseComparison(c *gin.Context) domain.ComparisonConfig {
	cfg := domain.ComparisonConfig{Mode: domain.CompareNone}

	switch strings.ToLower(strings.TrimSpace(c.Query("compare"))) {
	case "previous_year":
		cfg.Mode = domain.ComparePreviousYear
	case "preceding_period":
		cfg.Mode = domain.ComparePrecedingPeriod
	case "custom":
		cfg.Mode = domain.CompareCustomRange
		start := strings.TrimSpace(c.Query("compare_start"))
		end := strings.TrimSpace(c.Query("compare_end"))
		if start != "" && end != "" {
			cfg.Custom = &domain.TimeWindow{Start: start, End: end}
		}
	}

	return cfg
}

func (h *AnalyticsHandler) parseLimit(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	window := h.parseWindow(c)
	cfg := h.parseComparison(c)
	c.JSON(http.StatusOK, h.service.Summary(c.Request.Context(), window, cfg))
}

func (h *AnalyticsHandler) GetProducts(c *gin.Context) {
	window := h.parseWindow(c)
	cfg := h.parseComparison(c)
	products := h.service.Products(c.Request.Context(), window, cfg)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// GetTopProducts ranks by revenue by default; metric=profit switches to the
// signed-profit ranking over active products.
func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	window := h.parseWindow(c)
	limit := h.parseLimit(c, 10)

	var products []domain.ProductMetrics
	switch strings.ToLower(c.DefaultQuery("metric", "revenue")) {
	case "profit":
		products = h.service.TopByProfit(c.Request.Context(), window, limit)
	default:
		products = h.service.TopByRevenue(c.Request.Context(), window, limit)
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *AnalyticsHandler) GetBottomPerformers(c *gin.Context) {
	window := h.parseWindow(c)
	limit := h.parseLimit(c, 10)
	c.JSON(http.StatusOK, gin.H{
		"products": h.service.BottomPerformers(c.Request.Context(), window, limit),
	})
}

func (h *AnalyticsHandler) GetDecliningProducts(c *gin.Context) {
	window := h.parseWindow(c)
	limit := h.parseLimit(c, 10)
	c.JSON(http.StatusOK, gin.H{
		"products": h.service.DeclinedProducts(c.Request.Context(), window, limit),
	})
}

func (h *AnalyticsHandler) GetDistribution(c *gin.Context) {
	window := h.parseWindow(c)
	c.JSON(http.StatusOK, h.service.Distribution(c.Request.Context(), window))
}

func (h *AnalyticsHandler) GetConcentration(c *gin.Context) {
	window := h.parseWindow(c)
	c.JSON(http.StatusOK, gin.H{
		"concentration": h.service.Concentration(c.Request.Context(), window),
	})
}

func (h *AnalyticsHandler) GetSeries(c *gin.Context) {
	window := h.parseWindow(c)
	cfg := h.parseComparison(c)
	productID := strings.TrimSpace(c.Query("product_id"))
	points := h.service.Series(c.Request.Context(), window, cfg, productID)
	c.JSON(http.StatusOK, gin.H{
		"points":    points,
		"alignment": cfg.Alignment(),
	})
}

// GetComparisonWindow previews the window a comparison mode would resolve to.
func (h *AnalyticsHandler) GetComparisonWindow(c *gin.Context) {
	window := h.service.ResolveWindow(c.Request.Context(), h.parseWindow(c))
	cfg := h.parseComparison(c)

	comparison, ok := h.service.ComparisonWindow(window, cfg)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"window": window, "comparison": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": window, "comparison": comparison})
}
