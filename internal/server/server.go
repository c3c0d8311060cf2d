// Package server exposes the planting calculator and the stored garden
// calendar over HTTP.
package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plotwise/garden/internal/config"
	"github.com/plotwise/garden/internal/planting"
	"github.com/plotwise/garden/internal/service"
)

const (
	outcomeOK           = "ok"
	outcomeMissingFrost = "missing_frost"

	errFrostDatesRequired = "frost_dates_required"
)

type Server struct {
	db      *sql.DB
	cfg     config.ServerConfig
	logger  *zap.Logger
	metrics *Metrics
}

func New(db *sql.DB, cfg config.ServerConfig, logger *zap.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	return &Server{db: db, cfg: cfg, logger: logger, metrics: metrics}
}

// Handler builds the gin engine. Call gin.SetMode before this to pick the
// engine mode.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(httpsRedirect(s.cfg))

	r.GET(healthPath, s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	api := r.Group("/api")
	api.GET("/categories", s.categories)
	api.GET("/planting-dates", s.plantingDates)
	api.GET("/calendar", s.calendar)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type slotResponse struct {
	Type  planting.SlotType `json:"type"`
	Weeks *int              `json:"weeks,omitempty"`
	Label string            `json:"label"`
}

type categoryResponse struct {
	Name  string         `json:"name"`
	Slots []slotResponse `json:"slots"`
}

func (s *Server) categories(c *gin.Context) {
	out := make([]categoryResponse, 0)
	for _, name := range planting.Categories() {
		cat := categoryResponse{Name: name}
		for _, slot := range planting.ProfileFor(name) {
			cat.Slots = append(cat.Slots, slotResponse{Type: slot.Type, Weeks: slot.Weeks, Label: slot.Label})
		}
		out = append(out, cat)
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

type recommendationResponse struct {
	Type          planting.SlotType `json:"type"`
	Label         string            `json:"label"`
	Date          string            `json:"date"`
	IsRecommended bool              `json:"isRecommended"`
	Note          string            `json:"note,omitempty"`
}

func toRecommendationResponse(r planting.Recommendation) recommendationResponse {
	return recommendationResponse{
		Type:          r.Type,
		Label:         r.Label,
		Date:          r.Date.Format(planting.DateLayout),
		IsRecommended: r.IsRecommended,
		Note:          r.Note,
	}
}

// plantingDates falls back to the stored frost profile when lastFrost is not
// in the query at all.
func (s *Server) plantingDates(c *gin.Context) {
	plant := planting.Plant{
		Name:     strings.TrimSpace(c.Query("name")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	last, hasLast := c.GetQuery("lastFrost")
	first := c.Query("firstFrost")

	var recs []planting.Recommendation
	var ok bool
	if hasLast {
		recs, ok = planting.Calculate(plant, last, first)
	} else if s.db != nil {
		w, err := service.FrostDates(s.db)
		if err != nil && !errors.Is(err, service.ErrFrostDatesNotSet) {
			s.internalError(c, err)
			return
		}
		if err == nil {
			recs, ok = planting.CalculateWindow(plant, w)
		}
	}
	if !ok {
		s.metrics.observeCalculation(outcomeMissingFrost)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": errFrostDatesRequired})
		return
	}
	s.metrics.observeCalculation(outcomeOK)

	out := make([]recommendationResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecommendationResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"category":        planting.ResolveCategory(plant.Category),
		"recommendations": out,
	})
}

type calendarEntryResponse struct {
	Plant    string `json:"plant"`
	Category string `json:"category"`
	recommendationResponse
}

func (s *Server) calendar(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		return
	}
	onlyRecommended := false
	if raw := c.Query("recommended"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recommended flag"})
			return
		}
		onlyRecommended = v
	}
	if msg := checkRange(c.Query("from"), c.Query("to")); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	entries, err := service.BuildCalendar(s.db, service.CalendarOptions{
		Plant:           c.Query("plant"),
		Category:        c.Query("category"),
		From:            c.Query("from"),
		To:              c.Query("to"),
		OnlyRecommended: onlyRecommended,
	})
	switch {
	case errors.Is(err, service.ErrFrostDatesNotSet):
		s.metrics.observeCalculation(outcomeMissingFrost)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": errFrostDatesRequired})
		return
	case errors.Is(err, service.ErrPlantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.internalError(c, err)
		return
	}
	s.metrics.observeCalculation(outcomeOK)

	out := make([]calendarEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, calendarEntryResponse{
			Plant:                  e.Plant,
			Category:               e.Category,
			recommendationResponse: toRecommendationResponse(e.Recommendation),
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func checkRange(from, to string) string {
	var start, end time.Time
	if from != "" {
		d, err := time.Parse(planting.DateLayout, from)
		if err != nil {
			return "invalid from date (expected YYYY-MM-DD)"
		}
		start = d
	}
	if to != "" {
		d, err := time.Parse(planting.DateLayout, to)
		if err != nil {
			return "invalid to date (expected YYYY-MM-DD)"
		}
		end = d
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return "to date is before from date"
	}
	return ""
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
}
