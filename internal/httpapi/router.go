package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/city-events/internal/logger"
	"github.com/pfrederiksen/city-events/internal/metrics"
	"github.com/pfrederiksen/city-events/internal/pipeline"
	"github.com/pfrederiksen/city-events/internal/source"
	"github.com/pfrederiksen/city-events/internal/storage"
)

// Deps are the collaborators of the REST layer
type Deps struct {
	Store   storage.Store
	Engine  *pipeline.Engine
	Catalog source.Catalog
	Metrics *metrics.Recorder
	Logger  *logger.Logger

	// Location is the reference timezone for scrapes and plain query dates
	Location    *time.Location
	BasePath    string
	JWTSecret   string
	CORSOrigins []string

	// Now defaults to time.Now
	Now func() time.Time
}

type handlers struct {
	Deps
}

func (h *handlers) now() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return now().In(h.Location)
}

// NewRouter builds the gin engine serving the REST API
func NewRouter(d Deps) *gin.Engine {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = logger.Default()
	}
	h := &handlers{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(d.Logger))
	r.Use(CORSMiddleware(d.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group(normalizeBasePath(d.BasePath))
	events := api.Group("/events")
	{
		events.GET("", h.listEvents)
		events.POST("/lead", h.createLead)
		events.GET("/:id", h.getEvent)
		events.GET("/:id/calendar.ics", h.calendar)
	}

	operator := events.Group("")
	operator.Use(AuthMiddleware(d.JWTSecret))
	{
		operator.GET("/leads", h.listLeads)
		operator.POST("/import/:id", h.importEvent)
		operator.POST("/scrape", h.scrape)
	}

	return r
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
