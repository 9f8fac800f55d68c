package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/city-events/internal/calendar"
	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/filter"
	"github.com/pfrederiksen/city-events/internal/storage"
)

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"message": msg})
}

func abortJSON(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"message": msg})
}

// storeError maps store failures to responses
func storeError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(c, http.StatusNotFound, notFound)
		return
	}
	_ = c.Error(err)
	jsonError(c, http.StatusInternalServerError, err.Error())
}

func (h *handlers) listEvents(c *gin.Context) {
	f, err := filter.Parse(c.Request.URL.Query(), h.Location)
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.Store.List(c.Request.Context(), f)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *handlers) getEvent(c *gin.Context) {
	evt, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Event not found")
		return
	}
	c.JSON(http.StatusOK, evt)
}

func (h *handlers) calendar(c *gin.Context) {
	evt, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Event not found")
		return
	}

	ics, err := calendar.GenerateICS(evt, h.now())
	if err != nil {
		if errors.Is(err, calendar.ErrNoDate) {
			jsonError(c, http.StatusUnprocessableEntity, "Event has no date")
			return
		}
		_ = c.Error(err)
		jsonError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, evt.ID))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

type leadRequest struct {
	Email   string `json:"email" binding:"required"`
	Consent *bool  `json:"consent" binding:"required"`
	EventID string `json:"eventId" binding:"required"`
}

func (h *handlers) createLead(c *gin.Context) {
	var body leadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Email) == "" {
		jsonError(c, http.StatusBadRequest, "invalid request: email is required")
		return
	}

	ctx := c.Request.Context()
	evt, err := h.Store.Get(ctx, body.EventID)
	if err != nil {
		storeError(c, err, "Event not found")
		return
	}

	lead := event.NewLead(body.Email, *body.Consent, evt, h.now())
	if err := h.Store.CreateLead(ctx, lead); err != nil {
		storeError(c, err, "")
		return
	}
	h.Metrics.LeadCaptured()

	c.JSON(http.StatusCreated, gin.H{"redirectUrl": evt.OriginalURL})
}

func (h *handlers) listLeads(c *gin.Context) {
	leads, err := h.Store.ListLeads(c.Request.Context())
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, leads)
}

type importRequest struct {
	Notes  string `json:"notes"`
	UserID string `json:"userId"`
}

func (h *handlers) importEvent(c *gin.Context) {
	var body importRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	by := strings.TrimSpace(body.UserID)
	if by == "" {
		by = operatorFromContext(c)
	}

	evt, err := h.Store.Import(c.Request.Context(), c.Param("id"), by, body.Notes, h.now())
	if err != nil {
		storeError(c, err, "Event not found")
		return
	}
	c.JSON(http.StatusOK, evt)
}

func (h *handlers) scrape(c *gin.Context) {
	if h.Engine == nil {
		jsonError(c, http.StatusServiceUnavailable, "scraping is not configured")
		return
	}

	report := h.Engine.Run(c.Request.Context(), h.Catalog, h.now())
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Scraped %d events successfully", report.Created),
		"report":  report,
	})
}
