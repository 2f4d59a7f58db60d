// Package server exposes the trigger, read, and reset entrypoints over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/engine"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/trade"
)

// Server wires the HTTP API around the engine. The last computed signal
// lives in the caller-owned read model shared with the scheduler.
type Server struct {
	engine *engine.Engine
	trade  *trade.Manager
	latest *engine.Latest
	router *gin.Engine
}

// New creates the server and registers all routes.
func New(eng *engine.Engine, tm *trade.Manager, latest *engine.Latest) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: eng,
		trade:  tm,
		latest: latest,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery())

	s.router.GET("/healthz", s.health)
	api := s.router.Group("/api")
	{
		api.GET("/signal", s.getSignal)
		api.POST("/trigger", s.trigger)
		api.POST("/state/reset", s.resetState)
	}
	return s
}

// Router exposes the handler for http.Server and tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// getSignal returns the last computed signal.
func (s *Server) getSignal(c *gin.Context) {
	sig := s.latest.Get()
	if sig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no signal computed yet"})
		return
	}
	c.JSON(http.StatusOK, sig)
}

// triggerRequest is the manual dispatch payload. Action optionally overrides
// the computed action when force is set.
type triggerRequest struct {
	Force  bool   `json:"force"`
	Action string `json:"action"`
}

// trigger runs the full pipeline once.
func (s *Server) trigger(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
	}

	var override model.Action
	switch req.Action {
	case "":
		override = ""
	case string(model.ActionBuy), string(model.ActionSell), string(model.ActionNone):
		override = model.Action(req.Action)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be BUY, SELL, or NONE"})
		return
	}

	res, err := s.engine.Run(c.Request.Context(), engine.Options{Force: req.Force, Override: override})
	if err != nil {
		if errors.Is(err, collector.ErrUpstream) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "price feed unavailable", "details": err.Error()})
			return
		}
		// state store failure: the (suppressed) signal is still well-formed
		if res != nil && res.Signal != nil {
			s.latest.Set(res.Signal)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "state store failure, action suppressed",
				"signal": res.Signal,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.latest.Set(res.Signal)
	c.JSON(http.StatusOK, gin.H{
		"signal":   res.Signal,
		"notified": res.Notified,
		"delivery": res.Delivery,
	})
}

// resetState clears the cooldown record to its default.
func (s *Server) resetState(c *gin.Context) {
	if err := s.trade.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
