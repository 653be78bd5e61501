package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/feeds"
	"github.com/DrSkyle/aquagrid/pkg/network"
	"github.com/DrSkyle/aquagrid/pkg/version"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SimulateRequest is the body of POST /v1/simulate.
type SimulateRequest struct {
	SegmentID string   `json:"segment_id" binding:"required"`
	Seed      *uint64  `json:"seed"`
	Isolate   []string `json:"isolate" binding:"omitempty,dive,required"`
}

// NetworkResponse is returned by GET /v1/network.
type NetworkResponse struct {
	Seed    uint64          `json:"seed"`
	Summary network.Summary `json:"summary"`
	Network network.Network `json:"network"`
}

// SegmentResponse is returned by GET /v1/segments/:id.
type SegmentResponse struct {
	Segment  network.Segment `json:"segment"`
	Critical bool            `json:"critical"`
}

type seedQuery struct {
	Seed *uint64 `form:"seed"`
}

type sweepQuery struct {
	Seed *uint64 `form:"seed"`
	Top  *int    `form:"top" binding:"omitempty,gte=0"`
}

func handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "aquagrid is running")
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Current})
}

func (s *Server) seed(p *uint64) uint64 {
	if p != nil {
		return *p
	}
	return s.engine.Config().Topology.Seed
}

func (s *Server) handleNetwork(c *gin.Context) {
	var q seedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	seed := s.seed(q.Seed)
	net, err := s.baselines.Get(c.Request.Context(), seed)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NetworkResponse{Seed: seed, Summary: network.Summarize(net), Network: net})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	net, err := s.baselines.Get(c.Request.Context(), s.seed(req.Seed))
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := s.engine.Simulate(c.Request.Context(), net, req.SegmentID, req.Isolate...)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.engine.ExportOutcome(c.Request.Context(), out); err != nil {
		slog.Warn("Outcome export failed", "run_id", out.RunID, "error", err)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSweep(c *gin.Context) {
	var q sweepQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	top := s.engine.Config().Sweep.Top
	if q.Top != nil {
		top = *q.Top
	}

	net, err := s.baselines.Get(c.Request.Context(), s.seed(q.Seed))
	if err != nil {
		writeError(c, err)
		return
	}

	entries, err := s.engine.Sweep(c.Request.Context(), net, top)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleSegment(c *gin.Context) {
	var q seedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	net, err := s.baselines.Get(c.Request.Context(), s.seed(q.Seed))
	if err != nil {
		writeError(c, err)
		return
	}

	id := c.Param("id")
	i, ok := network.NewIndex(net).Segment(id)
	if !ok {
		writeError(c, fmt.Errorf("segment %q: %w", id, network.ErrNotFound))
		return
	}

	critical := false
	for _, b := range network.Bridges(net) {
		if b == id {
			critical = true
			break
		}
	}
	c.JSON(http.StatusOK, SegmentResponse{Segment: net.Segments[i], Critical: critical})
}

func (s *Server) handleFeed(pick func(*feeds.Feeds) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, pick(s.feeds))
	}
}

func badRequest(c *gin.Context, err error) {
	msg := "Invalid request"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		msg = "Invalid request: " + strings.Join(fields, ", ")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "INVALID_REQUEST"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, network.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, network.ErrInvalidTopology):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TOPOLOGY"})
	case errors.Is(err, engine.ErrPanic):
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"})
	default:
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
	}
}
