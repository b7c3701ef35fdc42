package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JoseCortezz25/craft-canvas/internal/llm"
)

// Response messages.
const (
	StatusMessage      = `Generate API endpoint is active. Use POST with a { "prompt": "your prompt" } body.`
	ConfigErrorMessage = "Server configuration error: API key missing."
)

type generateRequest struct {
	Prompt *string `json:"prompt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "ok"
	if s.configErr != nil {
		status = "misconfigured"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": StatusMessage})
}

func (s *Server) handleGenerate(c *gin.Context) {
	if s.configErr != nil {
		s.log.Error("generate rejected: configuration error", "error", s.configErr, "request_id", c.GetString(ctxRequestID))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: ConfigErrorMessage})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.Prompt == nil || strings.TrimSpace(*req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: `Invalid request body: "prompt" is required.`})
		return
	}

	res, err := s.gen.Generate(c.Request.Context(), *req.Prompt)
	if err != nil {
		var cfgErr *llm.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.log.Error("generate failed: configuration error", "error", err, "request_id", c.GetString(ctxRequestID))
			c.JSON(http.StatusInternalServerError, errorResponse{Error: ConfigErrorMessage})
			return
		}
		s.log.Error("generate failed", "error", err, "request_id", c.GetString(ctxRequestID))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Server error: " + err.Error()})
		return
	}

	c.Header("X-Run-Id", res.RunID)
	c.JSON(http.StatusOK, res.Artifacts)
}
