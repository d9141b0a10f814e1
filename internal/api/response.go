package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/llm"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/store"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// errorMapping is checked in order; the first match wins.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{progress.ErrTopicNotFound, http.StatusNotFound, "topic_not_found"},
	{progress.ErrNodeNotFound, http.StatusNotFound, "node_not_found"},
	{progress.ErrNodeLocked, http.StatusConflict, "node_locked"},
	{store.ErrVersionConflict, http.StatusConflict, "version_conflict"},
	{progress.ErrInvalidOutcome, http.StatusUnprocessableEntity, "invalid_outcome"},
	{progress.ErrBadExport, http.StatusUnprocessableEntity, "invalid_export"},
	{doubts.ErrEmptyQuestion, http.StatusUnprocessableEntity, "empty_question"},
}

// respondServiceError maps domain errors to statuses. Anything unmapped is
// logged and reported as a 500 without its message.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			respondError(c, m.status, m.code, err)
			return
		}
	}

	var (
		rl      *llm.ErrRateLimit
		unavail *llm.ErrProviderUnavailable
		invalid *llm.ErrInvalidResponse
		cut     *llm.ErrMaxTokensExceeded
		badReq  *llm.ErrRequest
	)
	switch {
	case errors.As(err, &rl):
		respondError(c, http.StatusTooManyRequests, "llm_rate_limited", err)
		return
	case errors.As(err, &unavail), errors.As(err, &invalid), errors.As(err, &cut), errors.As(err, &badReq):
		respondError(c, http.StatusBadGateway, "llm_failed", err)
		return
	}

	s.log.Error("request failed", "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
}
