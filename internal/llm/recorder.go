package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/store"
)

// Recorder persists one row per LLM call. store.EventRepo satisfies it.
type Recorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// RecordingProvider records every call, successful or not, and logs
// failures. A recorder error is logged and never returned.
type RecordingProvider struct {
	inner    Provider
	provider string
	rec      Recorder
	log      *logger.Logger
}

// WithRecording wraps p. name is the backend name stored with each row.
func WithRecording(p Provider, name string, rec Recorder, log *logger.Logger) *RecordingProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordingProvider{inner: p, provider: name, rec: rec, log: log.With("component", "llm", "provider", name)}
}

func (r *RecordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	resp, err := r.inner.Generate(ctx, req)
	elapsed := time.Since(started)

	purpose := PurposeFrom(ctx)
	data := store.LLMRequestEventData{
		Provider:    r.provider,
		Model:       r.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		r.log.Warn("llm call failed", "purpose", purpose, "model", data.Model, "latency", elapsed, "error", err)
	} else {
		r.log.Debug("llm call", "purpose", purpose, "model", data.Model, "latency", elapsed,
			"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}

	if r.rec != nil {
		// Record even when the caller's context is already done.
		if rerr := r.rec.AppendLLMRequest(context.WithoutCancel(ctx), data); rerr != nil {
			r.log.Warn("recording llm call failed", "error", rerr)
		}
	}
	return resp, err
}

// transcript renders a request as the plain text shown by `eddge llm view`.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
