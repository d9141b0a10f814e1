package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/store"
)

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"explanation":"x","steps":[]}`),
		Usage:   newUsage(3, 4),
	})
	mock.Queue(MockResponse{Content: json.RawMessage(`{"steps":[]}`)})

	req := UserPrompt("sys", "first")
	req.Schema = stepSchema()
	resp, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Usage.TotalTokens != 7 || resp.Model != "mock" {
		t.Errorf("resp = %+v", resp)
	}

	var inv *ErrInvalidResponse
	if _, err := mock.Generate(context.Background(), req); !errors.As(err, &inv) {
		t.Errorf("schema should be enforced, got %v", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), req); !errors.As(err, &unavail) {
		t.Errorf("empty queue error = %v", err)
	}
	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Errorf("calls = %+v", mock.Calls)
	}
}

func TestResponse_Decode(t *testing.T) {
	var v struct{ Explanation string }
	r := &Response{Content: json.RawMessage(`{"explanation":"hi"}`)}
	if err := r.Decode(&v); err != nil || v.Explanation != "hi" {
		t.Fatalf("Decode = %v, %+v", err, v)
	}
	var inv *ErrInvalidResponse
	if err := (&Response{Content: json.RawMessage(`{`)}).Decode(&v); !errors.As(err, &inv) {
		t.Errorf("bad content error = %v", err)
	}
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Errorf("default purpose = %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeDoubt)); p != PurposeDoubt {
		t.Errorf("purpose = %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, "EDDGE_ANTHROPIC_API_KEY"},
		{"anthropic", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, ""},
		{"openai without key", Config{Provider: ProviderOpenAI}, "EDDGE_OPENAI_API_KEY"},
		{"gemini without key", Config{Provider: ProviderGemini}, "EDDGE_GEMINI_API_KEY"},
		{"openrouter", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k"}}, ""},
		{"mock", Config{Provider: ProviderMock}, ""},
		{"unknown", Config{Provider: "llama"}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func clearKeys(t *testing.T) {
	for _, k := range []string{
		"EDDGE_LLM_PROVIDER", "EDDGE_ANTHROPIC_API_KEY", "EDDGE_OPENAI_API_KEY",
		"EDDGE_GEMINI_API_KEY", "EDDGE_OPENROUTER_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearKeys(t)
	t.Setenv("EDDGE_LLM_PROVIDER", "openrouter")
	t.Setenv("EDDGE_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("EDDGE_OPENROUTER_MODEL", "meta-llama/llama-3.1-8b-instruct")
	t.Setenv("EDDGE_LLM_TIMEOUT", "5s")
	t.Setenv("EDDGE_LLM_MAX_ATTEMPTS", "nope")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenRouter || cfg.OpenRouter.APIKey != "sk-or" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.OpenRouter.Model != "meta-llama/llama-3.1-8b-instruct" {
		t.Errorf("model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts != DefaultConfig().Retry.MaxAttempts {
		t.Errorf("malformed attempts should keep default, got %d", cfg.Retry.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestDiscoverAndResolve(t *testing.T) {
	clearKeys(t)
	if _, ok := Resolve(); ok {
		t.Fatal("nothing configured")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "o")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "o" {
		t.Errorf("discover = %+v, %v", cfg, ok)
	}

	t.Setenv("EDDGE_ANTHROPIC_API_KEY", "explicit")
	cfg, ok = Resolve()
	if !ok || cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "explicit" {
		t.Errorf("explicit config should win, got %+v", cfg)
	}
}

type memRecorder struct {
	rows []store.LLMRequestEventData
	err  error
}

func (m *memRecorder) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	m.rows = append(m.rows, d)
	return m.err
}

func TestRecordingProvider(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &memRecorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: newUsage(10, 5)},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithRecording(mock, "mock", rec, logger.NewFromCore(core))
	ctx := WithPurpose(context.Background(), PurposeDoubt)

	if _, err := p.Generate(ctx, UserPrompt("be brief", "why?")); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(ctx, UserPrompt("", "again")); err == nil {
		t.Fatal("want error")
	}

	if len(rec.rows) != 2 {
		t.Fatalf("rows = %d", len(rec.rows))
	}
	first, second := rec.rows[0], rec.rows[1]
	if !first.Success || first.Purpose != "doubt" || first.InputTokens != 10 || first.ResponseBody != `{"a":1}` {
		t.Errorf("first = %+v", first)
	}
	if !strings.Contains(first.RequestBody, "[system]\nbe brief") || !strings.Contains(first.RequestBody, "[user]\nwhy?") {
		t.Errorf("transcript = %q", first.RequestBody)
	}
	if second.Success || !strings.Contains(second.ErrorMessage, "rate limited") || second.Model != "mock" {
		t.Errorf("second = %+v", second)
	}
	if logs.FilterMessage("llm call failed").Len() != 1 {
		t.Error("failure should be logged")
	}
}

func TestRecordingProvider_RecorderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &memRecorder{err: errors.New("disk full")}
	p := WithRecording(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), "mock", rec, logger.NewFromCore(core))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("recorder failure leaked: %v", err)
	}
	if logs.FilterMessage("recording llm call failed").Len() != 1 {
		t.Error("recorder failure should be logged")
	}
}

type slowProvider struct{}

func (slowProvider) ModelID() string { return "slow" }

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Error("zero timeout should not wrap")
	}
	_, err := WithTimeout(slowProvider{}, 10*time.Millisecond).Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Error("invalid config should fail")
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, &memRecorder{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	cfg = DefaultConfig()
	cfg.OpenAI.APIKey = "k"
	cfg.Provider = ProviderOpenAI
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestPriceOf(t *testing.T) {
	p, ok := PriceOf("gpt-4o-mini")
	if !ok {
		t.Fatal("gpt-4o-mini should be priced")
	}
	if got := p.Cost(1_000_000, 1_000_000); got < 0.749 || got > 0.751 {
		t.Errorf("cost = %f", got)
	}
	if _, ok := PriceOf("google/gemini-2.5-flash"); !ok {
		t.Error("vendor prefix should be stripped")
	}
	if _, ok := PriceOf("my-local-model"); ok {
		t.Error("unknown model priced")
	}
}
