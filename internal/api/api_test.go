package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eddge/learnengine/internal/catalog"
	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/llm"
	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/store"
)

const topic = "phy-kinematics"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	srv  *Server
	mock *llm.MockProvider
	logs *observer.ObservedLogs
}

func newTestServer(t *testing.T, withLLM bool) testServer {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromCore(core)
	ps := progress.NewService(catalog.Default(), store.NewMemoryPathRepo(), store.NewMemoryEventRepo(), log, progress.DefaultConfig())

	ts := testServer{logs: logs}
	var ds *doubts.Service
	if withLLM {
		ts.mock = llm.NewMockProvider()
		ds = doubts.NewService(ts.mock, doubts.DefaultConfig())
	}
	ts.srv = NewServer(ps, ds, log, DefaultConfig())
	return ts
}

func (ts testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decode[ErrorEnvelope](t, w)
	assert.Equal(t, code, env.Error.Code)
	assert.NotEmpty(t, env.Error.Message)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestListTopics(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/topics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct {
		Version string          `json:"version"`
		Topics  []catalog.Topic `json:"topics"`
	}](t, w)
	assert.Len(t, all.Topics, catalog.Default().Len())
	assert.NotEmpty(t, all.Version)

	w = ts.do(t, http.MethodGet, "/api/topics?subject=physics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	physics := decode[struct {
		Topics []catalog.Topic `json:"topics"`
	}](t, w)
	require.NotEmpty(t, physics.Topics)
	for _, tp := range physics.Topics {
		assert.Equal(t, "physics", tp.SubjectID)
	}
}

func TestGetPath(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/topics/"+topic+"/path", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[learnpath.Path](t, w)
	assert.Equal(t, topic, p.TopicID)
	assert.Equal(t, topic+"-n1", p.CurrentNodeID)
	require.Len(t, p.Nodes, 5)
	for _, n := range p.Nodes {
		assert.Empty(t, n.Frames, "frames are omitted by default")
	}

	w = ts.do(t, http.MethodGet, "/api/topics/"+topic+"/path?frames=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), topic+"-n1-f0")

	w = ts.do(t, http.MethodGet, "/api/topics/nope/path", nil)
	assertError(t, w, http.StatusNotFound, "topic_not_found")
}

func TestCompleteNode(t *testing.T) {
	ts := newTestServer(t, false)
	url := "/api/topics/" + topic + "/nodes/" + topic + "-n1/outcome"

	w := ts.do(t, http.MethodPost, url, gin.H{"correct": 9, "total": 10, "sessionId": "s-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[completeResponse](t, w)
	assert.Equal(t, learnpath.UpdateApplied, res.Status)
	assert.True(t, res.Outcome.Completed)
	assert.Equal(t, 90, res.Outcome.ConfidenceScore)
	assert.Equal(t, 20, res.Path.MasteryScore)
	assert.Equal(t, topic+"-n2", res.Path.CurrentNodeID)
	require.NotEmpty(t, res.Transitions)
	assert.Equal(t, learnpath.StatusCompleted, res.Transitions[0].To)

	w = ts.do(t, http.MethodPost, "/api/topics/"+topic+"/nodes/"+topic+"-n2/outcome",
		gin.H{"outcome": learnpath.Outcome{Completed: false}})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[completeResponse](t, w)
	assert.Equal(t, learnpath.UpdateNotCompleted, res.Status)
	assert.Empty(t, res.Transitions)

	w = ts.do(t, http.MethodGet, "/api/topics/"+topic+"/history?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[struct {
		Events []struct {
			NodeID    string                 `json:"nodeId"`
			SessionID string                 `json:"sessionId"`
			Status    learnpath.UpdateStatus `json:"status"`
		} `json:"events"`
	}](t, w)
	require.Len(t, hist.Events, 2)
	assert.Equal(t, learnpath.UpdateNotCompleted, hist.Events[0].Status, "newest first")
	assert.Equal(t, topic+"-n1", hist.Events[1].NodeID)
	assert.Equal(t, "s-1", hist.Events[1].SessionID)
}

func TestCompleteNode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   any
		status int
		code   string
	}{
		{"locked node", topic + "/nodes/" + topic + "-n3/outcome", gin.H{"correct": 1, "total": 1}, http.StatusConflict, "node_locked"},
		{"unknown node", topic + "/nodes/" + topic + "-n9/outcome", gin.H{"correct": 1, "total": 1}, http.StatusNotFound, "node_not_found"},
		{"unknown topic", "nope/nodes/nope-n1/outcome", gin.H{"correct": 1, "total": 1}, http.StatusNotFound, "topic_not_found"},
		{"no outcome", topic + "/nodes/" + topic + "-n1/outcome", gin.H{}, http.StatusUnprocessableEntity, "invalid_outcome"},
		{"both forms", topic + "/nodes/" + topic + "-n1/outcome", gin.H{"correct": 1, "total": 1, "outcome": gin.H{"completed": true}}, http.StatusUnprocessableEntity, "invalid_outcome"},
		{"correct above total", topic + "/nodes/" + topic + "-n1/outcome", gin.H{"correct": 3, "total": 2}, http.StatusUnprocessableEntity, "invalid_outcome"},
		{"bad confidence", topic + "/nodes/" + topic + "-n1/outcome", gin.H{"outcome": gin.H{"completed": true, "confidenceScore": 140}}, http.StatusUnprocessableEntity, "invalid_outcome"},
		{"malformed json", topic + "/nodes/" + topic + "-n1/outcome", "{", http.StatusBadRequest, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			w := ts.do(t, http.MethodPost, "/api/topics/"+tt.target, tt.body)
			assertError(t, w, tt.status, tt.code)
		})
	}
}

func TestResetPath(t *testing.T) {
	ts := newTestServer(t, false)
	url := "/api/topics/" + topic + "/nodes/" + topic + "-n1/outcome"
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, url, gin.H{"correct": 1, "total": 1}).Code)

	w := ts.do(t, http.MethodDelete, "/api/topics/"+topic+"/path", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/topics/"+topic+"/path", nil)
	p := decode[learnpath.Path](t, w)
	assert.Zero(t, p.MasteryScore)
	assert.Equal(t, topic+"-n1", p.CurrentNodeID)
}

func TestExportImport(t *testing.T) {
	ts := newTestServer(t, false)
	url := "/api/topics/" + topic + "/nodes/" + topic + "-n1/outcome"
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, url, gin.H{"correct": 1, "total": 1}).Code)

	w := ts.do(t, http.MethodGet, "/api/topics/"+topic+"/path/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), topic+".path.json")
	exported := w.Body.Bytes()

	other := newTestServer(t, false)
	w = other.do(t, http.MethodPost, "/api/paths/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[learnpath.Path](t, w)
	assert.Equal(t, 20, p.MasteryScore)

	w = other.do(t, http.MethodPost, "/api/paths/import", `{"format":"v2.0.0","path":{}}`)
	assertError(t, w, http.StatusUnprocessableEntity, "invalid_export")
}

func TestNodeFrames(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/nodes/"+topic+"-n1/frames", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		TopicID string            `json:"topicId"`
		NodeID  string            `json:"nodeId"`
		Frames  []json.RawMessage `json:"frames"`
	}](t, w)
	assert.Equal(t, topic, body.TopicID)
	assert.Equal(t, topic+"-n1", body.NodeID)
	assert.Len(t, body.Frames, 16)

	w = ts.do(t, http.MethodGet, "/api/nodes/n1/frames", nil)
	assertError(t, w, http.StatusBadRequest, "bad_request")

	w = ts.do(t, http.MethodGet, "/api/nodes/n1/frames?topic=nope", nil)
	assertError(t, w, http.StatusNotFound, "topic_not_found")
}

func TestOverview(t *testing.T) {
	ts := newTestServer(t, false)
	url := "/api/topics/" + topic + "/nodes/" + topic + "-n1/outcome"
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, url, gin.H{"correct": 1, "total": 1}).Code)

	w := ts.do(t, http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Topics []json.RawMessage `json:"topics"`
	}](t, w)
	assert.Len(t, body.Topics, catalog.Default().Len())
}

const doubtAnswer = `{
	"explanation": "Velocity has a direction, so its change does too.",
	"steps": ["Pick a positive direction", "Compare the signs"],
	"check_question": "Is a = -2 m/s^2 slowing the car down?"
}`

func TestAskDoubt(t *testing.T) {
	ts := newTestServer(t, true)
	ts.mock.Queue(llm.MockResponse{Content: json.RawMessage(doubtAnswer)})

	w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{
		"topicId":  topic,
		"nodeId":   topic + "-n1",
		"frameId":  topic + "-n1-f9",
		"question": "Why can acceleration be negative?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ans := decode[doubts.Answer](t, w)
	assert.Len(t, ans.Steps, 2)
	assert.NotEmpty(t, ans.CheckQuestion)

	require.Equal(t, 1, ts.mock.CallCount())
	assert.Contains(t, ts.mock.Calls[0].Messages[0].Content, "Doubt: Why can acceleration be negative?")
}

func TestAskDoubt_Errors(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		ts := newTestServer(t, false)
		w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{"topicId": topic, "nodeId": topic + "-n1", "question": "why?"})
		assertError(t, w, http.StatusServiceUnavailable, "llm_unavailable")
	})

	t.Run("empty question", func(t *testing.T) {
		ts := newTestServer(t, true)
		w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{"topicId": topic, "nodeId": topic + "-n1", "question": "   "})
		assertError(t, w, http.StatusUnprocessableEntity, "empty_question")
	})

	t.Run("unknown frame", func(t *testing.T) {
		ts := newTestServer(t, true)
		w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{"topicId": topic, "nodeId": topic + "-n1", "frameId": "x", "question": "why?"})
		assertError(t, w, http.StatusNotFound, "frame_not_found")
	})

	t.Run("provider down", func(t *testing.T) {
		ts := newTestServer(t, true)
		w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{"topicId": topic, "nodeId": topic + "-n1", "question": "why?"})
		assertError(t, w, http.StatusBadGateway, "llm_failed")
	})

	t.Run("rate limited", func(t *testing.T) {
		ts := newTestServer(t, true)
		ts.mock.Queue(llm.MockResponse{Err: &llm.ErrRateLimit{}})
		w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{"topicId": topic, "nodeId": topic + "-n1", "question": "why?"})
		assertError(t, w, http.StatusTooManyRequests, "llm_rate_limited")
	})

	t.Run("missing ids", func(t *testing.T) {
		ts := newTestServer(t, true)
		w := ts.do(t, http.MethodPost, "/api/doubts", gin.H{"question": "why?"})
		assertError(t, w, http.StatusBadRequest, "bad_request")
	})
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/topics", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/topics", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	ts := newTestServer(t, false)
	ts.do(t, http.MethodGet, "/api/topics/nope/path", nil)

	entries := ts.logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "nope", fields["topic"])
	assert.True(t, strings.HasPrefix(fields["path"].(string), "/api/topics/"))
}

func TestTopicFromNodeID(t *testing.T) {
	for in, want := range map[string]string{
		"phy-kinematics-n1":  "phy-kinematics",
		"math-calculus-n12":  "math-calculus",
		"n1":                 "",
		"phy-kinematics-n":   "",
		"phy-kinematics-nx1": "",
	} {
		assert.Equal(t, want, topicFromNodeID(in), in)
	}
}
