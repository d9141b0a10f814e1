package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
)

// maxImportBytes caps the body of an import request.
const maxImportBytes = 1 << 20

func (s *Server) healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) listTopics(c *gin.Context) {
	cat := s.progress.Catalog()
	topics := cat.All()
	if subject := c.Query("subject"); subject != "" {
		topics = cat.BySubject(subject)
	}
	respondOK(c, gin.H{"version": cat.Version(), "topics": topics})
}

func (s *Server) overview(c *gin.Context) {
	rows, err := s.progress.Overview(c.Request.Context())
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"topics": rows})
}

func (s *Server) getPath(c *gin.Context) {
	p, err := s.progress.Path(c.Request.Context(), c.Param("topicID"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	if c.Query("frames") != "true" {
		p = withoutFrames(p)
	}
	respondOK(c, p)
}

// withoutFrames drops frame payloads; the path map only needs node state.
func withoutFrames(p learnpath.Path) learnpath.Path {
	p = p.Clone()
	for i := range p.Nodes {
		p.Nodes[i].Frames = nil
	}
	return p
}

func (s *Server) resetPath(c *gin.Context) {
	if err := s.progress.Reset(c.Request.Context(), c.Param("topicID")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportPath(c *gin.Context) {
	topicID := c.Param("topicID")
	data, err := s.progress.Export(c.Request.Context(), topicID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.path.json"`, topicID))
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) importPath(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if len(data) > maxImportBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "too_large", errors.New("import document too large"))
		return
	}
	p, err := s.progress.Import(c.Request.Context(), data)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, withoutFrames(p))
}

func (s *Server) history(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	evs, err := s.progress.History(c.Request.Context(), c.Param("topicID"), limit)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	type historyEntry struct {
		Sequence     int64                  `json:"sequence"`
		Timestamp    time.Time              `json:"timestamp"`
		SessionID    string                 `json:"sessionId,omitempty"`
		NodeID       string                 `json:"nodeId"`
		Outcome      learnpath.Outcome      `json:"outcome"`
		Status       learnpath.UpdateStatus `json:"status"`
		MasteryScore int                    `json:"masteryScore"`
		Transitions  []learnpath.Transition `json:"transitions"`
	}
	out := make([]historyEntry, len(evs))
	for i, e := range evs {
		out[i] = historyEntry{
			Sequence:     e.Sequence,
			Timestamp:    e.Timestamp,
			SessionID:    e.SessionID,
			NodeID:       e.NodeID,
			Outcome:      e.Outcome,
			Status:       e.Status,
			MasteryScore: e.MasteryScore,
			Transitions:  e.Transitions,
		}
	}
	respondOK(c, gin.H{"events": out})
}

// outcomeRequest carries either an explicit outcome or raw answer counts
// scored with the service thresholds.
type outcomeRequest struct {
	SessionID string             `json:"sessionId"`
	Outcome   *learnpath.Outcome `json:"outcome"`
	Correct   *int               `json:"correct"`
	Total     *int               `json:"total"`
}

func (r outcomeRequest) resolve(cfg learnpath.ScoringConfig) (learnpath.Outcome, error) {
	switch {
	case r.Outcome != nil && (r.Correct != nil || r.Total != nil):
		return learnpath.Outcome{}, errors.New("send either outcome or correct/total, not both")
	case r.Outcome != nil:
		return *r.Outcome, nil
	case r.Correct != nil && r.Total != nil:
		if *r.Total < 0 || *r.Correct < 0 || *r.Correct > *r.Total {
			return learnpath.Outcome{}, fmt.Errorf("correct %d out of total %d", *r.Correct, *r.Total)
		}
		return learnpath.ScoreAnswers(*r.Correct, *r.Total, cfg), nil
	default:
		return learnpath.Outcome{}, errors.New("outcome or correct/total is required")
	}
}

type completeResponse struct {
	Status      learnpath.UpdateStatus `json:"status"`
	Outcome     learnpath.Outcome      `json:"outcome"`
	Transitions []learnpath.Transition `json:"transitions"`
	Path        learnpath.Path         `json:"path"`
}

func (s *Server) completeNode(c *gin.Context) {
	var req outcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	o, err := req.resolve(s.progress.Config().Scoring)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid_outcome", err)
		return
	}

	res, err := s.progress.Complete(c.Request.Context(), c.Param("topicID"), c.Param("nodeID"), o, req.SessionID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	transitions := res.Transitions
	if transitions == nil {
		transitions = []learnpath.Transition{}
	}
	respondOK(c, completeResponse{
		Status:      res.Status,
		Outcome:     o,
		Transitions: transitions,
		Path:        withoutFrames(res.Path),
	})
}

func (s *Server) nodeFrames(c *gin.Context) {
	nodeID := c.Param("nodeID")
	topicID := c.Query("topic")
	if topicID == "" {
		topicID = topicFromNodeID(nodeID)
	}
	if topicID == "" {
		respondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("cannot tell the topic of node %q; pass ?topic=", nodeID))
		return
	}

	n, frs, err := s.progress.Frames(c.Request.Context(), topicID, nodeID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	if frs == nil {
		frs = []frames.Frame{}
	}
	respondOK(c, gin.H{
		"topicId":   topicID,
		"nodeId":    n.ID,
		"nodeType":  n.Type,
		"status":    n.Status,
		"skillGoal": n.SkillGoal,
		"frames":    frs,
	})
}

type doubtRequest struct {
	TopicID  string            `json:"topicId" binding:"required"`
	NodeID   string            `json:"nodeId" binding:"required"`
	FrameID  string            `json:"frameId"`
	Question string            `json:"question"`
	Previous []doubts.Exchange `json:"previous"`
}

func (s *Server) askDoubt(c *gin.Context) {
	if s.doubts == nil {
		respondError(c, http.StatusServiceUnavailable, "llm_unavailable", errors.New("no LLM provider is configured"))
		return
	}
	var req doubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	ctx := c.Request.Context()
	topic, err := s.progress.Topic(req.TopicID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	node, frs, err := s.progress.Frames(ctx, req.TopicID, req.NodeID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	in := doubts.Input{Topic: topic, Node: node, Question: req.Question, Previous: req.Previous}
	if req.FrameID != "" {
		for i := range frs {
			if frs[i].ID == req.FrameID {
				in.Frame = &frs[i]
				break
			}
		}
		if in.Frame == nil {
			respondError(c, http.StatusNotFound, "frame_not_found", fmt.Errorf("frame %q not in node %s", req.FrameID, req.NodeID))
			return
		}
	}

	ans, err := s.doubts.Ask(ctx, in)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, ans)
}
