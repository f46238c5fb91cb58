package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"surveyassistant/internal/cache"
	"surveyassistant/internal/config"
	"surveyassistant/internal/model"
	"surveyassistant/internal/normalize"
	"surveyassistant/internal/pkg/logger"
	"surveyassistant/internal/repository"
	"surveyassistant/internal/survey"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const logModule = "session"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrPathNotFound    = errors.New("path not found in document")
)

// liveSession owns one engine. The engine is not reentrant, so every
// access goes through mu.
type liveSession struct {
	mu        sync.Mutex
	id        string
	engine    *survey.Engine
	startedAt time.Time
	updatedAt time.Time
	persisted bool
}

// SessionService keeps live survey engines in memory and publishes
// their progress and finished documents
type SessionService struct {
	sessions    *lru.Cache[string, *liveSession]
	results     repository.ResultRepo
	progress    cache.ProgressCache
	authSvc     *AuthService
	broadcaster Broadcaster
	log         logger.ILogger
	catalog     []model.Question
	persist     bool
	now         func() time.Time
}

// NewSessionService creates a new session service. results and progress
// may be nil, in which case finished documents and snapshots only live
// in memory.
func NewSessionService(
	cfg *config.Config,
	results repository.ResultRepo,
	progress cache.ProgressCache,
	authSvc *AuthService,
	log logger.ILogger,
) (*SessionService, error) {
	if log == nil {
		log = logger.NewNop()
	}
	s := &SessionService{
		results:  results,
		progress: progress,
		authSvc:  authSvc,
		log:      log,
		catalog:  survey.DefaultCatalog(),
		persist:  cfg.PersistResults && results != nil,
		now:      time.Now,
	}

	// Runs on capacity eviction and on Close alike.
	sessions, err := lru.NewWithEvict[string, *liveSession](cfg.SessionCapacity, func(id string, _ *liveSession) {
		s.log.Info(logModule, "live session released", map[string]interface{}{"session_id": id})
		if s.broadcaster != nil {
			s.broadcaster.DisconnectSession(id)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	s.sessions = sessions
	return s, nil
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a new session and returns its first prompt along with a
// respondent token scoped to it.
func (s *SessionService) Start(ctx context.Context) (*model.StartSessionResponse, error) {
	id := "s_" + uuid.New().String()[:8]
	token, err := s.authSvc.GenerateRespondentToken(id)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	ls := &liveSession{
		id:        id,
		engine:    survey.NewEngine(s.catalog, survey.WithLogger(s.log)),
		startedAt: now,
		updatedAt: now,
	}
	s.sessions.Add(id, ls)
	s.log.Info(logModule, "session started", map[string]interface{}{"session_id": id})

	ls.mu.Lock()
	resp := &model.StartSessionResponse{
		SessionID: id,
		Token:     token,
		Prompt:    ls.engine.Prompt(),
		Progress:  ls.engine.Progress(),
	}
	s.storeProgress(ctx, ls)
	ls.mu.Unlock()
	return resp, nil
}

// Submit feeds one answer to the session's engine. A finished session
// keeps returning its final document.
func (s *SessionService) Submit(ctx context.Context, sessionID, text string) (*survey.Reply, error) {
	reply, _, err := s.SubmitAnswer(ctx, sessionID, text)
	return reply, err
}

// SubmitAnswer is Submit that also reports whether the session had
// already finished. Replays are not broadcast, so the caller owns
// delivering them.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, text string) (*survey.Reply, bool, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, false, err
	}

	ls.mu.Lock()
	wasDone := ls.engine.Mode() == survey.ModeFinished
	reply := ls.engine.Submit(text)
	if !wasDone {
		ls.updatedAt = s.now()
	}
	if reply.Done {
		s.persistResult(ctx, ls)
	}
	s.storeProgress(ctx, ls)
	ls.mu.Unlock()

	if !wasDone {
		s.publish(sessionID, reply)
	}
	return &reply, wasDone, nil
}

// Current returns the session's pending prompt, or its final document
// when finished.
func (s *SessionService) Current(sessionID string) (*survey.Reply, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	reply := ls.engine.Current()
	return &reply, nil
}

// Get describes a live session
func (s *SessionService) Get(sessionID string) (*model.SessionInfo, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return s.info(ls), nil
}

// Document returns a snapshot of the session's document as it stands
func (s *SessionService) Document(sessionID string) (*model.Document, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.engine.Document(), nil
}

// Fields projects the requested dot paths of the session's document into
// a nested object holding only those paths.
func (s *SessionService) Fields(sessionID string, paths []string) (map[string]any, error) {
	doc, err := s.Document(sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	out := make(map[string]any)
	for _, path := range paths {
		value, ok := normalize.GetPath(raw, path)
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrPathNotFound)
		}
		if err := normalize.SetPath(out, path, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Result returns the finished document for a session, preferring the
// persisted copy.
func (s *SessionService) Result(ctx context.Context, sessionID string) (*model.SurveyResult, error) {
	if s.results != nil {
		res, err := s.results.GetBySessionID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load result: %w", err)
		}
		if res != nil {
			return res, nil
		}
	}

	ls, ok := s.sessions.Peek(sessionID)
	if !ok {
		return nil, ErrResultNotFound
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.engine.Mode() != survey.ModeFinished {
		return nil, ErrResultNotFound
	}
	return s.buildResult(ls), nil
}

// ListResults returns the latest persisted results, newest first.
func (s *SessionService) ListResults(ctx context.Context, limit int64) ([]*model.SurveyResult, error) {
	if s.results == nil {
		return []*model.SurveyResult{}, nil
	}
	results, err := s.results.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if results == nil {
		results = []*model.SurveyResult{}
	}
	return results, nil
}

// Progress returns the cached snapshot, falling back to the live session.
func (s *SessionService) Progress(ctx context.Context, sessionID string) (*model.ProgressSnapshot, error) {
	if s.progress != nil {
		snap, err := s.progress.Get(ctx, sessionID)
		if err != nil {
			s.log.Warn(logModule, "progress cache read failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		} else if snap != nil {
			return snap, nil
		}
	}

	ls, ok := s.sessions.Peek(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return s.snapshot(ls), nil
}

// Close drops a live session. Its sockets are disconnected by the
// registry's release hook.
func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	if !s.sessions.Remove(sessionID) {
		return ErrSessionNotFound
	}
	if s.progress != nil {
		if err := s.progress.Delete(ctx, sessionID); err != nil {
			s.log.Warn(logModule, "progress cache delete failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		}
	}
	s.log.Info(logModule, "session closed", map[string]interface{}{"session_id": sessionID})
	return nil
}

func (s *SessionService) lookup(sessionID string) (*liveSession, error) {
	ls, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

func (s *SessionService) info(ls *liveSession) *model.SessionInfo {
	status := model.SessionActive
	if ls.engine.Mode() == survey.ModeFinished {
		status = model.SessionFinished
	}
	return &model.SessionInfo{
		ID:        ls.id,
		Status:    status,
		Mode:      string(ls.engine.Mode()),
		Prompt:    ls.engine.Prompt(),
		Progress:  ls.engine.Progress(),
		StartedAt: ls.startedAt,
		UpdatedAt: ls.updatedAt,
	}
}

func (s *SessionService) snapshot(ls *liveSession) *model.ProgressSnapshot {
	info := s.info(ls)
	return &model.ProgressSnapshot{
		SessionID: info.ID,
		Status:    info.Status,
		Mode:      info.Mode,
		Progress:  info.Progress,
		UpdatedAt: info.UpdatedAt,
	}
}

// storeProgress is best effort; a cache outage never fails an answer.
func (s *SessionService) storeProgress(ctx context.Context, ls *liveSession) {
	if s.progress == nil {
		return
	}
	if err := s.progress.Set(ctx, s.snapshot(ls)); err != nil {
		s.log.Warn(logModule, "progress cache write failed", map[string]interface{}{"session_id": ls.id, "error": err.Error()})
	}
}

// persistResult saves the finished document once. A failed save is
// retried on the next Submit.
func (s *SessionService) persistResult(ctx context.Context, ls *liveSession) {
	if !s.persist || ls.persisted {
		return
	}
	if err := s.results.Save(ctx, s.buildResult(ls)); err != nil {
		s.log.Error(logModule, "failed to persist result", map[string]interface{}{"session_id": ls.id, "error": err.Error()})
		return
	}
	ls.persisted = true
	s.log.Info(logModule, "result persisted", map[string]interface{}{"session_id": ls.id})
}

func (s *SessionService) buildResult(ls *liveSession) *model.SurveyResult {
	doc := ls.engine.Document()
	completed := ls.updatedAt
	if doc.Meta.CompletedAt != nil {
		completed = *doc.Meta.CompletedAt
	}
	return &model.SurveyResult{
		SessionID:   ls.id,
		Document:    doc,
		CompletedAt: completed,
		CreatedAt:   s.now(),
	}
}

func (s *SessionService) publish(sessionID string, reply survey.Reply) {
	if s.broadcaster == nil {
		return
	}
	if reply.Done {
		s.broadcaster.BroadcastToSession(sessionID, "completed", reply)
		return
	}
	s.broadcaster.BroadcastToSession(sessionID, "prompt", reply)
}
