package service

import (
	"context"
	"errors"

	"vibe-curation-be/internal/dto"
	"vibe-curation-be/internal/mapper"
	"vibe-curation-be/internal/pkg/logger"
	"vibe-curation-be/internal/repository/memory"
	"vibe-curation-be/pkg/curation"
	"vibe-curation-be/pkg/store"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("curation session not found")

type ICurationService interface {
	StartSession(ctx context.Context, userID, seedQuery string) (*dto.SessionStateResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionStateResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Accept(ctx context.Context, sessionID string, slot int) (*dto.SessionStateResponse, error)
	Reject(ctx context.Context, sessionID string, slot int) (*dto.SessionStateResponse, error)
	Analyze(ctx context.Context, sessionID, text string) (*dto.SessionStateResponse, error)
	Research(ctx context.Context, sessionID, text string) (*dto.SessionStateResponse, error)
}

type curationService struct {
	engine      *curation.Engine
	sessionRepo *memory.SessionRepository
	publisher   IPublisherService
	logger      logger.ILogger
}

func NewCurationService(
	engine *curation.Engine,
	sessionRepo *memory.SessionRepository,
	publisher IPublisherService,
	log logger.ILogger,
) ICurationService {
	return &curationService{
		engine:      engine,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		logger:      log,
	}
}

func (s *curationService) StartSession(ctx context.Context, userID, seedQuery string) (*dto.SessionStateResponse, error) {
	session := store.NewSession(uuid.NewString(), userID, seedQuery)
	s.sessionRepo.Save(session)

	s.logger.Info("CurationService", "Session started", map[string]interface{}{
		"session_id": session.ID,
		"user_id":    userID,
	})

	s.engine.StartSession(ctx, session)
	return snapshot(session), nil
}

func (s *curationService) GetSession(_ context.Context, sessionID string) (*dto.SessionStateResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(session), nil
}

func (s *curationService) DeleteSession(_ context.Context, sessionID string) error {
	if _, ok := s.sessionRepo.Get(sessionID); !ok {
		return ErrSessionNotFound
	}
	s.sessionRepo.Delete(sessionID)
	s.logger.Info("CurationService", "Session deleted", map[string]interface{}{"session_id": sessionID})
	return nil
}

func (s *curationService) Accept(ctx context.Context, sessionID string, slot int) (*dto.SessionStateResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := s.engine.Accept(ctx, session, slot); err != nil {
		return nil, err
	}

	session.Lock()
	var accepted store.Item
	if len(session.Kept) > 0 {
		accepted = session.Kept[0]
	}
	session.Unlock()
	s.publisher.PublishItemAccepted(sessionID, accepted)

	s.sessionRepo.Save(session)
	return snapshot(session), nil
}

func (s *curationService) Reject(ctx context.Context, sessionID string, slot int) (*dto.SessionStateResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	var rejected store.Item
	if slot >= 0 && slot < len(session.Visible) {
		rejected = session.Visible[slot]
	}
	session.Unlock()

	if err := s.engine.Reject(ctx, session, slot); err != nil {
		return nil, err
	}
	s.publisher.PublishItemRejected(sessionID, rejected)

	s.sessionRepo.Save(session)
	return snapshot(session), nil
}

func (s *curationService) Analyze(ctx context.Context, sessionID, text string) (*dto.SessionStateResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.engine.AnalyzeAndSearch(ctx, session, text)

	s.sessionRepo.Save(session)
	return snapshot(session), nil
}

func (s *curationService) Research(ctx context.Context, sessionID, text string) (*dto.SessionStateResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.engine.ManualResearch(ctx, session, text)
	s.publisher.PublishSessionReset(sessionID)

	s.sessionRepo.Save(session)
	return snapshot(session), nil
}

func snapshot(session *store.Session) *dto.SessionStateResponse {
	session.Lock()
	defer session.Unlock()
	return mapper.ToSessionState(session)
}
