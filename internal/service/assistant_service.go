package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-studymate-be/internal/constant"
	"ai-studymate-be/internal/dto"
	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/pkg/logger"
	"ai-studymate-be/internal/repository/memory"
	"ai-studymate-be/internal/repository/specification"
	"ai-studymate-be/internal/repository/unitofwork"
	"ai-studymate-be/pkg/assistant"
	"ai-studymate-be/pkg/llm"
	"ai-studymate-be/pkg/persona"
	"ai-studymate-be/pkg/search"
	"ai-studymate-be/pkg/store"
)

// IAssistantService defines the study assistant service interface
type IAssistantService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetHistoryResponse, error)
	Answer(ctx context.Context, userId uuid.UUID, request *dto.AnswerRequest) (*dto.AnswerResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	GetModes(ctx context.Context) []*dto.ModeProfileResponse
}

type assistantService struct {
	uowFactory       unitofwork.RepositoryFactory
	assembler        *assistant.Assembler
	sessionRepo      *memory.SessionRepository
	publisherService IPublisherService
	sysLogger        logger.ILogger
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	assembler *assistant.Assembler,
	sessionRepo *memory.SessionRepository,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
) IAssistantService {
	return &assistantService{
		uowFactory:       uowFactory,
		assembler:        assembler,
		sessionRepo:      sessionRepo,
		publisherService: publisherService,
		sysLogger:        sysLogger,
	}
}

func (as *assistantService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	mode := persona.DefaultMode
	if request.Mode != "" {
		requested := persona.Mode(request.Mode)
		if _, ok := persona.Lookup(requested); !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, "unknown mode: "+request.Mode)
		}
		mode = requested
	}

	language := request.Language
	if language == "" {
		language = "en"
	}

	session := entity.StudySession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultSessionTitle,
		Mode:      string(mode),
		Language:  language,
		CreatedAt: time.Now(),
	}

	uow := as.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.StudySessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	as.sessionRepo.Save(&store.Session{
		ID:       session.Id.String(),
		UserID:   userId.String(),
		Mode:     session.Mode,
		Language: session.Language,
	})

	as.sysLogger.Info("assistant", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"mode":       session.Mode,
	})

	return &dto.CreateSessionResponse{Id: session.Id, Mode: session.Mode}, nil
}

func (as *assistantService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetHistoryResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	if _, err := as.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetHistoryResponse, 0, len(turns))
	for _, t := range turns {
		response = append(response, &dto.GetHistoryResponse{
			Id:        t.Id,
			Role:      t.Role,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
		})
	}

	return response, nil
}

// Answer runs one conversation turn end to end and persists it.
func (as *assistantService) Answer(ctx context.Context, userId uuid.UUID, request *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	session, err := as.verifySession(ctx, uow, userId, request.SessionId)
	if err != nil {
		return nil, err
	}

	hotSession := as.loadHotSession(session)
	if request.Language != "" {
		hotSession.Language = request.Language
	}
	history, err := as.loadHistory(ctx, uow, request.SessionId)
	if err != nil {
		return nil, err
	}

	// Slash filters in the query narrow retrieval, like /topic:calculus.
	parsed := search.ParseQuery(request.Query)
	query := parsed.SearchQuery
	if query == "" {
		query = request.Query
	}
	topics := append(parsed.Topics, request.Topics...)

	result, err := as.assembler.Answer(ctx, assistant.Input{
		Session:       hotSession,
		Query:         query,
		RequestedMode: request.Mode,
		History:       history,
		Filters: search.Filters{
			DocumentIds: request.Documents,
			Topics:      topics,
		},
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userTurn := entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      constant.TurnRoleUser,
		Text:      request.Query,
		CreatedAt: now,
	}
	modelTurn := entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      constant.TurnRoleModel,
		Text:      result.Text,
		CreatedAt: now.Add(1 * time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ConversationTurnRepository().Create(ctx, &userTurn); err != nil {
		return nil, err
	}
	if err := uow.ConversationTurnRepository().Create(ctx, &modelTurn); err != nil {
		return nil, err
	}

	if session.Title == constant.DefaultSessionTitle {
		session.Title = deriveTitle(request.Query)
	}
	session.Mode = string(result.Mode)
	updatedAt := now
	session.UpdatedAt = &updatedAt
	if err := uow.StudySessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	hotSession.Mode = string(result.Mode)
	hotSession.LastQuery = query
	as.sessionRepo.Save(hotSession)

	as.publishTurnCompleted(ctx, session, userId, result)

	sources := make([]dto.SourceDTO, 0, len(result.Sources))
	for _, id := range result.Sources {
		sources = append(sources, dto.SourceDTO{ChunkId: id})
	}

	return &dto.AnswerResponse{
		SessionId:       session.Id,
		SessionTitle:    session.Title,
		Answer:          result.Text,
		Mode:            string(result.Mode),
		ModeMessage:     result.ModeMessage,
		ModelTier:       string(result.Tier),
		ComplexityScore: result.ComplexityScore,
		Confidence:      result.Confidence,
		Sources:         sources,
		Cached:          result.Cached,
		Degraded:        result.Degraded,
		Clarification:   result.Clarification,
		CreatedAt:       now,
	}, nil
}

func (as *assistantService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	if _, err := as.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationTurnRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.StudySessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	as.sessionRepo.Delete(sessionId.String())
	return nil
}

func (as *assistantService) GetModes(ctx context.Context) []*dto.ModeProfileResponse {
	profiles := persona.Profiles()
	response := make([]*dto.ModeProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		transitions := make([]string, 0, len(p.AllowedTransitions))
		for _, m := range p.AllowedTransitions {
			transitions = append(transitions, string(m))
		}
		response = append(response, &dto.ModeProfileResponse{
			Mode:               string(p.Mode),
			Formality:          p.Tone.Formality,
			Directiveness:      p.Tone.Directiveness,
			Encouragement:      p.Tone.Encouragement,
			AllowedTransitions: transitions,
		})
	}
	return response
}

func (as *assistantService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.StudySession, error) {
	session, err := uow.StudySessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found or access denied")
	}
	return session, nil
}

// loadHotSession prefers the in-memory copy and rebuilds it from the
// persisted row after a cold start or eviction.
func (as *assistantService) loadHotSession(session *entity.StudySession) *store.Session {
	if hot, found := as.sessionRepo.Get(session.Id.String()); found {
		return hot
	}
	hot := &store.Session{
		ID:       session.Id.String(),
		UserID:   session.UserId.String(),
		Mode:     session.Mode,
		Language: session.Language,
	}
	as.sessionRepo.Save(hot)
	return hot
}

// loadHistory returns the most recent turns in chronological order for the
// generation prompt.
func (as *assistantService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: constant.HistoryWindow},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		role := "user"
		if turns[i].Role == constant.TurnRoleModel {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: turns[i].Text})
	}
	return history, nil
}

func (as *assistantService) publishTurnCompleted(ctx context.Context, session *entity.StudySession, userId uuid.UUID, result *assistant.Result) {
	payload, err := json.Marshal(dto.TurnCompletedMessage{
		SessionId:  session.Id,
		UserId:     userId,
		Mode:       string(result.Mode),
		ModelTier:  string(result.Tier),
		Confidence: result.Confidence,
		Cached:     result.Cached,
		Degraded:   result.Degraded,
		AnsweredAt: time.Now(),
	})
	if err != nil {
		as.sysLogger.Warn("assistant", "Failed to marshal turn event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := as.publisherService.Publish(ctx, payload); err != nil {
		as.sysLogger.Warn("assistant", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
}

func deriveTitle(query string) string {
	title := strings.Join(strings.Fields(query), " ")
	runes := []rune(title)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return title
}
