package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go-coordinator/core/clock"
	appErrors "go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/modules/event/client"
	"go-coordinator/modules/event/dto"
	"go-coordinator/modules/event/repository"
)

type EventServiceInterface interface {
	Search(ctx context.Context, keywords string) ([]dto.EventSummaryResponse, *appErrors.AppError)
	Get(ctx context.Context, id int64) (*dto.EventDetailResponse, *appErrors.AppError)
	Create(ctx context.Context, req *dto.EventRequest) (*dto.EventDetailResponse, *appErrors.AppError)
	Update(ctx context.Context, id int64, req *dto.EventRequest) (*dto.EventDetailResponse, *appErrors.AppError)
	Delete(ctx context.Context, id int64) *appErrors.AppError
	Register(ctx context.Context, id int64, email string) (*dto.RegisterResponse, *appErrors.AppError)
}

type EventService struct {
	repo     repository.EventRepositoryInterface
	verifier client.ParticipantVerifier
	clock    clock.Clock
}

func NewEventService(repo repository.EventRepositoryInterface, verifier client.ParticipantVerifier, clk clock.Clock) *EventService {
	if clk == nil {
		clk = clock.Real()
	}
	return &EventService{repo: repo, verifier: verifier, clock: clk}
}

func internalError(err error) *appErrors.AppError {
	return appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
}

func notFound(err error) *appErrors.AppError {
	return appErrors.NewAppError(appErrors.ErrNotFound, "event not found", err)
}

// Search matches every whitespace separated keyword against the title. An
// empty query returns all events.
func (s *EventService) Search(ctx context.Context, keywords string) ([]dto.EventSummaryResponse, *appErrors.AppError) {
	items, err := s.repo.Search(ctx, strings.Fields(keywords))
	if err != nil {
		return nil, internalError(err)
	}
	return dto.ToEventSummaryResponses(items), nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*dto.EventDetailResponse, *appErrors.AppError) {
	detail, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEventNotFound) {
		return nil, notFound(err)
	}
	if err != nil {
		return nil, internalError(err)
	}
	return dto.ToEventDetailResponse(detail), nil
}

func (s *EventService) Create(ctx context.Context, req *dto.EventRequest) (*dto.EventDetailResponse, *appErrors.AppError) {
	event, err := s.repo.Create(ctx, strings.TrimSpace(req.Title), s.clock.Now().UTC())
	if err != nil {
		return nil, internalError(err)
	}
	return &dto.EventDetailResponse{
		ID:           event.ID,
		Created:      event.CreatedAt,
		Title:        event.Title,
		Participants: []string{},
	}, nil
}

func (s *EventService) Update(ctx context.Context, id int64, req *dto.EventRequest) (*dto.EventDetailResponse, *appErrors.AppError) {
	if _, err := s.repo.UpdateTitle(ctx, id, strings.TrimSpace(req.Title), s.clock.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, notFound(err)
		}
		return nil, internalError(err)
	}
	return s.Get(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, id int64) *appErrors.AppError {
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err)
	}
	return nil
}

// Register adds email to the event once the participant service vouches for
// it. Registering twice is a no-op. An unknown event is invalid input; a
// refused or failed verification is forbidden.
func (s *EventService) Register(ctx context.Context, id int64, email string) (*dto.RegisterResponse, *appErrors.AppError) {
	email = strings.TrimSpace(email)

	detail, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEventNotFound) {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "unknown event", err)
	}
	if err != nil {
		return nil, internalError(err)
	}
	if slices.Contains(detail.Participants, email) {
		return &dto.RegisterResponse{EventID: id, Email: email, Registered: true}, nil
	}

	verified, err := s.verifier.Verify(ctx, email)
	if err != nil || !verified {
		logger.Warn("EventService:Register:Unsuccessful", "eventId", id, "email", email, "error", err)
		return nil, appErrors.NewAppError(appErrors.ErrForbidden, "registration unsuccessful", err)
	}

	if _, err := s.repo.AddParticipant(ctx, id, email); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "unknown event", err)
		}
		return nil, internalError(err)
	}
	return &dto.RegisterResponse{EventID: id, Email: email, Registered: true}, nil
}
