package service

import (
	"context"
	"errors"
	"strings"

	"go-coordinator/core/clock"
	appErrors "go-coordinator/core/errors"
	"go-coordinator/modules/participant/dto"
	"go-coordinator/modules/participant/entity"
	"go-coordinator/modules/participant/repository"
)

type ParticipantServiceInterface interface {
	Register(ctx context.Context, req *dto.ParticipantRequest) (*dto.ParticipantResponse, *appErrors.AppError)
	List(ctx context.Context) ([]dto.ParticipantResponse, *appErrors.AppError)
	Delete(ctx context.Context, id int64) *appErrors.AppError
	Verify(ctx context.Context, email string) (bool, error)
}

type ParticipantService struct {
	repo  repository.ParticipantRepositoryInterface
	clock clock.Clock
}

func NewParticipantService(repo repository.ParticipantRepositoryInterface, clk clock.Clock) *ParticipantService {
	if clk == nil {
		clk = clock.Real()
	}
	return &ParticipantService{repo: repo, clock: clk}
}

func (s *ParticipantService) Register(ctx context.Context, req *dto.ParticipantRequest) (*dto.ParticipantResponse, *appErrors.AppError) {
	p := &entity.Participant{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.PhoneNumber),
		Notes:     req.Notes,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrParticipantExists) {
			return nil, appErrors.NewAppError(appErrors.ErrAlreadyExists, "participant already registered", err)
		}
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}
	resp := dto.ToParticipantResponse(p)
	return &resp, nil
}

func (s *ParticipantService) List(ctx context.Context) ([]dto.ParticipantResponse, *appErrors.AppError) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}
	return dto.ToParticipantResponses(items), nil
}

func (s *ParticipantService) Delete(ctx context.Context, id int64) *appErrors.AppError {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
	}
	return nil
}

// Verify reports whether email belongs to a registered participant. It also
// satisfies the event module's verifier when both run in one process.
func (s *ParticipantService) Verify(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.TrimSpace(email))
}
