package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go-coordinator/core/constants"
	"go-coordinator/core/logger"
	"go-coordinator/core/metrics"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token"
	"go-coordinator/modules/checkin/broadcast"
	"go-coordinator/modules/checkin/dto"
	"go-coordinator/modules/checkin/entity"
	"go-coordinator/modules/checkin/repository"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

type CheckinServiceInterface interface {
	Publish(ctx context.Context, rawToken string, msg dto.CheckinUpdateMessage, origin middleware.AuditInfo) (*dto.CheckinUpdateMessage, error)
	Snapshot(ctx context.Context, eventID int64) ([]dto.CheckinResponse, error)
}

type CheckinService struct {
	auth        token.TokenAuthenticator
	registry    repository.CheckinRegistry
	broadcaster broadcast.Broadcaster
}

func NewCheckinService(auth token.TokenAuthenticator, registry repository.CheckinRegistry, broadcaster broadcast.Broadcaster) *CheckinService {
	return &CheckinService{
		auth:        auth,
		registry:    registry,
		broadcaster: broadcaster,
	}
}

// Publish authenticates the sender, applies the update and broadcasts it on
// /topic/checkins. Nothing is applied or broadcast unless every step passes.
// Rejections return ErrForbidden or ErrBadRequest; any other error comes from
// the registry.
func (s *CheckinService) Publish(ctx context.Context, rawToken string, msg dto.CheckinUpdateMessage, origin middleware.AuditInfo) (*dto.CheckinUpdateMessage, error) {
	result := s.auth.Authenticate(rawToken)
	middleware.Audit(result, origin)
	if !result.OK() {
		metrics.CheckinUpdates.WithLabelValues("forbidden").Inc()
		return nil, ErrForbidden
	}

	email := strings.TrimSpace(msg.Email)
	status, err := entity.ParseStatus(msg.Status)
	if err != nil || msg.EventID <= 0 || email == "" {
		metrics.CheckinUpdates.WithLabelValues("invalid").Inc()
		logger.Warn("CheckinService:Publish:InvalidMessage",
			"subject", result.Subject(),
			"ip", origin.IP,
			"eventId", msg.EventID,
			"status", msg.Status,
		)
		return nil, ErrBadRequest
	}

	applied, err := s.registry.ApplyUpdate(ctx, msg.EventID, email, status)
	if err != nil {
		metrics.CheckinUpdates.WithLabelValues("error").Inc()
		logger.Error("CheckinService:Publish:ApplyUpdate:Error", "eventId", msg.EventID, "error", err)
		return nil, err
	}
	metrics.CheckinUpdates.WithLabelValues(applied.String()).Inc()
	if applied != repository.Applied {
		logger.Warn("CheckinService:Publish:Rejected",
			"subject", result.Subject(),
			"ip", origin.IP,
			"eventId", msg.EventID,
			"email", email,
			"outcome", applied.String(),
		)
		return nil, ErrBadRequest
	}

	out := dto.CheckinUpdateMessage{EventID: msg.EventID, Email: email, Status: string(status)}
	logger.Info("CheckinService:Publish:Applied",
		"subject", result.Subject(),
		"ip", origin.IP,
		"eventId", out.EventID,
		"email", out.Email,
		"status", out.Status,
	)

	payload, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	// The registry already holds the update; a failed broadcast only costs
	// live listeners this one message.
	if err := s.broadcaster.Broadcast(ctx, constants.TopicCheckins, payload); err != nil {
		logger.Error("CheckinService:Publish:Broadcast:Error", "eventId", out.EventID, "error", err)
	}
	return &out, nil
}

// Snapshot returns repository.ErrEventNotFound for an unknown event.
func (s *CheckinService) Snapshot(ctx context.Context, eventID int64) ([]dto.CheckinResponse, error) {
	items, err := s.registry.Get(ctx, eventID)
	if err != nil {
		if !errors.Is(err, repository.ErrEventNotFound) {
			logger.Error("CheckinService:Snapshot:Error", "eventId", eventID, "error", err)
		}
		return nil, err
	}
	return dto.ToCheckinResponses(items), nil
}
