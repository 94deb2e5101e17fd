package service

import (
	"context"
	"errors"
	"time"

	"github.com/sushilghimire07/Social-Media-App/internal/audit"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/events"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// connectionServiceImpl implements ConnectionService.
type connectionServiceImpl struct {
	connections repository.ConnectionRepository
	users       repository.UserRepository
	producer    events.Producer
}

// NewConnectionService creates a new connection service. producer may be nil
// when event emission is disabled.
func NewConnectionService(
	connections repository.ConnectionRepository,
	users repository.UserRepository,
	producer events.Producer,
) ConnectionService {
	return &connectionServiceImpl{
		connections: connections,
		users:       users,
		producer:    producer,
	}
}

// Request creates a pending edge fromUserID → toUserID. The sender is capped
// at ConnectionRequestLimit requests per rolling 24-hour window, and an
// existing edge in either direction refuses the request.
func (s *connectionServiceImpl) Request(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error) {
	l := log.Ctx(ctx)

	if fromUserID == toUserID {
		return nil, ErrSelfConnection
	}

	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	since := time.Now().Add(-domain.ConnectionRequestWindow)
	count, err := s.connections.CountCreatedSince(ctx, fromUserID, since)
	if err != nil {
		return nil, err
	}
	if count >= domain.ConnectionRequestLimit {
		audit.LogWithDetail(ctx, audit.ActionConnectionRequest, fromUserID, toUserID, "connection request rate limited")
		return nil, ErrRateLimited
	}

	existing, err := s.connections.GetBetween(ctx, fromUserID, toUserID)
	if err != nil && !errors.Is(err, repository.ErrConnectionNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Accepted() {
			return nil, ErrAlreadyConnected
		}
		return nil, ErrRequestPending
	}

	conn, err := s.connections.Create(ctx, fromUserID, toUserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, fromUserID).Str(log.FieldTargetID, toUserID).Msg("failed to create connection request")
		return nil, err
	}

	if s.producer != nil {
		payload := events.ConnectionRequestedPayload{
			ConnectionID: conn.ID,
			FromUserID:   fromUserID,
			ToUserID:     toUserID,
		}
		if err := s.producer.Produce(ctx, events.TypeConnectionRequested, toUserID, payload); err != nil {
			l.Error().Err(err).Str(log.FieldTargetID, toUserID).Msg("failed to emit connection.requested")
		}
	}

	audit.LogWithDetail(ctx, audit.ActionConnectionRequest, fromUserID, toUserID, "connection request sent")
	return conn, nil
}

// Accept flips the pending edge fromUserID → userID to accepted.
func (s *connectionServiceImpl) Accept(ctx context.Context, userID, fromUserID string) error {
	conn, err := s.connections.GetPendingFrom(ctx, fromUserID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrConnectionNotFound) {
			return ErrNoPendingRequest
		}
		return err
	}

	if err := s.connections.Accept(ctx, conn.ID); err != nil {
		if errors.Is(err, repository.ErrConnectionNotFound) {
			return ErrNoPendingRequest
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionConnectionAccept, userID, fromUserID, "connection request accepted")
	return nil
}

var _ ConnectionService = (*connectionServiceImpl)(nil)
