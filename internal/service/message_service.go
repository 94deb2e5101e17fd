package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/sushilghimire07/Social-Media-App/internal/audit"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// EventMessage is the SSE event name for live message delivery.
const EventMessage = "message"

// LivePublisher pushes events to a user's open streams. Satisfied by
// hub.Hub.
type LivePublisher interface {
	Publish(userID, event string, payload interface{}) error
}

// messageServiceImpl implements MessageService.
type messageServiceImpl struct {
	messages  repository.MessageRepository
	users     repository.UserRepository
	processor *media.ImageProcessor
	live      LivePublisher
}

// NewMessageService creates a new message service. live may be nil when live
// delivery is disabled.
func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	processor *media.ImageProcessor,
	live LivePublisher,
) MessageService {
	return &messageServiceImpl{
		messages:  messages,
		users:     users,
		processor: processor,
		live:      live,
	}
}

// Send persists the message first, then publishes the stored record to the
// recipient's streams and to the sender's other open devices. Live delivery
// is best-effort; a failed publish never fails the send.
func (s *messageServiceImpl) Send(ctx context.Context, fromUserID string, req *domain.SendMessageRequest, image *multipart.FileHeader) (*domain.Message, error) {
	l := log.Ctx(ctx)

	if fromUserID == req.ToUserID {
		return nil, ErrSelfMessage
	}

	if _, err := s.users.GetByID(ctx, req.ToUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		FromUserID:  fromUserID,
		ToUserID:    req.ToUserID,
		Text:        req.Text,
		MessageType: domain.MediaTypeText,
	}

	if image != nil {
		url, err := s.processor.ProcessUpload(ctx, image, "messages", fromUserID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, fromUserID).Msg("failed to store message image")
			return nil, err
		}
		msg.MediaURL = url
		msg.MessageType = domain.MediaTypeImage
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, fromUserID).Msg("failed to create message")
		return nil, err
	}

	if s.live != nil {
		if err := s.live.Publish(req.ToUserID, EventMessage, msg); err != nil {
			l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to publish message to recipient")
		}
		if err := s.live.Publish(fromUserID, EventMessage, msg); err != nil {
			l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to publish message to sender")
		}
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, fromUserID, req.ToUserID, "message sent")
	return msg, nil
}

// Chat returns the full conversation with partnerID, oldest first, and marks
// the partner's messages as seen.
func (s *messageServiceImpl) Chat(ctx context.Context, userID, partnerID string) ([]*domain.Message, error) {
	msgs, err := s.messages.Conversation(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkSeen(ctx, partnerID, userID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to mark messages seen")
	}

	return msgs, nil
}

// Recent aggregates the latest message per distinct partner, newest first,
// with unseen counts.
func (s *messageServiceImpl) Recent(ctx context.Context, userID string) ([]*domain.RecentChat, error) {
	msgs, err := s.messages.ByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	unseen, err := s.messages.UnseenCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	// msgs are newest first, so the first message per partner is the latest.
	seen := make(map[string]struct{})
	partnerIDs := make([]string, 0)
	latest := make(map[string]*domain.Message)
	for _, m := range msgs {
		partnerID := m.FromUserID
		if partnerID == userID {
			partnerID = m.ToUserID
		}
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[partnerID] = struct{}{}
		partnerIDs = append(partnerIDs, partnerID)
		latest[partnerID] = m
	}

	partners, err := s.users.GetByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(partners))
	for _, u := range partners {
		byID[u.ID] = u
	}

	chats := make([]*domain.RecentChat, 0, len(partnerIDs))
	for _, partnerID := range partnerIDs {
		partner, ok := byID[partnerID]
		if !ok {
			// Partner account deleted; skip the thread.
			continue
		}
		chats = append(chats, &domain.RecentChat{
			Partner:     partner,
			LastMessage: latest[partnerID],
			UnseenCount: unseen[partnerID],
		})
	}
	return chats, nil
}

var _ MessageService = (*messageServiceImpl)(nil)
