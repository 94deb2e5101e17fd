package audit

import (
	"context"

	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// Audit actions.
const (
	ActionUpdateProfile     = "user.update_profile"
	ActionFollow            = "user.follow"
	ActionUnfollow          = "user.unfollow"
	ActionConnectionRequest = "connection.request"
	ActionConnectionAccept  = "connection.accept"
	ActionCreatePost        = "post.create"
	ActionLikePost          = "post.like"
	ActionCreateStory       = "story.create"
	ActionDeleteStory       = "story.delete"
	ActionSendMessage       = "message.send"
	ActionSyncUser          = "user.sync"
	ActionDeleteUser        = "user.delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
