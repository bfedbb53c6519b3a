// internal/stages/export/send-notification/handler.go
package sendnotification

import (
	"context"
	"errors"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "send-notification"
)

// Publisher is satisfied by aws.SNSClient.
type Publisher interface {
	PublishMessage(ctx context.Context, topicARN, subject, message string) (string, error)
}

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendTextEmail(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

var errNoClient = errors.New("no client configured for channel")

type Handler struct {
	config    *Config
	logger    logger.Logger
	publisher Publisher
	mailer    EmailSender
}

// NewHandler builds the stage. publisher and mailer may be nil when their
// channel is disabled.
func NewHandler(config *Config, log logger.Logger, publisher Publisher, mailer EmailSender) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		publisher: publisher,
		mailer:    mailer,
	}
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	if output.Skipped {
		h.logger.Debug("No notification channel enabled", nil)
		return nil
	}
	h.logger.Info("Build notification sent", map[string]interface{}{
		"messageIds": output.MessageIDs,
		"failed":     output.Failed,
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, st *pipeline.State) (*Output, error) {
	out := &Output{MessageIDs: map[string]string{}}
	if !h.config.Enabled() {
		out.Skipped = true
		return out, nil
	}
	if err := h.config.Validate(); err != nil {
		return nil, apperrors.NewSettingsInvalidError(err.Error())
	}

	summary := st.Summary()
	subject, body := summary.Subject(), summary.Body()

	if h.config.SNSEnabled {
		id, err := h.publish(ctx, subject, body)
		if err := h.handle(st, out, ChannelSNS, err); err != nil {
			return nil, err
		}
		if id != "" {
			out.MessageIDs[ChannelSNS] = id
		}
	}
	if h.config.EmailEnabled {
		id, err := h.email(ctx, subject, body)
		if err := h.handle(st, out, ChannelEmail, err); err != nil {
			return nil, err
		}
		if id != "" {
			out.MessageIDs[ChannelEmail] = id
		}
	}
	return out, nil
}

func (h *Handler) publish(ctx context.Context, subject, body string) (string, error) {
	if h.publisher == nil {
		return "", errNoClient
	}
	return h.publisher.PublishMessage(ctx, h.config.TopicARN, subject, body)
}

func (h *Handler) email(ctx context.Context, subject, body string) (string, error) {
	if h.mailer == nil {
		return "", errNoClient
	}
	return h.mailer.SendTextEmail(ctx, h.config.FromEmail, h.config.To, subject, body)
}

// handle records a channel failure as a warning, or returns it when
// FailOnError is set. Cancellation is always returned.
func (h *Handler) handle(st *pipeline.State, out *Output, channel string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	out.Failed = append(out.Failed, channel)
	if h.config.FailOnError {
		return apperrors.NewNotificationSendFailedError(channel, err)
	}
	h.logger.Warn("Notification failed", map[string]interface{}{"channel": channel, "error": err.Error()})
	st.Warn("Could not send %s notification: %v", channel, err)
	return nil
}
