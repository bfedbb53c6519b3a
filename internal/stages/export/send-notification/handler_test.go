// internal/stages/export/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

// ==========================
// Test Helper Functions
// ==========================

type mockPublisher struct {
	PublishFunc func(ctx context.Context, topicARN, subject, message string) (string, error)
	calls       int
}

func (m *mockPublisher) PublishMessage(ctx context.Context, topicARN, subject, message string) (string, error) {
	m.calls++
	return m.PublishFunc(ctx, topicARN, subject, message)
}

type mockMailer struct {
	SendFunc func(ctx context.Context, from string, to []string, subject, body string) (string, error)
	calls    int
}

func (m *mockMailer) SendTextEmail(ctx context.Context, from string, to []string, subject, body string) (string, error) {
	m.calls++
	return m.SendFunc(ctx, from, to, subject, body)
}

func createTestConfig() *Config {
	settings := &config.Config{}
	settings.Notifications.SNS.Enabled = true
	settings.Notifications.SNS.TopicARN = "arn:aws:sns:us-east-1:123456789012:dashboard-builds"
	settings.Notifications.Email.Enabled = true
	settings.Notifications.Email.FromEmail = "builds@hub.org"
	settings.Notifications.Email.To = []string{"team@hub.org"}
	return LoadConfig(settings)
}

func createTestState() *pipeline.State {
	st := pipeline.NewState(&config.Config{}, &models.DashboardConfig{Models: []models.ModelConfig{{Name: "team-a"}}})
	st.Mode = models.BuildModeUpdate
	st.ExportedFiles = []string{"metadata.json", "periods/s1.json", "manifest.json"}
	return st
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SendsBothChannels(t *testing.T) {
	st := createTestState()
	pub := &mockPublisher{PublishFunc: func(_ context.Context, topic, subject, message string) (string, error) {
		assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:dashboard-builds", topic)
		assert.Equal(t, "Dashboard build "+st.RunID+" (update)", subject)
		assert.Contains(t, message, "Files exported: 3")
		return "sns-1", nil
	}}
	mail := &mockMailer{SendFunc: func(_ context.Context, from string, to []string, subject, body string) (string, error) {
		assert.Equal(t, "builds@hub.org", from)
		assert.Equal(t, []string{"team@hub.org"}, to)
		assert.True(t, strings.HasPrefix(body, "Dashboard data build finished."))
		return "ses-1", nil
	}}

	h := NewHandler(createTestConfig(), logger.NewTestLogger(t), pub, mail)
	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, output.Skipped)
	assert.Equal(t, map[string]string{ChannelSNS: "sns-1", ChannelEmail: "ses-1"}, output.MessageIDs)
	assert.Empty(t, output.Failed)
	assert.Empty(t, st.Warnings())
}

func TestHandler_Execute_DisabledIsSkipped(t *testing.T) {
	pub := &mockPublisher{}
	h := NewHandler(LoadConfig(&config.Config{}), logger.NewTestLogger(t), pub, nil)

	output, err := h.execute(context.Background(), createTestState())
	require.NoError(t, err)
	assert.True(t, output.Skipped)
	assert.Zero(t, pub.calls)
}

func TestHandler_Execute_FailureIsWarning(t *testing.T) {
	st := createTestState()
	pub := &mockPublisher{PublishFunc: func(context.Context, string, string, string) (string, error) {
		return "", errors.New("throttled")
	}}
	mail := &mockMailer{SendFunc: func(context.Context, string, []string, string, string) (string, error) {
		return "ses-1", nil
	}}

	h := NewHandler(createTestConfig(), logger.NewTestLogger(t), pub, mail)
	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{ChannelSNS}, output.Failed)
	assert.Equal(t, 1, mail.calls, "email still sent after sns failure")
	assert.Equal(t, []string{"Could not send sns notification: throttled"}, st.Warnings())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing topic", mutate: func(c *Config) { c.TopicARN = "" }, wantErr: "topic_arn"},
		{name: "bad sender", mutate: func(c *Config) { c.FromEmail = "builds" }, wantErr: "from_email"},
		{name: "no recipients", mutate: func(c *Config) { c.To = nil }, wantErr: "at least one recipient"},
		{name: "bad recipient", mutate: func(c *Config) { c.To = []string{"team@hub.org", "nope"} }, wantErr: "\"nope\""},
		{name: "email disabled skips checks", mutate: func(c *Config) { c.EmailEnabled = false; c.FromEmail = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createTestConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_FailOnError(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.FailOnError = true
	pub := &mockPublisher{PublishFunc: func(context.Context, string, string, string) (string, error) {
		return "", errors.New("access denied")
	}}

	err := NewHandler(cfg, logger.NewTestLogger(t), pub, nil).Execute(context.Background(), createTestState())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotificationSendFailed))
}

func TestHandler_Execute_MissingClient(t *testing.T) {
	cfg := createTestConfig()
	cfg.SNSEnabled = false
	st := createTestState()

	output, err := NewHandler(cfg, logger.NewTestLogger(t), nil, nil).execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{ChannelEmail}, output.Failed)
	assert.Len(t, st.Warnings(), 1)
}

func TestHandler_Execute_InvalidSettings(t *testing.T) {
	cfg := createTestConfig()
	cfg.TopicARN = ""

	err := NewHandler(cfg, logger.NewTestLogger(t), &mockPublisher{}, nil).Execute(context.Background(), createTestState())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSettingsInvalid))
}

func TestHandler_Execute_Cancelled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	pub := &mockPublisher{PublishFunc: func(ctx context.Context, _, _, _ string) (string, error) {
		return "", ctx.Err()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewHandler(cfg, logger.NewTestLogger(t), pub, nil).Execute(ctx, createTestState())
	assert.ErrorIs(t, err, context.Canceled)
}
