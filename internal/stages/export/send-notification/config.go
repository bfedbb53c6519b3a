// internal/stages/export/send-notification/config.go
package sendnotification

import (
	"fmt"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/validation"
)

type Config struct {
	SNSEnabled   bool
	TopicARN     string
	EmailEnabled bool
	FromEmail    string
	To           []string
	// FailOnError turns a send failure into a stage failure instead of a warning.
	FailOnError bool
}

func LoadConfig(settings *config.Config) *Config {
	n := settings.Notifications
	return &Config{
		SNSEnabled:   n.SNS.Enabled,
		TopicARN:     n.SNS.TopicARN,
		EmailEnabled: n.Email.Enabled,
		FromEmail:    n.Email.FromEmail,
		To:           append([]string{}, n.Email.To...),
	}
}

// Enabled reports whether any channel is switched on.
func (c *Config) Enabled() bool {
	return c.SNSEnabled || c.EmailEnabled
}

func (c *Config) Validate() error {
	if c.SNSEnabled && c.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	if !c.EmailEnabled {
		return nil
	}
	if !validation.ValidateEmail(c.FromEmail) {
		return fmt.Errorf("invalid notifications.email.from_email: %q", c.FromEmail)
	}
	if len(c.To) == 0 {
		return fmt.Errorf("notifications.email.to needs at least one recipient")
	}
	for _, addr := range c.To {
		if !validation.ValidateEmail(addr) {
			return fmt.Errorf("invalid notifications.email.to address: %q", addr)
		}
	}
	return nil
}
