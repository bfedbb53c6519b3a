// internal/stages/export/send-notification/models.go
package sendnotification

const (
	ChannelSNS   = "sns"
	ChannelEmail = "email"
)

type Output struct {
	Skipped    bool              `json:"skipped"`
	MessageIDs map[string]string `json:"messageIds"`
	Failed     []string          `json:"failed,omitempty"`
}
