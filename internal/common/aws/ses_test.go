package aws

import (
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTextEmail(t *testing.T) {
	in := BuildTextEmail("builds@hub.org", []string{"a@hub.org", "b@hub.org"}, "Dashboard built", "3 periods exported")

	assert.Equal(t, "builds@hub.org", awssdk.ToString(in.Source))
	require.NotNil(t, in.Destination)
	assert.Equal(t, []string{"a@hub.org", "b@hub.org"}, in.Destination.ToAddresses)
	assert.Equal(t, "Dashboard built", awssdk.ToString(in.Message.Subject.Data))
	assert.Equal(t, "3 periods exported", awssdk.ToString(in.Message.Body.Text.Data))
	assert.Equal(t, "UTF-8", awssdk.ToString(in.Message.Body.Text.Charset))
}
