package aws

import (
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
)

func TestBuildPublishInput(t *testing.T) {
	in := BuildPublishInput("arn:aws:sns:us-east-1:123456789012:builds", "Dashboard built", "mode: initial")

	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:builds", awssdk.ToString(in.TopicArn))
	assert.Equal(t, "Dashboard built", awssdk.ToString(in.Subject))
	assert.Equal(t, "mode: initial", awssdk.ToString(in.Message))
}

func TestBuildPublishInput_TruncatesSubject(t *testing.T) {
	in := BuildPublishInput("arn", strings.Repeat("é", 150), "body")
	assert.Len(t, []rune(awssdk.ToString(in.Subject)), 100)
}
