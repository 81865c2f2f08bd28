package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESClient_SendEmail(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return awssdk.ToString(in.Source) == "alerts@example.com" &&
			in.Destination.ToAddresses[0] == "user@example.com" &&
			awssdk.ToString(in.Message.Subject.Data) == "Risk alert" &&
			in.Message.Body.Html == nil
	})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil)

	id, err := NewSESClientWithService(api, "alerts@example.com").
		SendEmail(context.Background(), "user@example.com", "Risk alert", "body", "")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestSESClient_SendEmailError(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewSESClientWithService(api, "alerts@example.com").
		SendEmail(context.Background(), "user@example.com", "s", "b", "<p>b</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user@example.com")
}

func TestSNSClient_SendSMS(t *testing.T) {
	t.Run("with sender id", func(t *testing.T) {
		api := &mockSNS{}
		api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
			_, hasSender := in.MessageAttributes["AWS.SNS.SMS.SenderID"]
			return awssdk.ToString(in.PhoneNumber) == "+15551234567" && hasSender
		})).Return(&sns.PublishOutput{MessageId: awssdk.String("sms-1")}, nil)

		id, err := NewSNSClientWithService(api, "RISK").SendSMS(context.Background(), "+15551234567", "hi")
		require.NoError(t, err)
		assert.Equal(t, "sms-1", id)
	})

	t.Run("without sender id", func(t *testing.T) {
		api := &mockSNS{}
		api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
			_, hasSender := in.MessageAttributes["AWS.SNS.SMS.SenderID"]
			return !hasSender
		})).Return(&sns.PublishOutput{MessageId: awssdk.String("sms-2")}, nil)

		_, err := NewSNSClientWithService(api, "").SendSMS(context.Background(), "+15551234567", "hi")
		require.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("publish error", func(t *testing.T) {
		api := &mockSNS{}
		api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("opted out"))

		_, err := NewSNSClientWithService(api, "").SendSMS(context.Background(), "+15551234567", "hi")
		assert.Error(t, err)
	})
}
