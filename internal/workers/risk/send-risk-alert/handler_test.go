package sendriskalert

import (
	"context"
	stderrors "errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"risk-workers/internal/common/aws"
	"risk-workers/internal/common/config"
	"risk-workers/internal/common/errors"
	"risk-workers/internal/common/logger"
	"risk-workers/internal/risk"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) (string, error) {
	args := m.Called(ctx, to, subject, textBody, htmlBody)
	return args.String(0), args.Error(1)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

type stubSES struct {
	inputs []*ses.SendEmailInput
}

func (s *stubSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.inputs = append(s.inputs, in)
	return &ses.SendEmailOutput{MessageId: awssdk.String("ses-1")}, nil
}

func allChannels() *Config {
	cfg := DefaultConfig()
	cfg.SMSEnabled = true
	return cfg
}

func highRiskInput() *Input {
	return &Input{
		UserID:      "user-1",
		Email:       "user@example.com",
		PhoneNumber: "+15551234567",
		RiskScores:  &risk.Scores{HealthRisk: 90, FinancialRisk: 60, ScamRisk: 70, OverallRisk: 74},
	}
}

func TestNewHandler_RejectsUnknownThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = "severe"

	_, err := NewHandler(cfg, nil, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestHandler_ExecuteSendsOnEveryChannel(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	email.On("SendEmail", mock.Anything, "user@example.com", "Your risk assessment: high overall risk",
		mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return("ses-1", nil)
	sms.On("SendSMS", mock.Anything, "+15551234567", mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return("sns-1", nil)

	h, err := NewHandler(allChannels(), email, sms, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), highRiskInput())
	require.NoError(t, err)
	assert.True(t, out.AlertSent)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, out.Channels)
	assert.Equal(t, "high", out.RiskLevel)

	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestHandler_ExecuteBelowThreshold(t *testing.T) {
	email := &MockEmailSender{}
	h, err := NewHandler(DefaultConfig(), email, nil, logger.NewNoOpLogger())
	require.NoError(t, err)

	in := highRiskInput()
	in.RiskScores.OverallRisk = 49
	out, err := h.Execute(context.Background(), in)

	require.NoError(t, err)
	assert.False(t, out.AlertSent)
	assert.Empty(t, out.Channels)
	assert.Equal(t, "moderate", out.RiskLevel)
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_ExecuteSkipsUnusableContacts(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	h, err := NewHandler(allChannels(), email, sms, logger.NewNoOpLogger())
	require.NoError(t, err)

	in := highRiskInput()
	in.Email = "not-an-email"
	in.PhoneNumber = ""
	out, err := h.Execute(context.Background(), in)

	require.NoError(t, err)
	assert.False(t, out.AlertSent)
	assert.Empty(t, out.Channels)
}

func TestHandler_ExecuteDisabledChannels(t *testing.T) {
	sms := &MockSMSSender{}
	h, err := NewHandler(DefaultConfig(), nil, sms, logger.NewNoOpLogger())
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), highRiskInput())
	require.NoError(t, err)
	assert.False(t, out.AlertSent)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_ExecuteSendFailureIsRetryable(t *testing.T) {
	email := &MockEmailSender{}
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", stderrors.New("throttled"))

	h, err := NewHandler(DefaultConfig(), email, nil, logger.NewNoOpLogger())
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), highRiskInput())

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeAlertSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, ChannelEmail)
}

func TestHandler_ExecuteRequiresScores(t *testing.T) {
	h, err := NewHandler(DefaultConfig(), nil, nil, logger.NewNoOpLogger())
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{UserID: "user-1"})
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodePredictionInvalid, stdErr.Code)
}

func TestHandler_ExecuteThroughSES(t *testing.T) {
	api := &stubSES{}
	h, err := NewHandler(DefaultConfig(), aws.NewSESClientWithService(api, "alerts@example.com"), nil, logger.NewNoOpLogger())
	require.NoError(t, err)

	in := highRiskInput()
	in.RiskScores.OverallRisk = 80
	out, err := h.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "critical", out.RiskLevel)

	require.Len(t, api.inputs, 1)
	assert.Contains(t, awssdk.ToString(api.inputs[0].Message.Body.Text.Data), "Overall risk: 80 (critical)")
}

func TestConfigFromApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.Alerts.Threshold = "critical"
	cfg.Alerts.SMS.Enabled = true

	ac := ConfigFromApp(cfg)
	assert.Equal(t, risk.LevelCritical, ac.Threshold)
	assert.True(t, ac.SMSEnabled)
	assert.False(t, ac.EmailEnabled)
	assert.NoError(t, ac.Validate())
}
