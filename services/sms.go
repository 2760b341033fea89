// services/sms.go
package services

import (
	"fmt"
	"os"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender sends one SMS and returns the provider message SID.
type Sender interface {
	Send(to, from, body string) (string, error)
}

type TwilioSender struct {
	client *twilio.RestClient
}

func NewTwilioSender() *TwilioSender {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *TwilioSender) Send(to, from, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// SentMessage is one message recorded by the mock sender.
type SentMessage struct {
	To   string
	From string
	Body string
}

// MockSender records outbound messages instead of sending them. Numbers in
// FailNumbers get an error back, for exercising the failure path.
type MockSender struct {
	mu          sync.Mutex
	messages    []SentMessage
	FailNumbers map[string]bool
}

func NewMockSender() *MockSender {
	return &MockSender{FailNumbers: map[string]bool{}}
}

func (m *MockSender) Send(to, from, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNumbers[to] {
		return "", fmt.Errorf("carrier rejected message to %s", to)
	}
	m.messages = append(m.messages, SentMessage{To: to, From: from, Body: body})
	return fmt.Sprintf("SM%08d", len(m.messages)), nil
}

func (m *MockSender) SentMessages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *MockSender) ClearSentMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
