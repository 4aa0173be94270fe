package services

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/priya-tailors/priyas-tailoring-api/config"
)

// SMSGateway dispatches one-time codes to customer phones
type SMSGateway interface {
	SendOTP(phone, code string) error
}

// BulkSMSGateway sends OTP messages through an HTTP bulk-SMS provider
type BulkSMSGateway struct {
	apiKey     string
	senderID   string
	httpClient *http.Client
}

// NewBulkSMSGateway creates a gateway from the application configuration
func NewBulkSMSGateway(cfg *config.Config) *BulkSMSGateway {
	return &BulkSMSGateway{
		apiKey:   cfg.SMSAPIKey,
		senderID: cfg.SMSSenderID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendOTP dispatches the code to the given phone via the provider's bulk
// endpoint. The message template carries the code and its validity window.
func (g *BulkSMSGateway) SendOTP(phone, code string) error {
	// Code and validity in minutes, per the provider's DLT template
	variables := fmt.Sprintf("%s|5", code)

	endpoint := fmt.Sprintf(
		"https://www.fast2sms.com/dev/bulkV2?authorization=%s&route=dlt&sender_id=%s&variables_values=%s&flash=0&numbers=%s",
		url.QueryEscape(g.apiKey), url.QueryEscape(g.senderID), url.QueryEscape(variables), url.QueryEscape(phone),
	)

	resp, err := g.httpClient.Get(endpoint)
	if err != nil {
		log.Printf("Error while sending OTP: %v", err)
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close SMS response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Failed to send OTP, response code: %d", resp.StatusCode)
		return fmt.Errorf("failed to send OTP, code: %d", resp.StatusCode)
	}

	log.Println("OTP sent successfully to", phone)
	return nil
}

// SentSMS records one dispatched message for test assertions
type SentSMS struct {
	Phone string
	Code  string
}

// MockSMSGateway is an in-memory SMSGateway for testing
type MockSMSGateway struct {
	mu   sync.Mutex
	sent []SentSMS
	// FailNext forces the next SendOTP call to fail
	FailNext bool
}

// NewMockSMSGateway creates a new mock gateway
func NewMockSMSGateway() *MockSMSGateway {
	return &MockSMSGateway{}
}

// SendOTP records the message instead of dispatching it
func (m *MockSMSGateway) SendOTP(phone, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("mock SMS gateway failure")
	}
	m.sent = append(m.sent, SentSMS{Phone: phone, Code: code})
	return nil
}

// Sent returns a copy of all recorded messages
func (m *MockSMSGateway) Sent() []SentSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentSMS, len(m.sent))
	copy(out, m.sent)
	return out
}
