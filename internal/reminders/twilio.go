package reminders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultTwilioBaseURL = "https://api.twilio.com"
	whatsAppPrefix       = "whatsapp:"
	twilioErrorBodyLimit = 4096
)

// TwilioConfig carries Twilio account credentials and the sending number.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	HTTPClient *http.Client
}

// Validate applies defaults and checks required credentials.
func (config *TwilioConfig) Validate() error {
	config.AccountSID = strings.TrimSpace(config.AccountSID)
	config.AuthToken = strings.TrimSpace(config.AuthToken)
	config.FromNumber = strings.TrimSpace(config.FromNumber)
	if config.AccountSID == "" || config.AuthToken == "" {
		return fmt.Errorf("%w: twilio account sid and auth token are required", ErrInvalidConfig)
	}
	if config.FromNumber == "" {
		return fmt.Errorf("%w: twilio from number is required", ErrInvalidConfig)
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultTwilioBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return nil
}

// TwilioMessenger sends WhatsApp messages through the Twilio Messages API.
type TwilioMessenger struct {
	config TwilioConfig
}

// NewTwilioMessenger validates config and returns a messenger.
func NewTwilioMessenger(config TwilioConfig) (*TwilioMessenger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TwilioMessenger{config: config}, nil
}

type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts one message and returns the Twilio message SID.
func (messenger *TwilioMessenger) Send(ctx context.Context, message Message) (string, error) {
	form := url.Values{}
	form.Set("From", withWhatsAppPrefix(messenger.config.FromNumber))
	form.Set("To", withWhatsAppPrefix(message.To))
	form.Set("Body", message.Body)
	if strings.TrimSpace(message.MediaURL) != "" {
		form.Set("MediaUrl", strings.TrimSpace(message.MediaURL))
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", messenger.config.BaseURL, url.PathEscape(messenger.config.AccountSID))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build twilio request: %w", err)
	}
	request.SetBasicAuth(messenger.config.AccountSID, messenger.config.AuthToken)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")

	response, err := messenger.config.HTTPClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, twilioErrorBodyLimit))
	if err != nil {
		return "", fmt.Errorf("read twilio response: %w", err)
	}
	var payload twilioMessageResponse
	decodeErr := json.Unmarshal(body, &payload)
	if response.StatusCode >= http.StatusBadRequest {
		if decodeErr == nil && payload.Message != "" {
			return "", fmt.Errorf("%w: status %d code %d: %s", ErrMessageRejected, response.StatusCode, payload.Code, payload.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrMessageRejected, response.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode twilio response: %w", decodeErr)
	}
	return payload.SID, nil
}

func withWhatsAppPrefix(number string) string {
	trimmed := strings.TrimSpace(number)
	if strings.HasPrefix(trimmed, whatsAppPrefix) {
		return trimmed
	}
	return whatsAppPrefix + trimmed
}
