package reminders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTwilioConfigValidate(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name   string
		config TwilioConfig
	}{
		{name: "missing sid", config: TwilioConfig{AuthToken: "token", FromNumber: "+1"}},
		{name: "missing token", config: TwilioConfig{AccountSID: "AC1", FromNumber: "+1"}},
		{name: "missing from", config: TwilioConfig{AccountSID: "AC1", AuthToken: "token"}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			if _, err := NewTwilioMessenger(testCase.config); !errors.Is(err, ErrInvalidConfig) {
				test.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestTwilioMessengerPostsWhatsAppForm(test *testing.T) {
	test.Parallel()
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := request.ParseForm(); err != nil {
			test.Errorf("parse form: %v", err)
		}
		captured = request
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		_, _ = writer.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer server.Close()

	messenger, err := NewTwilioMessenger(TwilioConfig{
		AccountSID: "AC42",
		AuthToken:  "secret",
		FromNumber: "+14155238886",
		BaseURL:    server.URL + "/",
		HTTPClient: server.Client(),
	})
	if err != nil {
		test.Fatalf("new messenger: %v", err)
	}
	sid, err := messenger.Send(context.Background(), Message{To: "+5511999990000", Body: "hello", MediaURL: "https://cdn.example.com/a.png"})
	if err != nil {
		test.Fatalf("send: %v", err)
	}
	if sid != "SM123" {
		test.Fatalf("sid = %q", sid)
	}
	if captured.URL.Path != "/2010-04-01/Accounts/AC42/Messages.json" {
		test.Fatalf("unexpected path %q", captured.URL.Path)
	}
	user, password, ok := captured.BasicAuth()
	if !ok || user != "AC42" || password != "secret" {
		test.Fatalf("unexpected basic auth %q %q %v", user, password, ok)
	}
	if captured.PostForm.Get("From") != "whatsapp:+14155238886" || captured.PostForm.Get("To") != "whatsapp:+5511999990000" {
		test.Fatalf("unexpected numbers %v", captured.PostForm)
	}
	if captured.PostForm.Get("Body") != "hello" || captured.PostForm.Get("MediaUrl") != "https://cdn.example.com/a.png" {
		test.Fatalf("unexpected form %v", captured.PostForm)
	}
}

func TestTwilioMessengerOmitsEmptyMedia(test *testing.T) {
	test.Parallel()
	var hasMedia bool
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_ = request.ParseForm()
		_, hasMedia = request.PostForm["MediaUrl"]
		_, _ = writer.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	messenger, err := NewTwilioMessenger(TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromNumber: "whatsapp:+1", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		test.Fatalf("new messenger: %v", err)
	}
	if _, err := messenger.Send(context.Background(), Message{To: "+2", Body: "b"}); err != nil {
		test.Fatalf("send: %v", err)
	}
	if hasMedia {
		test.Fatalf("MediaUrl sent for empty media")
	}
}

func TestTwilioMessengerReportsRejections(test *testing.T) {
	test.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadRequest)
		_, _ = writer.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer server.Close()

	messenger, err := NewTwilioMessenger(TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromNumber: "+1", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		test.Fatalf("new messenger: %v", err)
	}
	_, err = messenger.Send(context.Background(), Message{To: "bad", Body: "b"})
	if !errors.Is(err, ErrMessageRejected) {
		test.Fatalf("expected ErrMessageRejected, got %v", err)
	}
}
