package phone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockSMSSender struct {
	lastTo   string
	lastText string
	sendErr  error
}

func (m *mockSMSSender) Send(_ context.Context, to, text string) error {
	m.lastTo = to
	m.lastText = text
	return m.sendErr
}

func TestLocalVerifierRequestCode(t *testing.T) {
	sms := &mockSMSSender{}
	v := NewLocalVerifier(sms)

	sessionID, err := v.RequestCode(context.Background(), "+14155550101", "123456")
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if sessionID != "" {
		t.Errorf("local variant should not issue a session id, got %q", sessionID)
	}
	if sms.lastTo != "+14155550101" {
		t.Errorf("sms to = %q", sms.lastTo)
	}
	if !strings.Contains(sms.lastText, "123456") {
		t.Errorf("sms body missing otp: %q", sms.lastText)
	}
}

func TestLocalVerifierRequestCodeSendFailure(t *testing.T) {
	sms := &mockSMSSender{sendErr: errors.New("gateway down")}
	v := NewLocalVerifier(sms)

	if _, err := v.RequestCode(context.Background(), "+14155550101", "123456"); err == nil {
		t.Fatal("expected send error to propagate")
	}
}

func TestLocalVerifierVerifyCode(t *testing.T) {
	v := NewLocalVerifier(&mockSMSSender{})

	tests := []struct {
		name      string
		code      string
		storedOTP string
		want      bool
	}{
		{"match", "123456", "123456", true},
		{"mismatch", "654321", "123456", false},
		{"nothing stored", "123456", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := v.VerifyCode(context.Background(), "+14155550101", "", tt.code, tt.storedOTP)
			if err != nil {
				t.Fatalf("VerifyCode: %v", err)
			}
			if ok != tt.want {
				t.Errorf("got %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestDelegatedVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/verifications":
			json.NewEncoder(w).Encode(map[string]string{
				"verification_id": "sess-abc123",
				"status":          "sent",
			})
		case "/v1/verifications/check":
			var req struct {
				VerificationID string `json:"verification_id"`
				Code           string `json:"code"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(map[string]bool{
				"valid": req.VerificationID == "sess-abc123" && req.Code == "123456",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	v := NewDelegatedVerifier(srv.URL, "api-key")

	sessionID, err := v.RequestCode(context.Background(), "+14155550101", "123456")
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if sessionID != "sess-abc123" {
		t.Errorf("session id = %q", sessionID)
	}

	ok, err := v.VerifyCode(context.Background(), "+14155550101", sessionID, "123456", "123456")
	if err != nil || !ok {
		t.Errorf("valid code: ok=%v err=%v", ok, err)
	}

	ok, err = v.VerifyCode(context.Background(), "+14155550101", sessionID, "000000", "123456")
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if ok {
		t.Error("provider rejected the code but verify returned true")
	}
}

func TestDelegatedVerifierFallsBackWhenProviderUnreachable(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	v := NewDelegatedVerifier(srv.URL, "api-key")

	ok, err := v.VerifyCode(context.Background(), "+14155550101", "sess-lost", "123456", "123456")
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if !ok {
		t.Error("expected local comparison fallback to accept the stored otp")
	}

	ok, err = v.VerifyCode(context.Background(), "+14155550101", "sess-lost", "000000", "123456")
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if ok {
		t.Error("fallback comparison accepted a wrong code")
	}
}

func TestDisabledVerifier(t *testing.T) {
	v := NewDisabledVerifier()

	sessionID, err := v.RequestCode(context.Background(), "+14155550101", "123456")
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if !strings.HasPrefix(sessionID, "mock-verification-id-") {
		t.Errorf("session id = %q", sessionID)
	}

	ok, err := v.VerifyCode(context.Background(), "+14155550101", sessionID, "anything", "")
	if err != nil || !ok {
		t.Errorf("disabled verify: ok=%v err=%v", ok, err)
	}
}

func TestNewSelectsVariantByConfig(t *testing.T) {
	// Enabled defaults to the local variant.
	if _, ok := New(testPhoneConfig(true, "local")).(*LocalVerifier); !ok {
		t.Error("expected LocalVerifier")
	}
	if _, ok := New(testPhoneConfig(true, "delegated")).(*DelegatedVerifier); !ok {
		t.Error("expected DelegatedVerifier")
	}
	if _, ok := New(testPhoneConfig(false, "local")).(*DisabledVerifier); !ok {
		t.Error("expected DisabledVerifier when channel disabled")
	}
}
