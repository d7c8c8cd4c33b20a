package phone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solarvest/auth-service/pkg/logger"
)

// DelegatedVerifier hands OTP delivery and verification to an external
// phone-identity provider. The provider issues an opaque verification
// session id on request; the later check submits the user's code against
// that session.
type DelegatedVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewDelegatedVerifier(baseURL, apiKey string) *DelegatedVerifier {
	return &DelegatedVerifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type startVerificationRequest struct {
	Phone string `json:"phone"`
}

type startVerificationResponse struct {
	VerificationID string `json:"verification_id"`
	Status         string `json:"status"`
}

type checkVerificationRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type checkVerificationResponse struct {
	Valid bool `json:"valid"`
}

func (v *DelegatedVerifier) RequestCode(ctx context.Context, phone, _ string) (string, error) {
	var resp startVerificationResponse
	if err := v.post(ctx, "/v1/verifications", startVerificationRequest{Phone: phone}, &resp); err != nil {
		return "", fmt.Errorf("failed to start phone verification: %w", err)
	}
	if resp.VerificationID == "" {
		return "", fmt.Errorf("provider returned no verification id")
	}
	return resp.VerificationID, nil
}

func (v *DelegatedVerifier) VerifyCode(ctx context.Context, phone, sessionID, code, storedOTP string) (bool, error) {
	if sessionID != "" {
		var resp checkVerificationResponse
		err := v.post(ctx, "/v1/verifications/check", checkVerificationRequest{
			VerificationID: sessionID,
			Code:           code,
		}, &resp)
		if err == nil {
			return resp.Valid, nil
		}
		logger.WarnContext(ctx, "delegated phone verification failed, falling back to local comparison",
			"error", err, "phone", phone)
	}

	// Fallback when the provider cannot answer or never issued a session.
	return storedOTP != "" && code == storedOTP, nil
}

func (v *DelegatedVerifier) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
