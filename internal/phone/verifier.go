package phone

import (
	"context"

	"github.com/solarvest/auth-service/pkg/config"
)

// Verifier is the phone-channel capability. Two production variants exist:
// local SMS delivery with local code comparison, and delegated verification
// through an external phone-identity provider correlated by an opaque
// verification-session id.
type Verifier interface {
	// RequestCode dispatches otp to phone. The returned session id is
	// non-empty only when a delegated provider issues one; the caller
	// persists it for the later VerifyCode call.
	RequestCode(ctx context.Context, phone, otp string) (sessionID string, err error)

	// VerifyCode reports whether code proves control of phone. storedOTP
	// is the locally persisted code; the local variant compares against it
	// directly and the delegated variant uses it as a fallback when the
	// provider cannot answer.
	VerifyCode(ctx context.Context, phone, sessionID, code, storedOTP string) (bool, error)
}

// New selects the phone channel variant by configuration. A disabled
// channel short-circuits to an always-succeeds path; dev and test only.
func New(cfg config.PhoneConfig) Verifier {
	if !cfg.Enabled {
		return NewDisabledVerifier()
	}
	if cfg.Provider == "delegated" {
		return NewDelegatedVerifier(cfg.ProviderURL, cfg.ProviderKey)
	}
	return NewLocalVerifier(NewDevSMSSender())
}
