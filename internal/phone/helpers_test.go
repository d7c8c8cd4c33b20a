package phone

import "github.com/solarvest/auth-service/pkg/config"

func testPhoneConfig(enabled bool, provider string) config.PhoneConfig {
	return config.PhoneConfig{
		Enabled:     enabled,
		Provider:    provider,
		ProviderURL: "http://localhost:9999",
		ProviderKey: "test-key",
	}
}
