package config_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/custody"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestPrivyBaseURLDefaultMatchesClient(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	if cfg.Privy.BaseURL != custody.DefaultPrivyBaseURL {
		t.Fatalf("privy base URL default %q diverges from the client default %q", cfg.Privy.BaseURL, custody.DefaultPrivyBaseURL)
	}
}

func TestSecretsAreNotSerialized(t *testing.T) {
	t.Setenv("ORDERLY_SECRET", "0xdeadbeef")
	t.Setenv("PRIVY_APP_SECRET", "super-secret")

	out, err := json.Marshal(config.DefaultServiceConfigFromEnv())
	if err != nil {
		t.Fatal(err)
	}

	for _, secret := range []string{"deadbeef", "super-secret"} {
		if strings.Contains(string(out), secret) {
			t.Fatalf("serialized config leaks secret %q", secret)
		}
	}
}
