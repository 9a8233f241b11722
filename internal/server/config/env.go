package config

import "os"

// parseEnv overlays secret material from the environment. The credential
// cipher passphrase is deliberately not accepted via flags or JSON so that
// it never ends up in shell history or config files checked into VCS.
//
// CLIPFORGE_SECRET_KEY is consulted first, SESSION_SECRET as a fallback.
// If both are unset the passphrase stays empty and the application must
// refuse to serve encryption-dependent operations.
func parseEnv(config *Config) {
	if v := os.Getenv(EnvEncryptionKey); v != "" {
		config.EncryptionPassphrase = v
		return
	}
	config.EncryptionPassphrase = os.Getenv(EnvEncryptionKeyFallback)
}
