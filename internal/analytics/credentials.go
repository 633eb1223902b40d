package analytics

import (
	"context"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/internal/secrets"
)

// DefaultCredentialsSecret holds the OAuth tokens for the search APIs.
const DefaultCredentialsSecret = "google-oauth2-tokens"

type Credentials struct {
	vault  secrets.Vault
	name   string
	logger logging.Logger
}

func NewCredentials(vault secrets.Vault, name string, logger logging.Logger) *Credentials {
	if name == "" {
		name = DefaultCredentialsSecret
	}
	return &Credentials{vault: vault, name: name, logger: logger}
}

// Load returns nil with a warning when the vault has no tokens.
func (c *Credentials) Load(ctx context.Context) map[string]any {
	creds := c.vault.Get(ctx, c.name)
	if len(creds) == 0 {
		c.logger.Warn("no search API credentials found in vault", logging.String("secret", c.name))
		return nil
	}
	return creds
}

func (c *Credentials) Save(ctx context.Context, creds map[string]any) bool {
	return c.vault.Put(ctx, c.name, creds)
}
