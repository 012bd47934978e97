// Package resettoken issues and verifies stateless password reset tokens.
// No row is persisted: the token is a securelink-signed payload carrying a
// fingerprint of the account's mutable state, so it stops validating the
// moment the password changes or the signing window lapses.
package resettoken

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// DefaultRoute names the securelink route used for reset links.
const DefaultRoute = "password_reset"

const payloadAction = "password_reset"

// Config wires the reset token generator.
type Config struct {
	Manager types.SecureLinkManager
	Clock   types.Clock
	Route   string
}

// Generator derives reset tokens from account state plus the securelink
// signing key. Verification needs the same account, nothing stored.
type Generator struct {
	manager types.SecureLinkManager
	clock   types.Clock
	route   string
}

// NewGenerator constructs the generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Manager == nil {
		return nil, types.ErrMissingSecureLinkManager
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	route := strings.TrimSpace(cfg.Route)
	if route == "" {
		route = DefaultRoute
	}
	return &Generator{
		manager: cfg.Manager,
		clock:   clock,
		route:   route,
	}, nil
}

// Generate produces a signed reset link for the account.
func (g *Generator) Generate(account *types.Account) (string, error) {
	if account == nil || account.ID == uuid.Nil {
		return "", types.ErrAccountIDRequired
	}
	issuedAt := g.clock.Now()
	payload := types.SecureLinkPayload{
		"action":     payloadAction,
		"account_id": account.ID.String(),
		"email":      types.NormalizeAddress(account.Email),
		"seed":       Fingerprint(account),
		"issued_at":  issuedAt.Format(time.RFC3339Nano),
	}
	return g.manager.Generate(g.route, payload)
}

// Verify reports whether the token is still valid for the account. A bad
// signature, a lapsed window, or changed seed fields all yield false without
// an error; only infrastructure failures propagate.
func (g *Generator) Verify(account *types.Account, token string) (bool, error) {
	if account == nil || account.ID == uuid.Nil {
		return false, types.ErrAccountIDRequired
	}
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	payload, err := g.manager.Validate(token)
	if err != nil {
		return false, nil
	}
	if payloadString(payload, "action") != payloadAction {
		return false, nil
	}
	if payloadString(payload, "account_id") != account.ID.String() {
		return false, nil
	}
	if payloadString(payload, "seed") != Fingerprint(account) {
		return false, nil
	}
	return true, nil
}

// Expiration exposes the manager's signing window.
func (g *Generator) Expiration() time.Duration {
	return g.manager.GetExpiration()
}

// Fingerprint condenses the account's mutable seed fields. Any change to the
// credential hash or last-login stamp rotates the fingerprint, invalidating
// previously issued tokens.
func Fingerprint(account *types.Account) string {
	if account == nil {
		return ""
	}
	lastLogin := ""
	if !account.LastLoginAt.IsZero() {
		lastLogin = strconv.FormatInt(account.LastLoginAt.Truncate(time.Second).Unix(), 10)
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{
		account.ID.String(),
		account.PasswordHash,
		lastLogin,
		types.NormalizeAddress(account.Email),
	}, "\x00")))
	return hex.EncodeToString(sum[:16])
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, ok := payload[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}
