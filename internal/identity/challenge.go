package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"suryawash/internal/pkg/cache"

	"github.com/google/uuid"
)

const challengeNamespace = "challenge"

// challenges issues and redeems HMAC-signed tokens of the form
// base64url("<nonce>.<unix expiry>") + "." + hex(hmac).
type challenges struct {
	secret []byte
	ttl    time.Duration
	cache  cache.Cache
	now    func() time.Time
}

func (c *challenges) issue() *Challenge {
	expiresAt := c.now().Add(c.ttl)
	payload := uuid.NewString() + "." + strconv.FormatInt(expiresAt.Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return &Challenge{Token: encoded + "." + c.sign(encoded), ExpiresAt: expiresAt}
}

// redeem accepts a token once. Expired tokens are rejected; the caller must request a new one.
func (c *challenges) redeem(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return newError(CodeCaptchaCheckFailed, "challenge token is required")
	}
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(c.sign(encoded))) {
		return newError(CodeCaptchaCheckFailed, "challenge token is invalid")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return newError(CodeCaptchaCheckFailed, "challenge token is invalid")
	}
	nonce, exp, ok := strings.Cut(string(raw), ".")
	if !ok {
		return newError(CodeCaptchaCheckFailed, "challenge token is invalid")
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return newError(CodeCaptchaCheckFailed, "challenge token is invalid")
	}
	remaining := time.Unix(unix, 0).Sub(c.now())
	if remaining <= 0 {
		return newError(CodeCaptchaCheckFailed, "challenge expired; request a new one")
	}

	fresh, err := c.cache.SetNX(ctx, challengeNamespace, nonce, "used", remaining)
	if err != nil {
		return err
	}
	if !fresh {
		return newError(CodeCaptchaCheckFailed, "challenge token was already used")
	}
	return nil
}

func (c *challenges) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
