package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"suryawash/internal/pkg/cache"

	"github.com/google/uuid"
)

const (
	attemptNamespace      = "otp_attempt"
	attemptFailNamespace  = "otp_fail"
	phoneAttemptNamespace = "otp_phone"
)

var e164ish = regexp.MustCompile(`^\+?\d{10,15}$`)

// NormalizePhone strips spaces, dashes and parentheses. It returns "" when the
// result is not a plausible phone number.
func NormalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	if !e164ish.MatchString(cleaned) {
		return ""
	}
	return cleaned
}

type pendingAttempt struct {
	Phone    string `json:"phone"`
	CodeHash string `json:"code_hash"`
}

// phoneCodes stores one pending attempt per phone. Starting a new attempt for a phone
// discards the previous one.
type phoneCodes struct {
	cache       cache.Cache
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func (p *phoneCodes) start(ctx context.Context, phone string) (*PhoneAttempt, string, error) {
	code, err := generateCode()
	if err != nil {
		return nil, "", err
	}
	id := uuid.NewString()
	data, err := json.Marshal(pendingAttempt{Phone: phone, CodeHash: hashCode(id, code)})
	if err != nil {
		return nil, "", err
	}

	if prev, err := p.cache.Get(ctx, phoneAttemptNamespace, phone); err == nil {
		_, _ = p.cache.Delete(ctx, attemptNamespace, prev)
	}
	if err := p.cache.Set(ctx, attemptNamespace, id, string(data), p.ttl); err != nil {
		return nil, "", err
	}
	if err := p.cache.Set(ctx, phoneAttemptNamespace, phone, id, p.ttl); err != nil {
		return nil, "", err
	}
	return &PhoneAttempt{VerificationID: id, ExpiresAt: p.now().Add(p.ttl)}, code, nil
}

// discard drops an attempt whose code could not be delivered.
func (p *phoneCodes) discard(ctx context.Context, id, phone string) {
	_, _ = p.cache.Delete(ctx, attemptNamespace, id)
	if cur, err := p.cache.Get(ctx, phoneAttemptNamespace, phone); err == nil && cur == id {
		_, _ = p.cache.Delete(ctx, phoneAttemptNamespace, phone)
	}
}

// confirm consumes the attempt and returns its phone. An attempt is consumed at most once.
func (p *phoneCodes) confirm(ctx context.Context, id, code string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", newError(CodeMissingVerificationID, "verification id is required")
	}
	raw, err := p.cache.Get(ctx, attemptNamespace, id)
	if errors.Is(err, cache.ErrNotFound) {
		return "", newError(CodeCodeExpired, "the code has expired; request a new one")
	}
	if err != nil {
		return "", err
	}
	var pending pendingAttempt
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return "", fmt.Errorf("decode attempt: %w", err)
	}

	if hashCode(id, strings.TrimSpace(code)) != pending.CodeHash {
		fails, err := p.cache.IncrWithExpire(ctx, attemptFailNamespace, id, p.ttl)
		if err != nil {
			return "", err
		}
		if int(fails) >= p.maxAttempts {
			p.discard(ctx, id, pending.Phone)
		}
		return "", newError(CodeInvalidVerificationCode, "the verification code is invalid")
	}

	existed, err := p.cache.Delete(ctx, attemptNamespace, id)
	if err != nil {
		return "", err
	}
	if !existed {
		return "", newError(CodeCodeExpired, "the code has expired; request a new one")
	}
	_, _ = p.cache.Delete(ctx, attemptFailNamespace, id)
	if cur, err := p.cache.Get(ctx, phoneAttemptNamespace, pending.Phone); err == nil && cur == id {
		_, _ = p.cache.Delete(ctx, phoneAttemptNamespace, pending.Phone)
	}
	return pending.Phone, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(id, code string) string {
	sum := sha256.Sum256([]byte(id + ":" + code))
	return hex.EncodeToString(sum[:])
}
