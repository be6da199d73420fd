package identity

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode"

	"suryawash/internal/pkg/utils"

	"github.com/sony/gobreaker/v2"
)

// ErrSMSUnavailable is returned while the SMS breaker is open.
var ErrSMSUnavailable = errors.New("sms delivery temporarily unavailable")

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSender writes messages to the log instead of delivering them. Digits in the body
// are masked unless RevealCodes was called.
type LogSender struct {
	loggerf func(format string, args ...interface{})
	reveal  bool
}

func NewLogSender(loggerf func(format string, args ...interface{})) *LogSender {
	if loggerf == nil {
		loggerf = log.Printf
	}
	return &LogSender{loggerf: loggerf}
}

// RevealCodes logs message bodies unmasked. Only for local development.
func (s *LogSender) RevealCodes(on bool) *LogSender {
	s.reveal = on
	return s
}

func (s *LogSender) Send(_ context.Context, phone, message string) error {
	body := message
	if !s.reveal {
		body = maskDigits(message)
	}
	s.loggerf("level=info msg=sms_sent phone=%s body=%q", utils.MaskPhone(phone), body)
	return nil
}

func maskDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return '*'
		}
		return r
	}, s)
}

// BreakerSender stops calling a failing sender for a while after consecutive failures.
type BreakerSender struct {
	next SMSSender
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerSender(next SMSSender, maxFailures uint32, openFor time.Duration, loggerf func(format string, args ...interface{})) *BreakerSender {
	if loggerf == nil {
		loggerf = log.Printf
	}
	if maxFailures == 0 {
		maxFailures = 3
	}
	settings := gobreaker.Settings{
		Name:        "sms",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			loggerf("level=warn msg=breaker_state_changed name=%s from=%s to=%s", name, from.String(), to.String())
		},
	}
	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (s *BreakerSender) Send(ctx context.Context, phone, message string) error {
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Send(ctx, phone, message)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrSMSUnavailable
	}
	return err
}

func (s *BreakerSender) State() gobreaker.State {
	return s.cb.State()
}
