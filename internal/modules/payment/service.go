package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"suryawash/internal/database"
	"suryawash/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMissingParams     = errors.New("item type and id are required")
	ErrNotSignedIn       = errors.New("not signed in")
	ErrUnknownType       = errors.New("unknown item type")
	ErrItemNotFound      = errors.New("item not found")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrActivationFailed  = errors.New("payment captured but membership activation failed")
	ErrIdempotencyReused = errors.New("idempotency key already used for a different item")
	ErrPaymentInProgress = errors.New("payment with this idempotency key is still in progress")
)

type Service struct {
	items        itemReader
	transactions transactionRepo
	memberships  membershipWriter
	gateway      Gateway
	loggerf      func(format string, args ...interface{})
}

func NewService(items itemReader, transactions transactionRepo, memberships membershipWriter, gateway Gateway, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		items:        items,
		transactions: transactions,
		memberships:  memberships,
		gateway:      gateway,
		loggerf:      loggerf,
	}
}

// Checkout resolves the item a signed-in user is about to pay for.
func (s *Service) Checkout(ctx context.Context, userID, itemType, itemID string) (*Summary, error) {
	if itemType == "" || itemID == "" {
		return nil, ErrMissingParams
	}
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	item, err := s.lookup(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Type:        item.Type,
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		PriceLabel:  formatPrice(item.Price),
		Badge:       strings.ToUpper(string(item.Type)),
	}, nil
}

// Pay charges userID for the item. A repeated idempotency key from the same user never
// charges again: a succeeded payment is replayed, a declined one reports ErrPaymentFailed
// and one still running reports ErrPaymentInProgress.
func (s *Service) Pay(ctx context.Context, userID, idempotencyKey string, req PayRequest) (*PayResult, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	item, err := s.lookup(ctx, req.Type, req.ID)
	if err != nil {
		return nil, err
	}

	var key *string
	if idempotencyKey = strings.TrimSpace(idempotencyKey); idempotencyKey != "" {
		scoped := userID + ":" + idempotencyKey
		key = &scoped
		if res, err := s.replay(ctx, scoped, item); res != nil || err != nil {
			return res, err
		}
	}

	tx := &domain.Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		ItemType:       item.Type,
		ItemID:         item.ID,
		ItemName:       item.Name,
		Amount:         item.Price,
		Status:         domain.TransactionPending,
		IdempotencyKey: key,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		if key != nil && database.IsUniqueViolation(err) {
			// a concurrent request with the same key won the insert
			return s.replay(ctx, *key, item)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.loggerf("level=info msg=payment_started transaction_id=%s user_id=%s item=%s/%s amount=%.2f",
		tx.ID, userID, item.Type, item.ID, item.Price)

	ref, err := s.gateway.Charge(ctx, tx)
	if err != nil {
		if ferr := s.transactions.MarkFailed(context.WithoutCancel(ctx), tx.ID, err.Error()); ferr != nil {
			s.loggerf("level=error msg=mark_failed_failed transaction_id=%s err=%q", tx.ID, ferr.Error())
		}
		s.loggerf("level=warn msg=payment_failed transaction_id=%s err=%q", tx.ID, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	activate := item.Type == domain.ItemPlan
	if req.Activate != nil {
		activate = *req.Activate
	}
	var activationErr error
	if activate {
		if _, err := s.memberships.ActivateMembership(ctx, userID, item.ID); err != nil {
			s.loggerf("level=error msg=membership_activation_failed transaction_id=%s user_id=%s err=%q", tx.ID, userID, err.Error())
			activationErr = fmt.Errorf("%w: %v", ErrActivationFailed, err)
			activate = false
		}
	}

	if err := s.transactions.MarkSucceeded(context.WithoutCancel(ctx), tx.ID, ref, activate); err != nil {
		return nil, fmt.Errorf("complete transaction: %w", err)
	}
	if activationErr != nil {
		return nil, activationErr
	}
	s.loggerf("level=info msg=payment_succeeded transaction_id=%s gateway_ref=%s activated=%t", tx.ID, ref, activate)

	stored, err := s.transactions.GetByID(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	return &PayResult{Transaction: stored}, nil
}

// History lists the user's payments, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.Transaction, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	return s.transactions.ListByUser(ctx, userID)
}

func (s *Service) lookup(ctx context.Context, itemType, itemID string) (*domain.CatalogItem, error) {
	if itemType == "" || itemID == "" {
		return nil, ErrMissingParams
	}
	t, ok := domain.ParseItemType(itemType)
	if !ok {
		return nil, ErrUnknownType
	}
	item, err := s.items.GetItem(ctx, t, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	return item, nil
}

// replay resolves a repeated key against the transaction stored under it. It returns
// nil, nil when the key is new.
func (s *Service) replay(ctx context.Context, key string, item *domain.CatalogItem) (*PayResult, error) {
	prev, err := s.transactions.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if prev.ItemType != item.Type || prev.ItemID != item.ID {
		return nil, ErrIdempotencyReused
	}
	switch prev.Status {
	case domain.TransactionSucceeded:
		s.loggerf("level=info msg=payment_replayed transaction_id=%s", prev.ID)
		return &PayResult{Transaction: prev, Replayed: true}, nil
	case domain.TransactionFailed:
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, prev.FailureReason)
	default:
		return nil, ErrPaymentInProgress
	}
}
