package domain

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionSucceeded TransactionStatus = "succeeded"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction records one checkout attempt.
type Transaction struct {
	ID             string            `gorm:"column:id;primaryKey;size:64" json:"id"`
	UserID         string            `gorm:"column:user_id;index;not null" json:"user_id"`
	ItemType       ItemType          `gorm:"column:item_type;size:16;not null" json:"item_type"`
	ItemID         string            `gorm:"column:item_id;not null" json:"item_id"`
	ItemName       string            `gorm:"column:item_name" json:"item_name"`
	Amount         float64           `gorm:"column:amount" json:"amount"`
	Status         TransactionStatus `gorm:"column:status;size:16;index;not null" json:"status"`
	IdempotencyKey *string           `gorm:"column:idempotency_key;uniqueIndex" json:"-"`
	GatewayRef     string            `gorm:"column:gateway_ref" json:"gateway_ref,omitempty"`
	FailureReason  string            `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
	Activated      bool              `gorm:"column:activated" json:"activated"`
	CompletedAt    *time.Time        `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt      time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }
