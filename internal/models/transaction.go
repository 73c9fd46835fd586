package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single payment attempt. Its numeric ID is sent to the
// gateway as tran_id.
type Transaction struct {
	ID                uint             `gorm:"primarykey" json:"id"`
	Reference         string           `gorm:"uniqueIndex;type:varchar(32);not null" json:"reference"`
	ProviderID        uint             `gorm:"index;not null" json:"provider_id"`
	ProviderCode      string           `gorm:"type:varchar(50);index;not null" json:"provider_code"`
	Amount            decimal.Decimal  `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency          string           `gorm:"type:varchar(3);not null" json:"currency"`
	PartnerFirstName  string           `gorm:"type:varchar(100)" json:"partner_first_name"`
	PartnerLastName   string           `gorm:"type:varchar(100)" json:"partner_last_name"`
	PartnerEmail      string           `gorm:"type:varchar(255)" json:"partner_email"`
	PaymentMethodCode string           `gorm:"type:varchar(50)" json:"payment_method_code"`
	ProviderReference string           `gorm:"type:varchar(64);index" json:"provider_reference"` // apv from the gateway
	State             TransactionState `gorm:"type:varchar(20);index;not null;default:'draft'" json:"state"`
	StateMessage      string           `gorm:"type:text" json:"state_message"`
	LastStateChange   *time.Time       `json:"last_state_change,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "payment_transactions"
}

// TranID is the identifier echoed by the gateway.
func (t *Transaction) TranID() string {
	return strconv.FormatUint(uint64(t.ID), 10)
}

// SetState applies a transition unless the transaction is already terminal.
// It reports whether the transition was applied.
func (t *Transaction) SetState(state TransactionState, message string) bool {
	if t.State.IsTerminal() {
		return false
	}
	now := time.Now()
	if t.State != state {
		t.LastStateChange = &now
	}
	t.State = state
	t.StateMessage = message
	return true
}

// SplitPartnerName splits a full name into first and last name: the last
// word is the last name and everything before it the first name.
func SplitPartnerName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
