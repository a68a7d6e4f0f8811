package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentInstruction is one attempt to pay toward an order. Amount never changes after creation.
type PaymentInstruction struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	OrderID     uint              `json:"order_id" gorm:"not null;index"`
	Order       *Order            `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Method      PaymentChannel    `json:"payment_method" gorm:"type:varchar(20);not null"`
	Amount      int64             `json:"amount" gorm:"not null"`
	PaymentCode string            `json:"payment_code" gorm:"type:varchar(40);uniqueIndex;not null"`
	Status      InstructionStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Details     string            `json:"-" gorm:"type:text"` // method details, JSON
	ExpiresAt   time.Time         `json:"expired_at" gorm:"not null;index"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Active reports whether the instruction can still be paid at now.
func (p *PaymentInstruction) Active(now time.Time) bool {
	return p.Status == InstructionPending && now.Before(p.ExpiresAt)
}

// MethodDetails is the channel specific part of a payment instruction.
// Exactly one implementation exists per PaymentChannel.
type MethodDetails interface {
	Channel() PaymentChannel
}

type BankTransferDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
}

type EWalletDetails struct {
	WalletType   string `json:"ewallet_type"`
	WalletNumber string `json:"ewallet_number"`
	WalletName   string `json:"ewallet_name"`
}

type QRCodeDetails struct {
	QRContent string `json:"qr_content"`
}

type CashDetails struct {
	PickupAddress string `json:"cash_pickup_address"`
}

func (BankTransferDetails) Channel() PaymentChannel { return ChannelBankTransfer }
func (EWalletDetails) Channel() PaymentChannel      { return ChannelEWallet }
func (QRCodeDetails) Channel() PaymentChannel       { return ChannelQRCode }
func (CashDetails) Channel() PaymentChannel         { return ChannelCash }

// SetDetails stores d and sets Method to match it.
func (p *PaymentInstruction) SetDetails(d MethodDetails) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	p.Method = d.Channel()
	p.Details = string(raw)
	return nil
}

// MethodDetails decodes the stored details according to Method.
func (p *PaymentInstruction) MethodDetails() (MethodDetails, error) {
	return DecodeMethodDetails(p.Method, []byte(p.Details))
}

// DecodeMethodDetails decodes raw into the variant for channel.
func DecodeMethodDetails(channel PaymentChannel, raw []byte) (MethodDetails, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch channel {
	case ChannelBankTransfer:
		var d BankTransferDetails
		err := json.Unmarshal(raw, &d)
		return d, err
	case ChannelEWallet:
		var d EWalletDetails
		err := json.Unmarshal(raw, &d)
		return d, err
	case ChannelQRCode:
		var d QRCodeDetails
		err := json.Unmarshal(raw, &d)
		return d, err
	case ChannelCash:
		var d CashDetails
		err := json.Unmarshal(raw, &d)
		return d, err
	}
	return nil, fmt.Errorf("unknown payment channel %q", channel)
}

// MarshalJSON flattens the method details next to the instruction fields.
func (p PaymentInstruction) MarshalJSON() ([]byte, error) {
	type plain PaymentInstruction
	details, err := p.MethodDetails()
	if err != nil {
		details = nil
	}
	return json.Marshal(struct {
		plain
		Details MethodDetails `json:"details,omitempty"`
	}{plain(p), details})
}
