package models

// OrderStatus is the order workflow axis.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusApproved   OrderStatus = "approved"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPacking    OrderStatus = "packing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusProcessing, OrderStatusPacking,
		OrderStatusShipping, OrderStatusCompleted, OrderStatusRejected, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment axis of an order. It moves independently of OrderStatus.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired:
		return true
	}
	return false
}

// FinancingMethod is how the buyer pays for the motorcycle.
type FinancingMethod string

const (
	FinancingCash   FinancingMethod = "cash"
	FinancingCredit FinancingMethod = "credit"
)

func (f FinancingMethod) Valid() bool {
	return f == FinancingCash || f == FinancingCredit
}

// PaymentChannel is the channel a payment instruction is issued for.
type PaymentChannel string

const (
	ChannelBankTransfer PaymentChannel = "bank_transfer"
	ChannelEWallet      PaymentChannel = "ewallet"
	ChannelQRCode       PaymentChannel = "qr_code"
	ChannelCash         PaymentChannel = "cash"
)

func (c PaymentChannel) Valid() bool {
	switch c {
	case ChannelBankTransfer, ChannelEWallet, ChannelQRCode, ChannelCash:
		return true
	}
	return false
}

// InstructionStatus is the status of a single payment instruction.
type InstructionStatus string

const (
	InstructionPending   InstructionStatus = "pending"
	InstructionPaid      InstructionStatus = "paid"
	InstructionExpired   InstructionStatus = "expired"
	InstructionCancelled InstructionStatus = "cancelled"
)

// ProofStatus is the verification state of an uploaded payment proof.
type ProofStatus string

const (
	ProofPending ProofStatus = "pending"
	ProofPaid    ProofStatus = "paid"
	ProofFailed  ProofStatus = "failed"
)
