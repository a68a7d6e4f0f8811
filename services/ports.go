package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yeremiapane/honda-dealer/models"
)

// Collaborator ports used by the buyer flow. They are implemented in-process by LocalGateway
// and over HTTP by the client package.

type CatalogReader interface {
	ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (CreatedOrder, error)
}

type InstructionCreator interface {
	CreatePaymentInstruction(ctx context.Context, orderID uint, method models.PaymentChannel, amount int64) (IssuedInstruction, error)
}

type ProofUploader interface {
	UploadPaymentProof(ctx context.Context, orderID uint, file ProofFile) error
}

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) error
}

// OrderDraft is the createOrder payload. TotalPrice is the catalog price the buyer saw.
type OrderDraft struct {
	OrderForm
	SubmissionKey  string `json:"submission_key"`
	MotorcycleName string `json:"motorcycle_name"`
	TotalPrice     int64  `json:"total_price"`
}

type CreatedOrder struct {
	ID        uint   `json:"id"`
	OrderCode string `json:"order_code"`
	// Duplicate is set when the store had already accepted this submission.
	Duplicate bool `json:"duplicate"`
}

type IssuedInstruction struct {
	ID          uint                  `json:"id"`
	OrderID     uint                  `json:"order_id"`
	PaymentCode string                `json:"payment_code"`
	Method      models.PaymentChannel `json:"payment_method"`
	Amount      int64                 `json:"amount"`
	ExpiresAt   time.Time             `json:"expired_at"`
	Details     models.MethodDetails  `json:"details"`
}

// UnmarshalJSON decodes Details into the variant named by payment_method.
func (i *IssuedInstruction) UnmarshalJSON(b []byte) error {
	type plain IssuedInstruction
	var raw struct {
		plain
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = IssuedInstruction(raw.plain)
	details, err := models.DecodeMethodDetails(i.Method, raw.Details)
	if err != nil {
		return err
	}
	i.Details = details
	return nil
}

// Store ports used by the server side services.

type OrderFilter struct {
	UserID        *uint
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
}

type OrderRepository interface {
	// CreateOrder is idempotent on SubmissionKey: a repeated key returns the stored order
	// and duplicate=true.
	CreateOrder(ctx context.Context, order *models.Order) (stored *models.Order, duplicate bool, err error)
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateOrderStatus and UpdatePaymentStatus only apply when the stored value still equals from.
	UpdateOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uint, from, to models.PaymentStatus) error
	DeleteOrder(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, map[models.PaymentStatus]int64, error)
}

type PaymentRepository interface {
	// CreateInstruction fails with ErrActiveInstruction when another instruction of the order
	// is still active at now. Pending instructions past their expiry are marked expired first.
	CreateInstruction(ctx context.Context, inst *models.PaymentInstruction, now time.Time) error
	LatestInstruction(ctx context.Context, orderID uint) (*models.PaymentInstruction, error)
	FindInstruction(ctx context.Context, id uint) (*models.PaymentInstruction, error)
	ListInstructions(ctx context.Context, orderIDs []uint) ([]models.PaymentInstruction, error)
	UpdateInstructionStatus(ctx context.Context, id uint, from, to models.InstructionStatus) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]models.PaymentInstruction, error)

	// CreateProof stores proof and moves the order payment status from unpaid to pending in one
	// transaction. A second proof for the same instruction fails with ErrProofAlreadySubmitted.
	CreateProof(ctx context.Context, proof *models.PaymentProof) error
	FindProof(ctx context.Context, id uint) (*models.PaymentProof, error)
	ListProofs(ctx context.Context, orderID uint) ([]models.PaymentProof, error)
	// ResolveProof applies an admin verification to the proof, its instruction and its order
	// in one transaction.
	ResolveProof(ctx context.Context, r ProofResolution) error
}

// ProofResolution is the outcome of verifying one payment proof.
type ProofResolution struct {
	ProofID       uint
	InstructionID uint
	OrderID       uint
	Proof         models.ProofStatus
	Instruction   models.InstructionStatus
	Payment       models.PaymentStatus
	VerifiedBy    uint
	At            time.Time
}

type MotorcycleRepository interface {
	ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error)
	FindMotorcycle(ctx context.Context, id uint) (*models.Motorcycle, error)
	CreateMotorcycle(ctx context.Context, m *models.Motorcycle) error
	UpdateMotorcycle(ctx context.Context, m *models.Motorcycle) error
	DeleteMotorcycle(ctx context.Context, id uint) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// Cache is a byte cache with expiry, used in front of the catalog.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// FileStore keeps uploaded files and returns a reference to them.
type FileStore interface {
	Save(ctx context.Context, dir string, file UploadFile) (ref string, err error)
	Remove(ref string) error
}

// EventPublisher ships domain events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Notifier pushes events to connected admin dashboards.
type Notifier interface {
	Broadcast(ev Event)
}

// Clock is swapped in tests.
type Clock func() time.Time
