package services

import (
	"context"

	"github.com/yeremiapane/honda-dealer/models"
)

// LocalGateway satisfies the collaborator ports in process, on behalf of one session.
type LocalGateway struct {
	Session  Session
	Catalog  CatalogReader
	Orders   *OrderService
	Payments *PaymentService
}

var (
	_ CheckoutGateway = (*LocalGateway)(nil)
	_ StatusUpdater   = (*LocalGateway)(nil)
)

func (g *LocalGateway) ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error) {
	return g.Catalog.ListMotorcycles(ctx)
}

func (g *LocalGateway) CreateOrder(ctx context.Context, draft OrderDraft) (CreatedOrder, error) {
	order, duplicate, err := g.Orders.CreateOrder(ctx, g.Session, draft)
	if err != nil {
		return CreatedOrder{}, err
	}
	return CreatedOrder{ID: order.ID, OrderCode: order.OrderCode, Duplicate: duplicate}, nil
}

func (g *LocalGateway) CreatePaymentInstruction(ctx context.Context, orderID uint, method models.PaymentChannel, amount int64) (IssuedInstruction, error) {
	inst, err := g.Payments.IssueInstruction(ctx, g.Session, orderID, method, amount)
	if err != nil {
		return IssuedInstruction{}, err
	}
	return IssuedFrom(inst)
}

func (g *LocalGateway) UploadPaymentProof(ctx context.Context, orderID uint, file ProofFile) error {
	_, err := g.Payments.SubmitProof(ctx, g.Session, orderID, file)
	return err
}

func (g *LocalGateway) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	_, err := g.Orders.UpdateOrderStatus(ctx, g.Session, orderID, status)
	return err
}

func (g *LocalGateway) UpdatePaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) error {
	_, err := g.Orders.UpdatePaymentStatus(ctx, g.Session, orderID, status)
	return err
}

// IssuedFrom converts a stored instruction to the port result.
func IssuedFrom(inst *models.PaymentInstruction) (IssuedInstruction, error) {
	details, err := inst.MethodDetails()
	if err != nil {
		return IssuedInstruction{}, err
	}
	return IssuedInstruction{
		ID:          inst.ID,
		OrderID:     inst.OrderID,
		PaymentCode: inst.PaymentCode,
		Method:      inst.Method,
		Amount:      inst.Amount,
		ExpiresAt:   inst.ExpiresAt,
		Details:     details,
	}, nil
}
