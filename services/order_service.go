package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/utils"
)

// OrderService owns the order axis: creation, admin transitions and cleanup.
type OrderService struct {
	orders      OrderRepository
	motorcycles MotorcycleRepository
	events      Emitter
	now         Clock
}

func NewOrderService(orders OrderRepository, motorcycles MotorcycleRepository, events Emitter) *OrderService {
	return &OrderService{
		orders:      orders,
		motorcycles: motorcycles,
		events:      events,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *OrderService) WithClock(now Clock) *OrderService {
	s.now = now
	return s
}

// CreateOrder validates draft again on the server, snapshots the catalog price and stores the
// order. A draft whose SubmissionKey was already accepted returns the stored order and true.
func (s *OrderService) CreateOrder(ctx context.Context, session Session, draft OrderDraft) (*models.Order, bool, error) {
	if err := ValidateOrderForm(draft.OrderForm); err != nil {
		return nil, false, err
	}

	m, err := s.motorcycles.FindMotorcycle(ctx, draft.MotorcycleID)
	if err != nil {
		return nil, false, err
	}
	if !m.Available {
		return nil, false, ErrMotorcycleUnavailable
	}
	if draft.TotalPrice != 0 && draft.TotalPrice != m.Price {
		return nil, false, ErrPriceChanged
	}

	order := newOrderFromDraft(draft, m)
	if session.Authenticated() {
		uid := session.UserID
		order.UserID = &uid
	}
	if order.SubmissionKey == "" {
		order.SubmissionKey = uuid.NewString()
	}

	stored, duplicate, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}
	if duplicate {
		utils.InfoLogger.WithField("order_id", stored.ID).Info("duplicate order submission collapsed")
		return stored, true, nil
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":   stored.ID,
		"order_code": stored.OrderCode,
		"financing":  stored.FinancingMethod,
	}).Info("order created")
	s.events.emit(ctx, Event{Type: EventOrderCreated, OrderID: stored.ID, Data: stored})
	return stored, false, nil
}

func newOrderFromDraft(draft OrderDraft, m *models.Motorcycle) *models.Order {
	f := draft.OrderForm
	order := &models.Order{
		SubmissionKey:   draft.SubmissionKey,
		CustomerName:    f.FullName,
		Nickname:        f.Nickname,
		NikKK:           f.NikKK,
		NikKTP:          f.NikKTP,
		BirthPlace:      f.BirthPlace,
		BirthDate:       f.BirthDate,
		Occupation:      f.Occupation,
		Address:         f.Address,
		CustomerPhone:   f.Phone,
		CustomerEmail:   f.Email,
		StnkName:        f.StnkName,
		SurveyAddress:   f.SurveyAddress,
		EmergencyPhone:  f.EmergencyPhone,
		MotorcycleID:    m.ID,
		MotorcycleName:  m.Name,
		Color:           f.Color,
		Quantity:        1,
		TotalPrice:      m.Price,
		FinancingMethod: f.FinancingMethod,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
	}

	if order.IsCredit() {
		dp, term := f.DownPaymentPercent, f.LoanTerm
		credit := CalculateCredit(m.Price, dp, term)
		coSigner := f.CoSigner
		order.DownPaymentPercent = &dp
		order.LoanTerm = &term
		order.DownPayment = credit.DownPaymentAmount
		order.MonthlyInstallment = credit.MonthlyInstallment
		order.CoSigner = &coSigner
	}
	return order
}

// GetOrder returns the order when session may see it.
func (s *OrderService) GetOrder(ctx context.Context, session Session, id uint) (*models.Order, error) {
	order, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanSee(order) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders lists the session's own orders, or every order for admins.
func (s *OrderService) ListOrders(ctx context.Context, session Session, filter OrderFilter) ([]models.Order, error) {
	if !session.IsAdmin() {
		uid := session.UserID
		filter.UserID = &uid
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown order status " + string(filter.Status)}
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, &ValidationError{Field: "payment_status", Message: "unknown payment status " + string(filter.PaymentStatus)}
	}
	return s.orders.ListOrders(ctx, filter)
}

// UpdateOrderStatus moves the order axis one step. Only admins may do this.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, session Session, id uint, next models.OrderStatus) (*models.Order, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	order, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckOrderTransition(order, next); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrderStatus(ctx, id, order.Status, next); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"from":     order.Status,
		"to":       next,
		"admin":    session.UserID,
	}).Info("order status updated")

	order.Status = next
	order.UpdatedAt = s.now()
	s.events.emit(ctx, Event{Type: EventOrderStatusChanged, OrderID: id, Data: order})
	return order, nil
}

// UpdatePaymentStatus moves the payment axis. It does not touch the order axis.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, session Session, id uint, next models.PaymentStatus) (*models.Order, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	order, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckPaymentTransition(order.PaymentStatus, next); err != nil {
		return nil, err
	}
	if err := s.orders.UpdatePaymentStatus(ctx, id, order.PaymentStatus, next); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"from":     order.PaymentStatus,
		"to":       next,
		"admin":    session.UserID,
	}).Info("order payment status updated")

	order.PaymentStatus = next
	order.UpdatedAt = s.now()
	s.events.emit(ctx, Event{Type: EventOrderPaymentChanged, OrderID: id, Data: order})
	return order, nil
}

// DeleteOrder removes a rejected or cancelled order. The row is soft deleted.
func (s *OrderService) DeleteOrder(ctx context.Context, session Session, id uint) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	order, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return ErrOrderNotDeletable
	}
	if err := s.orders.DeleteOrder(ctx, id); err != nil {
		return err
	}

	utils.InfoLogger.WithField("order_id", id).Info("order deleted")
	s.events.emit(ctx, Event{Type: EventOrderDeleted, OrderID: id})
	return nil
}

// CreditSchedule is the installment plan of a credit order.
type CreditSchedule struct {
	OrderID      uint          `json:"order_id"`
	OrderCode    string        `json:"order_code"`
	Credit       CreditResult  `json:"credit"`
	LoanTerm     int           `json:"loan_term"`
	Installments []Installment `json:"installments"`
}

// Schedule recomputes the installment plan from the order snapshot.
func (s *OrderService) Schedule(ctx context.Context, session Session, id uint) (*CreditSchedule, error) {
	order, err := s.GetOrder(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !order.IsCredit() || order.DownPaymentPercent == nil || order.LoanTerm == nil {
		return nil, ErrNotCreditOrder
	}

	credit := CalculateCredit(order.TotalPrice, *order.DownPaymentPercent, *order.LoanTerm)
	return &CreditSchedule{
		OrderID:      order.ID,
		OrderCode:    order.OrderCode,
		Credit:       credit,
		LoanTerm:     *order.LoanTerm,
		Installments: AmortizationSchedule(credit, *order.LoanTerm, order.CreatedAt),
	}, nil
}

// DashboardStats counts orders per status axis.
type DashboardStats struct {
	TotalOrders     int64                          `json:"total_orders"`
	ByStatus        map[models.OrderStatus]int64   `json:"by_status"`
	ByPaymentStatus map[models.PaymentStatus]int64 `json:"by_payment_status"`
	Payments        PaymentMetrics                 `json:"payments"`
}

func (s *OrderService) Stats(ctx context.Context) (*DashboardStats, error) {
	byStatus, byPayment, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	stats := &DashboardStats{ByStatus: byStatus, ByPaymentStatus: byPayment}
	for _, n := range byStatus {
		stats.TotalOrders += n
	}
	if s.events.Monitor != nil {
		stats.Payments = s.events.Monitor.GetMetrics()
	}
	return stats, nil
}
