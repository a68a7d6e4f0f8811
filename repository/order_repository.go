package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
)

type OrderRepository struct {
	db *gorm.DB
}

var _ services.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	existing, err := r.findBySubmissionKey(ctx, order.SubmissionKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		// the code embeds the store-assigned ID
		order.OrderCode = order.GenerateOrderCode()
		return tx.Model(order).Update("order_code", order.OrderCode).Error
	})
	if err != nil {
		// a concurrent submission with the same key won the unique index
		if existing, findErr := r.findBySubmissionKey(ctx, order.SubmissionKey); findErr == nil && existing != nil {
			return existing, true, nil
		}
		return nil, false, err
	}
	return order, false, nil
}

// findBySubmissionKey returns nil without error when no order carries key.
func (r *OrderRepository) findBySubmissionKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	res := r.db.WithContext(ctx).Unscoped().Where("submission_key = ?", key).Limit(1).Find(&order)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *OrderRepository) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	orders := make([]models.Order, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.lostUpdate(ctx, id, string(from), string(to))
	}
	return nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id uint, from, to models.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.lostUpdate(ctx, id, string(from), string(to))
	}
	return nil
}

// lostUpdate explains a conditional update that matched no row.
func (r *OrderRepository) lostUpdate(ctx context.Context, id uint, from, to string) error {
	if _, err := r.FindOrder(ctx, id); err != nil {
		return err
	}
	return &services.InconsistentStateError{From: from, To: to, Reason: "order was modified concurrently"}
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, []models.OrderStatus{models.OrderStatusRejected, models.OrderStatusCancelled}).
		Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindOrder(ctx, id); err != nil {
			return err
		}
		return services.ErrOrderNotDeletable
	}
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, map[models.PaymentStatus]int64, error) {
	var statusRows []struct {
		Status models.OrderStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, nil, err
	}

	var paymentRows []struct {
		PaymentStatus models.PaymentStatus
		Total         int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("payment_status, count(*) as total").
		Group("payment_status").
		Scan(&paymentRows).Error; err != nil {
		return nil, nil, err
	}

	byStatus := make(map[models.OrderStatus]int64, len(statusRows))
	for _, row := range statusRows {
		byStatus[row.Status] = row.Total
	}
	byPayment := make(map[models.PaymentStatus]int64, len(paymentRows))
	for _, row := range paymentRows {
		byPayment[row.PaymentStatus] = row.Total
	}
	return byStatus, byPayment, nil
}
