package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
)

type PaymentRepository struct {
	db *gorm.DB
}

var _ services.PaymentRepository = (*PaymentRepository)(nil)

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// overdue selects pending instructions past expiry that have no proof attached. An instruction
// with a proof waits for verification instead of expiring.
func overdue(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.Model(&models.PaymentInstruction{}).
		Where("status = ? AND expires_at <= ?", models.InstructionPending, now).
		Where("id NOT IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&models.PaymentProof{}).Select("instruction_id"))
}

func (r *PaymentRepository) CreateInstruction(ctx context.Context, inst *models.PaymentInstruction, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serialize instruction creation per order
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, inst.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrOrderNotFound
			}
			return err
		}

		if err := overdue(tx, now).Where("order_id = ?", inst.OrderID).
			Update("status", models.InstructionExpired).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.PaymentInstruction{}).
			Where("order_id = ? AND status = ? AND expires_at > ?", inst.OrderID, models.InstructionPending, now).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return services.ErrActiveInstruction
		}
		return tx.Create(inst).Error
	})
}

func (r *PaymentRepository) LatestInstruction(ctx context.Context, orderID uint) (*models.PaymentInstruction, error) {
	var inst models.PaymentInstruction
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC, id DESC").First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrInstructionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *PaymentRepository) FindInstruction(ctx context.Context, id uint) (*models.PaymentInstruction, error) {
	var inst models.PaymentInstruction
	err := r.db.WithContext(ctx).First(&inst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrInstructionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *PaymentRepository) ListInstructions(ctx context.Context, orderIDs []uint) ([]models.PaymentInstruction, error) {
	list := make([]models.PaymentInstruction, 0)
	if len(orderIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *PaymentRepository) UpdateInstructionStatus(ctx context.Context, id uint, from, to models.InstructionStatus) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentInstruction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindInstruction(ctx, id); err != nil {
			return err
		}
		return &services.InconsistentStateError{From: string(from), To: string(to), Reason: "instruction was modified concurrently"}
	}
	return nil
}

func (r *PaymentRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]models.PaymentInstruction, error) {
	var expired []models.PaymentInstruction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := overdue(tx, now).Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(expired))
		for i := range expired {
			ids = append(ids, expired[i].ID)
			expired[i].Status = models.InstructionExpired
		}
		return tx.Model(&models.PaymentInstruction{}).
			Where("id IN ? AND status = ?", ids, models.InstructionPending).
			Update("status", models.InstructionExpired).Error
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (r *PaymentRepository) CreateProof(ctx context.Context, proof *models.PaymentProof) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.PaymentProof{}).Where("instruction_id = ?", proof.InstructionID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return services.ErrProofAlreadySubmitted
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", proof.OrderID, models.PaymentStatusUnpaid).
			Update("payment_status", models.PaymentStatusPending)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &services.InconsistentStateError{
				From:   string(models.PaymentStatusUnpaid),
				To:     string(models.PaymentStatusPending),
				Reason: "order payment status changed concurrently",
			}
		}
		return tx.Create(proof).Error
	})
}

func (r *PaymentRepository) FindProof(ctx context.Context, id uint) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	err := r.db.WithContext(ctx).First(&proof, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrProofNotFound
	}
	if err != nil {
		return nil, err
	}
	return &proof, nil
}

func (r *PaymentRepository) ListProofs(ctx context.Context, orderID uint) ([]models.PaymentProof, error) {
	proofs := make([]models.PaymentProof, 0)
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("uploaded_at DESC, id DESC").Find(&proofs).Error
	return proofs, err
}

func (r *PaymentRepository) ResolveProof(ctx context.Context, res services.ProofResolution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proofUpdate := tx.Model(&models.PaymentProof{}).
			Where("id = ? AND status = ?", res.ProofID, models.ProofPending).
			Updates(map[string]interface{}{
				"status":      res.Proof,
				"verified_by": res.VerifiedBy,
				"verified_at": res.At,
			})
		if proofUpdate.Error != nil {
			return proofUpdate.Error
		}
		if proofUpdate.RowsAffected == 0 {
			return &services.InconsistentStateError{From: string(models.ProofPending), To: string(res.Proof), Reason: "proof was already verified"}
		}

		if err := tx.Model(&models.PaymentInstruction{}).
			Where("id = ? AND status = ?", res.InstructionID, models.InstructionPending).
			Update("status", res.Instruction).Error; err != nil {
			return err
		}

		orderUpdate := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", res.OrderID, models.PaymentStatusPending).
			Update("payment_status", res.Payment)
		if orderUpdate.Error != nil {
			return orderUpdate.Error
		}
		if orderUpdate.RowsAffected == 0 {
			return &services.InconsistentStateError{From: string(models.PaymentStatusPending), To: string(res.Payment), Reason: "order payment status changed concurrently"}
		}
		return nil
	})
}
