package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/utils"
)

// PaymentSettings are the dealer accounts shown on payment instructions.
type PaymentSettings struct {
	Expiry            time.Duration
	Bank              models.BankTransferDetails
	EWallet           models.EWalletDetails
	QRMerchant        string
	CashPickupAddress string
}

// PaymentMethodOption is one entry of the payment method catalogue.
type PaymentMethodOption struct {
	Method  models.PaymentChannel `json:"payment_method"`
	Details models.MethodDetails  `json:"details"`
}

// PaymentService menangani operasi pembayaran manual: instruksi, bukti transfer dan verifikasi.
type PaymentService struct {
	orders   OrderRepository
	payments PaymentRepository
	files    FileStore
	settings PaymentSettings
	events   Emitter
	now      Clock
}

// NewPaymentService membuat instance baru PaymentService
func NewPaymentService(orders OrderRepository, payments PaymentRepository, files FileStore, settings PaymentSettings, events Emitter) *PaymentService {
	if settings.Expiry <= 0 {
		settings.Expiry = 24 * time.Hour
	}
	return &PaymentService{
		orders:   orders,
		payments: payments,
		files:    files,
		settings: settings,
		events:   events,
		now:      time.Now,
	}
}

func (s *PaymentService) WithClock(now Clock) *PaymentService {
	s.now = now
	return s
}

// GeneratePaymentCode builds a PAY-YYYYMMDD-XXXXXXXX code.
func GeneratePaymentCode(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PAY-%s-%s", at.Format("20060102"), suffix)
}

// PaymentMethods lists every channel with the configured dealer details.
func (s *PaymentService) PaymentMethods() []PaymentMethodOption {
	return []PaymentMethodOption{
		{Method: models.ChannelBankTransfer, Details: s.settings.Bank},
		{Method: models.ChannelEWallet, Details: s.settings.EWallet},
		{Method: models.ChannelQRCode, Details: models.QRCodeDetails{}},
		{Method: models.ChannelCash, Details: models.CashDetails{PickupAddress: s.settings.CashPickupAddress}},
	}
}

func (s *PaymentService) methodDetails(method models.PaymentChannel, code string, amount int64) models.MethodDetails {
	switch method {
	case models.ChannelBankTransfer:
		return s.settings.Bank
	case models.ChannelEWallet:
		return s.settings.EWallet
	case models.ChannelQRCode:
		return models.QRCodeDetails{QRContent: fmt.Sprintf("%s|%s|%d", s.settings.QRMerchant, code, amount)}
	default:
		return models.CashDetails{PickupAddress: s.settings.CashPickupAddress}
	}
}

// IssueInstruction creates the payment instruction for an order. amount must equal the amount
// due for the order; it is fixed from here on. Issuing again with the same method and amount
// while that instruction is active returns it unchanged.
func (s *PaymentService) IssueInstruction(ctx context.Context, session Session, orderID uint, method models.PaymentChannel, amount int64) (*models.PaymentInstruction, error) {
	if !method.Valid() {
		return nil, &ValidationError{Field: "payment_method", Message: "unknown payment method " + string(method)}
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !session.CanSee(order) {
		return nil, ErrForbidden
	}
	if order.Status == models.OrderStatusRejected || order.Status == models.OrderStatusCancelled {
		return nil, &InconsistentStateError{
			From:   string(order.Status),
			To:     string(models.PaymentStatusPending),
			Reason: "order is closed",
		}
	}
	if order.PaymentStatus != models.PaymentStatusUnpaid {
		return nil, paymentStateError(order.PaymentStatus, models.PaymentStatusPending, "a payment was already submitted for this order")
	}
	if amount != AmountDue(order) {
		return nil, ErrAmountMismatch
	}

	now := s.now()
	inst := &models.PaymentInstruction{
		OrderID:     order.ID,
		Amount:      amount,
		PaymentCode: GeneratePaymentCode(now),
		Status:      models.InstructionPending,
		ExpiresAt:   now.Add(s.settings.Expiry),
	}
	if err := inst.SetDetails(s.methodDetails(method, inst.PaymentCode, amount)); err != nil {
		return nil, fmt.Errorf("failed to encode payment details: %w", err)
	}
	if err := s.payments.CreateInstruction(ctx, inst, now); err != nil {
		if errors.Is(err, ErrActiveInstruction) {
			return s.replayInstruction(ctx, order.ID, method, amount, now, err)
		}
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"payment_code": inst.PaymentCode,
		"method":       inst.Method,
		"amount":       inst.Amount,
	}).Info("payment instruction issued")
	s.events.emit(ctx, Event{Type: EventInstructionIssued, OrderID: order.ID, Data: inst})
	return inst, nil
}

// replayInstruction returns the active instruction when it was issued for the same method and
// amount, so a buyer retrying after a lost response gets the original back. Otherwise activeErr
// is returned.
func (s *PaymentService) replayInstruction(ctx context.Context, orderID uint, method models.PaymentChannel, amount int64, now time.Time, activeErr error) (*models.PaymentInstruction, error) {
	latest, err := s.payments.LatestInstruction(ctx, orderID)
	if err != nil {
		return nil, activeErr
	}
	if !latest.Active(now) || latest.Method != method || latest.Amount != amount {
		return nil, activeErr
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     orderID,
		"payment_code": latest.PaymentCode,
	}).Info("payment instruction replayed")
	return latest, nil
}

// Instruction returns one instruction with its order when session may see it.
func (s *PaymentService) Instruction(ctx context.Context, session Session, id uint) (*models.PaymentInstruction, error) {
	inst, err := s.payments.FindInstruction(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, inst.OrderID)
	if err != nil {
		return nil, err
	}
	if !session.CanSee(order) {
		return nil, ErrForbidden
	}
	inst.Order = order
	return inst, nil
}

// SubmitProof attaches the buyer's proof to the latest instruction of the order and moves the
// payment axis to pending.
func (s *PaymentService) SubmitProof(ctx context.Context, session Session, orderID uint, file UploadFile) (*models.PaymentProof, error) {
	if err := ValidateProofFile(file); err != nil {
		return nil, err
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !session.CanSee(order) {
		return nil, ErrForbidden
	}

	inst, err := s.payments.LatestInstruction(ctx, orderID)
	if errors.Is(err, ErrInstructionNotFound) {
		return nil, ErrNoPaymentInstruction
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case inst.Status == models.InstructionExpired:
		return nil, ErrInstructionExpired
	case inst.Status != models.InstructionPending:
		return nil, ErrProofAlreadySubmitted
	case !inst.Active(now):
		return nil, ErrInstructionExpired
	}
	if order.PaymentStatus == models.PaymentStatusPending {
		return nil, ErrProofAlreadySubmitted
	}
	if err := CheckPaymentTransition(order.PaymentStatus, models.PaymentStatusPending); err != nil {
		return nil, err
	}

	ref, err := s.files.Save(ctx, "payment_proofs", file)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}
	proof := &models.PaymentProof{
		OrderID:       order.ID,
		InstructionID: inst.ID,
		FileRef:       ref,
		FileName:      file.Name,
		ContentType:   DetectContentType(file.Data),
		Size:          file.Size(),
		Status:        models.ProofPending,
		UploadedAt:    now,
	}
	if err := s.payments.CreateProof(ctx, proof); err != nil {
		if rmErr := s.files.Remove(ref); rmErr != nil {
			utils.ErrorLogger.Errorf("failed to remove orphaned proof %s: %v", ref, rmErr)
		}
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"instruction_id": inst.ID,
		"proof_id":       proof.ID,
	}).Info("payment proof submitted")
	s.events.emit(ctx, Event{Type: EventProofSubmitted, OrderID: order.ID, Data: proof})
	return proof, nil
}

// VerifyProof approves or rejects a pending proof. Approval marks the instruction and the order
// payment paid; rejection marks the payment failed and cancels the instruction. The order axis
// is left alone.
func (s *PaymentService) VerifyProof(ctx context.Context, session Session, proofID uint, approve bool) (*models.PaymentProof, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	proof, err := s.payments.FindProof(ctx, proofID)
	if err != nil {
		return nil, err
	}

	res := ProofResolution{
		ProofID:       proof.ID,
		InstructionID: proof.InstructionID,
		OrderID:       proof.OrderID,
		Proof:         models.ProofPaid,
		Instruction:   models.InstructionPaid,
		Payment:       models.PaymentStatusPaid,
		VerifiedBy:    session.UserID,
		At:            s.now(),
	}
	if !approve {
		res.Proof = models.ProofFailed
		res.Instruction = models.InstructionCancelled
		res.Payment = models.PaymentStatusFailed
	}

	if proof.Status != models.ProofPending {
		return nil, &InconsistentStateError{From: string(proof.Status), To: string(res.Proof), Reason: "proof was already verified"}
	}
	order, err := s.orders.FindOrder(ctx, proof.OrderID)
	if err != nil {
		return nil, err
	}
	if err := CheckPaymentTransition(order.PaymentStatus, res.Payment); err != nil {
		return nil, err
	}
	if err := s.payments.ResolveProof(ctx, res); err != nil {
		return nil, err
	}

	proof.Status = res.Proof
	proof.VerifiedBy = &res.VerifiedBy
	proof.VerifiedAt = &res.At
	order.PaymentStatus = res.Payment

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"proof_id": proof.ID,
		"result":   proof.Status,
		"admin":    session.UserID,
	}).Info("payment proof verified")
	s.events.emit(ctx, Event{Type: EventProofVerified, OrderID: order.ID, Data: proof})
	s.events.emit(ctx, Event{Type: EventOrderPaymentChanged, OrderID: order.ID, Data: order})
	return proof, nil
}

// Proof returns a proof for admins or for the owner of its order.
func (s *PaymentService) Proof(ctx context.Context, session Session, id uint) (*models.PaymentProof, error) {
	proof, err := s.payments.FindProof(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, proof.OrderID)
	if err != nil {
		return nil, err
	}
	if !session.CanSee(order) {
		return nil, ErrForbidden
	}
	return proof, nil
}

// OrderPayments is the payment history of one order.
type OrderPayments struct {
	Instructions []models.PaymentInstruction `json:"instructions"`
	Proofs       []models.PaymentProof       `json:"proofs"`
}

func (s *PaymentService) OrderPayments(ctx context.Context, session Session, orderID uint) (*OrderPayments, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !session.CanSee(order) {
		return nil, ErrForbidden
	}
	instructions, err := s.payments.ListInstructions(ctx, []uint{orderID})
	if err != nil {
		return nil, err
	}
	proofs, err := s.payments.ListProofs(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderPayments{Instructions: instructions, Proofs: proofs}, nil
}

// ListUserPayments returns every instruction issued for the session's orders, newest first.
func (s *PaymentService) ListUserPayments(ctx context.Context, session Session) ([]models.PaymentInstruction, error) {
	uid := session.UserID
	orders, err := s.orders.ListOrders(ctx, OrderFilter{UserID: &uid})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.PaymentInstruction{}, nil
	}

	ids := make([]uint, 0, len(orders))
	byID := make(map[uint]*models.Order, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		byID[orders[i].ID] = &orders[i]
	}
	instructions, err := s.payments.ListInstructions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range instructions {
		instructions[i].Order = byID[instructions[i].OrderID]
	}
	return instructions, nil
}

// ExpireOverdue marks pending instructions past their expiry as expired. The order payment axis
// stays unpaid so the buyer can request a new instruction.
func (s *PaymentService) ExpireOverdue(ctx context.Context) (int, error) {
	expired, err := s.payments.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire payment instructions: %w", err)
	}
	for i := range expired {
		inst := &expired[i]
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id":     inst.OrderID,
			"payment_code": inst.PaymentCode,
		}).Info("payment instruction expired")
		s.events.emit(ctx, Event{Type: EventInstructionExpired, OrderID: inst.OrderID, Data: inst})
	}
	return len(expired), nil
}

// StartExpirySweeper memeriksa instruksi pembayaran yang sudah kedaluwarsa setiap interval
// sampai ctx dibatalkan.
func (s *PaymentService) StartExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireOverdue(ctx); err != nil {
				utils.ErrorLogger.Errorf("Error checking expired payments: %v", err)
			}
		}
	}
}
