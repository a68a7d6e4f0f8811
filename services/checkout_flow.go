package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/yeremiapane/honda-dealer/models"
)

// CheckoutStep is the buyer-side position in the three step checkout.
type CheckoutStep string

const (
	StepForm      CheckoutStep = "form"
	StepPayment   CheckoutStep = "payment"
	StepUpload    CheckoutStep = "upload"
	StepSubmitted CheckoutStep = "submitted"
)

// CheckoutGateway is every collaborator the buyer flow talks to.
type CheckoutGateway interface {
	CatalogReader
	OrderCreator
	InstructionCreator
	ProofUploader
}

// CheckoutFlow drives one order from the form to the uploaded proof. Each step waits for
// the actor; a failed collaborator call leaves the flow on the same step so it can be
// resubmitted. Steps of one flow are serialized, separate flows share nothing.
type CheckoutFlow struct {
	mu      sync.Mutex
	session Session
	gateway CheckoutGateway

	step          CheckoutStep
	submissionKey string
	draft         OrderDraft
	order         *CreatedOrder
	amountDue     int64
	instruction   *IssuedInstruction
}

func NewCheckoutFlow(session Session, gateway CheckoutGateway) *CheckoutFlow {
	return &CheckoutFlow{session: session, gateway: gateway, step: StepForm}
}

func (f *CheckoutFlow) Step() CheckoutStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *CheckoutFlow) Session() Session { return f.session }

// Order returns the created order once the form step succeeded.
func (f *CheckoutFlow) Order() (CreatedOrder, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return CreatedOrder{}, false
	}
	return *f.order, true
}

// Instruction returns the issued payment instruction once the payment step succeeded.
func (f *CheckoutFlow) Instruction() (IssuedInstruction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.instruction == nil {
		return IssuedInstruction{}, false
	}
	return *f.instruction, true
}

// SubmitForm validates form locally, snapshots the catalog price and creates the order.
// Resubmitting after a failure reuses the same submission key so the store can collapse
// duplicates.
func (f *CheckoutFlow) SubmitForm(ctx context.Context, form OrderForm) (CreatedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepForm {
		return CreatedOrder{}, &InconsistentStateError{From: string(f.step), To: string(StepPayment), Reason: "form already submitted"}
	}
	if err := ValidateOrderForm(form); err != nil {
		return CreatedOrder{}, err
	}
	if form.FinancingMethod == models.FinancingCash {
		form.DownPaymentPercent = 0
		form.LoanTerm = 0
		form.CoSigner = models.CoSigner{}
	}

	list, err := f.gateway.ListMotorcycles(ctx)
	if err != nil {
		return CreatedOrder{}, newCollaboratorError("listMotorcycles", err)
	}
	var selected *models.Motorcycle
	for i := range list {
		if list[i].ID == form.MotorcycleID {
			selected = &list[i]
			break
		}
	}
	if selected == nil {
		return CreatedOrder{}, &ValidationError{Field: "motorcycle_id", Message: "motorcycle is not in the catalog"}
	}
	if !selected.Available {
		return CreatedOrder{}, ErrMotorcycleUnavailable
	}

	if f.submissionKey == "" {
		f.submissionKey = uuid.NewString()
	}
	draft := OrderDraft{
		OrderForm:      form,
		SubmissionKey:  f.submissionKey,
		MotorcycleName: selected.Name,
		TotalPrice:     selected.Price,
	}

	created, err := f.gateway.CreateOrder(ctx, draft)
	if err != nil {
		return CreatedOrder{}, newCollaboratorError("createOrder", err)
	}

	f.draft = draft
	f.order = &created
	f.step = StepPayment
	return created, nil
}

// AmountDue is the instruction amount for the submitted order, computed once.
func (f *CheckoutFlow) AmountDue() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amountDueLocked()
}

func (f *CheckoutFlow) amountDueLocked() int64 {
	if f.order == nil {
		return 0
	}
	if f.amountDue == 0 {
		order := &models.Order{
			TotalPrice:      f.draft.TotalPrice,
			FinancingMethod: f.draft.FinancingMethod,
		}
		if order.IsCredit() {
			dp, term := f.draft.DownPaymentPercent, f.draft.LoanTerm
			order.DownPaymentPercent = &dp
			order.LoanTerm = &term
		}
		f.amountDue = AmountDue(order)
	}
	return f.amountDue
}

// SelectPayment issues the payment instruction for channel.
func (f *CheckoutFlow) SelectPayment(ctx context.Context, channel models.PaymentChannel) (IssuedInstruction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return IssuedInstruction{}, &InconsistentStateError{From: string(f.step), To: string(StepUpload), Reason: "payment can only be selected after the order is created"}
	}
	if !channel.Valid() {
		return IssuedInstruction{}, &ValidationError{Field: "payment_method", Message: "unknown payment method " + string(channel)}
	}

	issued, err := f.gateway.CreatePaymentInstruction(ctx, f.order.ID, channel, f.amountDueLocked())
	if err != nil {
		return IssuedInstruction{}, newCollaboratorError("createPaymentInstruction", err)
	}

	f.instruction = &issued
	f.step = StepUpload
	return issued, nil
}

// UploadProof sends the payment proof. It is rejected before an instruction exists and
// succeeds at most once.
func (f *CheckoutFlow) UploadProof(ctx context.Context, file ProofFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.instruction == nil {
		return ErrNoPaymentInstruction
	}
	if f.step == StepSubmitted {
		return ErrProofAlreadySubmitted
	}
	if err := ValidateProofFile(file); err != nil {
		return err
	}

	if err := f.gateway.UploadPaymentProof(ctx, f.order.ID, file); err != nil {
		// the store already holds a proof from an earlier attempt whose response was lost
		if f.step == StepUpload && errors.Is(err, ErrProofAlreadySubmitted) {
			f.step = StepSubmitted
			return nil
		}
		return newCollaboratorError("uploadPaymentProof", err)
	}
	f.step = StepSubmitted
	return nil
}
