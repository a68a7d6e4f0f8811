package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/honda-dealer/models"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInstructionNotFound   = errors.New("payment instruction not found")
	ErrProofNotFound         = errors.New("payment proof not found")
	ErrMotorcycleNotFound    = errors.New("motorcycle not found")
	ErrMotorcycleUnavailable = errors.New("motorcycle is not available")
	ErrPriceChanged          = errors.New("motorcycle price changed, reload the catalog")
	ErrAmountMismatch        = errors.New("amount does not match the amount due for this order")
	ErrActiveInstruction     = errors.New("order already has an active payment instruction")
	ErrNoPaymentInstruction  = errors.New("no payment instruction exists for this order")
	ErrInstructionExpired    = errors.New("payment instruction has expired")
	ErrProofAlreadySubmitted = errors.New("payment proof already submitted for this instruction")
	ErrOrderNotDeletable     = errors.New("only rejected or cancelled orders can be deleted")
	ErrForbidden             = errors.New("not allowed to access this order")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrNotCreditOrder        = errors.New("order is not a credit purchase")
)

// sentinels are the errors whose text is shown to the buyer as is.
var sentinels = []error{
	ErrOrderNotFound, ErrInstructionNotFound, ErrProofNotFound, ErrMotorcycleNotFound,
	ErrMotorcycleUnavailable, ErrPriceChanged, ErrAmountMismatch, ErrActiveInstruction,
	ErrNoPaymentInstruction, ErrInstructionExpired, ErrProofAlreadySubmitted, ErrOrderNotDeletable,
	ErrForbidden, ErrUserNotFound, ErrEmailTaken, ErrInvalidCredentials, ErrNotCreditOrder,
}

// SentinelFor returns the service error whose text is message, or nil.
func SentinelFor(message string) error {
	for _, s := range sentinels {
		if s.Error() == message {
			return s
		}
	}
	return nil
}

// ValidationError is a local input error. It is never sent to a collaborator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed rule of one submission.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Fields lists the offending field names in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidation reports whether err is a ValidationError or ValidationErrors.
func IsValidation(err error) bool {
	var one *ValidationError
	var many ValidationErrors
	return errors.As(err, &one) || errors.As(err, &many)
}

const genericCollaboratorMessage = "the server could not process the request, please try again"

// CollaboratorError wraps a failed call to an external store.
type CollaboratorError struct {
	Op      string
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = genericCollaboratorMessage
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// newCollaboratorError keeps the remote message when the collaborator supplied one, or the
// text of a known service error otherwise.
func newCollaboratorError(op string, err error) *CollaboratorError {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return &CollaboratorError{Op: op, Message: ce.Message, Err: err}
	}
	var remote interface{ RemoteMessage() string }
	if errors.As(err, &remote) {
		return &CollaboratorError{Op: op, Message: remote.RemoteMessage(), Err: err}
	}
	return &CollaboratorError{Op: op, Message: localMessage(err), Err: err}
}

// localMessage is the buyer facing text of an error raised in process.
func localMessage(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	var state *InconsistentStateError
	if errors.As(err, &state) || IsValidation(err) {
		return err.Error()
	}
	return ""
}

// InconsistentStateError is an attempted transition that is not reachable from the current state.
type InconsistentStateError struct {
	From   string
	To     string
	Reason string
}

func (e *InconsistentStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move from %q to %q: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot move from %q to %q", e.From, e.To)
}

func orderStateError(from, to models.OrderStatus, reason string) *InconsistentStateError {
	return &InconsistentStateError{From: string(from), To: string(to), Reason: reason}
}

func paymentStateError(from, to models.PaymentStatus, reason string) *InconsistentStateError {
	return &InconsistentStateError{From: string(from), To: string(to), Reason: reason}
}
