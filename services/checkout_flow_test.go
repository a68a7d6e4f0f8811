package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/honda-dealer/models"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Motorcycle)
	return list, args.Error(1)
}

func (m *mockGateway) CreateOrder(ctx context.Context, draft OrderDraft) (CreatedOrder, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(CreatedOrder), args.Error(1)
}

func (m *mockGateway) CreatePaymentInstruction(ctx context.Context, orderID uint, method models.PaymentChannel, amount int64) (IssuedInstruction, error) {
	args := m.Called(ctx, orderID, method, amount)
	return args.Get(0).(IssuedInstruction), args.Error(1)
}

func (m *mockGateway) UploadPaymentProof(ctx context.Context, orderID uint, file ProofFile) error {
	return m.Called(ctx, orderID, file).Error(0)
}

type remoteErr struct{ msg string }

func (e remoteErr) Error() string         { return "remote: " + e.msg }
func (e remoteErr) RemoteMessage() string { return e.msg }

var testCatalog = []models.Motorcycle{
	{ID: 1, Name: "Honda Vario 160", Category: models.CategoryScooter, Price: 30_000_000, Available: true},
	{ID: 2, Name: "Honda CBR250RR", Category: models.CategorySport, Price: 65_000_000, Available: false},
}

func buyerSession() Session {
	return Session{UserID: 7, Name: "Budi Santoso", Email: "budi@example.com", Role: models.RoleCustomer}
}

func TestCheckoutFlow_CreditHappyPath(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)
	assert.Equal(t, StepForm, flow.Step())

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil).Once()
	gw.On("CreateOrder", ctx, mock.MatchedBy(func(d OrderDraft) bool {
		return d.TotalPrice == 30_000_000 && d.MotorcycleName == "Honda Vario 160" && d.SubmissionKey != ""
	})).Return(CreatedOrder{ID: 10, OrderCode: "ORD-20250101-000010"}, nil).Once()

	created, err := flow.SubmitForm(ctx, validCreditForm())
	require.NoError(t, err)
	assert.Equal(t, uint(10), created.ID)
	assert.Equal(t, StepPayment, flow.Step())
	assert.Equal(t, int64(6_000_000), flow.AmountDue())

	issued := IssuedInstruction{
		ID: 3, OrderID: 10, PaymentCode: "PAY-20250101-ABCDEF12", Method: models.ChannelBankTransfer,
		Amount: 6_000_000, ExpiresAt: time.Now().Add(24 * time.Hour), Details: models.BankTransferDetails{BankName: "BCA"},
	}
	gw.On("CreatePaymentInstruction", ctx, uint(10), models.ChannelBankTransfer, int64(6_000_000)).Return(issued, nil).Once()

	got, err := flow.SelectPayment(ctx, models.ChannelBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, issued, got)
	assert.Equal(t, StepUpload, flow.Step())

	proof := pngProof()
	gw.On("UploadPaymentProof", ctx, uint(10), proof).Return(nil).Once()
	require.NoError(t, flow.UploadProof(ctx, proof))
	assert.Equal(t, StepSubmitted, flow.Step())

	// hanya sekali
	assert.ErrorIs(t, flow.UploadProof(ctx, proof), ErrProofAlreadySubmitted)
	gw.AssertExpectations(t)
}

func TestCheckoutFlow_CashAmountDue(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	form := validCashForm()
	form.DownPaymentPercent = 20
	form.LoanTerm = 24
	form.CoSigner = models.CoSigner{Name: "ignored"}

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.MatchedBy(func(d OrderDraft) bool {
		return d.DownPaymentPercent == 0 && d.LoanTerm == 0 && d.CoSigner == (models.CoSigner{})
	})).Return(CreatedOrder{ID: 11}, nil)

	_, err := flow.SubmitForm(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, int64(29_500_000), flow.AmountDue())
	gw.AssertExpectations(t)
}

func TestCheckoutFlow_ValidationFailureNeverCallsCreateOrder(t *testing.T) {
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	form := validCreditForm()
	form.NikKTP = "123"

	_, err := flow.SubmitForm(context.Background(), form)
	assert.True(t, IsValidation(err))
	assert.Equal(t, StepForm, flow.Step())
	gw.AssertNotCalled(t, "ListMotorcycles", mock.Anything)
	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutFlow_UnknownOrUnavailableMotorcycle(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	flow := NewCheckoutFlow(buyerSession(), gw)

	form := validCashForm()
	form.MotorcycleID = 99
	_, err := flow.SubmitForm(ctx, form)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "motorcycle_id", ve.Field)

	form.MotorcycleID = 2
	_, err = flow.SubmitForm(ctx, form)
	assert.ErrorIs(t, err, ErrMotorcycleUnavailable)

	assert.Equal(t, StepForm, flow.Step())
	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutFlow_CollaboratorFailureKeepsStep(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	var keys []string
	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.Get(1).(OrderDraft).SubmissionKey) }).
		Return(CreatedOrder{}, remoteErr{"stok habis"}).Once()
	gw.On("CreateOrder", ctx, mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.Get(1).(OrderDraft).SubmissionKey) }).
		Return(CreatedOrder{ID: 12}, nil).Once()

	_, err := flow.SubmitForm(ctx, validCashForm())
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "createOrder", ce.Op)
	assert.Equal(t, "stok habis", ce.Message)
	assert.Equal(t, StepForm, flow.Step())
	_, ok := flow.Order()
	assert.False(t, ok)

	// kirim ulang memakai kunci yang sama
	_, err = flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, StepPayment, flow.Step())
}

func TestCheckoutFlow_CatalogFailureUsesGenericMessage(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("ListMotorcycles", ctx).Return(nil, errors.New("connection refused"))
	flow := NewCheckoutFlow(buyerSession(), gw)

	_, err := flow.SubmitForm(ctx, validCashForm())
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "listMotorcycles", ce.Op)
	assert.Empty(t, ce.Message)
	assert.Equal(t, "listMotorcycles: "+genericCollaboratorMessage, ce.Error())
}

func TestCheckoutFlow_StepOrdering(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	_, err := flow.SelectPayment(ctx, models.ChannelCash)
	var state *InconsistentStateError
	assert.ErrorAs(t, err, &state)

	assert.ErrorIs(t, flow.UploadProof(ctx, pngProof()), ErrNoPaymentInstruction)
	gw.AssertNotCalled(t, "UploadPaymentProof", mock.Anything, mock.Anything, mock.Anything)

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).Return(CreatedOrder{ID: 13}, nil).Once()
	_, err = flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)

	_, err = flow.SubmitForm(ctx, validCashForm())
	assert.ErrorAs(t, err, &state)
	assert.ErrorIs(t, flow.UploadProof(ctx, pngProof()), ErrNoPaymentInstruction)
}

func TestCheckoutFlow_SelectPaymentFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).Return(CreatedOrder{ID: 14}, nil)
	_, err := flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)

	_, err = flow.SelectPayment(ctx, "cheque")
	assert.True(t, IsValidation(err))

	gw.On("CreatePaymentInstruction", ctx, uint(14), models.ChannelQRCode, int64(29_500_000)).
		Return(IssuedInstruction{}, errors.New("timeout")).Once()
	gw.On("CreatePaymentInstruction", ctx, uint(14), models.ChannelQRCode, int64(29_500_000)).
		Return(IssuedInstruction{ID: 5, OrderID: 14, Method: models.ChannelQRCode, Amount: 29_500_000}, nil).Once()

	_, err = flow.SelectPayment(ctx, models.ChannelQRCode)
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "createPaymentInstruction", ce.Op)
	assert.Equal(t, StepPayment, flow.Step())

	_, err = flow.SelectPayment(ctx, models.ChannelQRCode)
	require.NoError(t, err)
	assert.Equal(t, StepUpload, flow.Step())
	gw.AssertExpectations(t)
}

func TestCheckoutFlow_InvalidProofNotSent(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).Return(CreatedOrder{ID: 15}, nil)
	gw.On("CreatePaymentInstruction", ctx, uint(15), models.ChannelCash, int64(29_500_000)).
		Return(IssuedInstruction{ID: 6, OrderID: 15, Method: models.ChannelCash, Amount: 29_500_000}, nil)
	_, err := flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)
	_, err = flow.SelectPayment(ctx, models.ChannelCash)
	require.NoError(t, err)

	err = flow.UploadProof(ctx, ProofFile{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hello")})
	assert.True(t, IsValidation(err))
	assert.Equal(t, StepUpload, flow.Step())
	gw.AssertNotCalled(t, "UploadPaymentProof", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutFlow_ConcurrentUploadSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).Return(CreatedOrder{ID: 16}, nil)
	gw.On("CreatePaymentInstruction", ctx, uint(16), models.ChannelEWallet, int64(29_500_000)).
		Return(IssuedInstruction{ID: 7, OrderID: 16, Method: models.ChannelEWallet, Amount: 29_500_000}, nil)
	gw.On("UploadPaymentProof", ctx, uint(16), mock.Anything).Return(nil).Once()

	_, err := flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)
	_, err = flow.SelectPayment(ctx, models.ChannelEWallet)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- flow.UploadProof(ctx, pngProof())
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrProofAlreadySubmitted)
	}
	assert.Equal(t, 1, ok)
	gw.AssertNumberOfCalls(t, "UploadPaymentProof", 1)
}

func TestCheckoutFlow_StoredProofCountsAsSubmitted(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).Return(CreatedOrder{ID: 17}, nil)
	gw.On("CreatePaymentInstruction", ctx, uint(17), models.ChannelCash, int64(29_500_000)).
		Return(IssuedInstruction{ID: 8, OrderID: 17, Method: models.ChannelCash, Amount: 29_500_000}, nil)
	gw.On("UploadPaymentProof", ctx, uint(17), mock.Anything).
		Return(remoteErr{ErrProofAlreadySubmitted.Error()}).Once()

	_, err := flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)
	_, err = flow.SelectPayment(ctx, models.ChannelCash)
	require.NoError(t, err)

	// remoteErr tidak membungkus sentinel, jadi tetap gagal
	err = flow.UploadProof(ctx, pngProof())
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrProofAlreadySubmitted.Error(), ce.Message)
	assert.Equal(t, StepUpload, flow.Step())

	gw.On("UploadPaymentProof", ctx, uint(17), mock.Anything).
		Return(fmt.Errorf("upload: %w", ErrProofAlreadySubmitted)).Once()
	require.NoError(t, flow.UploadProof(ctx, pngProof()))
	assert.Equal(t, StepSubmitted, flow.Step())
	gw.AssertExpectations(t)
}

func TestCheckoutFlow_LocalErrorKeepsServiceMessage(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	flow := NewCheckoutFlow(buyerSession(), gw)

	gw.On("ListMotorcycles", ctx).Return(testCatalog, nil)
	gw.On("CreateOrder", ctx, mock.Anything).Return(CreatedOrder{ID: 18}, nil)
	gw.On("CreatePaymentInstruction", ctx, uint(18), models.ChannelQRCode, int64(29_500_000)).
		Return(IssuedInstruction{}, fmt.Errorf("issue: %w", ErrActiveInstruction))

	_, err := flow.SubmitForm(ctx, validCashForm())
	require.NoError(t, err)

	_, err = flow.SelectPayment(ctx, models.ChannelQRCode)
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrActiveInstruction)
	assert.Equal(t, ErrActiveInstruction.Error(), ce.Message)
	assert.Equal(t, "createPaymentInstruction: "+ErrActiveInstruction.Error(), ce.Error())
}

func TestSentinelFor(t *testing.T) {
	assert.Equal(t, ErrProofAlreadySubmitted, SentinelFor(ErrProofAlreadySubmitted.Error()))
	assert.Nil(t, SentinelFor("Authorization header missing"))

	state := &InconsistentStateError{From: "unpaid", To: "paid", Reason: "not reachable"}
	assert.Equal(t, state.Error(), newCollaboratorError("updatePaymentStatus", state).Message)
	assert.Empty(t, newCollaboratorError("listMotorcycles", errors.New("dial tcp: refused")).Message)
}
