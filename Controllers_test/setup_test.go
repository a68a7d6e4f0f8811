package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/honda-dealer/config"
	"github.com/yeremiapane/honda-dealer/database"
	"github.com/yeremiapane/honda-dealer/hub"
	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/repository"
	"github.com/yeremiapane/honda-dealer/router"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/storage"
	"github.com/yeremiapane/honda-dealer/utils"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router     *gin.Engine
	vario      models.Motorcycle
	adminToken string
}

// setupServer menyiapkan router lengkap di atas sqlite in-memory.
func setupServer(t *testing.T, rateLimit float64, burst int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error")

	db, err := config.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	ctx := context.Background()
	motorcycles := repository.NewMotorcycleRepository(db)
	srv := &testServer{vario: models.Motorcycle{
		Name: "Honda Vario 160", Category: models.CategoryScooter, Price: 30_000_000, Available: true,
	}}
	require.NoError(t, motorcycles.CreateMotorcycle(ctx, &srv.vario))

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	h := hub.New()
	events := services.Emitter{
		Publisher: services.NoopPublisher{},
		Notifier:  h,
		Monitor:   services.NewPaymentMonitor(registry),
	}
	orderRepo := repository.NewOrderRepository(db)
	users := services.NewUserService(repository.NewUserRepository(db))
	_, err = users.EnsureAdmin(ctx, "Admin", "admin@dealer.test", "rahasia123")
	require.NoError(t, err)

	srv.router = router.SetupRouter(router.Dependencies{
		Users:    users,
		Catalog:  services.NewCatalogService(services.NewCachedCatalog(motorcycles, nil, 0), motorcycles, files, events),
		Orders:   services.NewOrderService(orderRepo, motorcycles, events),
		Payments: services.NewPaymentService(orderRepo, repository.NewPaymentRepository(db), files, services.PaymentSettings{
			Expiry:            24 * time.Hour,
			Bank:              models.BankTransferDetails{BankName: "BCA", AccountNumber: "1234567890", AccountHolder: "PT Honda Dealer"},
			QRMerchant:        "HONDA-DEALER",
			CashPickupAddress: "Jl. Asia Afrika 8, Bandung",
		}, events),
		Files:     files,
		Hub:       h,
		Metrics:   registry,
		RateLimit: rateLimit,
		RateBurst: burst,
	})
	srv.adminToken = srv.login(t, "admin@dealer.test", "rahasia123")
	return srv
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, header map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/login", "", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

// registerBuyer membuat akun customer baru dan mengembalikan tokennya.
func (s *testServer) registerBuyer(t *testing.T, email string) string {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/register", "", services.RegisterInput{
		Name: "Budi Santoso", Email: email, Phone: "081234567890", Password: "rahasia123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	return s.login(t, email, "rahasia123")
}

func creditDraft(motorcycleID uint) services.OrderDraft {
	return services.OrderDraft{
		OrderForm: services.OrderForm{
			FullName:           "Budi Santoso",
			NikKK:              "3201010101010001",
			NikKTP:             "3201010101010002",
			BirthPlace:         "Bandung",
			BirthDate:          "1990-05-17",
			Occupation:         "Karyawan Swasta",
			Address:            "Jl. Merdeka No. 1, Bandung",
			Phone:              "081234567890",
			StnkName:           "Budi Santoso",
			SurveyAddress:      "Jl. Merdeka No. 1, Bandung",
			MotorcycleID:       motorcycleID,
			Color:              "Merah",
			FinancingMethod:    models.FinancingCredit,
			DownPaymentPercent: 20,
			LoanTerm:           24,
			CoSigner: models.CoSigner{
				Name:    "Siti Aminah",
				Phone:   "081298765432",
				NIK:     "3201010101010003",
				Address: "Jl. Merdeka No. 1, Bandung",
			},
		},
		TotalPrice: 30_000_000,
	}
}

func (s *testServer) createOrder(t *testing.T, token, key string, draft services.OrderDraft) services.CreatedOrder {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/orders", token, draft, map[string]string{"Idempotency-Key": key})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)

	var created services.CreatedOrder
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	return created
}

func proofRequest(t *testing.T, path, token, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="payment_proof"; filename="bukti.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
