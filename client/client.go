package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
)

// Client talks to the dealer REST API and satisfies the checkout collaborator ports.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

var (
	_ services.CheckoutGateway = (*Client)(nil)
	_ services.StatusUpdater   = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a failure payload returned by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// RemoteMessage is the message the server supplied.
func (e *APIError) RemoteMessage() string { return e.Message }

// Unwrap maps the message back to the service error the server reported, if any.
func (e *APIError) Unwrap() error { return services.SentinelFor(e.Message) }

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, header http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Status {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in interface{}, header http.Header, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, header, out)
}

// Login stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (services.Session, error) {
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, nil, &out)
	if err != nil {
		return services.Session{}, err
	}
	c.token = out.Token
	return services.SessionFor(&out.User), nil
}

func (c *Client) ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error) {
	var list []models.Motorcycle
	if err := c.doJSON(ctx, http.MethodGet, "/motorcycles", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateOrder(ctx context.Context, draft services.OrderDraft) (services.CreatedOrder, error) {
	var header http.Header
	if draft.SubmissionKey != "" {
		header = http.Header{"Idempotency-Key": []string{draft.SubmissionKey}}
	}
	var created services.CreatedOrder
	err := c.doJSON(ctx, http.MethodPost, "/orders", draft, header, &created)
	return created, err
}

func (c *Client) CreatePaymentInstruction(ctx context.Context, orderID uint, method models.PaymentChannel, amount int64) (services.IssuedInstruction, error) {
	in := struct {
		PaymentMethod models.PaymentChannel `json:"payment_method"`
		Amount        int64                 `json:"amount"`
	}{method, amount}

	var issued services.IssuedInstruction
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/payment-instructions", orderID), in, nil, &issued)
	return issued, err
}

func (c *Client) UploadPaymentProof(ctx context.Context, orderID uint, file services.ProofFile) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="payment_proof"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(file.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/payment-proof", orderID), &buf, mw.FormDataContentType(), nil, nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", orderID),
		map[string]models.OrderStatus{"status": status}, nil, nil)
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/payment-status", orderID),
		map[string]models.PaymentStatus{"payment_status": status}, nil, nil)
}

// VerifyProof approves or rejects a proof as admin.
func (c *Client) VerifyProof(ctx context.Context, proofID uint, approved bool) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/admin/payment-proofs/%d/verify", proofID),
		map[string]bool{"approved": approved}, nil, nil)
}

// GetOrder returns the order as the server sees it.
func (c *Client) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
