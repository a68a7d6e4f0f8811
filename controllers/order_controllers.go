package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/honda-dealer/documents"
	"github.com/yeremiapane/honda-dealer/middlewares"
	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

type OrderController struct {
	orders   *services.OrderService
	payments *services.PaymentService
}

func NewOrderController(orders *services.OrderService, payments *services.PaymentService) *OrderController {
	return &OrderController{orders: orders, payments: payments}
}

// CreateOrder -> buat order (status='pending', payment_status='unpaid').
// The Idempotency-Key header, when present, is the submission key.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var draft services.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		draft.SubmissionKey = key
	}

	order, duplicate, err := oc.orders.CreateOrder(c.Request.Context(), middlewares.SessionFrom(c), draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	created := services.CreatedOrder{ID: order.ID, OrderCode: order.OrderCode, Duplicate: duplicate}
	if duplicate {
		utils.RespondJSON(c, http.StatusOK, "Order already created", created)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", created)
}

// MyOrders -> daftar order milik user
func (oc *OrderController) MyOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c.Request.Context(), middlewares.SessionFrom(c), services.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

type orderDetail struct {
	*models.Order
	AmountDue    int64                       `json:"amount_due"`
	Instructions []models.PaymentInstruction `json:"payment_instructions"`
	Proofs       []models.PaymentProof       `json:"payment_proofs"`
}

// GetOrder -> detail 1 order beserta riwayat pembayaran
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	session := middlewares.SessionFrom(c)

	order, err := oc.orders.GetOrder(c.Request.Context(), session, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	history, err := oc.payments.OrderPayments(c.Request.Context(), session, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", orderDetail{
		Order:        order,
		AmountDue:    services.AmountDue(order),
		Instructions: history.Instructions,
		Proofs:       history.Proofs,
	})
}

// Schedule -> jadwal cicilan order kredit
func (oc *OrderController) Schedule(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	schedule, err := oc.orders.Schedule(c.Request.Context(), middlewares.SessionFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Installment schedule", schedule)
}

func (oc *OrderController) SchedulePDF(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	session := middlewares.SessionFrom(c)
	order, err := oc.orders.GetOrder(c.Request.Context(), session, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	schedule, err := oc.orders.Schedule(c.Request.Context(), session, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := documents.WriteSchedule(&buf, order, schedule); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="jadwal-cicilan-%s.pdf"`, order.OrderCode))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
