package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/honda-dealer/hub"
	"github.com/yeremiapane/honda-dealer/middlewares"
	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

// FilePaths resolves a stored file reference to a local path.
type FilePaths interface {
	Path(ref string) string
}

type AdminController struct {
	orders   *services.OrderService
	payments *services.PaymentService
	files    FilePaths
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewAdminController(orders *services.OrderService, payments *services.PaymentService, files FilePaths, h *hub.Hub, allowedOrigins []string) *AdminController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &AdminController{
		orders:   orders,
		payments: payments,
		files:    files,
		hub:      h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// ListOrders -> semua order, bisa difilter ?status= dan ?payment_status=
func (ac *AdminController) ListOrders(c *gin.Context) {
	orders, err := ac.orders.ListOrders(c.Request.Context(), middlewares.SessionFrom(c), services.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> maju satu langkah di alur order
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := ac.orders.UpdateOrderStatus(c.Request.Context(), middlewares.SessionFrom(c), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func (ac *AdminController) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := ac.orders.UpdatePaymentStatus(c.Request.Context(), middlewares.SessionFrom(c), id, req.PaymentStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment status updated", order)
}

// VerifyProof -> setujui atau tolak bukti pembayaran
func (ac *AdminController) VerifyProof(c *gin.Context) {
	id, ok := parseID(c, "proof_id")
	if !ok {
		return
	}
	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	proof, err := ac.payments.VerifyProof(c.Request.Context(), middlewares.SessionFrom(c), id, *req.Approved)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment proof verified", proof)
}

// ProofFile streams the uploaded proof.
func (ac *AdminController) ProofFile(c *gin.Context) {
	id, ok := parseID(c, "proof_id")
	if !ok {
		return
	}
	proof, err := ac.payments.Proof(c.Request.Context(), middlewares.SessionFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Type", proof.ContentType)
	c.File(ac.files.Path(proof.FileRef))
}

// DeleteOrder -> hapus order rejected/cancelled
func (ac *AdminController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	if err := ac.orders.DeleteOrder(c.Request.Context(), middlewares.SessionFrom(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", nil)
}

// DashboardStats -> ringkasan jumlah order per status
func (ac *AdminController) DashboardStats(c *gin.Context) {
	stats, err := ac.orders.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// AdminWS -> endpoint WebSocket untuk notifikasi realtime dashboard admin
func (ac *AdminController) AdminWS(c *gin.Context) {
	ws, err := ac.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	ac.hub.Serve(ws, middlewares.SessionFrom(c).UserID)
}
