package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/honda-dealer/documents"
	"github.com/yeremiapane/honda-dealer/middlewares"
	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// PaymentMethods -> daftar metode pembayaran manual
func (pc *PaymentController) PaymentMethods(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Payment methods", pc.payments.PaymentMethods())
}

// CreateInstruction -> buat instruksi pembayaran untuk order
func (pc *PaymentController) CreateInstruction(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		PaymentMethod models.PaymentChannel `json:"payment_method" binding:"required"`
		Amount        int64                 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	inst, err := pc.payments.IssueInstruction(c.Request.Context(), middlewares.SessionFrom(c), orderID, req.PaymentMethod, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	issued, err := services.IssuedFrom(inst)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment instruction created", issued)
}

// UploadProof -> upload bukti pembayaran (multipart, field "payment_proof")
func (pc *PaymentController) UploadProof(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	file, err := readUpload(c, "payment_proof")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if file == nil {
		respondServiceError(c, &services.ValidationError{Field: "payment_proof", Message: "wajib diisi"})
		return
	}

	proof, err := pc.payments.SubmitProof(c.Request.Context(), middlewares.SessionFrom(c), orderID, *file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment proof uploaded", gin.H{
		"accepted": true,
		"proof":    proof,
	})
}

// MyPayments -> riwayat instruksi pembayaran user
func (pc *PaymentController) MyPayments(c *gin.Context) {
	list, err := pc.payments.ListUserPayments(c.Request.Context(), middlewares.SessionFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment history", list)
}

// InstructionPDF -> unduh instruksi pembayaran
func (pc *PaymentController) InstructionPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	inst, err := pc.payments.Instruction(c.Request.Context(), middlewares.SessionFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := documents.WriteInstruction(&buf, inst, time.Now()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, inst.PaymentCode))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
