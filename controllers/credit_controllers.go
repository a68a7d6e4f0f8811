package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

type CreditController struct {
	catalog *services.CatalogService
}

func NewCreditController(catalog *services.CatalogService) *CreditController {
	return &CreditController{catalog: catalog}
}

type simulationResponse struct {
	Price        int64                  `json:"price"`
	InterestRate float64                `json:"interest_rate"`
	Credit       *services.CreditResult `json:"credit,omitempty"`
	CashTotal    int64                  `json:"cash_total"`
	AdminFee     int64                  `json:"admin_fee"`
	CashDiscount int64                  `json:"cash_discount"`
	DownPayments []int                  `json:"down_payment_options"`
	Terms        []int                  `json:"loan_term_options"`
}

// Simulate previews credit and cash totals. The price comes from the catalog when
// motorcycle_id is given, otherwise from price.
func (cc *CreditController) Simulate(c *gin.Context) {
	var price int64
	if idStr := c.Query("motorcycle_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "motorcycle_id", Message: "must be a number"})
			return
		}
		m, err := cc.catalog.Get(c.Request.Context(), uint(id))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		price = m.Price
	} else {
		p, err := strconv.ParseInt(c.Query("price"), 10, 64)
		if err != nil || p <= 0 {
			respondServiceError(c, &services.ValidationError{Field: "price", Message: "must be a positive number"})
			return
		}
		price = p
	}

	resp := simulationResponse{
		Price:        price,
		InterestRate: services.AnnualInterestRate,
		CashTotal:    services.CashTotal(price),
		AdminFee:     services.AdminFee,
		CashDiscount: services.CashDiscount,
		DownPayments: services.DownPaymentOptions,
		Terms:        services.TermOptions,
	}

	dpStr, termStr := c.Query("down_payment_percent"), c.Query("loan_term")
	if dpStr != "" || termStr != "" {
		dp, _ := strconv.Atoi(dpStr)
		term, _ := strconv.Atoi(termStr)
		if err := services.ValidateCreditTerms(dp, term); err != nil {
			respondServiceError(c, err)
			return
		}
		credit := services.CalculateCredit(price, dp, term)
		resp.Credit = &credit
	}
	utils.RespondJSON(c, http.StatusOK, "Credit simulation", resp)
}
