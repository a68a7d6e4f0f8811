package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CoSigner is the spouse or guarantor (avalis) required for credit purchases.
type CoSigner struct {
	Name         string `gorm:"type:varchar(255)" json:"name"`
	Phone        string `gorm:"type:varchar(30)" json:"phone"`
	Relationship string `gorm:"type:varchar(50)" json:"relationship"`
	NIK          string `gorm:"type:varchar(16)" json:"nik"`
	Occupation   string `gorm:"type:varchar(100)" json:"occupation"`
	Address      string `gorm:"type:text" json:"address"`
	Email        string `gorm:"type:varchar(255)" json:"email"`
}

type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OrderCode     string `gorm:"type:varchar(32);index" json:"order_code"`
	SubmissionKey string `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	UserID        *uint  `gorm:"index" json:"user_id,omitempty"`

	CustomerName   string `gorm:"type:varchar(255);not null" json:"customer_name"`
	Nickname       string `gorm:"type:varchar(100)" json:"nickname"`
	NikKK          string `gorm:"type:varchar(16);not null" json:"nik_kk"`
	NikKTP         string `gorm:"type:varchar(16);not null" json:"nik_ktp"`
	BirthPlace     string `gorm:"type:varchar(100)" json:"birth_place"`
	BirthDate      string `gorm:"type:varchar(10)" json:"birth_date"`
	Occupation     string `gorm:"type:varchar(100)" json:"occupation"`
	Address        string `gorm:"type:text" json:"address"`
	CustomerPhone  string `gorm:"type:varchar(30)" json:"customer_phone"`
	CustomerEmail  string `gorm:"type:varchar(255)" json:"customer_email"`
	StnkName       string `gorm:"type:varchar(255)" json:"stnk_name"`
	SurveyAddress  string `gorm:"type:text" json:"survey_address"`
	EmergencyPhone string `gorm:"type:varchar(30)" json:"emergency_phone"`

	MotorcycleID   uint   `gorm:"not null;index" json:"motorcycle_id"`
	MotorcycleName string `gorm:"type:varchar(255)" json:"motorcycle_name"`
	Color          string `gorm:"type:varchar(50)" json:"color"`
	Quantity       int    `gorm:"not null;default:1" json:"quantity"`

	// TotalPrice is the catalog price captured when the order was created.
	TotalPrice         int64           `gorm:"not null" json:"total_price"`
	FinancingMethod    FinancingMethod `gorm:"type:varchar(10);not null" json:"payment_method"`
	DownPaymentPercent *int            `json:"down_payment_percent,omitempty"`
	LoanTerm           *int            `json:"loan_term,omitempty"`
	DownPayment        int64           `json:"down_payment"`
	MonthlyInstallment int64           `json:"monthly_installment"`
	CoSigner           *CoSigner       `gorm:"embedded;embeddedPrefix:spouse_" json:"co_signer,omitempty"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`

	CreatedAt time.Time      `gorm:"not null" json:"order_date"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsCredit reports whether the order is financed.
func (o *Order) IsCredit() bool {
	return o.FinancingMethod == FinancingCredit
}

// GenerateOrderCode builds the human readable order code from the store-assigned ID.
func (o *Order) GenerateOrderCode() string {
	return fmt.Sprintf("ORD-%s-%06d", o.CreatedAt.Format("20060102"), o.ID)
}

// Deletable reports whether administrative cleanup may remove the order.
func (o *Order) Deletable() bool {
	return o.Status == OrderStatusRejected || o.Status == OrderStatusCancelled
}
