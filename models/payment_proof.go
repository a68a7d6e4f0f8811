package models

import "time"

// PaymentProof is the artifact a buyer uploads as evidence of paying an instruction.
type PaymentProof struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	OrderID       uint        `json:"order_id" gorm:"not null;index"`
	InstructionID uint        `json:"instruction_id" gorm:"not null;uniqueIndex"`
	FileRef       string      `json:"file_ref" gorm:"type:varchar(255);not null"`
	FileName      string      `json:"file_name" gorm:"type:varchar(255)"`
	ContentType   string      `json:"content_type" gorm:"type:varchar(100)"`
	Size          int64       `json:"size"`
	Status        ProofStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	VerifiedBy    *uint       `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time  `json:"verified_at,omitempty"`
	UploadedAt    time.Time   `json:"uploaded_at" gorm:"not null"`
}
