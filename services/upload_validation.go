package services

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize is the largest accepted upload, 5 MiB.
const MaxUploadSize = 5 << 20

var (
	// ImageTypes are accepted for catalog images.
	ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	// ProofTypes are accepted for payment proofs.
	ProofTypes = append(append([]string{}, ImageTypes...), "application/pdf")
)

// UploadFile is a file received from an actor, before it reaches a collaborator.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f UploadFile) Size() int64 { return int64(len(f.Data)) }

// ProofFile is the payment proof uploaded on the last buyer step.
type ProofFile = UploadFile

// ValidateProofFile applies the payment proof rules.
func ValidateProofFile(f UploadFile) error {
	return validateUpload("payment_proof", f, ProofTypes)
}

// ValidateImageFile applies the catalog image rules.
func ValidateImageFile(f UploadFile) error {
	return validateUpload("image", f, ImageTypes)
}

// validateUpload checks size, the declared type and the sniffed content type. The
// returned file type is the sniffed one.
func validateUpload(field string, f UploadFile, allowed []string) error {
	if len(f.Data) == 0 {
		return &ValidationError{Field: field, Message: "file is empty"}
	}
	if f.Size() > MaxUploadSize {
		return &ValidationError{Field: field, Message: "ukuran file maksimal 5MB"}
	}

	declared := normalizeContentType(f.ContentType)
	if declared != "" && !containsString(allowed, declared) {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("file type %s is not allowed, use one of %s", declared, strings.Join(allowed, ", ")),
		}
	}

	detected := normalizeContentType(mimetype.Detect(f.Data).String())
	if !containsString(allowed, detected) {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("file content is %s, use one of %s", detected, strings.Join(allowed, ", ")),
		}
	}
	if declared != "" && declared != detected {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("declared type %s does not match file content %s", declared, detected),
		}
	}
	return nil
}

// DetectContentType returns the sniffed type of data, normalized.
func DetectContentType(data []byte) string {
	return normalizeContentType(mimetype.Detect(data).String())
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" || ct == "image/pjpeg" {
		return "image/jpeg"
	}
	return ct
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
