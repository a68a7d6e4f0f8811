package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{services.ErrOrderNotFound, http.StatusNotFound},
	{services.ErrInstructionNotFound, http.StatusNotFound},
	{services.ErrProofNotFound, http.StatusNotFound},
	{services.ErrMotorcycleNotFound, http.StatusNotFound},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrActiveInstruction, http.StatusConflict},
	{services.ErrProofAlreadySubmitted, http.StatusConflict},
	{services.ErrOrderNotDeletable, http.StatusConflict},
	{services.ErrEmailTaken, http.StatusConflict},
	{services.ErrPriceChanged, http.StatusConflict},
	{services.ErrMotorcycleUnavailable, http.StatusConflict},
	{services.ErrNoPaymentInstruction, http.StatusConflict},
	{services.ErrInstructionExpired, http.StatusGone},
	{services.ErrAmountMismatch, http.StatusBadRequest},
	{services.ErrNotCreditOrder, http.StatusBadRequest},
}

// respondServiceError maps service errors to the JSON envelope.
func respondServiceError(c *gin.Context, err error) {
	var many services.ValidationErrors
	if errors.As(err, &many) {
		fields := make([]fieldError, 0, len(many))
		for _, e := range many {
			fields = append(fields, fieldError{Field: e.Field, Message: e.Message})
		}
		utils.RespondErrorData(c, http.StatusUnprocessableEntity, err.Error(), gin.H{"errors": fields})
		return
	}
	var one *services.ValidationError
	if errors.As(err, &one) {
		utils.RespondErrorData(c, http.StatusUnprocessableEntity, err.Error(), gin.H{
			"errors": []fieldError{{Field: one.Field, Message: one.Message}},
		})
		return
	}
	var state *services.InconsistentStateError
	if errors.As(err, &state) {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			utils.RespondError(c, s.code, s.err)
			return
		}
	}

	c.Error(err)
	utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("request failed: %v", err)
	utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// readUpload reads a multipart file field. A missing field returns nil.
func readUpload(c *gin.Context, field string) (*services.UploadFile, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &services.ValidationError{Field: field, Message: err.Error()}
	}
	if fh.Size > services.MaxUploadSize {
		return nil, &services.ValidationError{Field: field, Message: "ukuran file maksimal 5MB"}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	return &services.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
