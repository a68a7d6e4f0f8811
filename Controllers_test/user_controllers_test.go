package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/honda-dealer/services"
)

func TestRegisterLoginAndMe(t *testing.T) {
	srv := setupServer(t, 0, 0)
	token := srv.registerBuyer(t, "budi@example.com")

	w, resp := srv.do(t, http.MethodGet, "/me", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session services.Session
	require.NoError(t, json.Unmarshal(resp.Data, &session))
	assert.Equal(t, "budi@example.com", session.Email)
	assert.Equal(t, "customer", session.Role)

	// email yang sama tidak boleh didaftarkan dua kali
	w, _ = srv.do(t, http.MethodPost, "/register", "", services.RegisterInput{
		Name: "Budi", Email: "BUDI@example.com", Password: "rahasia123",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := setupServer(t, 0, 0)
	w, resp := srv.do(t, http.MethodPost, "/login", "", gin.H{"email": "admin@dealer.test", "password": "salah"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Status)
}

func TestLogout_RevokesToken(t *testing.T) {
	srv := setupServer(t, 0, 0)
	token := srv.registerBuyer(t, "andi@example.com")

	w, _ := srv.do(t, http.MethodPost, "/logout", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = srv.do(t, http.MethodGet, "/me", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	srv := setupServer(t, 0, 0)
	w, resp := srv.do(t, http.MethodGet, "/orders/mine", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header missing", resp.Message)
}

func TestRateLimit_TooManyRequests(t *testing.T) {
	// setupServer sudah memakai satu token untuk login admin
	srv := setupServer(t, 0.001, 2)

	w, _ := srv.do(t, http.MethodPost, "/login", "", gin.H{"email": "x@example.com", "password": "salah"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = srv.do(t, http.MethodPost, "/login", "", gin.H{"email": "x@example.com", "password": "salah"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
