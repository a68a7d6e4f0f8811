package services

import "github.com/yeremiapane/honda-dealer/models"

// Session is the identity of the actor driving a flow. It is set at login and passed
// explicitly to every operation that needs it.
type Session struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

// Authenticated reports whether a user is behind the session.
func (s Session) Authenticated() bool { return s.UserID != 0 }

// CanSee reports whether the session may read order.
func (s Session) CanSee(order *models.Order) bool {
	if s.IsAdmin() {
		return true
	}
	return order.UserID != nil && *order.UserID == s.UserID
}
