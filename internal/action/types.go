package action

import "todo-api/internal/domain"

// AuthenticatedUser is the caller of an authenticated action: the user and the token
// presented on this request.
type AuthenticatedUser struct {
	User    *domain.User
	TokenID string
}
