// internal/app/features/auth/types.go
package authfeature

import "github.com/convenehq/convene/internal/domain/models"

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name    *string `json:"name"`
	Bio     *string `json:"bio"`
	Contact *string `json:"contact"`
	Image   *string `json:"image"`
}

// authResponse is returned by register and login: the public identity
// plus a signed bearer token.
type authResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsApproved bool   `json:"isApproved"`
	Image      string `json:"image,omitempty"`
	Token      string `json:"token"`
}

func newAuthResponse(u models.User, token string) authResponse {
	return authResponse{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		Image:      u.Profile.Image,
		Token:      token,
	}
}
