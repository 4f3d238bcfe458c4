package auth

import "atelier/internal/pkg/apperr"

var (
	ErrHeaderMissing    = apperr.Authority("authorization header missing")
	ErrCredentialBlank  = apperr.Authority("authorization credential is empty")
	ErrInvalidToken     = apperr.Authority("invalid or expired token")
	ErrInsufficientRole = apperr.Authority("insufficient role for this operation")
)
