package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"atelier/internal/pkg/response"
)

type Role string

const (
	RoleArtist Role = "ARTIST"
	RoleUser   Role = "USER"
)

const (
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	identityKey = "identity"
)

// Identity is the acting user of one request. It is never persisted.
type Identity struct {
	UserID int64
	Role   Role
}

func (i *Identity) Is(userID int64) bool {
	return i != nil && i.UserID == userID
}

// TokenService is the external token validator.
type TokenService interface {
	Validate(token string) bool
	SubjectOf(token string) (int64, error)
	RoleOf(token string) (string, error)
}

// Gate turns a raw Authorization header into an Identity.
type Gate struct {
	tokens TokenService
}

func NewGate(tokens TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// ExtractCredential strips an optional, case-sensitive "Bearer " prefix.
// A header without the prefix is taken as the bare credential.
func ExtractCredential(rawHeader string) (string, error) {
	if rawHeader == "" {
		return "", ErrHeaderMissing
	}

	credential := strings.TrimPrefix(rawHeader, bearerPrefix)
	credential = strings.TrimSpace(credential)
	if credential == "" || credential == strings.TrimSpace(bearerPrefix) {
		return "", ErrCredentialBlank
	}
	return credential, nil
}

func (g *Gate) ResolveIdentity(rawHeader string) (*Identity, error) {
	credential, err := ExtractCredential(rawHeader)
	if err != nil {
		return nil, err
	}
	return g.ResolveToken(credential)
}

// ResolveToken validates an already stripped credential.
func (g *Gate) ResolveToken(token string) (*Identity, error) {
	if token == "" || !g.tokens.Validate(token) {
		return nil, ErrInvalidToken
	}

	userID, err := g.tokens.SubjectOf(token)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}
	role, err := g.tokens.RoleOf(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, Role: Role(role)}, nil
}

func RequireRole(identity *Identity, role Role) error {
	if identity == nil || identity.Role != role {
		return ErrInsufficientRole
	}
	return nil
}

// Authenticate resolves the identity for every request in the group and
// aborts with AUTHORITY_ERROR when it cannot.
func (g *Gate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := g.ResolveIdentity(c.GetHeader(AuthorizationHeader))
		if err != nil {
			response.Fail(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Set("user_id", identity.UserID)
		c.Set("role", string(identity.Role))
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (g *Gate) RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := RequireRole(IdentityFrom(c), role); err != nil {
			response.Fail(c, err)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity set by Authenticate, or nil.
func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*Identity)
	return identity
}
