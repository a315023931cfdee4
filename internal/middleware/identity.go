package middleware

import (
	"context"
	"errors"
	"slices"
	"strings"

	"acervo/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const identityLocalsKey = "identity"

// Identity resolution failures.
var (
	ErrMissingToken    = errors.New("authorization header required")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrDomainForbidden = errors.New("email domain is not allowed")
)

// IdentityClaims is the token payload issued by the identity provider.
type IdentityClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	// HostedDomain is set by providers that scope accounts to an organization.
	HostedDomain string `json:"hd,omitempty"`
	jwt.RegisteredClaims
}

// IdentityResolver turns bearer tokens into identities restricted to institutional domains.
type IdentityResolver struct {
	secret  []byte
	domains []string
}

// NewIdentityResolver creates a resolver validating HS256 tokens signed with secret.
func NewIdentityResolver(secret string, allowedDomains []string) *IdentityResolver {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		domains = append(domains, strings.ToLower(d))
	}
	return &IdentityResolver{secret: []byte(secret), domains: domains}
}

// Resolve parses tokenString and checks the email domain against the allow-list.
func (r *IdentityResolver) Resolve(tokenString string) (*models.Identity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return nil, ErrInvalidToken
	}

	identity := &models.Identity{
		OwnerKey:    sub,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
		Email:       claims.Email,
	}

	domain := identity.EmailDomain()
	if !slices.Contains(r.domains, domain) {
		return nil, ErrDomainForbidden
	}
	if claims.HostedDomain != "" && strings.ToLower(claims.HostedDomain) != domain {
		return nil, ErrDomainForbidden
	}

	return identity, nil
}

// RequireIdentity rejects requests without a valid institutional identity.
func (r *IdentityResolver) RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := r.fromRequest(c)
		if err != nil {
			status := fiber.StatusUnauthorized
			if errors.Is(err, ErrDomainForbidden) {
				status = fiber.StatusForbidden
			}
			return models.RespondWithError(c, status, models.NewUnauthorizedError(err.Error()))
		}
		attachIdentity(c, identity)
		return c.Next()
	}
}

// OptionalIdentity attaches an identity when the request carries a valid token and
// otherwise lets the request through anonymously.
func (r *IdentityResolver) OptionalIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity, err := r.fromRequest(c); err == nil {
			attachIdentity(c, identity)
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity attached by RequireIdentity or OptionalIdentity, or nil.
func IdentityFrom(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityLocalsKey).(*models.Identity)
	return identity
}

func (r *IdentityResolver) fromRequest(c *fiber.Ctx) (*models.Identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, ErrMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, ErrInvalidToken
	}
	return r.Resolve(parts[1])
}

func attachIdentity(c *fiber.Ctx, identity *models.Identity) {
	c.Locals(identityLocalsKey, identity)
	c.SetUserContext(context.WithValue(c.UserContext(), OwnerKeyKey, identity.OwnerKey))
}
