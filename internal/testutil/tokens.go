package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs identity tokens in tests.
const TestSecret = "test-secret-key-12345678901234567890123456789012"

// IdentityToken mints an HS256 identity token for sub with the given email.
// Extra claims (for example "hd") override the defaults.
func IdentityToken(sub, email string, extra map[string]any) string {
	claims := jwt.MapClaims{
		"sub":     sub,
		"email":   email,
		"name":    "Maria Souza",
		"picture": "https://avatars.example.com/" + sub + ".png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, _ := token.SignedString([]byte(TestSecret))
	return s
}
