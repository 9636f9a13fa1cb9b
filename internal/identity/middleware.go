package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crescentvet/clinic-booking/internal/clinic"
)

// DoctorDirectory resolves a doctor record from the linked account email.
type DoctorDirectory interface {
	GetDoctorByAccountEmail(ctx context.Context, email string) (*clinic.Doctor, error)
}

// Claims is the token payload issued to API callers.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator parses an HMAC-signed bearer token, resolves the caller to an
// Actor, and stores it on the request context. Doctor tokens whose account
// has no linked doctor record are rejected.
func Authenticator(secret string, doctors DoctorDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "authentication disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")

			claims := Claims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			actor := Actor{Role: claims.Role, Email: claims.Subject}
			switch claims.Role {
			case RoleClient, RoleStaff:
			case RoleDoctor:
				doc, err := doctors.GetDoctorByAccountEmail(r.Context(), claims.Subject)
				if err != nil {
					if errors.Is(err, clinic.ErrDoctorNotFound) {
						http.Error(w, "no doctor record for this account", http.StatusForbidden)
						return
					}
					http.Error(w, "could not resolve doctor account", http.StatusInternalServerError)
					return
				}
				actor.Doctor = doc
			default:
				http.Error(w, "unknown role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole rejects requests whose actor does not hold one of the given
// roles.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
