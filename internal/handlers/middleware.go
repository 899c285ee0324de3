package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/checkfox/go_reassign/internal/config"
	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/google/uuid"
)

// AuthMiddleware provides shared-secret authentication for the gateway's
// lookup and action endpoints
type AuthMiddleware struct {
	config *config.Config
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// Authenticate validates the X-Shared-Secret header when auth is enabled
func (m *AuthMiddleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Auth.Enabled {
			next(w, r)
			return
		}

		correlationID := uuid.New().String()
		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)

		secret := r.Header.Get("X-Shared-Secret")
		if secret == "" {
			logger.Warn(ctx, "Authentication failed: missing shared secret header")
			respondUnauthorized(w, correlationID, "missing authentication header")
			return
		}
		if secret != m.config.Auth.SharedSecret {
			logger.Warn(ctx, "Authentication failed: invalid shared secret")
			respondUnauthorized(w, correlationID, "invalid authentication credentials")
			return
		}

		next(w, r)
	}
}

func respondUnauthorized(w http.ResponseWriter, correlationID, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Correlation-ID", correlationID)
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	})
}

// RecoveryMiddleware turns handler panics into 500 responses instead of
// dropped connections
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new RecoveryMiddleware
func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// Recover wraps a handler with panic recovery
func (m *RecoveryMiddleware) Recover(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				correlationID := uuid.New().String()
				ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)
				logger.Error(ctx, "Panic recovered", "panic", rec)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Correlation-ID", correlationID)
				w.WriteHeader(http.StatusInternalServerError)

				_ = json.NewEncoder(w).Encode(ErrorResponse{
					Error:         "internal server error",
					CorrelationID: correlationID,
				})
			}
		}()

		next(w, r)
	}
}
