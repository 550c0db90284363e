package security

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"
)

// RequestLogger tags each request with a uuid and logs method, path and
// duration once the handler chain finishes.
func RequestLogger() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		requestID := uuid.NewString()
		start := time.Now()

		err := e.Next()

		slog.Info("request",
			"request_id", requestID,
			"method", e.Request.Method,
			"path", e.Request.URL.Path,
			"duration", time.Since(start),
			"error", err,
		)

		return err
	}
}

// AdminAuth guards admin routes with a bcrypt-hashed key supplied via the
// X-Admin-Key header. An empty configured hash disables the routes entirely
// rather than leaving them open.
func AdminAuth(keyHash string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if keyHash == "" {
			return e.JSON(http.StatusForbidden, map[string]string{"error": "Admin access not configured"})
		}

		key := e.Request.Header.Get("X-Admin-Key")
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			return e.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
		}

		return e.Next()
	}
}
