package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const callerKey ctxKey = iota

// Claims токен выдаёт внешний сервис идентификации: sub = id пользователя, role = роль
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequestLogger access-лог запросов через zap
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// JWTAuth проверяет Bearer-токен (HS256) и кладёт Caller в контекст запроса
func JWTAuth(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			var claims Claims
			tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !tok.Valid {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token subject")
				return
			}

			role, ok := model.ParseRole(claims.Role)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token role")
				return
			}

			caller := service.Caller{UserID: userID, Role: role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
		})
	}
}

// RequireRole пропускает только перечисленные роли
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok || !allowed[caller.Role] {
				writeError(w, http.StatusForbidden, service.ErrForbidden.Code, service.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFrom пользователь, от имени которого выполняется запрос
func CallerFrom(ctx context.Context) (service.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(service.Caller)
	return caller, ok
}

// SignToken выпускает токен для пользователя. Нужен локальным утилитам и тестам,
// в проде токены выдаёт сервис идентификации.
func SignToken(secret []byte, userID uuid.UUID, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
