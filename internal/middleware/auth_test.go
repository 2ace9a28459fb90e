package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/requestdata"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": "editor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), testSecret)
	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID, "role": rd.Role})
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	router := newAuthRouter()
	userID := uuid.NewString()
	valid := signToken(t, testSecret, userID)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{
			name:   "valid bearer token",
			header: "Bearer " + valid,
			status: http.StatusOK,
		},
		{
			name:   "missing token",
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong signing key",
			header: "Bearer " + signToken(t, "other-secret", userID),
			status: http.StatusUnauthorized,
		},
		{
			name:   "subject is not a uuid",
			header: "Bearer " + signToken(t, testSecret, "editor-42"),
			status: http.StatusUnauthorized,
		},
		{
			name:   "token in query string is not accepted",
			query:  "?token=" + valid,
			status: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d (body %s)", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}
