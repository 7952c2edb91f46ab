package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/authz"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret-key-32-characters")

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"uid":  "7",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", mw, func(c *gin.Context) {
		p := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":   p.UserID,
			"role":      p.Role,
			"client_id": c.GetString(ContextClientID),
			"auth_type": c.GetString(ContextAuthType),
		})
	})
	return router
}

func do(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuth2AuthAcceptsValidToken(t *testing.T) {
	router := newRouter(OAuth2Auth(testSecret))

	w := do(router, "Bearer "+signToken(t, validClaims(), jwt.SigningMethodHS256, testSecret))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["user_id"])
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, "jwt", body["auth_type"])
}

func TestOAuth2AuthClientCredentialsToken(t *testing.T) {
	router := newRouter(OAuth2Auth(testSecret))
	claims := validClaims()
	claims["uid"] = float64(3)
	claims["role"] = "admin"
	claims["aud"] = "cli-client"

	w := do(router, "Bearer "+signToken(t, claims, jwt.SigningMethodHS512, testSecret))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["user_id"])
	assert.Equal(t, "cli-client", body["client_id"])
	assert.Equal(t, "oauth2", body["auth_type"])
}

func TestOAuth2AuthRejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noUID := validClaims()
	delete(noUID, "uid")

	zeroUID := validClaims()
	zeroUID["uid"] = "0"

	badRole := validClaims()
	badRole["role"] = "superuser"

	noExp := validClaims()
	delete(noExp, "exp")

	future := validClaims()
	future["iat"] = time.Now().Add(time.Hour).Unix()

	testCases := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "invalid_request"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "invalid_request"},
		{"empty bearer", "Bearer ", "invalid_token"},
		{"garbage", "Bearer not-a-jwt", "invalid_token"},
		{"wrong secret", "Bearer " + signToken(t, validClaims(), jwt.SigningMethodHS256, []byte("other-secret")), "invalid_token"},
		{"expired", "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, testSecret), "invalid_token"},
		{"missing uid", "Bearer " + signToken(t, noUID, jwt.SigningMethodHS256, testSecret), "invalid_token"},
		{"zero uid", "Bearer " + signToken(t, zeroUID, jwt.SigningMethodHS256, testSecret), "invalid_token"},
		{"unknown role", "Bearer " + signToken(t, badRole, jwt.SigningMethodHS256, testSecret), "invalid_token"},
		{"missing exp", "Bearer " + signToken(t, noExp, jwt.SigningMethodHS256, testSecret), "invalid_token"},
		{"issued in the future", "Bearer " + signToken(t, future, jwt.SigningMethodHS256, testSecret), "invalid_token"},
		{"unsigned", "Bearer " + signToken(t, validClaims(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), "invalid_token"},
	}

	router := newRouter(OAuth2Auth(testSecret))
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.header)
			require.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["error_description"])
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := newRouter(OptionalAuth(testSecret))

	t.Run("no header is anonymous", func(t *testing.T) {
		w := do(router, "")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(0), body["user_id"])
	})

	t.Run("valid token authenticates", func(t *testing.T) {
		w := do(router, "Bearer "+signToken(t, validClaims(), jwt.SigningMethodHS256, testSecret))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})

	t.Run("bad token is still rejected", func(t *testing.T) {
		w := do(router, "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, authz.Principal{}, PrincipalFrom(c))
	assert.True(t, PrincipalFrom(c).Anonymous())
}
