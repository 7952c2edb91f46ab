package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createClient(t *testing.T, db *gorm.DB, id, secret string, owner *models.User, grantTypes string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ID:         id,
		Secret:     string(hashed),
		Name:       id,
		Scopes:     "read write",
		GrantTypes: grantTypes,
	}
	if owner != nil {
		client.UserID = owner.ID
	}
	require.NoError(t, db.Create(client).Error)
}

func createOwner(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := &models.User{Email: uuid.New().String() + "@example.com", Name: "Owner", Password: "hash", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenRouter(o *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", o.TokenHandler())
	return router
}

func requestToken(router http.Handler, form url.Values, basicUser, basicPass string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicUser != "" {
		req.SetBasicAuth(basicUser, basicPass)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuthServerInitialization(t *testing.T) {
	oauthService := NewOAuthService(setupTestDB(t), testJWTSecret)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	owner := createOwner(t, db, models.RoleAdmin)
	createClient(t, db, "planner-sync", "s3cret", owner, "client_credentials")
	router := tokenRouter(NewOAuthService(db, testJWTSecret))

	w := requestToken(router, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"planner-sync"},
		"client_secret": {"s3cret"},
		"scope":         {"read"},
	}, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(AccessTokenTTL.Seconds()), response.ExpiresIn)

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(response.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))
	require.NoError(t, err)
	assert.Equal(t, "planner-sync", claims["aud"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	assert.NotEmpty(t, claims["uid"])
	assert.Equal(t, "read", claims["scope"])

	var stored models.OAuthToken
	require.NoError(t, db.Where("access_token = ?", response.AccessToken).First(&stored).Error)
	assert.Equal(t, "planner-sync", stored.ClientID)
	assert.Nil(t, stored.RefreshToken)
}

func TestClientCredentialsBasicAuth(t *testing.T) {
	db := setupTestDB(t)
	createClient(t, db, "basic-client", "s3cret", createOwner(t, db, models.RoleUser), "client_credentials")
	router := tokenRouter(NewOAuthService(db, testJWTSecret))

	w := requestToken(router, url.Values{"grant_type": {"client_credentials"}}, "basic-client", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestClientCredentialsRejected(t *testing.T) {
	db := setupTestDB(t)
	owner := createOwner(t, db, models.RoleUser)
	createClient(t, db, "good-client", "correct", owner, "client_credentials")
	createClient(t, db, "code-client", "correct", owner, "authorization_code")
	createClient(t, db, "orphan-client", "correct", nil, "client_credentials")
	router := tokenRouter(NewOAuthService(db, testJWTSecret))

	testCases := []struct {
		name string
		form url.Values
	}{
		{
			name: "wrong secret",
			form: url.Values{"grant_type": {"client_credentials"}, "client_id": {"good-client"}, "client_secret": {"wrong"}},
		},
		{
			name: "unknown client",
			form: url.Values{"grant_type": {"client_credentials"}, "client_id": {"nobody"}, "client_secret": {"correct"}},
		},
		{
			name: "grant not registered for the client",
			form: url.Values{"grant_type": {"client_credentials"}, "client_id": {"code-client"}, "client_secret": {"correct"}},
		},
		{
			name: "password grant is not served",
			form: url.Values{"grant_type": {"password"}, "client_id": {"good-client"}, "client_secret": {"correct"}, "username": {"a"}, "password": {"b"}},
		},
		{
			name: "client without owner",
			form: url.Values{"grant_type": {"client_credentials"}, "client_id": {"orphan-client"}, "client_secret": {"correct"}},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := requestToken(router, tt.form, "", "")
			assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest, w.Body.String())
			assert.NotContains(t, w.Body.String(), "access_token")
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.OAuthToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testJWTSecret)
	owner := createOwner(t, db, models.RoleUser)
	createClient(t, db, "test_client", "test_secret", owner, "client_credentials")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "read",
	})
	require.NoError(t, err)
	assert.Equal(t, AccessTokenTTL, tokenInfo.GetAccessExpiresIn())
	assert.Equal(t, 3, len(strings.Split(tokenInfo.GetAccess(), ".")))
}
