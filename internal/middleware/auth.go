package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/authz"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the authentication middlewares.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClientID = "clientID"
	ContextScopes   = "scopes"
	ContextAuthType = "auth_type"
)

// accessClaims covers both token kinds: login tokens carry uid and role,
// client credentials tokens add aud (the client id) and scope.
type accessClaims struct {
	UID   interface{} `json:"uid"`
	Role  string      `json:"role"`
	Scope string      `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	jwt.WithExpirationRequired(),
	jwt.WithIssuedAt(),
)

// tokenError is an RFC 6750 error code with its description.
type tokenError struct {
	code        string
	description string
}

// OAuth2Auth rejects requests without a valid Bearer JWT. Both the tokens from
// /auth/login and the client credentials tokens from /oauth/token are accepted.
func OAuth2Auth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if terr := authenticate(c, c.GetHeader("Authorization"), jwtSecret); terr != nil {
			abortUnauthorized(c, terr)
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through and authenticates the rest.
// A header that is present but carries a bad token is still a 401.
func OptionalAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			if terr := authenticate(c, header, jwtSecret); terr != nil {
				abortUnauthorized(c, terr)
				return
			}
		}
		c.Next()
	}
}

// PrincipalFrom returns the caller set by OAuth2Auth or OptionalAuth. Requests
// that passed no token yield the anonymous principal.
func PrincipalFrom(c *gin.Context) authz.Principal {
	var p authz.Principal
	if id, ok := c.Get(ContextUserID); ok {
		p.UserID, _ = id.(uint)
	}
	p.Role = c.GetString(ContextUserRole)
	return p
}

func abortUnauthorized(c *gin.Context, terr *tokenError) {
	c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q`, terr.code))
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewOAuth2Error(terr.code, terr.description))
}

func authenticate(c *gin.Context, header string, jwtSecret []byte) *tokenError {
	raw, found := strings.CutPrefix(header, "Bearer ")
	switch {
	case header == "":
		return &tokenError{models.ErrInvalidRequest, "Missing Authorization header. A valid Bearer token is required."}
	case !found:
		return &tokenError{models.ErrInvalidRequest, "Authorization header must use the Bearer scheme"}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &tokenError{models.ErrInvalidToken, "Bearer token is empty"}
	}

	claims := &accessClaims{}
	if _, err := tokenParser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}); err != nil {
		return &tokenError{models.ErrInvalidToken, describeParseError(err)}
	}

	userID, err := claims.userID()
	if err != nil {
		return &tokenError{models.ErrInvalidToken, err.Error()}
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleUser {
		return &tokenError{models.ErrInvalidToken, fmt.Sprintf("role claim %q is not one of admin, user", claims.Role)}
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextUserRole, claims.Role)
	c.Set(ContextAuthType, "jwt")
	if len(claims.Audience) > 0 && claims.Audience[0] != "" {
		c.Set(ContextClientID, claims.Audience[0])
		c.Set(ContextAuthType, "oauth2")
	}
	if claims.Scope != "" {
		c.Set(ContextScopes, claims.Scope)
	}
	return nil
}

func describeParseError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "token missing required 'exp' claim"
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token is not valid yet"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token signature is invalid"
	}
	return "token is malformed"
}

// userID reads uid as either a numeric string or a JSON number.
func (c *accessClaims) userID() (uint, error) {
	var id uint64
	switch uid := c.UID.(type) {
	case string:
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("uid claim %q is not numeric", uid)
		}
		id = parsed
	case float64:
		if uid != float64(uint32(uid)) {
			return 0, fmt.Errorf("uid claim %v is not a positive integer", uid)
		}
		id = uint64(uid)
	case nil:
		return 0, errors.New("token missing required 'uid' claim")
	default:
		return 0, fmt.Errorf("uid claim has unexpected type %T", uid)
	}
	if id == 0 {
		return 0, errors.New("uid claim cannot be zero")
	}
	return uint(id), nil
}
