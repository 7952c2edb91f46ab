package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// RoleClaimsGenerator issues signed access tokens for client credentials
// grants. Each token names the client's owner in "uid" and carries the owner's
// current role, so a role change applies to the next token issued.
type RoleClaimsGenerator struct {
	key    []byte
	method jwt.SigningMethod
	db     *gorm.DB
}

func NewRoleClaimsGenerator(key []byte, method jwt.SigningMethod, db *gorm.DB) *RoleClaimsGenerator {
	return &RoleClaimsGenerator{key: key, method: method, db: db}
}

// Token implements oauth2.AccessGenerate. No refresh token is ever returned.
func (g *RoleClaimsGenerator) Token(ctx context.Context, data *oauth2.GenerateBasic, _ bool) (string, string, error) {
	owner := data.UserID
	if owner == "" {
		owner = data.Client.GetUserID()
	}
	if owner == "" {
		return "", "", fmt.Errorf("client %s has no owner", data.Client.GetID())
	}

	role, err := g.ownerRole(ctx, owner)
	if err != nil {
		return "", "", err
	}

	info := data.TokenInfo
	issued := info.GetAccessCreateAt()
	claims := jwt.MapClaims{
		"aud":  data.Client.GetID(),
		"uid":  owner,
		"role": role,
		"iat":  issued.Unix(),
		"exp":  issued.Add(info.GetAccessExpiresIn()).Unix(),
	}
	if scope := info.GetScope(); scope != "" {
		claims["scope"] = scope
	}

	signed, err := jwt.NewWithClaims(g.method, claims).SignedString(g.key)
	if err != nil {
		return "", "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, "", nil
}

func (g *RoleClaimsGenerator) ownerRole(ctx context.Context, owner string) (string, error) {
	id, err := strconv.ParseUint(owner, 10, 32)
	if err != nil {
		return "", fmt.Errorf("owner id %q is not numeric: %w", owner, err)
	}

	var user models.User
	err = g.db.WithContext(ctx).Select("id", "role").First(&user, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", fmt.Errorf("owner %d of client does not exist", id)
	case err != nil:
		return "", fmt.Errorf("loading owner role: %w", err)
	case user.Role == "":
		return models.RoleUser, nil
	}
	return user.Role, nil
}
