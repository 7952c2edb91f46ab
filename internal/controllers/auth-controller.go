package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	loginTokenTTL = 24 * time.Hour
	// minPasswordEntropy is the go-password-validator strength required at registration.
	minPasswordEntropy = 50
)

type AuthController struct {
	userService services.UserService
	jwtSecret   []byte
}

func NewAuthController(userService services.UserService, jwtSecret string) *AuthController {
	return &AuthController{
		userService: userService,
		jwtSecret:   []byte(jwtSecret),
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"max=255"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerRequest true "Email, password and display name"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := passwordvalidator.Validate(req.Password, minPasswordEntropy); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error(),
			map[string]interface{}{"field": "password"}))
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.RoleUser,
	}
	if err := user.HashPassword(); err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	if err := ac.userService.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, "A user with this email already exists"))
			return
		}
		respondError(c, err, models.ErrNotFound)
		return
	}

	log.WithField("user_id", user.ID).Info("User registered")
	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a Bearer JWT valid for 24 hours
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Email and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.userService.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		respondError(c, err, models.ErrNotFound)
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Invalid email or password"))
		return
	}

	now := time.Now()
	// uid and role are the claims the Bearer middleware requires
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Role,
		"exp":  now.Add(loginTokenTTL).Unix(),
		"iat":  now.Unix(),
	})

	tokenString, err := token.SignedString(ac.jwtSecret)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": tokenString,
		"token_type":   "Bearer",
		"expires_in":   int64(loginTokenTTL.Seconds()),
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}
