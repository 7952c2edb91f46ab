package models

// APIError is the JSON body of every non-OAuth error answer.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Codes used in APIError.Code.
const (
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	ErrRecipeNotFound     = "RECIPE_NOT_FOUND"
	ErrIngredientNotFound = "INGREDIENT_NOT_FOUND"
	ErrMealPlanNotFound   = "MEAL_PLAN_NOT_FOUND"
	ErrNutritionNoData    = "NUTRITION_NO_DATA"
)

// Codes used in OAuth2Error.Error as RFC 6749 and RFC 6750 spell them. The
// token endpoint itself answers with go-oauth2's codes.
const (
	ErrInvalidRequest = "invalid_request"
	ErrInvalidToken   = "invalid_token"
	ErrServerError    = "server_error"
)

// NewAPIError builds an APIError. Only the first details map is used.
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	apiErr := APIError{Code: code, Message: message}
	if len(details) > 0 && len(details[0]) > 0 {
		apiErr.Details = details[0]
	}
	return apiErr
}

// OAuth2Error is the error body of the token endpoint and of rejected Bearer tokens.
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

func NewOAuth2Error(code, description string) OAuth2Error {
	return OAuth2Error{Error: code, ErrorDescription: description}
}
