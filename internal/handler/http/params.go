package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/teamzen/hris-backend-go/internal/handler/http/middleware"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

// requireClaims writes a 401 and returns false when the request carries no verified claims.
func requireClaims(w http.ResponseWriter, r *http.Request) (jwt.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok || claims.UserID == "" {
		response.Unauthorized(w, "Unauthorized")
		return jwt.Claims{}, false
	}
	return claims, true
}

func queryString(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return nil
	}
	return &value
}

// queryInt parses an optional integer query parameter. A malformed value is a validation error.
func queryInt(r *http.Request, key string) (*int, error) {
	value := queryString(r, key)
	if value == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*value)
	if err != nil {
		return nil, validator.ValidationErrors{{Field: key, Message: key + " must be an integer"}}
	}
	return &n, nil
}

func queryBool(r *http.Request, key string) bool {
	value := queryString(r, key)
	if value == nil {
		return false
	}
	b, _ := strconv.ParseBool(*value)
	return b
}

// pagination reads page and limit, leaving zero for the service defaults.
func pagination(r *http.Request) (page, limit int, err error) {
	p, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	l, err := queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	if p != nil {
		page = *p
	}
	if l != nil {
		limit = *l
	}
	return page, limit, nil
}
