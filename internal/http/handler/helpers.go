package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hashebooks/hashebooks-backend/internal/http/middleware"
	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

const genericErrorMessage = "An unexpected error occurred"

// decodeLenient fills dst from the request body. A missing or malformed body
// leaves dst zero-valued so field validation reports it.
func decodeLenient(r *http.Request, dst any) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}

func actorFromRequest(r *http.Request) (service.Actor, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.Subject == "" {
		return service.Actor{}, false
	}
	return service.Actor{ID: claims.Subject, Email: claims.Email}, true
}

// writeRateLimited answers a RateLimitedError with 429 and Retry-After.
func writeRateLimited(w http.ResponseWriter, r *http.Request, err error, message string) {
	middleware.MarkRejected(r.Context(), middleware.RejectedByRateLimit)
	var rl *service.RateLimitedError
	if errors.As(err, &rl) {
		response.TooManyRequests(w, r, message, rl.RetryAfter)
		return
	}
	response.Error(w, r, http.StatusTooManyRequests, message)
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}
