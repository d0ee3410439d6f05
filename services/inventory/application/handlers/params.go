package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
)

const maxListLimit = 500

func queryBool(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: query parameter %s must be true or false", domain.ErrInvalidArgument, key)
	}
	return b, nil
}

// queryLimit parses the limit parameter. Absent means no limit.
func queryLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxListLimit {
		return 0, fmt.Errorf("%w: limit must be an integer between 1 and %d", domain.ErrInvalidArgument, maxListLimit)
	}
	return n, nil
}
