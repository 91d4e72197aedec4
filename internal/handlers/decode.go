package handlers

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/GregMSThompson/novaspeak/internal/errs"
)

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewValidationError("invalid request body")
	}
	return nil
}
