package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sinatle/donation/internal/domain"
)

var validate = validator.New()

// respondJSON writes v as a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// decodeAndValidate parses the JSON body into dst and runs its validation
// tags. Both failure modes come back as EINVALID.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("request.decode", "Invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		return domain.Invalid("request.validate", "Missing or invalid fields: "+err.Error())
	}
	return nil
}
