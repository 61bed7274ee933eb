package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate unmarshals the request body into payload and runs the
// struct validation tags.
func decodeAndValidate(r *http.Request, payload any) error {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return fmt.Errorf("invalid request body")
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("validation failed: %v", err)
	}
	return nil
}
