package driver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// LoadAPISpec parses and validates the embedded OpenAPI document describing
// the /api surface. Paths in the document are relative to /api.
func LoadAPISpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("loading OpenAPI document: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validating OpenAPI document: %w", err)
	}
	// Requests are matched on path only, whatever host serves them.
	spec.Servers = nil
	return spec, nil
}

// NewDocumentationHandler serves the OpenAPI document as JSON.
func NewDocumentationHandler(spec *openapi3.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(spec)
	})
}

// NewRequestValidator returns middleware rejecting requests that do not match
// the OpenAPI document, answering with the usual JSON error body.
func NewRequestValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, &nethttpmiddleware.Options{
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			writeError(w, statusCode, message)
		},
	})
}
