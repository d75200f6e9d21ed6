package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// OpenAPIValidator rejects requests that do not match the contract in doc.
// Paths in doc are relative to basePath. Requests for operations the contract
// does not describe pass through untouched so the router can answer them.
func OpenAPIValidator(doc *openapi3.T, basePath string, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	spec := *doc
	spec.Servers = nil

	router, err := legacy.NewRouter(&spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	basePath = strings.TrimSuffix(basePath, "/")
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, basePath+"/") {
				next.ServeHTTP(w, r)
				return
			}

			scoped := r.Clone(r.Context())
			scoped.URL.Path = strings.TrimPrefix(r.URL.Path, basePath)
			scoped.URL.RawPath = ""

			route, params, err := router.FindRoute(scoped)
			if err != nil {
				if !errors.Is(err, routers.ErrPathNotFound) && !errors.Is(err, routers.ErrMethodNotAllowed) {
					logger.WarnContext(r.Context(), "openapi route lookup failed", "error", err, "path", r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    scoped,
				PathParams: params,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.InfoContext(r.Context(), "request rejected by openapi validator",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err)
				writeError(w, http.StatusBadRequest, validationMessage(err))
				return
			}

			// the validator drained and replaced the body on the clone
			r.Body = scoped.Body
			next.ServeHTTP(w, r)
		})
	}, nil
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			return fmt.Sprintf("invalid %s parameter %q", reqErr.Parameter.In, reqErr.Parameter.Name)
		case reqErr.RequestBody != nil:
			var schemaErr *openapi3.SchemaError
			if errors.As(reqErr.Err, &schemaErr) {
				if field := strings.Join(schemaErr.JSONPointer(), "."); field != "" {
					return fmt.Sprintf("invalid request body: %s: %s", field, schemaErr.Reason)
				}
				return "invalid request body: " + schemaErr.Reason
			}
			return "invalid request body"
		}
	}
	return strings.SplitN(err.Error(), "\n", 2)[0]
}
