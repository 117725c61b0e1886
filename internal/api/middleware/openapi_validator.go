package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/api/spec"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
)

// ValidatorOptions tunes the OpenAPI middleware.
type ValidatorOptions struct {
	// BasePath is stripped before route lookup, since the document declares
	// paths relative to the API root.
	BasePath string
	// ValidateResponses buffers every response and checks it against the
	// document. Mismatches are logged and replaced by a 500.
	ValidateResponses bool
}

// MustOpenAPIValidator is NewOpenAPIValidator that panics on setup failure.
func MustOpenAPIValidator(opts ValidatorOptions) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(opts)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator validates requests, and optionally responses, against
// the embedded OpenAPI document. Paths the document does not declare pass
// through untouched.
func NewOpenAPIValidator(opts ValidatorOptions) (gin.HandlerFunc, error) {
	doc, err := spec.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	v := &contractValidator{
		router:            router,
		basePath:          normalizeBasePath(opts.BasePath),
		validateResponses: opts.ValidateResponses,
	}
	return v.handle, nil
}

type contractValidator struct {
	router            routers.Router
	basePath          string
	validateResponses bool
}

// Authentication is enforced by JWTAuth and RequireRole, not here.
func noopAuthentication(context.Context, *openapi3filter.AuthenticationInput) error {
	return nil
}

func (v *contractValidator) handle(c *gin.Context) {
	route, params, err := v.lookup(c.Request)
	switch {
	case errors.Is(err, routers.ErrPathNotFound):
		c.Next()
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, contractError(apperrors.CodeOpenAPIRoute, err.Error()))
		return
	}

	in := &openapi3filter.RequestValidationInput{
		Request:    c.Request,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: noopAuthentication,
			MultiError:         true,
		},
	}
	if err := openapi3filter.ValidateRequest(c.Request.Context(), in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, contractError(apperrors.CodeOpenAPIInvalid, err.Error()))
		return
	}

	if !v.validateResponses {
		c.Next()
		return
	}

	capture := newResponseCapture(c.Writer)
	c.Writer = capture
	c.Next()
	c.Writer = capture.ResponseWriter

	// Errors reported with c.Error have no body yet; ErrorHandler renders
	// them once this middleware returns.
	if len(c.Errors) > 0 && !capture.Written() {
		return
	}

	out := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: in,
		Status:                 capture.Status(),
		Header:                 capture.Header().Clone(),
		Options: &openapi3filter.Options{
			AuthenticationFunc:    noopAuthentication,
			IncludeResponseStatus: true,
		},
	}
	out.SetBodyBytes(capture.body.Bytes())

	if err := openapi3filter.ValidateResponse(c.Request.Context(), out); err != nil {
		logger.WithContext(c.Request.Context()).Error("Response violates OpenAPI contract",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", capture.Status()),
			zap.Error(err),
		)
		capture.replace(http.StatusInternalServerError,
			contractError(apperrors.CodeOpenAPIResponse, "response does not conform to OpenAPI contract"))
	}
	if err := capture.flush(); err != nil {
		logger.WithContext(c.Request.Context()).Warn("Failed to write validated response",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
}

// lookup resolves the document route for req. The request URL is rewritten
// only for the duration of the lookup.
func (v *contractValidator) lookup(req *http.Request) (*routers.Route, map[string]string, error) {
	path, rawPath := req.URL.Path, req.URL.RawPath
	defer func() { req.URL.Path, req.URL.RawPath = path, rawPath }()

	req.URL.Path = normalizeValidationPath(v.basePath, path)
	if rawPath != "" {
		req.URL.RawPath = normalizeValidationPath(v.basePath, rawPath)
	}
	route, params, err := v.router.FindRoute(req)
	if err != nil && isPathNotFound(err) {
		return nil, nil, routers.ErrPathNotFound
	}
	return route, params, err
}

func normalizeBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// normalizeValidationPath maps a request path onto the document's path space.
func normalizeValidationPath(basePath, path string) string {
	switch {
	case path == "":
		return "/"
	case basePath == "":
		return path
	case path == basePath:
		return "/"
	case strings.HasPrefix(path, basePath+"/"):
		return strings.TrimPrefix(path, basePath)
	default:
		return path
	}
}

func isPathNotFound(err error) bool {
	if errors.Is(err, routers.ErrPathNotFound) {
		return true
	}
	var routeErr *routers.RouteError
	return errors.As(err, &routeErr) && routeErr.Reason == routers.ErrPathNotFound.Error()
}

func contractError(code, message string) gin.H {
	return gin.H{"code": code, "message": message}
}

// responseCapture holds a handler's response until it has been validated.
type responseCapture struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

func newResponseCapture(w gin.ResponseWriter) *responseCapture {
	return &responseCapture{ResponseWriter: w}
}

func (w *responseCapture) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *responseCapture) WriteHeaderNow() {
	if w.status == 0 {
		w.status = http.StatusOK
	}
}

func (w *responseCapture) Write(data []byte) (int, error) {
	w.WriteHeaderNow()
	return w.body.Write(data)
}

func (w *responseCapture) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *responseCapture) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *responseCapture) Size() int {
	return w.body.Len()
}

func (w *responseCapture) Written() bool {
	return w.status != 0
}

func (w *responseCapture) replace(status int, payload gin.H) {
	w.status = status
	w.body.Reset()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// gin.H of strings always marshals.
	data, _ := json.Marshal(payload)
	w.body.Write(data)
}

func (w *responseCapture) flush() error {
	w.ResponseWriter.WriteHeader(w.Status())
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
