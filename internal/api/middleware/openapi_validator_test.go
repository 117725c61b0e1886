package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValidationPath(t *testing.T) {
	testCases := []struct {
		name     string
		basePath string
		path     string
		want     string
	}{
		{name: "strip prefix", basePath: "/api/v1", path: "/api/v1/lands/3", want: "/lands/3"},
		{name: "trailing slash base", basePath: "api/v1/", path: "/api/v1/crop-plans", want: "/crop-plans"},
		{name: "root path", basePath: "/api/v1", path: "/api/v1", want: "/"},
		{name: "no match", basePath: "/api/v1", path: "/health/live", want: "/health/live"},
		{name: "empty base", basePath: "", path: "/lands", want: "/lands"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeValidationPath(normalizeBasePath(tc.basePath), tc.path)
			if got != tc.want {
				t.Fatalf("normalizeValidationPath mismatch: got %q want %q", got, tc.want)
			}
		})
	}
}

func newValidatedRouter(validateResponses bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MustOpenAPIValidator(ValidatorOptions{BasePath: "/api/v1", ValidateResponses: validateResponses}))
	return router
}

func TestOpenAPIValidatorRejectsInvalidDecision(t *testing.T) {
	router := newValidatedRouter(false)
	router.PATCH("/api/v1/admin/lands/:land_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok", "approval_status": "approved", "admin_remark": ""})
	})

	for _, body := range []string{`{"approval_status":"maybe"}`, `{"approval_status":""}`, `{"admin_remark":7}`} {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/lands/4", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code, body)
		require.Contains(t, resp.Body.String(), "OPENAPI_REQUEST_INVALID")
	}
}

func TestOpenAPIValidatorRejectsInvalidPathParam(t *testing.T) {
	router := newValidatedRouter(false)
	router.GET("/api/v1/lands/:land_id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lands/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOpenAPIValidatorAcceptsValidCropPlan(t *testing.T) {
	router := newValidatedRouter(true)
	router.POST("/api/v1/crop-plans", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{
			"id":                    1,
			"land_id":               2,
			"total_acres_allocated": 3.5,
			"approval_status":       "pending",
			"crops":                 []gin.H{{"crop_name": "Ragi", "acres": 3.5}},
		})
	})

	reqBody := `{
		"land_id": 2,
		"season": "Kharif (Monsoon)",
		"crops": [{"crop_name": "Ragi", "acres": "3.5"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/crop-plans", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestOpenAPIValidatorRejectsNonConformingResponse(t *testing.T) {
	router := newValidatedRouter(true)
	router.GET("/api/v1/lands/:land_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": 1})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lands/1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Contains(t, resp.Body.String(), "OPENAPI_RESPONSE_INVALID")
}

func TestOpenAPIValidatorSkipsResponsesWhenDisabled(t *testing.T) {
	router := newValidatedRouter(false)
	router.GET("/api/v1/lands/:land_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": 1})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lands/1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestOpenAPIValidatorPassesUnknownPaths(t *testing.T) {
	router := newValidatedRouter(true)
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestOpenAPIValidatorAcceptsSpreadsheetUpload(t *testing.T) {
	router := newValidatedRouter(false)
	router.POST("/api/v1/admin/yield-configs/import", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"created": 0, "updated": 0, "failed": 0, "rows": []gin.H{}, "name": fh.Filename})
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "configs.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("PK\x03\x04 not really a workbook"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/yield-configs/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Contains(t, resp.Body.String(), "configs.xlsx")
}
