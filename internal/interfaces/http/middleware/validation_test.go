package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptrack/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	// Should not panic
	SetupValidator()

	_, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
}

func TestFormatValidationErrors_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	type lookupRequest struct {
		OrderNumber string `json:"order_number" binding:"required,min=3"`
		Email       string `json:"email" binding:"required,email"`
	}

	router := gin.New()
	router.POST("/lookup", func(c *gin.Context) {
		var req lookupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lookup",
		strings.NewReader(`{"order_number":"AB","email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at least 3 characters", fields["order_number"])
	assert.Equal(t, "Invalid email format", fields["email"])
}

func TestFormatValidationErrors_MissingFields(t *testing.T) {
	SetupValidator()

	type lookupRequest struct {
		OrderNumber string `json:"order_number" binding:"required,min=3"`
		Email       string `json:"email" binding:"required,email"`
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(lookupRequest{})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-1")
	assert.Equal(t, "req-1", resp.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "")
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
