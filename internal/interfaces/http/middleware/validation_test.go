package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req dto.SelectCustomerRequest
		return c.ShouldBindJSON(&req)
	}

	t.Run("reports json field names", func(t *testing.T) {
		err := bind(`{"customer_ref":"C-1"}`)
		require.Error(t, err)

		details := ValidationDetails(err)
		require.Len(t, details, 1)
		assert.Equal(t, "customer_id", details[0].Field)
		assert.Equal(t, "This field is required", details[0].Message)
	})

	t.Run("max length on strings", func(t *testing.T) {
		err := bind(`{"customer_id":1,"customer_ref":"` + strings.Repeat("x", 65) + `"}`)
		details := ValidationDetails(err)
		require.Len(t, details, 1)
		assert.Equal(t, "customer_ref", details[0].Field)
		assert.Equal(t, "Must be at most 64 characters", details[0].Message)
	})

	t.Run("non validator errors", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(errors.New("unexpected EOF")))
	})
}
