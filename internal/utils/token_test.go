package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("s3cret", "ops", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = ValidateToken("other", token)
	assert.Error(t, err)
}

func TestTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "ops", "admin", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = ValidateToken("", "anything")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := GenerateToken("s3cret", "ops", "admin", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = ValidateToken("s3cret", token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "", wantErr: true},
		{header: "Token abc", wantErr: true},
		{header: "Bearer abc", want: "abc"},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			c.Request.Header.Set("Authorization", tc.header)
		}
		got, err := ExtractToken(c)
		if tc.wantErr {
			assert.Error(t, err, tc.header)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
