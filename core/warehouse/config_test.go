package warehouse_test

import (
	"testing"

	"syncvision/core/warehouse"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAuthMethod(t *testing.T) {
	for _, method := range []string{"none", "apikey", "bearer", "basic", "headers"} {
		cfg := warehouse.Config{AuthMethod: method}
		assert.True(t, cfg.IsValidAuthMethod(), method)
	}

	cfg := warehouse.Config{AuthMethod: "oauth"}
	assert.False(t, cfg.IsValidAuthMethod())
}

func TestCustomHeadersParsing(t *testing.T) {
	cfg := warehouse.Config{
		CustomHeaders: "X-Client-Id: abc, X-Tenant:main, malformed, : novalue",
	}

	headers := cfg.Headers()
	assert.Equal(t, map[string]string{
		"X-Client-Id": "abc",
		"X-Tenant":    "main",
	}, headers)
}
