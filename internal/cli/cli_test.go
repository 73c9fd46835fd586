package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"payway-adapter/config"
	"payway-adapter/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli_secret")

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"token", "--subject", "ops"})
	require.NoError(t, cmd.Execute())

	claims, err := utils.ValidateToken("cli_secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestReconcileRejectsBadID(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"reconcile", "abc"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transaction id")
}

func TestNewAppBootstrapsProvider(t *testing.T) {
	cfg := &config.Config{
		DBDriver:      "sqlite",
		SQLitePath:    filepath.Join(t.TempDir(), "payway.db"),
		PublicBaseURL: "https://shop.example.com",
		PayWay: config.PayWayConfig{
			MerchantID: "M1",
			PublicKey:  "k",
			Currency:   "USD",
			State:      "test",
		},
	}

	app, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Redis)
	providers, err := app.Providers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "M1", providers[0].MerchantID)
}
