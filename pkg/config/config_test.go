package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatflowers/agrobill/pkg/types"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
env: prod
gateway:
  key_id: rzp_test_key
  timeout: 5s
  exchange_rates:
    USD: "83.25"
plans:
  - id: basic
    name: Basic
    unit: hectare
    active: true
    pricing:
      - currency: INR
        billing_cycle: monthly
        unit: hectare
        unit_price_minor: 5000
  - id: free-trial
    name: Trial
    unit: hectare
    is_trial: true
    trial_days: 14
    active: true
`

func TestNew_LoadsPlansAndGateway(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleConfig), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)
	t.Setenv("APP_GATEWAY_WEBHOOK_SECRET", "whsec")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvProd, cfg.Env)
	require.Equal(t, 8888, cfg.Server.Port)
	require.Equal(t, "rzp_test_key", cfg.Gateway.KeyID)
	require.Equal(t, "whsec", cfg.Gateway.WebhookSecret)
	require.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, "INR", cfg.Gateway.SettlementCurrency)
	require.Equal(t, "83.25", cfg.Gateway.ExchangeRates["usd"])

	basic := cfg.GetPlanByID("basic")
	require.NotNil(t, basic)
	require.Equal(t, types.AreaUnitHectare, basic.Unit)
	entry := basic.FindPricing("inr", types.BillingCycleMonthly, types.AreaUnitHectare)
	require.NotNil(t, entry)
	require.Equal(t, int64(5000), entry.UnitPriceMinor)

	trial := cfg.GetPlanByID("free-trial")
	require.NotNil(t, trial)
	require.True(t, trial.IsTrial)
	require.Equal(t, 14, trial.TrialDays)

	require.Nil(t, cfg.GetPlanByID("missing"))
}
