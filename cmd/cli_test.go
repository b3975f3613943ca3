package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/okian/drunkyet/internal/app"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEstimateText(t *testing.T) {
	out, err := execute(t, "estimate", "--weight", "70", "--sex", "male", "--drinks", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Drinks to reach 0.10% BAC: 1.4")
	assert.Contains(t, out, "Hours until sober:         3.9")
	assert.Contains(t, out, "Current BAC:               0.059%")
}

func TestEstimateJSON(t *testing.T) {
	out, err := execute(t, "estimate", "-w", "70", "-s", "male", "-o", "json")
	require.NoError(t, err)

	var res app.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3.4, res.DrinksToTarget)
	assert.Equal(t, 0.0, res.HoursToSober)
	assert.Equal(t, 0.0, res.CurrentBAC)
}

func TestEstimateYAMLInPounds(t *testing.T) {
	out, err := execute(t, "estimate", "--weight", "154.3234", "--unit", "lbs", "--sex", "male", "--output", "YAML")
	require.NoError(t, err)

	var res app.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3.4, res.DrinksToTarget)
}

func TestEstimateErrors(t *testing.T) {
	t.Run("missing weight", func(t *testing.T) {
		_, err := execute(t, "estimate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weight")
	})

	t.Run("invalid weight", func(t *testing.T) {
		_, err := execute(t, "estimate", "--weight=-5")
		require.Error(t, err)
		assert.True(t, errors.Is(err, app.ErrInvalidInput))
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := execute(t, "estimate", "--weight", "70", "--unit", "stone")
		require.Error(t, err)
		assert.True(t, app.IsInvalidInput(err))
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := execute(t, "estimate", "--weight", "70", "--output", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "xml")
	})
}

func TestLoadTestRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "loadtest", "--requests", "0")
	require.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}
