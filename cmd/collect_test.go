package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gridpulse/csgstat/internal/model"
)

func TestWriteSnapshots(t *testing.T) {
	var snap model.AccountSnapshot
	snap.Balance = model.Val(120.5)
	snap.LastYearKWh = model.Unchanged()
	snaps := model.Snapshots{"acct-1": snap}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSnapshots(&buf, snaps, "json"))

		var got map[string]map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 120.5, got["acct-1"]["balance"])
		assert.Equal(t, "unchanged", got["acct-1"]["last_year_kwh"])
		assert.Equal(t, "unavailable", got["acct-1"]["yesterday_kwh"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSnapshots(&buf, snaps, "yaml"))

		var got map[string]map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 120.5, got["acct-1"]["balance"])
		assert.Equal(t, "unchanged", got["acct-1"]["last_year_kwh"])
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, writeSnapshots(&buf, snaps, "toml"))
	})
}
