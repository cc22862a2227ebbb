package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"time_dividends/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()
	fn()
	require.NoError(t, w.Close())
	return <-done
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yml"))
	t.Setenv("MORALIS_API_KEY", "")
	t.Setenv("SIGNER_PRIVATE_KEY", "")
	t.Cleanup(func() { jsonOut = false })

	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return out, err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dividends 1.2.3\n", out)
}

func TestNetworksCommandJSON(t *testing.T) {
	out, err := runRoot(t, "networks", "--json", "--log-level", "error")
	require.NoError(t, err)

	var networks []entity.NetworkDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &networks))
	require.NotEmpty(t, networks)

	var pulse *entity.NetworkDescriptor
	for i := range networks {
		if networks[i].ID == "pulsechain" {
			pulse = &networks[i]
		}
	}
	require.NotNil(t, pulse)
	assert.True(t, pulse.HasToken())
	assert.Equal(t, uint64(369), pulse.ChainID)
}

func TestClaimWithoutSignerFails(t *testing.T) {
	_, err := runRoot(t, "claim", "--network", "pulsechain", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address is required")
}

func TestEstimateRejectsUnknownNetwork(t *testing.T) {
	_, err := runRoot(t, "estimate", "--network", "solana", "--log-level", "error")
	require.Error(t, err)
}
