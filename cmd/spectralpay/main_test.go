package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/config"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/simchain"
)

func newSimApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	addrs := simchain.DefaultAddresses
	cfg := &config.Config{
		Contracts: config.Contracts{
			JobMarketplace:    addrs.JobMarketplace,
			PseudonymRegistry: addrs.PseudonymRegistry,
			Escrow:            addrs.Escrow,
			ZKVerifier:        addrs.ZKVerifier,
		},
		Network:   "testnet",
		Explorer:  "https://testnet.neotube.io",
		LogLevel:  "error",
		LogFormat: "text",
	}
	var out bytes.Buffer
	a, err := newApp(context.Background(), cfg, options{simulate: true, stdout: &out, stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	return a, &out
}

func execJSON(t *testing.T, a *app, out *bytes.Buffer, line string) map[string]interface{} {
	t.Helper()
	out.Reset()
	require.NoError(t, a.exec(context.Background(), strings.Fields(line)))
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &v), out.String())
	return v
}

func TestSimulatedJobFlow(t *testing.T) {
	a, out := newSimApp(t)

	posted := execJSON(t, a, out, "post-job -title Audit -payment 2.5 -days 7 -skills go,cairo")
	txHash, _ := posted["tx_hash"].(string)
	assert.True(t, strings.HasPrefix(txHash, "0x"))
	assert.NotContains(t, posted, "explorer")

	execJSON(t, a, out, "register -pseudonym worker_abc123 -secret hunter2")
	execJSON(t, a, out, "apply -job 1 -pseudonym worker_abc123 -proposal on-it")

	assigned := execJSON(t, a, out, "assign -job 1 -worker worker_abc123")
	followUp, ok := assigned["follow_up"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "create_job_escrow", followUp["name"])
	assert.NotEmpty(t, followUp["tx_hash"])

	job := execJSON(t, a, out, "job -id 1")
	assert.Equal(t, "assigned", job["status"])
	assert.Equal(t, "worker_abc123", job["assigned_worker"])
	assert.Contains(t, job["allowed_actions"], "submit")

	receipt := execJSON(t, a, out, "receipt -tx "+txHash)
	assert.Equal(t, "post_job", receipt["method"])
}

func TestUnknownCommand(t *testing.T) {
	a, _ := newSimApp(t)
	err := a.exec(context.Background(), []string{"launch"})
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestValidationErrorReachesUser(t *testing.T) {
	a, _ := newSimApp(t)
	err := a.exec(context.Background(), strings.Fields("post-job -payment 1"))
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Contains(t, errors.UserMessage(err), "title is required")
}

func TestProbeSimulatedContracts(t *testing.T) {
	a, out := newSimApp(t)
	require.NoError(t, a.exec(context.Background(), []string{"probe"}))

	var statuses []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &statuses))
	require.Len(t, statuses, 4)
	for _, s := range statuses {
		assert.Equal(t, "deployed", s["status"], s["name"])
	}
}

func TestCompletion(t *testing.T) {
	a, out := newSimApp(t)
	require.NoError(t, a.exec(context.Background(), strings.Fields("completion -shell zsh")))
	assert.Contains(t, out.String(), "#compdef spectralpay")
	assert.Contains(t, out.String(), "'post-job:Post a job'")
	assert.Contains(t, out.String(), "'-title'")
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "respond-extension")
}

func TestRunSimulated(t *testing.T) {
	t.Setenv(config.FileEnv, "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-simulate", "job-count"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.JSONEq(t, `{"count":"0"}`, stdout.String())
}
