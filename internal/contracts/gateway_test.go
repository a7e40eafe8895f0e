package contracts_test

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/contracts"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/metrics"
	"github.com/Rampop01/spectralpay/internal/session"
	"github.com/Rampop01/spectralpay/pkg/logger"
	"github.com/Rampop01/spectralpay/pkg/testutil"
)

const contractHash = "0x1b4357bff5a01bdf2a6581247cf9ed1e24629176"

// countingInvoker counts calls that reach the chain.
type countingInvoker struct {
	calls int
}

func (c *countingInvoker) InvokeFunction(context.Context, string, string, []chain.ContractParam) (*chain.InvokeResult, error) {
	c.calls++
	return &chain.InvokeResult{State: chain.VMStateHalt, Stack: []chain.StackItem{chain.NewBooleanItem(true)}}, nil
}

func (c *countingInvoker) Submit(context.Context, *chain.Account, string, string, []chain.ContractParam) (string, error) {
	c.calls++
	return "0x01", nil
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	acc, err := chain.NewAccount()
	require.NoError(t, err)
	return session.New(acc, "testnet")
}

func TestGatewaysFailClosedWithoutSession(t *testing.T) {
	inv := &countingInvoker{}
	ctx := context.Background()
	m := contracts.NewJobMarketplace(inv, contractHash, nil)
	r := contracts.NewPseudonymRegistry(inv, contractHash, nil)
	v := contracts.NewZKVerifier(inv, contractHash, nil)
	e := contracts.NewEscrow(inv, contractHash, nil)

	check := func(name string, err error) {
		t.Helper()
		require.Error(t, err, name)
		assert.Equal(t, errors.KindSession, errors.KindOf(err), name)
		assert.Contains(t, err.Error(), errors.MsgNotConnected, name)
	}

	tx, err := m.PostJob(ctx, contracts.PostJobParams{Title: "t", PaymentAmount: "1", DeadlineDays: 1})
	assert.Empty(t, tx)
	check("post_job", err)

	job, err := m.GetJobDetails(ctx, "1")
	assert.Nil(t, job)
	check("get_job_details", err)

	apps, err := m.GetWorkerApplications(ctx, "1")
	assert.Nil(t, apps)
	check("get_worker_applications", err)

	ok, err := r.IsPseudonymRegistered(ctx, "worker_abc123")
	assert.False(t, ok)
	check("is_pseudonym_registered", err)

	ok, err = v.IsValidVerificationKey(ctx, "0x1", "0x1")
	assert.False(t, ok)
	check("is_valid_verification_key", err)

	_, err = e.ReleasePayment(ctx, "1", "0x1")
	check("release_payment", err)

	assert.Zero(t, inv.calls)
}

func TestSessionCheckPrecedesValidation(t *testing.T) {
	inv := &countingInvoker{}
	m := contracts.NewJobMarketplace(inv, contractHash, nil)

	_, err := m.ApproveWork(context.Background(), "not a number")
	assert.Equal(t, errors.KindSession, errors.KindOf(err))
}

func TestMissingContractHash(t *testing.T) {
	inv := &countingInvoker{}
	m := contracts.NewJobMarketplace(inv, "", newSession(t))

	_, err := m.GetJobCount(context.Background())
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
	assert.Zero(t, inv.calls)
}

func TestInvalidArgumentsAreValidationErrors(t *testing.T) {
	inv := &countingInvoker{}
	ctx := context.Background()
	sess := newSession(t)
	m := contracts.NewJobMarketplace(inv, contractHash, sess)
	r := contracts.NewPseudonymRegistry(inv, contractHash, sess)

	_, err := m.ApproveWork(ctx, "-1")
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))

	_, err = m.ApplyForJob(ctx, "1", "", "0x1", "0x2")
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))

	_, err = m.SubmitWork(ctx, "1", "not-hex", "ipfs://x")
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))

	_, err = r.AddSkillProof(ctx, "worker_abc123", "0x1", marketplace.SkillLevelExpert, marketplace.ZKProofComponents{}, "0x1")
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))

	assert.Zero(t, inv.calls)
}

func newRPCGateway(t *testing.T) (*testutil.RPCServer, *contracts.JobMarketplace, *prometheus.Registry) {
	t.Helper()
	srv := testutil.NewRPCServer(t)
	client, err := chain.NewClient(chain.Config{RPCURL: srv.URL, NetworkID: chain.TestNetMagic})
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	g := contracts.NewJobMarketplace(client, contractHash, newSession(t),
		contracts.WithLogger(logger.NewDiscard("contracts")),
		contracts.WithMetrics(metrics.New(reg)))
	return srv, g, reg
}

// promValue reads spectralpay_gateway_calls_total for a job marketplace method.
func promValue(t *testing.T, reg *prometheus.Registry, method, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "spectralpay_gateway_calls_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["method"] == method && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}

func halt(items ...chain.StackItem) *chain.InvokeResult {
	return &chain.InvokeResult{State: chain.VMStateHalt, GasConsumed: "100", Stack: items}
}

func TestUint256ArgumentsUseLowHighPairs(t *testing.T) {
	srv, g, _ := newRPCGateway(t)
	srv.Result("invokefunction", halt(chain.NewArrayItem()))

	// 2^128 + 5
	_, err := g.GetWorkerApplications(context.Background(), "340282366920938463463374607431768211461")
	require.NoError(t, err)

	calls := srv.CallsTo("invokefunction")
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Params, 3)

	var method string
	require.NoError(t, json.Unmarshal(calls[0].Params[1], &method))
	assert.Equal(t, "get_worker_applications", method)
	assert.JSONEq(t,
		`[{"type":"Array","value":[{"type":"Integer","value":"5"},{"type":"Integer","value":"1"}]}]`,
		string(calls[0].Params[2]))
}

func TestOutOfRangeStatusIsDecodeError(t *testing.T) {
	srv, g, m := newRPCGateway(t)
	app := chain.NewStructItem(
		chain.NewByteStringItem([]byte("worker_abc123")),
		chain.NewIntegerItem(bigInt(1)),
		chain.NewIntegerItem(bigInt(2)),
		chain.NewIntegerItem(bigInt(1700000000)),
		chain.NewIntegerItem(bigInt(9)),
	)
	srv.Result("invokefunction", halt(chain.NewArrayItem(app)))

	apps, err := g.GetWorkerApplications(context.Background(), "1")
	assert.Nil(t, apps)
	assert.Equal(t, errors.KindDecode, errors.KindOf(err))
	assert.Equal(t, 1.0, promValue(t, m, "get_worker_applications", "ok"))
}

func TestFaultIsClassified(t *testing.T) {
	srv, g, m := newRPCGateway(t)
	srv.Result("invokefunction", &chain.InvokeResult{
		State:     chain.VMStateFault,
		Exception: "method not found in contract: get_job_count/0",
	})

	_, err := g.GetJobCount(context.Background())
	assert.Equal(t, errors.KindABIMismatch, errors.KindOf(err))
	assert.Equal(t, 1.0, promValue(t, m, "get_job_count", string(errors.KindABIMismatch)))
}

func TestTransportErrorIsClassified(t *testing.T) {
	srv, g, _ := newRPCGateway(t)
	srv.Handle("invokefunction", func([]json.RawMessage) (interface{}, error) {
		return nil, &testutil.Fault{Code: -102, Message: "Unknown contract"}
	})

	_, err := g.GetJobDetails(context.Background(), "1")
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestByteArrayArgumentsAreChunked(t *testing.T) {
	srv, g, _ := newRPCGateway(t)
	srv.Result("invokefunction", halt(chain.NewBooleanItem(true)))

	// Submission stops at getblockcount, which the fake node does not serve.
	// The simulation request already carries the encoded arguments.
	_, _ = g.DisputeWork(context.Background(), "1", "0123456789012345678901234567890123")

	calls := srv.CallsTo("invokefunction")
	require.NotEmpty(t, calls)
	var params []struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Params[2], &params))
	require.Len(t, params, 2)

	var triple []struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	require.Equal(t, "Array", params[1].Type)
	require.NoError(t, json.Unmarshal(params[1].Value, &triple))
	require.Len(t, triple, 3)
	assert.Equal(t, "Array", triple[0].Type)
	assert.JSONEq(t, `"3"`, string(triple[2].Value))
}
