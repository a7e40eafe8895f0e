package chain_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/pkg/testutil"
)

const testPrivateKey = "1dd37fba80fec4e6a6f13fd708d8dcb3b29def768017052f6c930fa1c5d90bbb"

func newSubmitServer(t *testing.T, state string) (*testutil.RPCServer, *chain.Client) {
	t.Helper()
	srv := testutil.NewRPCServer(t)
	res := chain.InvokeResult{
		Script:      base64.StdEncoding.EncodeToString([]byte{0x11, 0x40}),
		State:       state,
		GasConsumed: "1234567",
	}
	if state != "HALT" {
		res.Exception = "only employer"
	}
	srv.Result("invokefunction", res)
	srv.Result("getblockcount", 5000)
	srv.Result("calculatenetworkfee", map[string]string{"networkfee": "120000"})
	srv.Handle("sendrawtransaction", func(params []json.RawMessage) (interface{}, error) {
		return map[string]string{"hash": "0xignored"}, nil
	})

	client, err := chain.NewClient(chain.Config{RPCURL: srv.URL, NetworkID: chain.TestNetMagic})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return srv, client
}

func TestSubmit_BuildsSignedTransaction(t *testing.T) {
	srv, client := newSubmitServer(t, "HALT")
	acc, err := chain.AccountFromPrivateKey(testPrivateKey)
	if err != nil {
		t.Fatalf("AccountFromPrivateKey() error = %v", err)
	}

	hash, err := client.Submit(context.Background(), acc, "0x1234", "approve_work", []chain.ContractParam{chain.NewInt64Param(1)})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	sent := srv.CallsTo("sendrawtransaction")
	if len(sent) != 1 {
		t.Fatalf("sendrawtransaction calls = %d, want 1", len(sent))
	}
	var txB64 string
	if err := json.Unmarshal(sent[0].Params[0], &txB64); err != nil {
		t.Fatalf("decode param: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		t.Fatalf("decode tx: %v", err)
	}
	tx, err := transaction.NewTransactionFromBytes(raw)
	if err != nil {
		t.Fatalf("NewTransactionFromBytes() error = %v", err)
	}

	if hash != "0x"+tx.Hash().StringLE() {
		t.Errorf("Submit() hash = %s, want %s", hash, "0x"+tx.Hash().StringLE())
	}
	if tx.SystemFee != 1234567 {
		t.Errorf("SystemFee = %d", tx.SystemFee)
	}
	if tx.NetworkFee != 120000 {
		t.Errorf("NetworkFee = %d", tx.NetworkFee)
	}
	if tx.ValidUntilBlock != 5000+chain.DefaultValidityIncrement {
		t.Errorf("ValidUntilBlock = %d", tx.ValidUntilBlock)
	}
	if len(tx.Signers) != 1 || !tx.Signers[0].Account.Equals(acc.ScriptHash()) {
		t.Errorf("Signers = %+v", tx.Signers)
	}
	if len(tx.Scripts) != 1 || len(tx.Scripts[0].InvocationScript) == 0 {
		t.Errorf("transaction not signed")
	}

	sim := srv.CallsTo("invokefunction")
	if len(sim) != 1 || len(sim[0].Params) != 4 {
		t.Fatalf("simulation should carry signers, got %+v", sim)
	}
}

func TestSubmit_FaultStopsBeforeBroadcast(t *testing.T) {
	srv, client := newSubmitServer(t, "FAULT")
	acc, err := chain.NewAccount()
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}

	_, err = client.Submit(context.Background(), acc, "0x1234", "approve_work", nil)
	var fault *chain.FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("Submit() error = %v, want FaultError", err)
	}
	if fault.Exception != "only employer" {
		t.Errorf("Exception = %q", fault.Exception)
	}
	if n := len(srv.CallsTo("sendrawtransaction")); n != 0 {
		t.Errorf("sendrawtransaction calls = %d, want 0", n)
	}
}

func TestSubmit_RequiresAccount(t *testing.T) {
	_, client := newSubmitServer(t, "HALT")
	if _, err := client.Submit(context.Background(), nil, "0x1234", "m", nil); err == nil {
		t.Fatal("Submit() expected error without account")
	}
}

func TestAccount_Address(t *testing.T) {
	acc, err := chain.AccountFromPrivateKey("0x" + testPrivateKey)
	if err != nil {
		t.Fatalf("AccountFromPrivateKey() error = %v", err)
	}
	if acc.NeoAddress() == "" {
		t.Error("NeoAddress() empty")
	}
	if len(acc.Address()) < 3 || acc.Address()[:2] != "0x" {
		t.Errorf("Address() = %q", acc.Address())
	}
	if _, err := chain.AccountFromPrivateKey(""); err == nil {
		t.Error("AccountFromPrivateKey(\"\") expected error")
	}
	if _, err := chain.AccountFromPrivateKey("zz"); err == nil {
		t.Error("AccountFromPrivateKey(zz) expected error")
	}
}
