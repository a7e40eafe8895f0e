package chain_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/pkg/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *chain.Client {
	t.Helper()
	server := testutil.NewHTTPTestServer(t, handler)

	client, err := chain.NewClient(chain.Config{
		RPCURL:    server.URL,
		NetworkID: chain.TestNetMagic,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := chain.NewClient(chain.Config{}); err == nil {
		t.Fatal("NewClient() expected error for empty RPC URL")
	}
}

func TestCall_RPCError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(testutil.RPCError(-102, "Unknown contract"))
	})

	_, err := client.Call(context.Background(), "invokefunction", nil)
	var rpcErr *chain.RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Call() error = %v, want *RPCError", err)
	}
	if rpcErr.RPCCode() != -102 {
		t.Errorf("RPCCode() = %d, want -102", rpcErr.RPCCode())
	}
}

func TestCall_BadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	if _, err := client.Call(context.Background(), "getblockcount", nil); err == nil {
		t.Fatal("Call() expected error for non-JSON 502")
	}
}

func TestCall_OversizedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"`))
		w.Write(bytes.Repeat([]byte("a"), 9<<20))
		w.Write([]byte(`"}`))
	})

	_, err := client.Call(context.Background(), "getblockcount", nil)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("Call() error = %v, want size limit error", err)
	}
}

func TestCall_RateLimited(t *testing.T) {
	server := testutil.NewHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(testutil.RPCResult(1))
	})
	client, err := chain.NewClient(chain.Config{RPCURL: server.URL, RequestsPerSecond: 0.001, Burst: 1})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.GetBlockCount(context.Background()); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.GetBlockCount(ctx); err == nil {
		t.Fatal("second call expected rate limit error")
	}
}

func TestGetVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"useragent":"/Neo:3.7.4/","protocol":{"network":894710606,"msperblock":15000}}}`))
	})

	v, err := client.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion() error = %v", err)
	}
	if v.Network != chain.TestNetMagic {
		t.Errorf("Network = %d, want %d", v.Network, chain.TestNetMagic)
	}
	if chain.NetworkName(v.Network) != "testnet" {
		t.Errorf("NetworkName() = %s", chain.NetworkName(v.Network))
	}
	if v.MSPerBlock != 15000 {
		t.Errorf("MSPerBlock = %d", v.MSPerBlock)
	}
}

func TestGetVersion_MissingNetwork(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(testutil.RPCResult(map[string]interface{}{"useragent": "x"}))
	})
	if _, err := client.GetVersion(context.Background()); err == nil {
		t.Fatal("GetVersion() expected error")
	}
}

func TestNetworkMagic(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "12345"} {
		magic, ok := chain.NetworkMagic(name)
		if !ok {
			t.Fatalf("NetworkMagic(%q) not ok", name)
		}
		if chain.NetworkName(magic) != name {
			t.Errorf("round trip %q -> %d -> %q", name, magic, chain.NetworkName(magic))
		}
	}
	if _, ok := chain.NetworkMagic("sepolia"); ok {
		t.Error("NetworkMagic(sepolia) should not resolve")
	}
}

func TestWaitForApplicationLog_RetriesUnknown(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.Write(testutil.RPCError(-100, "Unknown transaction"))
			return
		}
		w.Write(testutil.RPCResult(chain.ApplicationLog{
			TxID:       "0xabc",
			Executions: []chain.Execution{{Trigger: "Application", VMState: "HALT"}},
		}))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	log, err := client.WaitForApplicationLog(ctx, "0xabc", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForApplicationLog() error = %v", err)
	}
	if log.Executions[0].VMState != "HALT" {
		t.Errorf("VMState = %s", log.Executions[0].VMState)
	}
}

func TestInvokeFunction_SendsParams(t *testing.T) {
	var got []json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params []json.RawMessage `json:"params"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		got = req.Params
		w.Write(testutil.RPCResult(chain.InvokeResult{State: "HALT", Stack: []chain.StackItem{chain.NewBooleanItem(true)}}))
	})

	res, err := client.InvokeFunction(context.Background(), "0x1234", "is_pseudonym_registered", []chain.ContractParam{chain.NewStringParam("x")})
	if err != nil {
		t.Fatalf("InvokeFunction() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("params len = %d, want 3", len(got))
	}
	item, err := res.First("is_pseudonym_registered")
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	ok, err := chain.ParseBoolean(item)
	if err != nil || !ok {
		t.Errorf("ParseBoolean() = %v, %v", ok, err)
	}
}
