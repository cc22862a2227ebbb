package client

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"time_dividends/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
{"inputs":[{"name":"account","type":"address"}],"name":"claimableDividendOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"payee","type":"address"},{"name":"amount","type":"uint256"}],"name":"claimDividend","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type rpcHandler func(params json.RawMessage) (interface{}, *rpcErrorBody)

// fakeNode is a minimal JSON-RPC endpoint answering per method.
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    map[string]int
	status   int
}

func newFakeNode(t *testing.T) (*fakeNode, string) {
	t.Helper()
	n := &fakeNode{handlers: map[string]rpcHandler{}, calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)
	return n, srv.URL
}

func (n *fakeNode) on(method string, h rpcHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	status := n.status
	n.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	h := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if h == nil {
		resp["error"] = rpcErrorBody{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func uint256Hex(v int64) string {
	return "0x" + common.Bytes2Hex(common.LeftPadBytes(big.NewInt(v).Bytes(), 32))
}

func testClient(t *testing.T, url string) *EVMClient {
	t.Helper()
	c, err := NewEVMClient(entity.NetworkDescriptor{ID: "pulsechain", Name: "PulseChain", ChainID: 369, RPCURL: url},
		EVMClientOptions{RPCCallTimeout: 2 * time.Second, ReceiptPollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func parsedTestABI(t *testing.T) *abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(testABI))
	require.NoError(t, err)
	return &parsed
}

var (
	testContract = common.HexToAddress("0xCA35638A3fdDD02fEC597D8c1681198C06b23F58")
	testUser     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func TestReadContract(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("eth_call", func(json.RawMessage) (interface{}, *rpcErrorBody) {
		return uint256Hex(1000), nil
	})

	c := testClient(t, url)
	out, err := c.ReadContract(context.Background(), entity.ContractCall{
		Address: testContract,
		ABI:     parsedTestABI(t),
		Method:  "claimableDividendOf",
		Args:    []interface{}{testUser},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(1000), out[0].(*big.Int))
}

func TestReadContractEmptyResponse(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("eth_call", func(json.RawMessage) (interface{}, *rpcErrorBody) { return "0x", nil })

	c := testClient(t, url)
	_, err := c.ReadContract(context.Background(), entity.ContractCall{
		Address: testContract, ABI: parsedTestABI(t), Method: "claimableDividendOf", Args: []interface{}{testUser},
	})
	require.Error(t, err)
	assert.Equal(t, entity.KindInvalidInput, entity.KindOf(err))
}

func TestSimulateContractRevert(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("eth_call", func(json.RawMessage) (interface{}, *rpcErrorBody) {
		return nil, &rpcErrorBody{Code: 3, Message: "execution reverted: nothing to claim", Data: "0x"}
	})

	c := testClient(t, url)
	_, err := c.SimulateContract(context.Background(), entity.ContractCall{
		Address: testContract, ABI: parsedTestABI(t), Method: "claimDividend",
		Args: []interface{}{testUser, big.NewInt(5)}, From: testUser,
	})
	require.Error(t, err)
	assert.Equal(t, entity.KindTransactionReverted, entity.KindOf(err))
	assert.Zero(t, node.count("eth_estimateGas"))
}

func TestSimulateContractEstimatesGas(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("eth_call", func(json.RawMessage) (interface{}, *rpcErrorBody) { return "0x", nil })
	node.on("eth_estimateGas", func(json.RawMessage) (interface{}, *rpcErrorBody) { return "0x5208", nil })

	c := testClient(t, url)
	prepared, err := c.SimulateContract(context.Background(), entity.ContractCall{
		Address: testContract, ABI: parsedTestABI(t), Method: "claimDividend",
		Args: []interface{}{testUser, big.NewInt(5)}, From: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), prepared.Gas)
	assert.NotEmpty(t, prepared.Data)
}

func TestHTTPStatusErrors(t *testing.T) {
	node, url := newFakeNode(t)
	node.status = http.StatusTooManyRequests

	c := testClient(t, url)
	_, err := c.ChainID(context.Background())
	require.Error(t, err)
	assert.Equal(t, entity.KindRateLimited, entity.KindOf(err))
}

func TestWaitForTransactionReceipt(t *testing.T) {
	node, url := newFakeNode(t)
	txHash := "0x" + strings.Repeat("ab", 32)
	node.on("eth_getTransactionReceipt", func(json.RawMessage) (interface{}, *rpcErrorBody) {
		if node.count("eth_getTransactionReceipt") < 3 {
			return nil, nil
		}
		return map[string]interface{}{
			"type":              "0x0",
			"status":            "0x1",
			"cumulativeGasUsed": "0x5208",
			"logsBloom":         "0x" + strings.Repeat("00", 256),
			"logs":              []interface{}{},
			"transactionHash":   txHash,
			"gasUsed":           "0x5208",
			"blockHash":         "0x" + strings.Repeat("cd", 32),
			"blockNumber":       "0x10",
			"transactionIndex":  "0x0",
		}, nil
	})

	c := testClient(t, url)
	receipt, err := c.WaitForTransactionReceipt(context.Background(), txHash)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, uint64(16), receipt.BlockNumber)
	assert.Equal(t, 3, node.count("eth_getTransactionReceipt"))
}

func TestWaitForTransactionReceiptTimeout(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("eth_getTransactionReceipt", func(json.RawMessage) (interface{}, *rpcErrorBody) { return nil, nil })

	c := testClient(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.WaitForTransactionReceipt(ctx, "0x"+strings.Repeat("01", 32))
	require.Error(t, err)
	assert.Equal(t, entity.KindNetworkUnreachable, entity.KindOf(err))
}

func TestChainIDAndNonce(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("eth_chainId", func(json.RawMessage) (interface{}, *rpcErrorBody) { return "0x171", nil })
	node.on("eth_getTransactionCount", func(json.RawMessage) (interface{}, *rpcErrorBody) { return "0x7", nil })

	c := testClient(t, url)
	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(369), id)

	nonce, err := c.PendingNonce(context.Background(), testUser.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	_, err = c.PendingNonce(context.Background(), "nope")
	assert.Equal(t, entity.KindInvalidInput, entity.KindOf(err))
}
