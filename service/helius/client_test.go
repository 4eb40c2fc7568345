package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL, apiKey string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(baseURL, apiKey, 0, nil, logger)
}

// makePage builds a page of transactions with sequential signatures.
func makePage(prefix string, n int) []Transaction {
	txns := make([]Transaction, n)
	for i := range txns {
		txns[i] = Transaction{Signature: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return txns
}

func TestFetchTransactions_FullThenShortPage(t *testing.T) {
	// A full page followed by a short page: both consumed, no third request.
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		switch n {
		case 1:
			json.NewEncoder(w).Encode(makePage("page1", 100))
		case 2:
			json.NewEncoder(w).Encode(makePage("page2", 40))
		default:
			t.Errorf("unexpected third request")
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	txns := client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 2)

	assert.Len(t, txns, 140)
	assert.Equal(t, int32(2), requests.Load())
}

func TestFetchTransactions_ShortFirstPageStops(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(makePage("page1", 3))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	txns := client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 8)

	assert.Len(t, txns, 3)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchTransactions_PageBudgetExhausted(t *testing.T) {
	// Every page is full; the budget is the only stop.
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		json.NewEncoder(w).Encode(makePage(fmt.Sprintf("page%d", n), 100))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	txns := client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 3)

	assert.Len(t, txns, 300)
	assert.Equal(t, int32(3), requests.Load())
}

func TestFetchTransactions_CursorIsLastSignature(t *testing.T) {
	var cursors []string
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		cursors = append(cursors, r.URL.Query().Get("before"))
		if n == 1 {
			json.NewEncoder(w).Encode(makePage("page1", 100))
			return
		}
		json.NewEncoder(w).Encode(makePage("page2", 1))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeTransfer, 4)

	require.Len(t, cursors, 2)
	assert.Empty(t, cursors[0])
	assert.Equal(t, "page1-99", cursors[1])
}

func TestFetchTransactions_TypeAndKeyParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SWAP", r.URL.Query().Get("type"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		assert.Equal(t, "/addresses/WalletAAA/transactions", r.URL.Path)
		json.NewEncoder(w).Encode([]Transaction{})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 1)
}

func TestFetchTransactions_SoftStopOnFailure(t *testing.T) {
	// A failing page truncates the fetch without losing earlier pages.
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			json.NewEncoder(w).Encode(makePage("page1", 100))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	txns := client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 8)

	assert.Len(t, txns, 100)
	assert.Equal(t, int32(2), requests.Load())
}

func TestFetchTransactions_EmptyPageStops(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode([]Transaction{})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	txns := client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 8)

	assert.Empty(t, txns)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchTransactions_MissingAPIKey(t *testing.T) {
	// No credential: empty result, zero network calls.
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	txns := client.FetchTransactions(context.Background(), "WalletAAA", TxnTypeSwap, 8)

	assert.Empty(t, txns)
	assert.Equal(t, int32(0), requests.Load())
}
