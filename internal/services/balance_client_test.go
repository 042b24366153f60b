package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient создает клиент, указывающий на тестовый сервер.
// Путь к сертификату заведомо не существует: клиент в этом случае
// работает без mutual TLS
func newTestClient(serverURL string) *BalanceClient {
	return NewBalanceClient(serverURL, "user", "secret", "testdata/no-such-cert.p12", "")
}

func TestFetchShopData_SuccessEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "secret", pass)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "shop-1", req["shop_id"])
		assert.Equal(t, "store_data", req["type"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "data": {"items": [{"id": "c-1", "name": "Напитки"}]}}`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.NoError(t, err)

	data, ok := payload.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "items")
}

func TestFetchShopData_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "магазин не найден"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "магазин не найден")
}

func TestFetchShopData_UnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "pending"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending")
}

func TestFetchShopData_BarePayloadWithoutEnvelope(t *testing.T) {
	// Legacy ответ: конверта нет, все тело и есть данные
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "c-1", "name": "Напитки"}]}`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.NoError(t, err)

	data, ok := payload.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "items")
}

func TestFetchShopData_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "пустое тело")
}

func TestFetchShopData_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "internal error")
}

func TestFetchShopData_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "невалидный JSON")
}

func TestFetchShopData_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // сразу закрываем

	_, err := newTestClient(server.URL).FetchShopData("shop-1", "store_data")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
}
