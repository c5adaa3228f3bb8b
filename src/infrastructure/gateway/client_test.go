package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainGateway "condo-notify-api/src/domain/gateway"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func testConfig(baseURL string) *domainGateway.Config {
	return &domainGateway.Config{
		CondominiumID: 1,
		BaseURL:       baseURL,
		SendEndpoint:  "/v2/send-text",
		ClientToken:   "secret-token",
		Active:        true,
	}
}

func TestHTTPClient_SendText_Success(t *testing.T) {
	var gotBody map[string]interface{}
	var gotToken, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Client-Token")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messageId":"abc123"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(setupLogger(t))
	response, err := client.SendText(testConfig(server.URL), "+5511999998888", "Hello Maria, you have 2 package(s) waiting.")

	require.NoError(t, err)
	assert.Contains(t, response, "abc123")
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "5511999998888", gotBody["phone"])
	assert.Contains(t, gotBody["message"], "Maria")
}

func TestHTTPClient_SendText_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"instance disconnected"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(setupLogger(t))
	_, err := client.SendText(testConfig(server.URL), "+5511999998888", "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway status 500")
	assert.Contains(t, err.Error(), "instance disconnected")
}

func TestHTTPClient_SendText_TruncatesLargeErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer server.Close()

	client := NewHTTPClient(setupLogger(t))
	_, err := client.SendText(testConfig(server.URL), "+5511999998888", "hi")

	require.Error(t, err)
	assert.LessOrEqual(t, len(err.Error()), maxStoredBody+100)
}

func TestHTTPClient_SendText_NetworkErrorIsError(t *testing.T) {
	client := NewHTTPClient(setupLogger(t))
	cfg := testConfig("http://127.0.0.1:1")

	_, err := client.SendText(cfg, "+5511999998888", "hi")
	assert.Error(t, err)
}

func TestHTTPClient_SendButtonList_PayloadShape(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient(setupLogger(t))
	_, err := client.SendButtonList(testConfig(server.URL), "+5511999998888", "Opt in?", []domainGateway.Button{
		{ID: "whatsapp_optin_yes", Label: "Yes"},
		{ID: "whatsapp_optin_no", Label: "No"},
	})
	require.NoError(t, err)

	buttonList, ok := gotBody["buttonList"].(map[string]interface{})
	require.True(t, ok)
	buttons, ok := buttonList["buttons"].([]interface{})
	require.True(t, ok)
	require.Len(t, buttons, 2)

	first := buttons[0].(map[string]interface{})
	assert.Equal(t, "whatsapp_optin_yes", first["id"])
	assert.Equal(t, "Yes", first["label"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
