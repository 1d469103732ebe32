package httpclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cosmico/webinar/internal/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewAPI(config.HTTPConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/ok")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NoError(t, CheckStatus(resp))

	resp, err = client.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	err = CheckStatus(resp)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, http.MethodGet, statusErr.Method)
	assert.Contains(t, err.Error(), "404 Not Found")
}

func TestInvalidProxy(t *testing.T) {
	_, err := NewMedia(config.HTTPConfig{Proxy: "://bad"})
	assert.ErrorContains(t, err, "invalid proxy")
}

func TestAPIClientHasJar(t *testing.T) {
	client, err := NewAPI(config.HTTPConfig{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.NotNil(t, client.Jar)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}
