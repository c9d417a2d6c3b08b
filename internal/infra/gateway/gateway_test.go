package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libris/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (t staticTokens) Token() string { return string(t) }

func newTestGateway(t *testing.T, handler http.HandlerFunc, token string) *Gateway {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.Config{}
	cfg.API.BaseURL = ts.URL
	cfg.API.Timeout = 5 * time.Second

	return New(Params{
		Config: cfg,
		Tokens: staticTokens(token),
		Logger: slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))

	return len(p), nil
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"ok":true}`))
	}, "secret-token")

	_, err := gw.Get(context.Background(), "/books")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestDoOmitsAuthorizationWhenGuest(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}, "")

	_, err := gw.Get(context.Background(), "/books")
	require.NoError(t, err)
	assert.False(t, hasAuth, "unexpected Authorization header %q", gotAuth)
}

func TestDoReturnsBodyTextOnFailure(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("insufficient stock\n"))
	}, "")

	_, err := gw.Get(context.Background(), "/loans")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.StatusCode)
	assert.Equal(t, "insufficient stock", httpErr.Error())
}

func TestDoSynthesizesStatusMessageOnEmptyFailureBody(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "")

	_, err := gw.Get(context.Background(), "/books")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "HTTP 503", httpErr.Error())
}

func TestDoTreatsEmptySuccessBodyAsEmptyObject(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")

	raw, err := gw.Do(context.Background(), http.MethodDelete, "/cart", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestDoWithTokenOverridesSessionToken(t *testing.T) {
	var gotAuth string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "session-token")

	_, err := gw.DoWithToken(context.Background(), http.MethodGet, "/me", nil, "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", gotAuth)
}

func TestDecodeFieldHandlesBothNestings(t *testing.T) {
	type book struct {
		ID int64 `json:"id"`
	}

	nested, err := DecodeField[[]book]([]byte(`{"success":true,"data":{"books":[{"id":1},{"id":2}]}}`), "books")
	require.NoError(t, err)
	assert.Len(t, nested, 2)

	bare, err := DecodeField[[]book]([]byte(`{"success":true,"data":[{"id":3}]}`), "books")
	require.NoError(t, err)
	assert.Len(t, bare, 1)

	unenveloped, err := DecodeField[[]book]([]byte(`[{"id":4}]`), "books")
	require.NoError(t, err)
	assert.Len(t, unenveloped, 1)
}

func TestUnwrapLeavesBarePayloadsAlone(t *testing.T) {
	raw := Unwrap([]byte(`{"id":7,"title":"Cosmos"}`))
	assert.JSONEq(t, `{"id":7,"title":"Cosmos"}`, string(raw))
}
