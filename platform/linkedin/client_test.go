package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}), srv
}

func TestPublish_Success(t *testing.T) {
	var gotBody map[string]any
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/userinfo":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]string{"sub": "abc123"})
		case "/v2/ugcPosts":
			assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"urn:li:share:999"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	id, err := client.Publish(context.Background(), platform.Account{AccessToken: "tok"}, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:999", id)
	assert.Equal(t, "urn:li:person:abc123", gotBody["author"])
	assert.Equal(t, "PUBLISHED", gotBody["lifecycleState"])
}

func TestPublish_IDFromHeaderAndKnownUser(t *testing.T) {
	var identityCalls int32
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/userinfo" {
			atomic.AddInt32(&identityCalls, 1)
		}
		w.Header().Set("X-RestLi-Id", "urn:li:share:42")
		w.WriteHeader(http.StatusCreated)
	})

	id, err := client.Publish(context.Background(), platform.Account{AccessToken: "tok", UserID: "known"}, "x")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:42", id)
	assert.Equal(t, int32(0), atomic.LoadInt32(&identityCalls))
}

func TestPublish_Classification(t *testing.T) {
	cases := []struct {
		status int
		kind   platform.ErrorKind
	}{
		{http.StatusUnauthorized, platform.KindAuth},
		{http.StatusForbidden, platform.KindAuth},
		{http.StatusTooManyRequests, platform.KindRateLimited},
		{http.StatusInternalServerError, platform.KindTransientNetwork},
		{http.StatusBadGateway, platform.KindTransientNetwork},
		{http.StatusUnprocessableEntity, platform.KindPlatformRejected},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var calls int32
			client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := client.Publish(context.Background(), platform.Account{AccessToken: "tok", UserID: "u"}, "x")
			require.Error(t, err)

			var pErr *platform.Error
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, tc.kind, pErr.Kind)
			assert.Equal(t, tc.status, pErr.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "publish is never retried")
		})
	}
}

func TestPublish_LongErrorKeepsRunes(t *testing.T) {
	// "€" is 3 bytes, the leading "a" puts byte 300 inside one
	body := "a" + strings.Repeat("€", 150)
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(body))
	})

	_, err := client.Publish(context.Background(), platform.Account{AccessToken: "tok", UserID: "u"}, "x")
	var perr *platform.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, platform.KindPlatformRejected, perr.Kind)
	assert.True(t, utf8.ValidString(perr.Message))
	assert.Equal(t, "a"+strings.Repeat("€", 99), perr.Message)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 300))
	assert.Equal(t, "ab", truncate("abé", 3))
	assert.Equal(t, "abé", truncate("abé", 4))
	assert.Equal(t, "", truncate("日本", 2))
}

func TestPublish_EmptyIDIsRejected(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Publish(context.Background(), platform.Account{AccessToken: "tok", UserID: "u"}, "x")
	assert.Equal(t, platform.KindPlatformRejected, platform.KindOf(err))
}

func TestPublish_TimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Publish(context.Background(), platform.Account{AccessToken: "tok", UserID: "u"}, "x")
	assert.Equal(t, platform.KindTransientNetwork, platform.KindOf(err))
}

func TestIdentity_AuthFailure(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Identity(context.Background(), "expired")
	assert.Equal(t, platform.KindAuth, platform.KindOf(err))
}
