package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reconciler/pkg/controller"
	"reconciler/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func TestWithLogger_GeneratesRequestID(t *testing.T) {
	var seen string
	h := controller.WithLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(controller.RequestIDKey).(string)
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Request-Id"))
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWithLogger_PropagatesIncomingRequestID(t *testing.T) {
	var seen string
	h := controller.WithLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(controller.RequestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "req-42", seen)
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "x-forwarded-for first entry wins",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"},
			remote:  "192.168.1.1:1234",
			want:    "10.0.0.1",
		},
		{
			name:    "x-real-ip fallback",
			headers: map[string]string{"X-Real-IP": "10.0.0.3"},
			remote:  "192.168.1.1:1234",
			want:    "10.0.0.3",
		},
		{
			name:   "remote addr fallback",
			remote: "192.168.1.1:1234",
			want:   "192.168.1.1",
		},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		for k, v := range tc.headers {
			req.Header.Set(k, v)
		}
		require.Equal(t, tc.want, controller.GetClientIP(req), tc.name)
	}
}
