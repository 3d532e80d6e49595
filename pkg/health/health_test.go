package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeBody struct {
	Status string
	Checks map[string]string
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) probeBody {
	t.Helper()
	body := probeBody{Checks: map[string]string{}}
	err := jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			s, err := d.Str()
			body.Status = s
			return err
		case "checks":
			return d.Obj(func(d *jx.Decoder, name string) error {
				msg, err := d.Str()
				body.Checks[name] = msg
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return body
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func probe(h *Health, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.Add(Check{Name: "goroutines", Kind: Liveness, Func: passing()})

	w := probe(h, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeBody(t, w).Status)
}

func TestFailureThreshold(t *testing.T) {
	h := New()
	h.Add(Check{Name: "db", Kind: Liveness, Func: failing("connection refused")})
	c := h.checks[0]
	ctx := context.Background()

	c.run(ctx)
	c.run(ctx)
	assert.Equal(t, http.StatusOK, probe(h, "/livez").Code, "below threshold")

	c.run(ctx)
	w := probe(h, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestRecovery(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	h := New()
	h.Add(Check{Name: "db", Kind: Readiness, FailureThreshold: 1, SuccessThreshold: 2,
		Func: func(context.Context) error {
			if fail.Load() {
				return errors.New("down")
			}
			return nil
		},
	})
	h.SetReady(true)
	c := h.checks[0]
	ctx := context.Background()

	c.run(ctx)
	assert.False(t, h.IsReady())

	fail.Store(false)
	c.run(ctx)
	assert.False(t, h.IsReady(), "one success is not enough")
	c.run(ctx)
	assert.True(t, h.IsReady())
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.Add(Check{Name: "db", Kind: Readiness, Func: passing()})

	w := probe(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service is not ready", decodeBody(t, w).Checks["_readiness"])

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, probe(h, "/readyz").Code)

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, probe(h, "/readyz").Code)
}

func TestReadinessIgnoresLivenessChecks(t *testing.T) {
	h := New()
	h.Add(Check{Name: "leak", Kind: Liveness, FailureThreshold: 1, Func: failing("too many")})
	h.SetReady(true)
	h.checks[0].run(context.Background())

	assert.True(t, h.IsReady())
	assert.Equal(t, http.StatusServiceUnavailable, probe(h, "/livez").Code)
}

func TestStartAndStop(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.Add(Check{Name: "count", Kind: Liveness, Func: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	h.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	h.Stop()
	h.Stop()

	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), settled+1)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, PingCheck(stubPinger{})(ctx))
	err := PingCheck(stubPinger{err: errors.New("refused")})(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping")

	assert.NoError(t, GoroutineCountCheck(100000)(ctx))
	assert.Error(t, GoroutineCountCheck(0)(ctx))
}
