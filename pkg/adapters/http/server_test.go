package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/testutils"
	httpadapter "github.com/aretw0/mnemo/pkg/adapters/http"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/observability"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, text string, opts ...mnemo.Option) *mnemo.Engine {
	t.Helper()
	eng, err := mnemo.New("", opts...)
	require.NoError(t, err)
	if text != "" {
		require.NoError(t, eng.Train(context.Background(), strings.NewReader(text)))
	}
	return eng
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler := httpadapter.NewHandler(nil)

	rr := do(t, handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := httpadapter.NewHandler(nil)

	rr := do(t, handler, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "mnemo-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
}

func TestPostMnemonics(t *testing.T) {
	handler := httpadapter.NewHandler(newEngine(t, testutils.FeasibleCorpus, mnemo.WithSeed(1)))

	rr := do(t, handler, http.MethodPost, "/v1/mnemonics", `{"constraint": "t w d", "count": 3}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res mnemo.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, []int{1, 1, 2, 1}, res.LayerSizes)
	require.Len(t, res.Sentences, 3)
	for _, s := range res.Sentences {
		assert.Contains(t, []string{"the wild dog", "the wet dog"}, s.Text)
	}
	assert.Len(t, res.Removed["arc_consistency"], 3)
}

func TestPostMnemonics_Errors(t *testing.T) {
	trained := httpadapter.NewHandler(newEngine(t, "The weather was warm. The door was wide."))
	untrained := httpadapter.NewHandler(newEngine(t, ""))

	tests := []struct {
		name    string
		handler http.Handler
		body    string
		status  int
		sizes   []int
	}{
		{"Infeasible", trained, `{"constraint": "t w d"}`, http.StatusConflict, []int{0, 0, 0, 0}},
		{"Not Trained", untrained, `{"constraint": "t w d"}`, http.StatusServiceUnavailable, nil},
		{"Bad JSON", trained, `{"constraint":`, http.StatusBadRequest, nil},
		{"Bad Count", trained, `{"constraint": "t", "count": 1000}`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, tt.handler, http.MethodPost, "/v1/mnemonics", tt.body)
			assert.Equal(t, tt.status, rr.Code)

			var resp httpadapter.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.sizes != nil {
				assert.Equal(t, tt.sizes, resp.LayerSizes)
			}
		})
	}
}

func TestGetLayers(t *testing.T) {
	handler := httpadapter.NewHandler(newEngine(t, testutils.FeasibleCorpus))

	rr := do(t, handler, http.MethodGet, "/v1/layers?constraint=t+w+d", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp httpadapter.LayersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "t w d", resp.Constraint)
	assert.Equal(t, []int{1, 1, 2, 1}, resp.LayerSizes)
	assert.True(t, resp.Feasible)

	untrained := httpadapter.NewHandler(newEngine(t, ""))
	rr = do(t, untrained, http.MethodGet, "/v1/layers?constraint=t", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPoolAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	p := pool.New(pool.WithWorkers(2), pool.WithObserver(metrics))
	p.Start()
	defer p.Stop()

	eng := newEngine(t, testutils.FeasibleCorpus, mnemo.WithBuildHooks(metrics.Hooks()))
	handler := httpadapter.NewHandler(eng,
		httpadapter.WithPool(p),
		httpadapter.WithRecorder(metrics),
		httpadapter.WithGatherer(reg),
		httpadapter.WithDefaultCount(2),
	)

	rr := do(t, handler, http.MethodPost, "/v1/mnemonics", `{"constraint": "t w d"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var res mnemo.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Len(t, res.Sentences, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("http", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Builds.WithLabelValues(observability.OutcomeFeasible)))

	rr = do(t, handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "mnemo_builds_total")
}

func TestPoolClosed(t *testing.T) {
	p := pool.New()
	p.Start()
	require.NoError(t, p.Stop())

	handler := httpadapter.NewHandler(newEngine(t, testutils.FeasibleCorpus), httpadapter.WithPool(p))
	rr := do(t, handler, http.MethodPost, "/v1/mnemonics", `{"constraint": "t w d"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

// stalledEngine blocks every call until release is closed.
type stalledEngine struct {
	release chan struct{}
}

func (e stalledEngine) Generate(context.Context, domain.Constraint, int) (*mnemo.Result, error) {
	<-e.release
	return &mnemo.Result{LayerSizes: []int{1, 0}}, domain.ErrInfeasible
}

func (e stalledEngine) Build(context.Context, domain.Constraint) (ports.ConstrainedModel, error) {
	<-e.release
	return nil, domain.ErrNotTrained
}

func TestPostMnemonics_RequestTimeout(t *testing.T) {
	p := pool.New(pool.WithWorkers(1))
	p.Start()
	eng := stalledEngine{release: make(chan struct{})}
	handler := httpadapter.NewHandler(eng, httpadapter.WithPool(p))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/mnemonics", strings.NewReader(`{"constraint": "t w d"}`)).WithContext(ctx)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	var resp httpadapter.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.LayerSizes)

	// The worker finishes the abandoned request after the reply was written.
	close(eng.release)
	require.NoError(t, p.Stop())
}

func TestSubscribeEvents(t *testing.T) {
	streams := httpadapter.NewStreamManager(nil)
	eng := newEngine(t, testutils.FeasibleCorpus, mnemo.WithBuildHooks(streams.Hooks()))
	srv := httptest.NewServer(httpadapter.NewHandler(eng, httpadapter.WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	post, err := http.Post(srv.URL+"/v1/mnemonics", "application/json", strings.NewReader(`{"constraint": "t w d"}`))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}

	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "event: ping")
	assert.Contains(t, out, "event: build")
	assert.Contains(t, out, `"outcome":"feasible"`)
	assert.Contains(t, out, `"constraint":"t w d"`)
}
