package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/engine"
	"github.com/lixenwraith/gravity-wall/physics"
	"github.com/lixenwraith/gravity-wall/texture"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeController struct {
	status engine.Status
	err    error
}

func (f *fakeController) Snapshot(context.Context) (engine.Status, error) {
	return f.status, f.err
}

func (f *fakeController) SetScale(_ context.Context, v float64) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	v = min(max(v, constant.ScaleMin), constant.ScaleMax)
	f.status.Scale = v
	return v, nil
}

func TestCollectorImplementsObserver(t *testing.T) {
	var _ engine.Observer = NewCollector("")
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("")

	c.ItemReceived(false)
	c.ItemReceived(false)
	c.ItemReceived(true)
	c.ItemSkipped()
	c.AcquisitionFinished(true, 40*time.Millisecond)
	c.AcquisitionFinished(false, 2*time.Second)
	c.BodySpawned(7)
	c.ScaleChanged(125)
	c.FrameCompleted(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.feedItems.WithLabelValues("feed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.feedItems.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.acquisitions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.acquisitions.WithLabelValues("failed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.bodiesLive))
	assert.Equal(t, 125.0, testutil.ToFloat64(c.scale))
}

func TestMetricsEndpoint(t *testing.T) {
	c := NewCollector("")
	c.ItemReceived(true)
	srv := httptest.NewServer(NewRouter(c, &fakeController{}, testLog()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `gravitywall_feed_items_total{origin="fallback"} 1`)
}

func TestHealthz(t *testing.T) {
	ctrl := &fakeController{status: engine.Status{Scale: 100, Bodies: 4, Pending: 1, Fallback: true}}
	srv := httptest.NewServer(NewRouter(NewCollector(""), ctrl, testLog()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, healthResponse{Status: "ok", Bodies: 4, Pending: 1, Fallback: true, Scale: 100}, got)

	ctrl.err = errors.New("wall closed")
	resp2, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestScaleEndpoint(t *testing.T) {
	ctrl := &fakeController{status: engine.Status{Scale: 100}}
	srv := httptest.NewServer(NewRouter(NewCollector(""), ctrl, testLog()))
	defer srv.Close()

	put := func(query string) (*http.Response, scaleResponse) {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/scale?"+query, strings.NewReader(""))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out scaleResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	resp, out := put("value=140")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 140.0, out.Scale)

	resp, out = put("value=900")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, constant.ScaleMax, out.Scale)

	resp, _ = put("value=big")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/scale")
	require.NoError(t, err)
	defer getResp.Body.Close()
	var got scaleResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	assert.Equal(t, constant.ScaleMax, got.Scale)
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	srv := httptest.NewServer(NewRouter(c, &fakeController{}, testLog()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestWatchPipelineExportsFailures(t *testing.T) {
	c := NewCollector("")
	p := texture.NewPipeline(failingFetcher{}, texture.NewWebPNormalizer(160, 120, 85), testLog())
	c.WatchPipeline("", p)

	_, err := p.Acquire(context.Background(), "https://cdn.example/a.jpg")
	require.Error(t, err)
	_, err = p.Acquire(context.Background(), "https://cdn.example/b.jpg")
	require.Error(t, err)

	body := scrape(t, c)
	assert.Contains(t, body, "gravitywall_texture_fetch_failures_total 2")
	assert.Contains(t, body, "gravitywall_texture_fetches_total 2")
	assert.Contains(t, body, "gravitywall_texture_cached 0")
}

func TestScaleGaugeSeededByWall(t *testing.T) {
	c := NewCollector("")
	engine.NewWall(engine.Options{
		World:    physics.NewWorld(120, testLog()),
		Observer: c,
		Log:      testLog(),
	})

	assert.Equal(t, 120.0, testutil.ToFloat64(c.scale))
}
