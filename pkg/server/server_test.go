package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cvtopo/pkg/cache"
	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/observability"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
	"github.com/matzehuels/cvtopo/pkg/store"
)

const scenario = `{"Tenant": {"children": {"DC1": {"children": {"DC1_SPINES": {"hosts": {"spine1": {}}}}}}}}`

const scenarioYAML = `
Tenant:
  children:
    DC1:
      children:
        DC1_SPINES:
          hosts:
            spine1:
`

func newTestServer(t *testing.T, withStore bool) (*httptest.Server, store.Store) {
	t.Helper()
	c, err := cache.NewMemoryCache(16)
	require.NoError(t, err)
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	runner := pipeline.NewRunner(c, nil, logger)

	var s store.Store
	if withStore {
		fs, err := store.NewFileStore(t.TempDir())
		require.NoError(t, err)
		s = fs
	}
	srv := httptest.NewServer(NewRouter(NewHandler(runner, s, logger)))
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type extractResult struct {
	ID           string                     `json:"id"`
	ReservedRoot string                     `json:"reserved_root"`
	Topology     map[string]json.RawMessage `json:"topology"`
	Warnings     []string                   `json:"warnings"`
	CacheHit     bool                       `json:"cache_hit"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestExtract(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := postJSON(t, srv.URL+"/v1/topology", map[string]any{
		"inventory": json.RawMessage(scenario),
		"root":      "DC1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractResult](t, resp)
	assert.Empty(t, got.ID)
	assert.Equal(t, "Tenant", got.ReservedRoot)
	assert.JSONEq(t, `{"parent_container":"Tenant"}`, string(got.Topology["DC1"]))
	assert.JSONEq(t, `{"parent_container":"DC1","devices":["spine1"]}`, string(got.Topology["DC1_SPINES"]))
	assert.NotNil(t, got.Warnings)
	assert.False(t, got.CacheHit)

	again := decode[extractResult](t, postJSON(t, srv.URL+"/v1/topology", map[string]any{
		"inventory": json.RawMessage(scenario),
		"root":      "DC1",
	}))
	assert.True(t, again.CacheHit)
}

func TestExtractPreservesOrder(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := postJSON(t, srv.URL+"/v1/topology", map[string]any{
		"inventory": json.RawMessage(scenario),
		"root":      "DC1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Topology json.RawMessage `json:"topology"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Less(t, bytes.Index(body.Topology, []byte(`"DC1"`)), bytes.Index(body.Topology, []byte(`"DC1_SPINES"`)))
}

func TestExtractInventoryString(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := postJSON(t, srv.URL+"/v1/topology", map[string]any{
		"inventory":     scenarioYAML,
		"root":          "DC1",
		"reserved_root": "Fabric",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractResult](t, resp)
	assert.Equal(t, "Fabric", got.ReservedRoot)
	assert.JSONEq(t, `{"parent_container":"Fabric"}`, string(got.Topology["DC1"]))
}

func TestExtractYAMLBody(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/v1/topology?root=DC1", "application/yaml", strings.NewReader(scenarioYAML))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractResult](t, resp)
	assert.Contains(t, got.Topology, "DC1_SPINES")
}

func TestExtractErrors(t *testing.T) {
	srv, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing inventory", map[string]any{"root": "DC1"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing root", map[string]any{"inventory": json.RawMessage(scenario)}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown root", map[string]any{"inventory": json.RawMessage(scenario), "root": "DC9"}, http.StatusNotFound, "CONTAINER_NOT_FOUND"},
		{"bad inventory", map[string]any{"inventory": "a: [", "root": "DC1"}, http.StatusBadRequest, "INVALID_INVENTORY"},
		{"unknown field", map[string]any{"inventory": json.RawMessage(scenario), "root": "DC1", "bogus": 1}, http.StatusBadRequest, "INVALID_INPUT"},
		{"save without store", map[string]any{"inventory": json.RawMessage(scenario), "root": "DC1", "save": true}, http.StatusNotImplemented, "UNSUPPORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/topology", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			got := decode[map[string]string](t, resp)
			assert.Equal(t, tt.code, got["code"])
			assert.NotEmpty(t, got["message"])
		})
	}
}

func TestExtractRejectsContentType(t *testing.T) {
	srv, _ := newTestServer(t, false)

	for _, path := range []string{"/v1/topology", "/v1/containers"} {
		resp, err := http.Post(srv.URL+path, "text/plain", strings.NewReader(scenario))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"), path)

		var body errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, cverrors.ErrCodeUnsupportedMediaType, body.Code, path)
		assert.Contains(t, body.Message, "text/plain", path)
	}
}

func TestContainers(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := postJSON(t, srv.URL+"/v1/containers", map[string]any{"inventory": json.RawMessage(scenario)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[containersResponse](t, resp)
	assert.Equal(t, "Tenant", got.ReservedRoot)
	assert.Contains(t, got.Containers, "DC1")
	assert.Contains(t, got.Containers, "DC1_SPINES")
}

func TestSnapshots(t *testing.T) {
	srv, _ := newTestServer(t, true)

	resp := postJSON(t, srv.URL+"/v1/topology", map[string]any{
		"inventory": json.RawMessage(scenario),
		"root":      "DC1",
		"save":      true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[extractResult](t, resp)
	require.NotEmpty(t, created.ID)

	listResp, err := http.Get(srv.URL + "/v1/snapshots")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	list := decode[[]map[string]any](t, listResp)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0]["id"])

	getResp, err := http.Get(srv.URL + "/v1/snapshots/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	snap := decode[store.Snapshot](t, getResp)
	assert.Equal(t, "DC1", snap.Root)
	assert.Equal(t, []string{"DC1", "DC1_SPINES"}, snap.Topology.Names())

	dotResp, err := http.Get(srv.URL + "/v1/snapshots/" + created.ID + "/diagram?format=dot&devices=true")
	require.NoError(t, err)
	defer dotResp.Body.Close()
	require.Equal(t, http.StatusOK, dotResp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", dotResp.Header.Get("Content-Type"))
	var dot bytes.Buffer
	_, _ = dot.ReadFrom(dotResp.Body)
	assert.Contains(t, dot.String(), `"DC1" -> "DC1_SPINES"`)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/snapshots/"+created.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	goneResp, err := http.Get(srv.URL + "/v1/snapshots/" + created.ID)
	require.NoError(t, err)
	defer goneResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, goneResp.StatusCode)
	assert.Equal(t, "SNAPSHOT_NOT_FOUND", decode[map[string]string](t, goneResp)["code"])
}

func TestSnapshotErrors(t *testing.T) {
	srv, _ := newTestServer(t, true)

	tests := []struct {
		path   string
		status int
	}{
		{"/v1/snapshots/not-a-uuid", http.StatusBadRequest},
		{"/v1/snapshots?limit=x", http.StatusBadRequest},
		{"/v1/snapshots/6f1c1f44-5d0e-4d2a-9a53-0d5b0c7e1b11/diagram", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}
}

func TestSnapshotsWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/v1/snapshots")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/topology", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://cvp.example.net")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://cvp.example.net", resp.Header.Get("Access-Control-Allow-Origin"))
}

type recordingHooks struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHooks) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
	h.status = append(h.status, status)
}

func TestRequestHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv, _ := newTestServer(t, true)
	resp, err := http.Get(srv.URL + "/v1/snapshots/6f1c1f44-5d0e-4d2a-9a53-0d5b0c7e1b11")
	require.NoError(t, err)
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	require.Len(t, hooks.routes, 1)
	assert.Equal(t, "GET /v1/snapshots/{id}", hooks.routes[0])
	assert.Equal(t, http.StatusNotFound, hooks.status[0])
}

func TestServerShutdown(t *testing.T) {
	s := New("127.0.0.1:0", http.NotFoundHandler(), log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	assert.Equal(t, "127.0.0.1:0", s.Addr())

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}
