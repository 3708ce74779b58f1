package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remy/internal/ai"
	"remy/internal/app"
	"remy/internal/cache"
)

type scriptedClient struct {
	recipe     *ai.Recipe
	recognized []string
	stores     []ai.StoreLocation
	audio      []byte
	audioMime  string
}

func (c *scriptedClient) RecognizeIngredients(context.Context, []byte, string) ([]string, error) {
	return c.recognized, nil
}

func (c *scriptedClient) GenerateRecipe(context.Context, string, []string) (*ai.Recipe, error) {
	r := *c.recipe
	return &r, nil
}

func (c *scriptedClient) GenerateImage(context.Context, string) (string, error) {
	return "data:image/png;base64,xyz", nil
}

func (c *scriptedClient) EditImage(context.Context, string, string) (string, error) {
	return "data:image/png;base64,edited", nil
}

func (c *scriptedClient) LookupStores(context.Context, string) ([]ai.StoreLocation, error) {
	return c.stores, nil
}

func (c *scriptedClient) Synthesize(context.Context, string) ([]byte, string, error) {
	return c.audio, c.audioMime, nil
}

func newTestServer(t *testing.T, client ai.Client) (*httptest.Server, *http.Client) {
	t.Helper()
	mux := http.NewServeMux()
	New(app.NewManager(cache.NewInMemoryCache(), client), client, nil).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, hc *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := hc.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) app.Snapshot {
	t.Helper()
	defer resp.Body.Close()
	var snap app.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func TestGenerateEndpoint(t *testing.T) {
	client := &scriptedClient{recipe: &ai.Recipe{Name: "Tagine", Steps: []string{"Cook"}}}
	ts, hc := newTestServer(t, client)

	resp := postJSON(t, hc, ts.URL+"/api/generate", map[string]string{"query": "tagine"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, app.ScreenResult, snap.Screen)
	require.NotNil(t, snap.Current)
	assert.Equal(t, "Tagine", snap.Current.Name)
	// defaulting applied on the way out: list fields always present
	assert.NotNil(t, snap.Current.Hacks)
}

func TestStatePersistsAcrossRequests(t *testing.T) {
	client := &scriptedClient{recipe: &ai.Recipe{Name: "Harira", Steps: []string{"Simmer"}}}
	ts, hc := newTestServer(t, client)

	postJSON(t, hc, ts.URL+"/api/generate", map[string]string{"query": "harira"}).Body.Close()

	resp, err := hc.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, app.ScreenResult, snap.Screen)
	require.NotNil(t, snap.Current, "cookie should scope both requests to one profile")
}

func TestScanEndpointMergesPantry(t *testing.T) {
	client := &scriptedClient{
		recipe:     &ai.Recipe{Name: "x"},
		recognized: []string{"tomato", "onion"},
	}
	ts, hc := newTestServer(t, client)

	resp, err := hc.Post(ts.URL+"/api/scan", "image/jpeg", bytes.NewReader([]byte("fake-jpeg")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Recognized []string     `json:"recognized"`
		State      app.Snapshot `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"tomato", "onion"}, out.Recognized)
	assert.Equal(t, []string{"Tomato", "Onion"}, out.State.Pantry)
}

func TestScanEmptyBodyRejected(t *testing.T) {
	ts, hc := newTestServer(t, &scriptedClient{recipe: &ai.Recipe{}})
	resp, err := hc.Post(ts.URL+"/api/scan", "image/jpeg", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDuplicateSaveKeepsCookbookStable(t *testing.T) {
	client := &scriptedClient{recipe: &ai.Recipe{Name: "Kefta", Steps: []string{"Grill"}}}
	ts, hc := newTestServer(t, client)

	postJSON(t, hc, ts.URL+"/api/generate", map[string]string{"query": "kefta"}).Body.Close()
	postJSON(t, hc, ts.URL+"/api/save", nil).Body.Close()
	resp := postJSON(t, hc, ts.URL+"/api/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, resp)
	assert.Len(t, snap.Cookbook, 1)
	require.NotNil(t, snap.Notice)
}

func TestPantryEndpoints(t *testing.T) {
	ts, hc := newTestServer(t, &scriptedClient{recipe: &ai.Recipe{}})

	postJSON(t, hc, ts.URL+"/api/pantry", map[string]string{"name": "eggs"}).Body.Close()
	resp := postJSON(t, hc, ts.URL+"/api/pantry", map[string]string{"name": "eggs"})
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, []string{"eggs", "eggs"}, snap.Pantry, "manual adds keep duplicates")

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/pantry/0", nil)
	require.NoError(t, err)
	resp2, err := hc.Do(req)
	require.NoError(t, err)
	snap = decodeSnapshot(t, resp2)
	assert.Equal(t, []string{"eggs"}, snap.Pantry)
}

func TestStoresPassthrough(t *testing.T) {
	open := true
	client := &scriptedClient{
		recipe: &ai.Recipe{},
		stores: []ai.StoreLocation{{Name: "Marjane", Address: "Gueliz", Rating: 4.4, Open: &open, MapsURI: "https://maps.example"}},
	}
	ts, hc := newTestServer(t, client)

	resp, err := hc.Get(ts.URL + "/api/stores?city=Marrakesh")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stores []ai.StoreLocation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stores))
	require.Len(t, stores, 1)
	assert.Equal(t, "Marjane", stores[0].Name)
}

func TestStoresWithoutCity(t *testing.T) {
	ts, hc := newTestServer(t, &scriptedClient{recipe: &ai.Recipe{}})
	resp, err := hc.Get(ts.URL + "/api/stores")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSpeakEndpoint(t *testing.T) {
	client := &scriptedClient{recipe: &ai.Recipe{}, audio: []byte("pcm-bytes"), audioMime: "audio/mpeg"}
	ts, hc := newTestServer(t, client)

	resp := postJSON(t, hc, ts.URL+"/api/speak", map[string]string{"text": "Crack the eggs"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
}

func TestShareWithoutMailerUnavailable(t *testing.T) {
	ts, hc := newTestServer(t, &scriptedClient{recipe: &ai.Recipe{}})
	resp := postJSON(t, hc, ts.URL+"/api/share", map[string]any{"to": []string{"a@b.c"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReady(t *testing.T) {
	ts, hc := newTestServer(t, &scriptedClient{recipe: &ai.Recipe{}})
	resp, err := hc.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
