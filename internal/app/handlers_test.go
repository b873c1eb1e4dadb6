package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"deeplinkqr/internal/app"
	"deeplinkqr/internal/config"
	"deeplinkqr/internal/db"
	"deeplinkqr/internal/dtos"
	"deeplinkqr/internal/entities"
)

const (
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	iosUA     = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func setupServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	cfg := config.Load()
	cfg.CreatePerMinute = 1000
	cfg.RedirectPerMinute = 1000

	ts := httptest.NewServer(app.New(cfg, gdb).Router())
	t.Cleanup(ts.Close)
	return ts, gdb
}

// noRedirectClient returns redirect responses instead of following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func createLink(t *testing.T, ts *httptest.Server, body dtos.CreateLinkRequest) dtos.CreateLinkResponse {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/links", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dtos.CreateLinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func get(t *testing.T, ts *httptest.Server, path, ua string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	return resp
}

func scanCount(gdb *gorm.DB, linkID string) int64 {
	var n int64
	gdb.Model(&entities.ScanEvent{}).Where("link_id = ?", linkID).Count(&n)
	return n
}

func promoRequest() dtos.CreateLinkRequest {
	return dtos.CreateLinkRequest{
		AppScheme:   "myapp",
		AppPackage:  "com.example.app",
		FallbackURL: "https://example.com/get",
		CustomPath:  "promo",
		Title:       "Promo",
	}
}

func TestHealth(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"healthy","service":"deeplinkqr"}`, string(body))
}

func TestCreateLink(t *testing.T) {
	ts, _ := setupServer(t)

	out := createLink(t, ts, dtos.CreateLinkRequest{
		AppScheme:   "myapp",
		AppPackage:  "com.example.app",
		FallbackURL: "https://example.com/get",
	})

	assert.Len(t, out.ID, 8)
	assert.Contains(t, out.ShortURL, "/r/"+out.ID)
	assert.Contains(t, out.AnalyticsURL, "/api/analytics/"+out.ID)
	assert.True(t, len(out.QRCode) > 100)
	assert.Contains(t, out.QRCode, "data:image/png;base64,")
}

func TestCreateLinkValidation(t *testing.T) {
	ts, _ := setupServer(t)

	post := func(body string) int {
		resp, err := http.Post(ts.URL+"/api/links", "application/json", bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, post(`not json`))
	assert.Equal(t, http.StatusBadRequest, post(`{"app_package":"com.example.app","fallback_url":"https://example.com"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"app_scheme":"myapp","app_package":"com.example.app","fallback_url":"ftp://example.com"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"app_scheme":"myapp","app_package":"com.example.app","fallback_url":"https://example.com","custom_path":"bad path!"}`))

	createLink(t, ts, promoRequest())
	assert.Equal(t, http.StatusConflict, post(`{"app_scheme":"myapp","app_package":"com.example.app","fallback_url":"https://example.com","custom_path":"promo"}`))
}

func TestRedirectAndroidSmartPage(t *testing.T) {
	ts, gdb := setupServer(t)
	out := createLink(t, ts, promoRequest())

	resp := get(t, ts, "/r/"+out.ID, androidUA)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	assert.Contains(t, html, "intent://")
	assert.Contains(t, html, "com.example.app")
	assert.Contains(t, html, "https://example.com/get")

	require.Eventually(t, func() bool {
		return scanCount(gdb, out.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var evt entities.ScanEvent
	require.NoError(t, gdb.Where("link_id = ?", out.ID).First(&evt).Error)
	assert.Equal(t, entities.DeviceAndroid, evt.DeviceType)
	assert.Equal(t, androidUA, evt.UserAgent)
	assert.NotEmpty(t, evt.IPAddress)
}

func TestRedirectIOSDeepLink(t *testing.T) {
	ts, gdb := setupServer(t)
	out := createLink(t, ts, promoRequest())

	resp := get(t, ts, "/r/"+out.ID, iosUA)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "myapp://promo", resp.Header.Get("Location"))

	require.Eventually(t, func() bool {
		return scanCount(gdb, out.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedirectDesktopFallback(t *testing.T) {
	ts, _ := setupServer(t)
	out := createLink(t, ts, promoRequest())

	resp := get(t, ts, "/r/"+out.ID, desktopUA)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/get", resp.Header.Get("Location"))
}

func TestRedirectMissingUserAgentFallsBack(t *testing.T) {
	ts, _ := setupServer(t)
	out := createLink(t, ts, promoRequest())

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/r/"+out.ID, nil)
	require.NoError(t, err)
	req.Header["User-Agent"] = nil // suppress the client default entirely

	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/get", resp.Header.Get("Location"))
}

func TestRedirectUnknownLink(t *testing.T) {
	ts, gdb := setupServer(t)

	resp := get(t, ts, "/r/nope1234", androidUA)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 0, scanCount(gdb, "nope1234"))
}

func TestAnalytics(t *testing.T) {
	ts, gdb := setupServer(t)
	out := createLink(t, ts, promoRequest())

	for _, ua := range []string{androidUA, androidUA, iosUA} {
		resp := get(t, ts, "/r/"+out.ID, ua)
		resp.Body.Close()
	}

	require.Eventually(t, func() bool {
		return scanCount(gdb, out.ID) == 3
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.URL + "/api/analytics/" + out.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats dtos.AnalyticsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))

	assert.Equal(t, out.ID, stats.LinkID)
	assert.EqualValues(t, 3, stats.TotalScans)
	assert.EqualValues(t, 2, stats.ByDevice["android"])
	assert.EqualValues(t, 1, stats.ByDevice["ios"])
	assert.EqualValues(t, 0, stats.ByDevice["desktop"])
	assert.EqualValues(t, 0, stats.ByDevice["mobile_other"])
	require.Len(t, stats.Scans, 3)
	for _, s := range stats.Scans {
		assert.NotEmpty(t, s.DeviceType)
		assert.NotEmpty(t, s.IPAddress)
		assert.False(t, s.Timestamp.IsZero())
	}
}

func TestAnalyticsUnknownLink(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Get(ts.URL + "/api/analytics/nope1234")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRedirectSurvivesStoreFailure(t *testing.T) {
	ts, gdb := setupServer(t)
	out := createLink(t, ts, promoRequest())

	// break the scan store; the redirect must not notice
	require.NoError(t, gdb.Migrator().DropTable(&entities.ScanEvent{}))

	resp := get(t, ts, "/r/"+out.ID, desktopUA)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/get", resp.Header.Get("Location"))
}

func TestGetAndListLinks(t *testing.T) {
	ts, gdb := setupServer(t)
	first := createLink(t, ts, promoRequest())

	second := promoRequest()
	second.CustomPath = "other"
	second.Title = "Other"
	createLink(t, ts, second)

	resp := get(t, ts, "/r/"+first.ID, androidUA)
	resp.Body.Close()
	require.Eventually(t, func() bool {
		return scanCount(gdb, first.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.URL + "/api/links/" + first.ID)
	require.NoError(t, err)
	var link dtos.LinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&link))
	resp.Body.Close()
	assert.Equal(t, "myapp://promo", link.DeepLink)
	assert.Equal(t, "Promo", link.Title)

	resp, err = http.Get(ts.URL + "/api/links")
	require.NoError(t, err)
	var list []dtos.LinkListItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()

	require.Len(t, list, 2)
	byID := map[string]dtos.LinkListItem{list[0].ID: list[0], list[1].ID: list[1]}
	assert.EqualValues(t, 1, byID[first.ID].Scans)
	assert.EqualValues(t, 0, byID["other"].Scans)
}

func TestDeleteLink(t *testing.T) {
	ts, _ := setupServer(t)
	out := createLink(t, ts, promoRequest())

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/links/"+out.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = get(t, ts, "/r/"+out.ID, androidUA)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRateLimit(t *testing.T) {
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	cfg := config.Load()
	cfg.CreatePerMinute = 2
	ts := httptest.NewServer(app.New(cfg, gdb).Router())
	t.Cleanup(ts.Close)

	post := func() *http.Response {
		raw, _ := json.Marshal(dtos.CreateLinkRequest{
			AppScheme:   "myapp",
			AppPackage:  "com.example.app",
			FallbackURL: "https://example.com",
		})
		resp, err := http.Post(ts.URL+"/api/links", "application/json", bytes.NewReader(raw))
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, http.StatusCreated, post().StatusCode)
	assert.Equal(t, http.StatusCreated, post().StatusCode)

	resp := post()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
