package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ayush/ticket-simulator/backend/internal/models"
	"github.com/ayush/ticket-simulator/backend/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(store.NewMemoryStore(), zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string, out any) int {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("POST %s decode: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestEndToEndFlow(t *testing.T) {
	srv := newTestServer(t)

	var msg map[string]string
	if code := post(t, srv, "/register", `{"username":"mei","password":"pw"}`, &msg); code != http.StatusOK {
		t.Fatalf("register = %d %v", code, msg)
	}
	if code := post(t, srv, "/register", `{"username":"mei","password":"other"}`, &msg); code != http.StatusBadRequest {
		t.Fatalf("duplicate register = %d", code)
	}

	var login models.LoginResponse
	if code := post(t, srv, "/login", `{"username":"mei","password":"pw"}`, &login); code != http.StatusOK {
		t.Fatalf("login = %d", code)
	}
	if login.UserID == 0 || login.Message != "Login success" {
		t.Fatalf("login = %+v", login)
	}

	runs := []string{
		`{"platform":"ibon","entry_time":"early","ticket_type":"3800","network":"fast","user_id":%d}`,
		`{"platform":"拓元","entry_time":"late","ticket_type":"6800","network":"slow","user_id":%d}`,
	}
	wantRates := []int{100, 63}
	for i, r := range runs {
		var sim models.SimulateResponse
		if code := post(t, srv, "/simulate", fmt.Sprintf(r, login.UserID), &sim); code != http.StatusOK {
			t.Fatalf("simulate %d = %d", i, code)
		}
		if sim.SuccessRate != wantRates[i] {
			t.Fatalf("simulate %d rate = %d, want %d", i, sim.SuccessRate, wantRates[i])
		}
	}

	resp, err := http.Get(fmt.Sprintf("%s/history?user_id=%d", srv.URL, login.UserID))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var hist []models.Strategy
	if err := json.NewDecoder(resp.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].SuccessRate != 63 || hist[1].SuccessRate != 100 {
		t.Fatalf("history = %+v", hist)
	}
	if hist[0].CreatedAt.IsZero() {
		t.Fatal("created_at missing from history")
	}

	if code := post(t, srv, "/logout", ``, &msg); code != http.StatusOK || msg["message"] != "Logout success" {
		t.Fatalf("logout = %d %v", code, msg)
	}
}

func TestHealthReportsStore(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" || body["store"] != "memory" {
		t.Fatalf("health = %v", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}
}

type oddNameStore struct{ *store.MemoryStore }

func (oddNameStore) Name() string { return `my"sql\` + "\n" }

func TestHealthEscapesStoreName(t *testing.T) {
	srv := httptest.NewServer(NewRouter(oddNameStore{store.NewMemoryStore()}, zerolog.Nop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("health body is not valid JSON: %v", err)
	}
	if body["store"] != `my"sql\`+"\n" {
		t.Fatalf("store = %q", body["store"])
	}
}

func TestMethodsAreEnforced(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/simulate")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /simulate = %d, want 405", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
