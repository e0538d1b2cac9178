package photoslib_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"shoebox/internal/photoslib"
	"shoebox/internal/services"
	"shoebox/internal/testsupport"
)

func testClient(t *testing.T, handler http.Handler) *photoslib.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Photos.BaseURL = server.URL

	client, err := photoslib.New(cfg)
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	return client
}

func TestCreateAlbum(t *testing.T) {
	var gotAuth, gotClientHeader, gotTitle string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/albums" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotClientHeader = r.Header.Get("X-Shoebox-Client")
		var body struct {
			Title string `json:"title"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTitle = body.Title
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "alb-42"})
	}))

	id, err := client.CreateAlbum(context.Background(), "NZ - Rotorua Trip")
	if err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if id != "alb-42" {
		t.Fatalf("unexpected album id: %q", id)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotClientHeader != client.ClientID() {
		t.Fatalf("client header %q does not match persisted id %q", gotClientHeader, client.ClientID())
	}
	if gotTitle != "NZ - Rotorua Trip" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
}

func TestUploadBytes(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/uploads" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/octet-stream" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Upload-File-Name") != "Rotorua_01.jpg" {
			t.Errorf("unexpected file name header: %s", r.Header.Get("X-Upload-File-Name"))
		}
		payload, _ := io.ReadAll(r.Body)
		if string(payload) != "jpeg bytes" {
			t.Errorf("unexpected payload: %q", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"media_id": "media-7"})
	}))

	mediaID, err := client.UploadBytes(context.Background(), "Rotorua_01.jpg", strings.NewReader("jpeg bytes"), 10)
	if err != nil {
		t.Fatalf("UploadBytes failed: %v", err)
	}
	if mediaID != "media-7" {
		t.Fatalf("unexpected media id: %q", mediaID)
	}
}

func TestAddToAlbum(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/albums/alb-42/media" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			MediaID string `json:"media_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.MediaID != "media-7" {
			t.Errorf("unexpected media id: %q", body.MediaID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.AddToAlbum(context.Background(), "alb-42", "media-7"); err != nil {
		t.Fatalf("AddToAlbum failed: %v", err)
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{http.StatusTooManyRequests, services.ErrTransient},
		{http.StatusServiceUnavailable, services.ErrTransient},
		{http.StatusInternalServerError, services.ErrTransient},
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusForbidden, services.ErrConfiguration},
		{http.StatusNotFound, services.ErrNotFound},
		{http.StatusBadRequest, services.ErrRejected},
	}
	for _, tc := range cases {
		status := tc.status
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := client.CreateAlbum(context.Background(), "X")
		if !errors.Is(err, tc.marker) {
			t.Errorf("status %d: expected marker %v, got %v", tc.status, tc.marker, err)
		}
	}
}

func TestNewRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken(""))

	_, err := photoslib.New(cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestClientIDPersistsAcrossClients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_id")
	first, err := photoslib.LoadOrCreateClientID(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := photoslib.LoadOrCreateClientID(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Fatalf("client id must be stable: %q vs %q", first, second)
	}
}
