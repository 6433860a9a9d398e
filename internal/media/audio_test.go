package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/qepting91/reddit-media-downloader/internal/fetch"
)

func TestAudioCandidates_DashMarker(t *testing.T) {
	candidates := AudioCandidates("https://v.redd.it/abc123/DASH_720.mp4")

	wantURLs := []string{
		"https://v.redd.it/abc123/DASH_audio.mp4",
		"https://v.redd.it/abc123/audio",
		"https://v.redd.it/abc123/DASH_audio.m4a",
		"https://v.redd.it/abc123/audio.mp4",
	}
	if len(candidates) != len(wantURLs) {
		t.Fatalf("got %d candidates, want %d", len(candidates), len(wantURLs))
	}
	for i, want := range wantURLs {
		if candidates[i].URL != want {
			t.Fatalf("candidate[%d] = %q, want %q", i, candidates[i].URL, want)
		}
	}
}

func TestAudioCandidates_NoMarkerFallsBackToLastSlash(t *testing.T) {
	candidates := AudioCandidates("https://v.redd.it/abc123/playback.mp4")
	if got, want := candidates[0].URL, "https://v.redd.it/abc123/DASH_audio.mp4"; got != want {
		t.Fatalf("candidate[0] = %q, want %q", got, want)
	}
}

func newTestFetcher(t *testing.T, srv *httptest.Server) *fetch.Fetcher {
	t.Helper()
	return fetch.New(srv.Client(), nil, fetch.Config{
		MaxAttempts: 1,
		BackoffUnit: time.Millisecond,
	}, nil)
}

func TestResolve_FourthCandidateWins(t *testing.T) {
	var mu sync.Mutex
	var probed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			mu.Lock()
			probed = append(probed, r.URL.Path)
			mu.Unlock()
		}
		if r.URL.Path == "/vid/abc/audio.mp4" {
			_, _ = w.Write([]byte("audio-bytes"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resolver := NewAudioResolver(newTestFetcher(t, srv), nil)
	dest := filepath.Join(t.TempDir(), "clip_audio.mp4")

	cand, ok := resolver.Resolve(context.Background(), srv.URL+"/vid/abc/DASH_480.mp4", dest)
	if !ok {
		t.Fatal("Resolve() reported no audio, want success on fourth candidate")
	}
	if cand.Pattern != "audio.mp4" {
		t.Fatalf("winning pattern = %q, want %q", cand.Pattern, "audio.mp4")
	}
	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read audio file: %v", err)
	}
	if string(body) != "audio-bytes" {
		t.Fatalf("audio content = %q", body)
	}

	wantOrder := []string{
		"/vid/abc/DASH_audio.mp4",
		"/vid/abc/audio",
		"/vid/abc/DASH_audio.m4a",
		"/vid/abc/audio.mp4",
	}
	mu.Lock()
	defer mu.Unlock()
	if len(probed) != len(wantOrder) {
		t.Fatalf("probed %d candidates, want %d (%v)", len(probed), len(wantOrder), probed)
	}
	for i, want := range wantOrder {
		if probed[i] != want {
			t.Fatalf("probe order[%d] = %q, want %q", i, probed[i], want)
		}
	}
}

func TestResolve_NoAudioFound(t *testing.T) {
	var probes int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			mu.Lock()
			probes++
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resolver := NewAudioResolver(newTestFetcher(t, srv), nil)
	dest := filepath.Join(t.TempDir(), "clip_audio.mp4")

	if _, ok := resolver.Resolve(context.Background(), srv.URL+"/vid/abc/DASH_480.mp4", dest); ok {
		t.Fatal("Resolve() reported success, want no audio found")
	}
	mu.Lock()
	defer mu.Unlock()
	if probes != len(AudioCandidates("x/DASH_1.mp4")) {
		t.Fatalf("probed %d candidates, want all %d", probes, len(AudioCandidates("x/DASH_1.mp4")))
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("no audio file should exist, stat err = %v", err)
	}
}

func TestResolve_ProbeOKButFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	resolver := NewAudioResolver(newTestFetcher(t, srv), nil)
	dest := filepath.Join(t.TempDir(), "clip_audio.mp4")

	if _, ok := resolver.Resolve(context.Background(), srv.URL+"/vid/abc/DASH_480.mp4", dest); ok {
		t.Fatal("Resolve() reported success although every fetch failed")
	}
}
