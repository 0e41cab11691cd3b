package voicevox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			t.Errorf("expected /version, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, 14, time.Second, t.TempDir())
	if !c.CheckHealth(context.Background()) {
		t.Error("expected CheckHealth to return true")
	}
}

func TestCheckHealth_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", 14, 50*time.Millisecond, t.TempDir())
	if c.CheckHealth(context.Background()) {
		t.Error("expected CheckHealth to return false for an unreachable engine")
	}
}

func TestSynthesizeToFile(t *testing.T) {
	var gotQuery, gotSynth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio_query":
			gotQuery = true
			if r.URL.Query().Get("text") != "こんにちは" {
				t.Errorf("expected text param, got %q", r.URL.Query().Get("text"))
			}
			w.Write([]byte(`{"fake":"query"}`))
		case "/synthesis":
			gotSynth = true
			w.Write([]byte("RIFF-fake-wav-bytes"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	c := New(server.URL, 14, 5*time.Second, tmpDir)

	path, err := c.SynthesizeToFile(context.Background(), "こんにちは", "req1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotQuery || !gotSynth {
		t.Error("expected both audio_query and synthesis to be called")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected wav file to exist: %v", err)
	}
	if string(data) != "RIFF-fake-wav-bytes" {
		t.Errorf("unexpected wav contents: %q", data)
	}
	if filepath.Dir(path) != tmpDir {
		t.Errorf("expected wav written under %s, got %s", tmpDir, path)
	}
}

func TestSynthesizeToFile_AudioQueryFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := New(server.URL, 14, 5*time.Second, t.TempDir())
	_, err := c.SynthesizeToFile(context.Background(), "text", "req1")
	if err == nil {
		t.Error("expected an error when audio_query fails")
	}
}

func TestCleanup_LeavesTempDirUntouched(t *testing.T) {
	// spec.md §6.5: the temp directory is not cleaned at shutdown, and a
	// retained return_audio WAV is the caller's responsibility, not the
	// client's. Cleanup only closes idle connections.
	tmpDir := t.TempDir()
	c := New("http://127.0.0.1:1", 14, time.Second, tmpDir)

	leftover := filepath.Join(tmpDir, "voxbridge-req1.wav")
	if err := os.WriteFile(leftover, []byte("data"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if err := c.Cleanup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(leftover); err != nil {
		t.Errorf("expected leftover wav file to survive cleanup, got: %v", err)
	}
}
