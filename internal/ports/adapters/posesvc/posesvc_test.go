package posesvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmolgo/shotscope/internal/ports"
)

func TestEstimate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		var req struct {
			VideoURL     string `json:"videoUrl"`
			TargetFrames int    `json:"targetFrames"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.VideoURL != "https://cdn.example.com/shot.mp4" || req.TargetFrames != 48 {
			t.Errorf("unexpected request: %+v", req)
		}

		// Frames arrive unordered with one duplicate timestamp.
		_, _ = w.Write([]byte(`{"frames":[
			{"tMs":200,"keypoints":[{"name":"right_wrist","x":0.5,"y":0.4,"score":0.9}]},
			{"tMs":0,"keypoints":[{"name":"right_wrist","x":0.5,"y":0.8,"score":0.9}]},
			{"tMs":200,"keypoints":[]}
		]}`))
	}))
	defer srv.Close()

	a := New(srv.URL, "secret", 0)
	frames, err := a.Estimate(context.Background(), ports.Video{URL: "https://cdn.example.com/shot.mp4"}, 48)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected duplicate collapsed, got %d frames", len(frames))
	}
	if frames[0].TimestampMs != 0 || frames[1].TimestampMs != 200 {
		t.Fatalf("expected ordered series, got %v", frames)
	}
	kp, ok := frames[1].Keypoint("right_wrist")
	if !ok || kp.Y != 0.4 {
		t.Fatalf("expected first-seen duplicate kept, got %+v", kp)
	}
}

func TestEstimate_RemoteFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			a := New(srv.URL, "", 0)
			_, err := a.Estimate(context.Background(), ports.Video{URL: "https://x/v.mp4"}, 10)
			if !errors.Is(err, ErrRemote) {
				t.Fatalf("expected ErrRemote, got %v", err)
			}
		})
	}
}

func TestEstimate_RequiresURL(t *testing.T) {
	a := New("", "", 0)
	if _, err := a.Estimate(context.Background(), ports.Video{URL: "https://x/v.mp4"}, 10); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote without service URL, got %v", err)
	}

	a = New("https://pose.example.com", "", 0)
	if _, err := a.Estimate(context.Background(), ports.Video{Path: "/tmp/v.mp4"}, 10); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote for unaddressable video, got %v", err)
	}
}
