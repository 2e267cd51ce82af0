// Package posesvc adapts the remote pose-estimation HTTP service to the
// PoseSource port. Any transport, auth, or decoding failure is reported as a
// remote-service error so the source chain can fall back to the local
// extractor.
package posesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

// ErrRemote wraps every failure of the remote call.
var ErrRemote = errors.New("pose service error")

const defaultTimeout = 120 * time.Second

type Adapter struct {
	url     string
	token   string
	client  *http.Client
	timeout time.Duration
}

func New(serviceURL, token string, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		url:     serviceURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

type request struct {
	VideoURL     string `json:"videoUrl"`
	TargetFrames int    `json:"targetFrames"`
}

type response struct {
	Frames []struct {
		TMs       float64 `json:"tMs"`
		Keypoints []struct {
			Name  string  `json:"name"`
			X     float64 `json:"x"`
			Y     float64 `json:"y"`
			Score float64 `json:"score"`
		} `json:"keypoints"`
	} `json:"frames"`
}

func (a *Adapter) Estimate(ctx context.Context, video ports.Video, targetFrames int) ([]types.PoseFrame, error) {
	if a.url == "" {
		return nil, fmt.Errorf("%w: no service URL configured", ErrRemote)
	}
	if video.URL == "" {
		return nil, fmt.Errorf("%w: video has no addressable URL", ErrRemote)
	}

	body, err := json.Marshal(request{VideoURL: video.URL, TargetFrames: targetFrames})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrRemote, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, string(b))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemote, err)
	}

	frames := make([]types.PoseFrame, 0, len(out.Frames))
	for _, f := range out.Frames {
		pf := types.PoseFrame{TimestampMs: int(f.TMs + 0.5)}
		for _, kp := range f.Keypoints {
			pf.Keypoints = append(pf.Keypoints, types.Keypoint{Name: kp.Name, X: kp.X, Y: kp.Y, Score: kp.Score})
		}
		frames = append(frames, pf)
	}
	return normalizeSeries(frames), nil
}

// normalizeSeries enforces the pose-series invariant: ordered by timestamp,
// strictly increasing, no duplicates.
func normalizeSeries(frames []types.PoseFrame) []types.PoseFrame {
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].TimestampMs < frames[j].TimestampMs
	})
	out := frames[:0]
	lastTs := -1
	for _, f := range frames {
		if f.TimestampMs == lastTs {
			continue
		}
		lastTs = f.TimestampMs
		out = append(out, f)
	}
	return out
}

var _ ports.PoseSource = (*Adapter)(nil)
