// Package visionsvc adapts the remote frame-content analyzer to the
// FrameAnalyzer port. The service looks at a single JPEG and reports
// person/ball presence plus pose-quality and motion estimates.
package visionsvc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

// ErrRemote wraps every failure of the remote call.
var ErrRemote = errors.New("vision service error")

const defaultTimeout = 60 * time.Second

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
	ImageBase64  string  `json:"imageBase64"`
	TimestampSec float64 `json:"timestampSec"`
	DurationSec  float64 `json:"durationSec"`
}

type response struct {
	HasPerson    bool    `json:"hasPerson"`
	HasBall      bool    `json:"hasBall"`
	PoseQuality  float64 `json:"poseQuality"`
	Movement     float64 `json:"movement"`
	OverallScore float64 `json:"overallScore"` // 0..100
}

func (a *Adapter) Analyze(ctx context.Context, framePath string, tsSec, durationSec float64, _ []types.PoseFrame) (types.FrameAnalysis, error) {
	if a.url == "" {
		return types.FrameAnalysis{}, fmt.Errorf("%w: no service URL configured", ErrRemote)
	}
	img, err := os.ReadFile(framePath)
	if err != nil {
		return types.FrameAnalysis{}, fmt.Errorf("%w: read frame: %v", ErrRemote, err)
	}

	body, err := json.Marshal(request{
		ImageBase64:  base64.StdEncoding.EncodeToString(img),
		TimestampSec: tsSec,
		DurationSec:  durationSec,
	})
	if err != nil {
		return types.FrameAnalysis{}, fmt.Errorf("%w: marshal request: %v", ErrRemote, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return types.FrameAnalysis{}, fmt.Errorf("%w: build request: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return types.FrameAnalysis{}, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return types.FrameAnalysis{}, fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, string(b))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.FrameAnalysis{}, fmt.Errorf("%w: decode response: %v", ErrRemote, err)
	}

	return types.FrameAnalysis{
		HasPerson:    out.HasPerson,
		HasBall:      out.HasBall,
		PoseQuality:  clamp01(out.PoseQuality),
		Movement:     out.Movement,
		GeneralScore: clamp01(out.OverallScore / 100),
	}, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

var _ ports.FrameAnalyzer = (*Adapter)(nil)
