package analyzer

import (
	"context"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

// Chain tries each analyzer strategy in order and stops at the first
// success. With no strategy left it reports an unobserved frame rather than
// an error, which downstream scoring turns into importance 0.
type Chain struct {
	names     []string
	analyzers []ports.FrameAnalyzer
	logf      func(format string, args ...any)
}

func NewChain(logf func(format string, args ...any)) *Chain {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Chain{logf: logf}
}

func (c *Chain) Add(name string, a ports.FrameAnalyzer) *Chain {
	c.names = append(c.names, name)
	c.analyzers = append(c.analyzers, a)
	return c
}

func (c *Chain) Analyze(ctx context.Context, framePath string, tsSec, durationSec float64, poses []types.PoseFrame) (types.FrameAnalysis, error) {
	for i, a := range c.analyzers {
		res, err := a.Analyze(ctx, framePath, tsSec, durationSec, poses)
		if err != nil {
			c.logf("frame analyzer %s failed: %v", c.names[i], err)
			continue
		}
		return res, nil
	}
	return types.FrameAnalysis{}, nil
}

var _ ports.FrameAnalyzer = (*Chain)(nil)
