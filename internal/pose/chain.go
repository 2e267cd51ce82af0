// Package pose composes the pose-source strategies into one PoseSource. The
// chain tries each strategy in order and stops at the first success; when
// every strategy fails it reports an empty series. Nothing escapes this
// component as an error.
package pose

import (
	"context"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

type Chain struct {
	names   []string
	sources []ports.PoseSource
	logf    func(format string, args ...any)
}

// NewChain builds a chain over named strategies, tried in argument order.
func NewChain(logf func(format string, args ...any)) *Chain {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Chain{logf: logf}
}

func (c *Chain) Add(name string, src ports.PoseSource) *Chain {
	c.names = append(c.names, name)
	c.sources = append(c.sources, src)
	return c
}

func (c *Chain) Estimate(ctx context.Context, video ports.Video, targetFrames int) ([]types.PoseFrame, error) {
	for i, src := range c.sources {
		frames, err := src.Estimate(ctx, video, targetFrames)
		if err != nil {
			c.logf("pose source %s failed: %v", c.names[i], err)
			continue
		}
		if len(frames) == 0 {
			c.logf("pose source %s returned no frames", c.names[i])
			continue
		}
		return frames, nil
	}
	return nil, nil
}

var _ ports.PoseSource = (*Chain)(nil)
