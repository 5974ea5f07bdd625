// Package middleware implements the middleware chain (C4): a sequence of
// stateful event transforms the streaming parser bridge runs every
// decoded event through before it reaches the active function code
// generator.
package middleware

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/wasm"
)

// Stage is one middleware stage: a stateful transform from one inbound
// event to zero or more outbound events, pushed into sink in order. A
// stage may not peek across event boundaries except through its own
// state, and never sees the same event twice.
type Stage interface {
	FeedEvent(e codegen.Event, info *wasm.ModuleInfo, sink func(codegen.Event) error) error
}

// Chain composes stages left to right. For each inbound event the chain
// runs every stage in order; each stage's output becomes the next
// stage's input, and the last stage's output is delivered to final.
type Chain struct {
	stages []Stage
}

// NewChain returns a Chain running stages in the given order.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Run feeds e through every stage in order and delivers whatever the last
// stage produces to final, preserving emission order (Testable invariant:
// order of events delivered to the FCG is exactly the order they leave
// the last stage).
func (c *Chain) Run(e codegen.Event, info *wasm.ModuleInfo, final func(codegen.Event) error) error {
	return c.runStage(0, e, info, final)
}

func (c *Chain) runStage(i int, e codegen.Event, info *wasm.ModuleInfo, final func(codegen.Event) error) error {
	if i >= len(c.stages) {
		return final(e)
	}
	err := c.stages[i].FeedEvent(e, info, func(out codegen.Event) error {
		return c.runStage(i+1, out, info, final)
	})
	if err != nil {
		return fmt.Errorf("middleware stage %d: %w", i, err)
	}
	return nil
}
