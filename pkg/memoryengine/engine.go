// Package memoryengine implements the Memory Engine: retrieval (semantic,
// RFM, combined) and the write-path decision machine (extract, decide,
// apply) described in spec.md §4.3–§4.4.
package memoryengine

import (
	"github.com/memoria-systems/memoria/pkg/config"
	"github.com/memoria-systems/memoria/pkg/logx"
	"github.com/memoria-systems/memoria/pkg/oracle"
	"github.com/memoria-systems/memoria/pkg/vkc"
)

// Engine is the Memory Engine: retrieval plus write-path, composed over a
// VKC store and an LLM oracle.
type Engine struct {
	store  vkc.Store
	llm    oracle.Oracle
	cfg    config.MemoryEngineConfig
	logger *logx.Entry
}

// New wires a VKC store and an oracle into a Memory Engine.
func New(store vkc.Store, llm oracle.Oracle, cfg config.MemoryEngineConfig) *Engine {
	return &Engine{
		store:  store,
		llm:    llm,
		cfg:    cfg,
		logger: logx.WithField("component", "memoryengine"),
	}
}
