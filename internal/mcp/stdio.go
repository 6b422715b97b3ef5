// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/tidwall/gjson"
)

const toolsCallMethod = "tools/call"

// pendingCalls tracks the tools/call requests read from the client until their response is written.
//
// The stdio transport answers tool calls from their own goroutines and stops reading at end of input
// without waiting for them, so Serve uses this to drain in-flight calls before returning.
type pendingCalls struct {
	mu      sync.Mutex
	pending map[string]int
	changed chan struct{}
}

func newPendingCalls() *pendingCalls {
	return &pendingCalls{
		pending: map[string]int{},
		changed: make(chan struct{}, 1),
	}
}

// requestKey returns a key identifying the JSON-RPC id of message, or false when it has none.
func requestKey(id gjson.Result) (string, bool) {
	switch id.Type {
	case gjson.Number:
		return "n:" + strconv.FormatFloat(id.Num, 'g', -1, 64), true
	case gjson.String:
		return "s:" + id.Str, true
	default:
		return "", false
	}
}

// observeRequest records line when it is a tools/call request that expects a response.
func (p *pendingCalls) observeRequest(line []byte) {
	if !gjson.ValidBytes(line) {
		return
	}

	message := gjson.ParseBytes(line)
	if message.Get("method").String() != toolsCallMethod {
		return
	}

	key, ok := requestKey(message.Get("id"))
	if !ok {
		return
	}

	p.mu.Lock()
	p.pending[key]++
	p.mu.Unlock()
}

// observeResponse clears the pending request answered by line, if any.
func (p *pendingCalls) observeResponse(line []byte) {
	if !gjson.ValidBytes(line) {
		return
	}

	message := gjson.ParseBytes(line)
	if message.Get("method").Exists() {
		return
	}

	key, ok := requestKey(message.Get("id"))
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending[key] == 0 {
		return
	}

	p.pending[key]--
	if p.pending[key] == 0 {
		delete(p.pending, key)
	}

	select {
	case p.changed <- struct{}{}:
	default:
	}
}

func (p *pendingCalls) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, count := range p.pending {
		n += count
	}

	return n
}

// wait blocks until every observed tool call has been answered or ctx is done.
func (p *pendingCalls) wait(ctx context.Context) error {
	for p.len() > 0 {
		select {
		case <-p.changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// requestReader hands input to the transport one line at a time, recording tool calls as they pass.
type requestReader struct {
	reader  *bufio.Reader
	pending *pendingCalls
	buf     []byte
	err     error
}

func (r *requestReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		line, err := r.reader.ReadBytes('\n')
		r.err = err
		if len(line) == 0 {
			return 0, err
		}

		r.pending.observeRequest(bytes.TrimSpace(line))
		r.buf = line
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]

	return n, nil
}

// responseWriter serializes writes from concurrent tool calls and marks their requests answered.
type responseWriter struct {
	mu      sync.Mutex
	writer  io.Writer
	pending *pendingCalls
}

func (w *responseWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.writer.Write(p)

	// A failed write still ends the call; nothing more will be written for it.
	for _, line := range bytes.Split(p, []byte("\n")) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			w.pending.observeResponse(line)
		}
	}

	return n, err
}
