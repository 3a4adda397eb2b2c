package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/embed"
	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/khanglvm/gift-hub/internal/search"
)

func newTestServer(t *testing.T, withKeyword bool) *Server {
	t.Helper()
	enc := embed.NewHashEncoder(embed.DefaultDimensions)
	cat, err := (&catalog.Builder{Source: catalog.SeedSource{}, Encoder: enc}).Provide(context.Background())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	svc, err := recommend.NewService(cat, enc, recommend.Config{})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	opts := Options{Version: "test"}
	if withKeyword {
		idx, err := search.NewKeywordIndex(cat)
		if err != nil {
			t.Fatalf("NewKeywordIndex failed: %v", err)
		}
		t.Cleanup(func() { idx.Close() })
		opts.Keyword = idx
	}
	return NewServer(svc, opts)
}

func call(t *testing.T, s *Server, tool string, args interface{}) *MCPResponse {
	t.Helper()
	raw, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]interface{}{"name": tool, "arguments": args},
	})
	resp := s.handleRequest(context.Background(), raw)
	if resp == nil {
		t.Fatal("expected a response")
	}
	return resp
}

// toolText extracts the text content and isError flag of a tool result.
func toolText(t *testing.T, resp *MCPResponse) (string, bool) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result is not a map: %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %#v", result["content"])
	}
	isErr, _ := result["isError"].(bool)
	return content[0]["text"].(string), isErr
}

func validArgs() map[string]interface{} {
	return map[string]interface{}{
		"relation":   "Friend",
		"occasion":   "Birthday",
		"age_group":  "adult",
		"gender":     "female",
		"profession": "software engineer",
		"vibe":       "cozy",
		"budget":     100,
	}
}

func TestHandleInitialize(t *testing.T) {
	s := newTestServer(t, false)
	resp := s.handleRequest(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))

	if resp.JSONRPC != "2.0" {
		t.Errorf("expected JSONRPC 2.0, got %s", resp.JSONRPC)
	}
	result := resp.Result.(map[string]interface{})
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "gift-hub" || info["version"] != "test" {
		t.Errorf("serverInfo = %v", info)
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t, false)
	resp := s.handleRequest(context.Background(), []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	tools := resp.Result.(map[string]interface{})["tools"].([]map[string]interface{})
	names := map[string]bool{}
	for _, tool := range tools {
		names[tool["name"].(string)] = true
		if _, ok := tool["inputSchema"]; !ok {
			t.Errorf("tool %v has no inputSchema", tool["name"])
		}
	}
	for _, want := range []string{"gift_recommend", "gift_catalog", "gift_search"} {
		if !names[want] {
			t.Errorf("missing expected tool: %s", want)
		}
	}
}

func TestGiftRecommend(t *testing.T) {
	s := newTestServer(t, false)

	text, isErr := toolText(t, call(t, s, "gift_recommend", validArgs()))
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}

	var res recommend.Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if res.Status != "success" {
		t.Errorf("status = %q", res.Status)
	}
	if len(res.Bundle) == 0 || len(res.Bundle) > 3 {
		t.Errorf("bundle size = %d", len(res.Bundle))
	}
	if res.TotalCost > 100 {
		t.Errorf("total_cost %d exceeds budget", res.TotalCost)
	}
	if !strings.HasPrefix(res.IntentAnalysis, "Analysis: Optimized for 'cozy' vibe") {
		t.Errorf("intent_analysis = %q", res.IntentAnalysis)
	}
}

func TestGiftRecommendFailures(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name     string
		mutate   func(map[string]interface{})
		wantKind string
	}{
		{
			name:     "missing vibe",
			mutate:   func(a map[string]interface{}) { delete(a, "vibe") },
			wantKind: recommend.KindMissingFields,
		},
		{
			name:     "zero budget",
			mutate:   func(a map[string]interface{}) { a["budget"] = 0 },
			wantKind: recommend.KindMissingFields,
		},
		{
			name:     "budget below every price",
			mutate:   func(a map[string]interface{}) { a["budget"] = 1 },
			wantKind: recommend.KindBudgetTooLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := validArgs()
			tt.mutate(args)

			text, isErr := toolText(t, call(t, s, "gift_recommend", args))
			if !isErr {
				t.Fatalf("expected isError, got %s", text)
			}
			var body map[string]interface{}
			if err := json.Unmarshal([]byte(text), &body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if body["error_kind"] != tt.wantKind {
				t.Errorf("error_kind = %v, want %s", body["error_kind"], tt.wantKind)
			}
		})
	}
}

func TestGiftRecommendBadArguments(t *testing.T) {
	s := newTestServer(t, false)
	args := validArgs()
	args["budget"] = "a lot"

	resp := call(t, s, "gift_recommend", args)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Errorf("expected invalid params error, got %+v", resp.Error)
	}
}

func TestGiftCatalog(t *testing.T) {
	s := newTestServer(t, false)

	text, isErr := toolText(t, call(t, s, "gift_catalog", nil))
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	var all struct {
		Count int            `json:"count"`
		Items []catalogEntry `json:"items"`
	}
	json.Unmarshal([]byte(text), &all)
	if all.Count != 30 || len(all.Items) != 30 {
		t.Errorf("expected 30 items, got %d", all.Count)
	}

	text, _ = toolText(t, call(t, s, "gift_catalog", map[string]interface{}{"tag": "tech", "max_price": 50}))
	var filtered struct {
		Items []catalogEntry `json:"items"`
	}
	json.Unmarshal([]byte(text), &filtered)
	for _, it := range filtered.Items {
		if it.Price > 50 {
			t.Errorf("item %d over max_price", it.ID)
		}
		found := false
		for _, tag := range it.Tags {
			if tag == "tech" {
				found = true
			}
		}
		if !found {
			t.Errorf("item %d lacks tag tech", it.ID)
		}
	}
}

func TestGiftSearch(t *testing.T) {
	s := newTestServer(t, true)

	text, isErr := toolText(t, call(t, s, "gift_search", map[string]interface{}{"query": "cozy blanket", "limit": 3}))
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	var res struct {
		Mode    string      `json:"mode"`
		Results []searchHit `json:"results"`
	}
	json.Unmarshal([]byte(text), &res)
	if res.Mode != "semantic" || len(res.Results) != 3 {
		t.Errorf("unexpected semantic result: %+v", res)
	}

	text, isErr = toolText(t, call(t, s, "gift_search", map[string]interface{}{"query": "headphones", "mode": "keyword"}))
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	json.Unmarshal([]byte(text), &res)
	if len(res.Results) == 0 || res.Results[0].ID != 1 {
		t.Errorf("expected headphones first, got %+v", res.Results)
	}

	_, isErr = toolText(t, call(t, s, "gift_search", map[string]interface{}{"query": "x", "mode": "fuzzy"}))
	if !isErr {
		t.Error("expected unknown mode to fail")
	}
}

func TestGiftSearchKeywordDisabled(t *testing.T) {
	s := newTestServer(t, false)
	_, isErr := toolText(t, call(t, s, "gift_search", map[string]interface{}{"query": "mug", "mode": "keyword"}))
	if !isErr {
		t.Error("expected keyword mode to fail without an index")
	}
}

func TestProtocolErrors(t *testing.T) {
	s := newTestServer(t, false)
	ctx := context.Background()

	resp := s.handleRequest(ctx, []byte(`{not json`))
	if resp == nil || resp.Error == nil || resp.Error.Code != codeParseError {
		t.Errorf("expected parse error, got %+v", resp)
	}

	resp = s.handleRequest(ctx, []byte(`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`))
	if resp == nil || resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("expected method not found, got %+v", resp)
	}

	resp = s.handleRequest(ctx, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if resp != nil {
		t.Errorf("notifications must not be answered, got %+v", resp)
	}

	resp = call(t, s, "gift_unknown", nil)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Errorf("expected unknown tool error, got %+v", resp.Error)
	}
}

func TestRunConcurrent(t *testing.T) {
	s := newTestServer(t, false)

	const n = 20
	var in strings.Builder
	in.WriteString(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	for i := 0; i < n; i++ {
		args, _ := json.Marshal(validArgs())
		fmt.Fprintf(&in, `{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"gift_recommend","arguments":%s}}`+"\n", i, args)
	}

	var out bytes.Buffer
	s.in = strings.NewReader(in.String())
	s.out = &out
	s.sem = make(chan struct{}, 4)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != n {
		t.Fatalf("expected %d responses, got %d", n, len(lines))
	}

	seen := map[float64]bool{}
	var first string
	for _, line := range lines {
		var resp struct {
			ID     float64 `json:"id"`
			Result struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"result"`
		}
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response is not one JSON line: %v\n%s", err, line)
		}
		seen[resp.ID] = true

		// Identical intents must produce identical bundles.
		text := resp.Result.Content[0].Text
		if first == "" {
			first = text
		} else if text != first {
			t.Error("concurrent requests produced different results")
		}
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct ids, got %d", n, len(seen))
	}
}

func TestRunCancelled(t *testing.T) {
	s := newTestServer(t, false)
	s.in = strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	s.out = &bytes.Buffer{}
	s.sem = make(chan struct{}) // never acquirable

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunCancelledWhileIdle(t *testing.T) {
	s := newTestServer(t, false)
	pr, pw := io.Pipe()
	defer pw.Close()
	s.in = pr
	s.out = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation with idle input")
	}
}
