package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/khanglvm/gift-hub/internal/search"
	"go.uber.org/zap"
)

const defaultSearchLimit = 10

// handleToolsList returns the tool definitions.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}

	tools := []map[string]interface{}{
		{
			"name": "gift_recommend",
			"description": `Recommend a gift bundle (up to 3 items) that fits a budget.

WHEN TO USE: The user describes who a gift is for and how much they can spend.

Returns: JSON with bundle (anchor, complement, filler), total_cost and intent_analysis.
Fails with missing_fields or budget_too_low.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"relation":   str("Relationship to the recipient, e.g. sister, boss"),
					"occasion":   str("Occasion, e.g. birthday, farewell"),
					"age_group":  str("Age group, e.g. teen, adult, senior"),
					"gender":     str("Recipient gender"),
					"profession": str("Recipient profession, e.g. developer, chef"),
					"vibe":       str("Desired vibe, e.g. cozy, luxury, funny"),
					"budget": map[string]interface{}{
						"type":        "number",
						"description": "Maximum total spend, must be > 0",
					},
				},
				"required": []string{"relation", "occasion", "age_group", "gender", "profession", "vibe", "budget"},
			},
		},
		{
			"name": "gift_catalog",
			"description": `List catalog items.

WHEN TO USE: To browse what can be recommended, optionally by tag or price.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tag": str("Only items carrying this tag"),
					"max_price": map[string]interface{}{
						"type":        "number",
						"description": "Only items at or below this price",
					},
				},
			},
		},
		{
			"name": "gift_search",
			"description": `Rank catalog items against free text.

WHEN TO USE: To explore matches for a phrase without a budget.

Example queries: "coffee lover", "relaxing spa day", "gadgets for a developer"`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": str("Natural language description"),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum results (default 10)",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "semantic (default) or keyword",
						"enum":        []string{"semantic", "keyword"},
					},
				},
				"required": []string{"query"},
			},
		},
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": tools,
		},
	}
}

// handleToolsCall handles tool execution requests.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	var (
		result interface{}
		err    error
	)

	switch params.Name {
	case "gift_recommend":
		var in recommend.Intent
		if err := json.Unmarshal(args, &in); err != nil {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
		result, err = s.service.Recommend(ctx, in)
	case "gift_catalog":
		var a struct {
			Tag      string   `json:"tag"`
			MaxPrice *float64 `json:"max_price"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
		result = s.execCatalog(a.Tag, a.MaxPrice)
	case "gift_search":
		var a struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
			Mode  string `json:"mode"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
		result, err = s.execSearch(ctx, a.Query, a.Limit, a.Mode)
	default:
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	if err != nil {
		s.logger.Debug("tool call failed", zap.String("tool", params.Name), zap.Error(err))
		return toolError(req.ID, err)
	}
	return toolResult(req.ID, result)
}

// catalogEntry is the listing form of an item.
type catalogEntry struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Tags  []string `json:"tags"`
}

func (s *Server) execCatalog(tag string, maxPrice *float64) map[string]interface{} {
	tag = strings.TrimSpace(tag)
	entries := []catalogEntry{}
	for _, it := range s.service.Catalog().Items() {
		if tag != "" && !it.HasTag(tag) {
			continue
		}
		if maxPrice != nil && it.Price > *maxPrice {
			continue
		}
		entries = append(entries, toEntry(it))
	}
	return map[string]interface{}{
		"count": len(entries),
		"items": entries,
	}
}

// searchHit is one gift_search result.
type searchHit struct {
	catalogEntry
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

func (s *Server) execSearch(ctx context.Context, query string, limit int, mode string) (map[string]interface{}, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		cands []search.Candidate
		err   error
	)
	switch mode {
	case "", "semantic":
		mode = "semantic"
		cands, err = s.service.Search(ctx, query, limit)
	case "keyword":
		if s.keyword == nil {
			return nil, errors.New("keyword search is not enabled")
		}
		if strings.TrimSpace(query) == "" {
			return nil, errors.New("query is required")
		}
		cands, err = s.keyword.SearchBM25(query, limit)
	default:
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	hits := make([]searchHit, len(cands))
	for i, c := range cands {
		hits[i] = searchHit{catalogEntry: toEntry(c.Item), Score: c.Score, Rank: c.Rank}
	}
	return map[string]interface{}{
		"query":   query,
		"mode":    mode,
		"results": hits,
	}, nil
}

func toEntry(it catalog.Item) catalogEntry {
	return catalogEntry{ID: it.ID, Name: it.Name, Price: it.Price, Tags: it.Tags}
}

// toolResult wraps a value as MCP text content.
func toolResult(id interface{}, v interface{}) *MCPResponse {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(id, err)
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(data)},
			},
		},
	}
}

// toolError reports a failed tool call in-band so the client can show it.
func toolError(id interface{}, err error) *MCPResponse {
	body := map[string]interface{}{
		"status": "error",
		"error":  err.Error(),
	}
	var f *recommend.Failure
	if errors.As(err, &f) {
		body["error_kind"] = f.Kind
		if len(f.Fields) > 0 {
			body["missing_fields"] = f.Fields
		}
	}
	data, _ := json.MarshalIndent(body, "", "  ")
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(data)},
			},
			"isError": true,
		},
	}
}

