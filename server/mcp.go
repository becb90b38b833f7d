package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codetrek/needle/conf"
	"github.com/codetrek/needle/searcher"
	"github.com/codetrek/needle/shared/running"
	"github.com/codetrek/needle/shared/types"
	"github.com/codetrek/needle/utils"
)

type ToolName string

const (
	SearchInFiles ToolName = "search_in_files"

	matcherCacheSize = 64
)

// Server exposes the search engine as MCP tools.
type Server struct {
	mcp      *server.MCPServer
	matchers *lru.Cache[searcher.MatcherKey, searcher.Matcher]
}

func New() (*Server, error) {
	cache, err := lru.New[searcher.MatcherKey, searcher.Matcher](matcherCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		mcp: server.NewMCPServer(
			"needle",
			running.Version(),
			server.WithLogging(),
		),
		matchers: cache,
	}
	s.registerTools()
	return s, nil
}

// ServeStdio blocks serving requests on stdin/stdout until the client goes
// away or the process is signalled.
func (s *Server) ServeStdio() error {
	log.Println("MCP server listening on stdio")
	defer log.Println("MCP server stopped.")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(string(SearchInFiles),
		mcp.WithDescription("Search the files of a directory for lines containing a literal text or matching "+
			"a regular expression. Returns a JSON object mapping each scanned file path (relative to the "+
			"directory) to its matching lines; root-level files come first, then nested files, each sorted by path."),
		mcp.WithString("expression",
			mcp.Description("The text to search for, or a regular expression (RE2 syntax) when regex is true."),
			mcp.Required(),
		),
		mcp.WithString("directory",
			mcp.Description("Absolute path of the directory to search, e.g. /home/user/projects/project1."),
			mcp.Required(),
		),
		mcp.WithBoolean("regex",
			mcp.Description("Treat expression as a regular expression. Default false."),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Match case exactly. Default false."),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Search subdirectories too. Default false."),
		),
		mcp.WithString("filename_pattern",
			mcp.Description("Glob matched against file names, e.g. '*.go'. Default '*'."),
		),
	), s.handleSearch)

	log.Println("MCP tools registered")
}

// matcher returns a cached compiled matcher for key.
func (s *Server) matcher(key searcher.MatcherKey) (searcher.Matcher, error) {
	if m, ok := s.matchers.Get(key); ok {
		running.Debugf("matcher cache hit: %s", key)
		return m, nil
	}

	m, err := searcher.NewMatcher(key.Expr, key.IsRegex, key.CaseSensitive)
	if err != nil {
		return nil, err
	}
	s.matchers.Add(key, m)
	return m, nil
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{
			Type: "text",
			Text: fmt.Sprintf(format, args...),
		}},
		IsError: true,
	}
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	expression, ok1 := arguments["expression"].(string)
	directory, ok2 := arguments["directory"].(string)
	if !ok1 || !ok2 {
		return toolError("expression and directory are required"), nil
	}

	isRegex, _ := arguments["regex"].(bool)
	caseSensitive, _ := arguments["case_sensitive"].(bool)
	recursive, _ := arguments["recursive"].(bool)
	namePattern, _ := arguments["filename_pattern"].(string)

	directory = utils.NormalizePath(directory)
	if !filepath.IsAbs(directory) {
		return toolError("directory must be an absolute path, got %q", directory), nil
	}

	config := conf.Get()
	searchConfig := types.SearchConfig{
		Pattern:       expression,
		IsRegex:       isRegex,
		CaseSensitive: caseSensitive,
		RootDir:       directory,
		Recursive:     recursive,
		NamePattern:   namePattern,
		Hidden:        config.Search.Hidden,
		UseGitIgnore:  config.Search.UseGitIgnore,
		Exclude:       config.Search.Exclude,
		Workers:       config.Search.Workers,
	}

	result, stats, err := searcher.New(searchConfig, searcher.WithMatcherSource(s.matcher)).Search(ctx)
	if err != nil {
		return toolError("search failed: %v", err), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	// JSON result first, then the summary line
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
			mcp.TextContent{
				Type: "text",
				Text: fmt.Sprintf("Found %d matching lines in %d of %d files.",
					stats.LinesMatched, stats.FilesMatched, stats.FilesScanned),
			},
		},
	}, nil
}
