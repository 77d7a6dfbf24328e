// Package mcp exposes the Kroger API client as MCP tools.
//
// Three tools are registered: search_products, get_product_details, and
// find_stores. The server speaks the stdio transport; stdout carries the
// protocol and all logging goes to stderr.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/grocerlabs/krogerd/internal/kroger"
)

// ProductClient is the slice of the Kroger client the tools need.
type ProductClient interface {
	SearchProducts(ctx context.Context, q kroger.ProductQuery) ([]kroger.Product, error)
	GetProduct(ctx context.Context, id, locationID string) (*kroger.Product, error)
	SearchLocations(ctx context.Context, q kroger.LocationQuery) ([]kroger.Location, error)
}

// Server wraps the MCP SDK server and the Kroger client behind it.
type Server struct {
	mcp     *mcp.Server
	client  ProductClient
	metrics *Metrics
	logger  *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "krogerd").
	Name string

	// Version is the server version (default: "0.1.0").
	Version string

	// Logger for structured logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "krogerd",
		Version: "0.1.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates an MCP server backed by the given Kroger client.
func NewServer(cfg *Config, client ProductClient) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if client == nil {
		return nil, fmt.Errorf("kroger client is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		client:  client,
		metrics: NewMetrics(cfg.Logger),
		logger:  cfg.Logger,
	}

	s.registerTools()

	return s, nil
}

// Run serves the MCP protocol on the stdio transport until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
