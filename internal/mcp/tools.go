package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/grocerlabs/krogerd/internal/kroger"
)

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_products",
		Description: "Search Kroger products by term. Provide a location_id to include store prices and aisle locations.",
	}, s.handleSearchProducts)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_product_details",
		Description: "Fetch a single Kroger product by product ID, optionally scoped to a store for price and aisle data.",
	}, s.handleGetProductDetails)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_stores",
		Description: "Find Kroger-family stores near a zip code, nearest first.",
	}, s.handleFindStores)
}

// ===== SEARCH PRODUCTS =====

type searchProductsInput struct {
	Term       string `json:"term" jsonschema:"required,Product search term"`
	LocationID string `json:"location_id,omitempty" jsonschema:"Store location ID for prices and aisle locations"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10, max 50)"`
	Start      int    `json:"start,omitempty" jsonschema:"Pagination offset"`
}

type searchProductsOutput struct {
	Products []kroger.Product `json:"products" jsonschema:"Matching product records"`
	Count    int              `json:"count" jsonschema:"Number of products returned"`
}

func (s *Server) handleSearchProducts(ctx context.Context, req *mcp.CallToolRequest, args searchProductsInput) (*mcp.CallToolResult, searchProductsOutput, error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, "search_products")
	var toolErr error
	defer func() {
		s.metrics.DecrementActive(ctx, "search_products")
		s.metrics.RecordInvocation(ctx, "search_products", time.Since(start), toolErr)
	}()

	logger := s.logger.With(
		zap.String("tool", "search_products"),
		zap.String("invocation_id", uuid.NewString()))

	if args.Term == "" {
		toolErr = fmt.Errorf("term is required")
		return nil, searchProductsOutput{}, toolErr
	}

	products, err := s.client.SearchProducts(ctx, kroger.ProductQuery{
		Term:       args.Term,
		LocationID: args.LocationID,
		Limit:      args.Limit,
		Start:      args.Start,
	})
	if err != nil {
		toolErr = fmt.Errorf("product search failed: %w", err)
		logger.Warn("tool call failed", zap.Error(err))
		return nil, searchProductsOutput{}, toolErr
	}

	logger.Debug("tool call completed", zap.Int("count", len(products)))

	return nil, searchProductsOutput{
		Products: products,
		Count:    len(products),
	}, nil
}

// ===== GET PRODUCT DETAILS =====

type getProductDetailsInput struct {
	ProductID  string `json:"product_id" jsonschema:"required,Kroger product ID (13-digit)"`
	LocationID string `json:"location_id,omitempty" jsonschema:"Store location ID for price and aisle data"`
}

type getProductDetailsOutput struct {
	Product kroger.Product `json:"product" jsonschema:"The product record"`
}

func (s *Server) handleGetProductDetails(ctx context.Context, req *mcp.CallToolRequest, args getProductDetailsInput) (*mcp.CallToolResult, getProductDetailsOutput, error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, "get_product_details")
	var toolErr error
	defer func() {
		s.metrics.DecrementActive(ctx, "get_product_details")
		s.metrics.RecordInvocation(ctx, "get_product_details", time.Since(start), toolErr)
	}()

	logger := s.logger.With(
		zap.String("tool", "get_product_details"),
		zap.String("invocation_id", uuid.NewString()))

	if args.ProductID == "" {
		toolErr = fmt.Errorf("product_id is required")
		return nil, getProductDetailsOutput{}, toolErr
	}

	product, err := s.client.GetProduct(ctx, args.ProductID, args.LocationID)
	if err != nil {
		toolErr = fmt.Errorf("product lookup failed: %w", err)
		logger.Warn("tool call failed", zap.Error(err))
		return nil, getProductDetailsOutput{}, toolErr
	}

	logger.Debug("tool call completed", zap.String("product_id", product.ProductID))

	return nil, getProductDetailsOutput{Product: *product}, nil
}

// ===== FIND STORES =====

type findStoresInput struct {
	ZipCode     string `json:"zip_code" jsonschema:"required,Zip code to search near"`
	RadiusMiles int    `json:"radius_miles,omitempty" jsonschema:"Search radius in miles (upstream default 10)"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum stores to return"`
	Chain       string `json:"chain,omitempty" jsonschema:"Restrict to one chain (e.g. KROGER)"`
}

type findStoresOutput struct {
	Stores []kroger.Location `json:"stores" jsonschema:"Matching store records, nearest first"`
	Count  int               `json:"count" jsonschema:"Number of stores returned"`
}

func (s *Server) handleFindStores(ctx context.Context, req *mcp.CallToolRequest, args findStoresInput) (*mcp.CallToolResult, findStoresOutput, error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, "find_stores")
	var toolErr error
	defer func() {
		s.metrics.DecrementActive(ctx, "find_stores")
		s.metrics.RecordInvocation(ctx, "find_stores", time.Since(start), toolErr)
	}()

	logger := s.logger.With(
		zap.String("tool", "find_stores"),
		zap.String("invocation_id", uuid.NewString()))

	if args.ZipCode == "" {
		toolErr = fmt.Errorf("zip_code is required")
		return nil, findStoresOutput{}, toolErr
	}

	stores, err := s.client.SearchLocations(ctx, kroger.LocationQuery{
		ZipCode:     args.ZipCode,
		RadiusMiles: args.RadiusMiles,
		Limit:       args.Limit,
		Chain:       args.Chain,
	})
	if err != nil {
		toolErr = fmt.Errorf("store search failed: %w", err)
		logger.Warn("tool call failed", zap.Error(err))
		return nil, findStoresOutput{}, toolErr
	}

	logger.Debug("tool call completed", zap.Int("count", len(stores)))

	return nil, findStoresOutput{
		Stores: stores,
		Count:  len(stores),
	}, nil
}
