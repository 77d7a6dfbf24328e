// Package main implements the krogerctl CLI for manual queries against
// the Kroger API using the same configuration and client as krogerd.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grocerlabs/krogerd/internal/auth"
	"github.com/grocerlabs/krogerd/internal/config"
	"github.com/grocerlabs/krogerd/internal/kroger"
	"github.com/grocerlabs/krogerd/internal/logging"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "krogerctl",
	Short: "CLI for Kroger API queries",
	Long: `krogerctl runs the same product and store queries krogerd exposes as
MCP tools, printing results as JSON. Useful for verifying credentials
and inspecting upstream responses.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/krogerd/config.yaml)")
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// newClient builds an API client from the resolved configuration.
func newClient() (*kroger.Client, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New("warn", cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewProvider(cfg.Kroger, logger)
	return kroger.NewClient(cfg.Kroger, tokens, logger), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Search and inspect products",
}

var (
	searchLocationID string
	searchLimit      int
	searchStart      int
)

var productsSearchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Search products by term",
	Long: `Search the Kroger catalog by term.

Examples:
  # Search for milk
  krogerctl products search milk

  # Include store prices and aisle locations
  krogerctl products search milk --location 01400943 --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		products, err := client.SearchProducts(cmd.Context(), kroger.ProductQuery{
			Term:       args[0],
			LocationID: searchLocationID,
			Limit:      searchLimit,
			Start:      searchStart,
		})
		if err != nil {
			return err
		}

		return printJSON(products)
	},
}

var detailLocationID string

var productsGetCmd = &cobra.Command{
	Use:   "get PRODUCT_ID",
	Short: "Fetch one product by ID",
	Long: `Fetch a single product record by its Kroger product ID.

Examples:
  krogerctl products get 0001111041700
  krogerctl products get 0001111041700 --location 01400943`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		product, err := client.GetProduct(cmd.Context(), args[0], detailLocationID)
		if err != nil {
			return err
		}

		return printJSON(product)
	},
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Find stores",
}

var (
	nearRadius int
	nearLimit  int
	nearChain  string
)

var locationsNearCmd = &cobra.Command{
	Use:   "near ZIP",
	Short: "Find stores near a zip code",
	Long: `Find Kroger-family stores near a zip code, nearest first.

Examples:
  krogerctl locations near 80446
  krogerctl locations near 80446 --radius 25 --chain KROGER`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		locations, err := client.SearchLocations(cmd.Context(), kroger.LocationQuery{
			ZipCode:     args[0],
			RadiusMiles: nearRadius,
			Limit:       nearLimit,
			Chain:       nearChain,
		})
		if err != nil {
			return err
		}

		return printJSON(locations)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange credentials for an access token",
	Long: `Perform the client-credentials exchange and print the bearer token.
Useful for verifying credentials or driving the API with curl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithFile(configPath)
		if err != nil {
			return err
		}

		logger, err := logging.New("warn", cfg.Logging.Format)
		if err != nil {
			return err
		}

		tokens := auth.NewProvider(cfg.Kroger, logger)
		tok, err := tokens.Token(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(tok)
		return nil
	},
}

func init() {
	productsSearchCmd.Flags().StringVar(&searchLocationID, "location", "", "store location ID for prices and aisle locations")
	productsSearchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default 10, max 50)")
	productsSearchCmd.Flags().IntVar(&searchStart, "start", 0, "pagination offset")
	productsCmd.AddCommand(productsSearchCmd)

	productsGetCmd.Flags().StringVar(&detailLocationID, "location", "", "store location ID for price and aisle data")
	productsCmd.AddCommand(productsGetCmd)

	locationsNearCmd.Flags().IntVar(&nearRadius, "radius", 0, "search radius in miles (upstream default 10)")
	locationsNearCmd.Flags().IntVar(&nearLimit, "limit", 0, "maximum stores")
	locationsNearCmd.Flags().StringVar(&nearChain, "chain", "", "restrict to one chain (e.g. KROGER)")
	locationsCmd.AddCommand(locationsNearCmd)
}
