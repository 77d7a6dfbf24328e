package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grocerlabs/krogerd/internal/kroger"
)

// fakeClient is a scripted ProductClient recording the calls it receives.
type fakeClient struct {
	products     []kroger.Product
	product      *kroger.Product
	locations    []kroger.Location
	err          error
	productQs    []kroger.ProductQuery
	locationQs   []kroger.LocationQuery
	detailCalls  int
	lastDetailID string
}

func (f *fakeClient) SearchProducts(ctx context.Context, q kroger.ProductQuery) ([]kroger.Product, error) {
	f.productQs = append(f.productQs, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeClient) GetProduct(ctx context.Context, id, locationID string) (*kroger.Product, error) {
	f.detailCalls++
	f.lastDetailID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeClient) SearchLocations(ctx context.Context, q kroger.LocationQuery) ([]kroger.Location, error) {
	f.locationQs = append(f.locationQs, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.locations, nil
}

func newTestServer(t *testing.T, client ProductClient) *Server {
	t.Helper()
	s, err := NewServer(&Config{Name: "krogerd-test", Version: "0.0.0", Logger: zap.NewNop()}, client)
	require.NoError(t, err)
	return s
}

func TestHandleSearchProducts(t *testing.T) {
	milk := kroger.Product{
		ProductID:   "0001111041700",
		Brand:       "Kroger",
		Description: "Kroger 2% Reduced Fat Milk",
	}
	client := &fakeClient{products: []kroger.Product{milk}}
	s := newTestServer(t, client)

	_, out, err := s.handleSearchProducts(context.Background(), nil, searchProductsInput{
		Term:       "milk",
		LocationID: "01400943",
		Limit:      5,
	})
	require.NoError(t, err)

	// Output is a structural projection of the client result.
	require.Len(t, out.Products, 1)
	assert.Equal(t, milk, out.Products[0])
	assert.Equal(t, 1, out.Count)

	// Arguments pass through unchanged.
	require.Len(t, client.productQs, 1)
	assert.Equal(t, kroger.ProductQuery{Term: "milk", LocationID: "01400943", Limit: 5}, client.productQs[0])
}

func TestHandleSearchProducts_EmptyUpstream(t *testing.T) {
	client := &fakeClient{products: []kroger.Product{}}
	s := newTestServer(t, client)

	_, out, err := s.handleSearchProducts(context.Background(), nil, searchProductsInput{Term: "unobtainium"})
	require.NoError(t, err)
	assert.NotNil(t, out.Products)
	assert.Empty(t, out.Products)
	assert.Zero(t, out.Count)
}

func TestHandleSearchProducts_MissingTerm(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(t, client)

	_, _, err := s.handleSearchProducts(context.Background(), nil, searchProductsInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "term is required")

	// Validation fails before any client call.
	assert.Empty(t, client.productQs)
}

func TestHandleSearchProducts_ClientErrorPassesThrough(t *testing.T) {
	apiErr := &kroger.APIError{StatusCode: 403, Code: "API-403", Reason: "scope not permitted"}
	client := &fakeClient{err: apiErr}
	s := newTestServer(t, client)

	_, _, err := s.handleSearchProducts(context.Background(), nil, searchProductsInput{Term: "milk"})
	require.Error(t, err)

	// The upstream status and detail survive the wrapping.
	var unwrapped *kroger.APIError
	require.ErrorAs(t, err, &unwrapped)
	assert.Equal(t, 403, unwrapped.StatusCode)
	assert.Contains(t, err.Error(), "scope not permitted")
}

func TestHandleGetProductDetails(t *testing.T) {
	product := &kroger.Product{ProductID: "0001111041700", Description: "Kroger 2% Reduced Fat Milk"}
	client := &fakeClient{product: product}
	s := newTestServer(t, client)

	_, out, err := s.handleGetProductDetails(context.Background(), nil, getProductDetailsInput{
		ProductID: "0001111041700",
	})
	require.NoError(t, err)
	assert.Equal(t, *product, out.Product)
	assert.Equal(t, "0001111041700", client.lastDetailID)
}

func TestHandleGetProductDetails_MissingID(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(t, client)

	_, _, err := s.handleGetProductDetails(context.Background(), nil, getProductDetailsInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_id is required")
	assert.Zero(t, client.detailCalls)
}

func TestHandleGetProductDetails_NotFound(t *testing.T) {
	client := &fakeClient{err: kroger.ErrNotFound}
	s := newTestServer(t, client)

	_, _, err := s.handleGetProductDetails(context.Background(), nil, getProductDetailsInput{
		ProductID: "0000000000000",
	})
	require.ErrorIs(t, err, kroger.ErrNotFound)
}

func TestHandleFindStores(t *testing.T) {
	store := kroger.Location{
		LocationID: "62000115",
		Name:       "Fraser King Soopers",
		Address:    kroger.Address{City: "Fraser", State: "CO", ZipCode: "80442"},
	}
	client := &fakeClient{locations: []kroger.Location{store}}
	s := newTestServer(t, client)

	_, out, err := s.handleFindStores(context.Background(), nil, findStoresInput{
		ZipCode:     "80446",
		RadiusMiles: 25,
		Chain:       "KROGER",
	})
	require.NoError(t, err)
	require.Len(t, out.Stores, 1)
	assert.Equal(t, store, out.Stores[0])
	assert.Equal(t, 1, out.Count)

	require.Len(t, client.locationQs, 1)
	assert.Equal(t, kroger.LocationQuery{ZipCode: "80446", RadiusMiles: 25, Chain: "KROGER"}, client.locationQs[0])
}

func TestHandleFindStores_MissingZip(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(t, client)

	_, _, err := s.handleFindStores(context.Background(), nil, findStoresInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip_code is required")
	assert.Empty(t, client.locationQs)
}
