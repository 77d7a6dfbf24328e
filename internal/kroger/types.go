package kroger

// Result records are fixed projections of the Kroger v1 API response
// shapes. Field names mirror the upstream JSON so a record round-trips
// without renaming; fields the API omits stay at their zero value.

// ProductQuery holds product search parameters.
type ProductQuery struct {
	// Term is the search term. Required.
	Term string

	// LocationID scopes the search to a store so results carry prices and
	// aisle locations.
	LocationID string

	// Limit caps the number of results (default 10, upstream max 50).
	Limit int

	// Start is the pagination offset.
	Start int
}

// LocationQuery holds store search parameters.
type LocationQuery struct {
	// ZipCode is the center of the search. Required.
	ZipCode string

	// RadiusMiles bounds the search radius (upstream default 10).
	RadiusMiles int

	// Limit caps the number of results.
	Limit int

	// Chain filters to a single banner (e.g. "KROGER", "FRED MEYER").
	Chain string
}

// Product is a product record from the catalog.
type Product struct {
	ProductID      string          `json:"productId"`
	UPC            string          `json:"upc,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Description    string          `json:"description"`
	Categories     []string        `json:"categories,omitempty"`
	Items          []ProductItem   `json:"items,omitempty"`
	AisleLocations []AisleLocation `json:"aisleLocations,omitempty"`
}

// ProductItem is a sellable variant of a product. Price is only present
// when the query carried a location ID.
type ProductItem struct {
	ItemID      string       `json:"itemId,omitempty"`
	Size        string       `json:"size,omitempty"`
	SoldBy      string       `json:"soldBy,omitempty"`
	Price       *Price       `json:"price,omitempty"`
	Fulfillment *Fulfillment `json:"fulfillment,omitempty"`
}

// Price holds regular and promotional prices in USD.
type Price struct {
	Regular float64 `json:"regular"`
	Promo   float64 `json:"promo,omitempty"`
}

// Fulfillment flags how an item can be purchased at the queried store.
type Fulfillment struct {
	Curbside   bool `json:"curbside"`
	Delivery   bool `json:"delivery"`
	InStore    bool `json:"instore"`
	ShipToHome bool `json:"shiptohome"`
}

// AisleLocation places a product inside a store.
type AisleLocation struct {
	Description string `json:"description,omitempty"`
	Number      string `json:"number,omitempty"`
	Side        string `json:"side,omitempty"`
	ShelfNumber string `json:"shelfNumber,omitempty"`
}

// Location is a store record.
type Location struct {
	LocationID  string       `json:"locationId"`
	Chain       string       `json:"chain,omitempty"`
	Name        string       `json:"name"`
	Phone       string       `json:"phone,omitempty"`
	Address     Address      `json:"address"`
	Geolocation *Geolocation `json:"geolocation,omitempty"`
	Departments []Department `json:"departments,omitempty"`
	Hours       *Hours       `json:"hours,omitempty"`
}

// Department is a service department inside a store (pharmacy, deli, ...).
type Department struct {
	DepartmentID string `json:"departmentId"`
	Name         string `json:"name"`
}

// Address is a store's street address.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	County       string `json:"county,omitempty"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

// Geolocation is a store's coordinates.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hours holds a store's weekly schedule.
type Hours struct {
	Open24    bool     `json:"open24"`
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// DayHours holds one day's opening hours in "HH:MM" local time.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Open24 bool   `json:"open24"`
}

// Pagination is the upstream paging envelope.
type Pagination struct {
	Start int `json:"start"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Response envelopes. Every Kroger v1 endpoint wraps its payload in a
// "data" field with optional "meta.pagination".

type productListResponse struct {
	Data []Product `json:"data"`
	Meta struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}

type productResponse struct {
	Data Product `json:"data"`
}

type locationListResponse struct {
	Data []Location `json:"data"`
	Meta struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}
