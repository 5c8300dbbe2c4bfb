package marketplace

// ebayAmount is a money value on the eBay wire format
type ebayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ebayCreateListingRequest is the payload for creating a fixed-price listing
type ebayCreateListingRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Price       ebayAmount `json:"price"`
	Quantity    int        `json:"availableQuantity"`
	ImageURLs   []string   `json:"imageUrls,omitempty"`
}

// ebayCreateListingResponse is the response from creating a listing
type ebayCreateListingResponse struct {
	ListingID string `json:"listingId"`
	Status    string `json:"listingStatus"`
}

// ebayUpdatePriceRequest is the payload for a price revision
type ebayUpdatePriceRequest struct {
	Price ebayAmount `json:"price"`
}

// ebayListingStatusResponse is the response from a listing status lookup
type ebayListingStatusResponse struct {
	ListingID    string `json:"listingId"`
	Status       string `json:"listingStatus"`
	QuantitySold int    `json:"quantitySold"`
}

// eBay listing statuses
const (
	ebayStatusActive = "ACTIVE"
	ebayStatusSold   = "SOLD"
	ebayStatusEnded  = "ENDED"
)

// IsSold reports whether the listing sold on eBay
func (r *ebayListingStatusResponse) IsSold() bool {
	return r.Status == ebayStatusSold || r.QuantitySold > 0
}

// ebayErrorResponse is the error envelope returned by the eBay API
type ebayErrorResponse struct {
	Errors []ebayError `json:"errors"`
}

type ebayError struct {
	ErrorID  int    `json:"errorId"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// FirstMessage returns the first error message, if any
func (r *ebayErrorResponse) FirstMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}
