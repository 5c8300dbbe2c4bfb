package marketplace

// mercariCreateItemRequest is the payload for listing an item
type mercariCreateItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Photos      []string `json:"photos,omitempty"`
}

// mercariItemResponse is the generic item envelope returned by Mercari
type mercariItemResponse struct {
	Item mercariItem `json:"item"`
}

type mercariItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Price  string `json:"price"`
}

// mercariUpdatePriceRequest is the payload for a price edit
type mercariUpdatePriceRequest struct {
	Price string `json:"price"`
}

// Mercari item statuses
const (
	mercariStatusOnSale  = "on_sale"
	mercariStatusSoldOut = "sold_out"
	mercariStatusStopped = "stopped"
)

// IsSold reports whether the item sold on Mercari
func (i *mercariItem) IsSold() bool {
	return i.Status == mercariStatusSoldOut
}

// mercariErrorResponse is the error envelope returned by Mercari
type mercariErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
