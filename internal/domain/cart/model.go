package cart

import "time"

// Item is one medicine line in a patient's pharmacy cart.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Qty      int     `json:"qty"`
	Price    float64 `json:"price"`
	Pharmacy string  `json:"pharmacy,omitempty"`
}

// Cart holds the pharmacy cart for one patient. A patient has at most
// one cart; saving replaces the whole item list.
type Cart struct {
	UserID    string    `json:"-"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Total returns the cart total in the pharmacy's currency.
func (c *Cart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Qty)
	}
	return sum
}

// Count returns the number of units across all lines.
func (c *Cart) Count() int {
	var n int
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}
