package cart

import "github.com/Skotchmaster/retail_shop/internal/models"

type Line struct {
	Product  *models.Product
	Quantity int
}

func (l Line) Subtotal() float64 {
	if l.Product == nil {
		return 0
	}
	return float64(l.Quantity) * l.Product.Price
}

type Summary struct {
	Lines     []Line
	Total     float64
	ItemCount int
}

// Summarize drops lines whose product is gone or whose quantity is not positive.
func Summarize(lines []Line) Summary {
	s := Summary{Lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		if l.Product == nil || l.Quantity <= 0 {
			continue
		}
		s.Lines = append(s.Lines, l)
		s.Total += l.Subtotal()
	}
	s.ItemCount = ItemCount(quantities(s.Lines))
	return s
}

func ItemCount(quantities []int) int {
	n := 0
	for _, q := range quantities {
		n += q
	}
	return n
}

func quantities(lines []Line) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = l.Quantity
	}
	return out
}

// Resolve pairs stored cart items with their products, keeping item order.
func Resolve(items []models.CartItem, products []models.Product) []Line {
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID.String()] = &products[i]
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{Product: byID[it.ProductID.String()], Quantity: it.Quantity})
	}
	return lines
}
