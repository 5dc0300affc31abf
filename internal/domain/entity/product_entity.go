package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	LabelOldStock = "In Stock for a while"
	LabelNewStock = "New Stock"
)

// SizeStock is the stock held for one size of a product.
type SizeStock struct {
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

// Sale is an append-only record embedded in its product.
type Sale struct {
	Seller       bson.ObjectID `bson:"seller"`
	SellingDate  time.Time     `bson:"selling_date"`
	SellingPrice float64       `bson:"selling_price"`
	QuantitySold int           `bson:"quantity_sold"`
	Comment      string        `bson:"comment,omitempty"`
	Size         string        `bson:"size,omitempty"`
}

// Revenue is the money received for the sale.
func (s Sale) Revenue() float64 { return s.SellingPrice * float64(s.QuantitySold) }

type Product struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Name          string        `bson:"name"`
	NumberInStock int           `bson:"number_in_stock"`
	Sizes         []SizeStock   `bson:"sizes,omitempty"`
	BuyingPrice   float64       `bson:"buying_price"`
	PriceToSell   float64       `bson:"price_to_sell"`
	BuyingDate    time.Time     `bson:"buying_date"`
	CreationDate  time.Time     `bson:"creation_date"`
	Photo         string        `bson:"photo"`
	PhotoKey      string        `bson:"photo_key"`
	Buyer         bson.ObjectID `bson:"buyer"`
	Sales         []Sale        `bson:"sales"`
}

// HasSizes reports whether stock is tracked per size.
func (p *Product) HasSizes() bool { return len(p.Sizes) > 0 }

// SizeStock returns the stock for size and whether the size exists.
func (p *Product) SizeStock(size string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}

// QuantitySold sums the quantity over all sales.
func (p *Product) QuantitySold() int {
	n := 0
	for _, s := range p.Sales {
		n += s.QuantitySold
	}
	return n
}

// AgeInDays is the number of whole days since the buying date, never negative.
func (p *Product) AgeInDays(now time.Time) int {
	d := now.Sub(p.BuyingDate)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// IsOldStock reports whether the product has been in stock longer than staleAfterDays.
func (p *Product) IsOldStock(now time.Time, staleAfterDays int) bool {
	return p.AgeInDays(now) > staleAfterDays
}

func StockLabel(old bool) string {
	if old {
		return LabelOldStock
	}
	return LabelNewStock
}
