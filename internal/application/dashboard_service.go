package application

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	repo "github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
)

const bestSellersLimit = 5

type BestSeller struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SaleCount int    `json:"saleCount"`
	Quantity  int    `json:"quantitySold"`
}

type ProductProfit struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Profit float64 `json:"profit"`
}

type MonthlyProfit struct {
	Month  string  `json:"month"`
	Profit float64 `json:"profit"`
}

type Dashboard struct {
	TotalRevenue        float64         `json:"totalRevenue"`
	TotalCost           float64         `json:"totalCost"`
	TotalProfit         float64         `json:"totalProfit"`
	SalesVolume         int             `json:"salesVolume"`
	TotalMoneySpent     float64         `json:"totalMoneySpent"`
	InventoryValue      float64         `json:"inventoryValue"`
	BestSellingProducts []BestSeller    `json:"bestSellingProducts"`
	ProductWiseProfit   []ProductProfit `json:"productWiseProfit"`
	MonthlyProfit       []MonthlyProfit `json:"monthlyProfit"`
}

type DashboardService struct {
	Repo   repo.ProductRepository
	Logger *logrus.Logger
}

func NewDashboardService(repo repo.ProductRepository, logger *logrus.Logger) *DashboardService {
	return &DashboardService{Repo: repo, Logger: loggerOrNop(logger)}
}

// Stats loads every product and aggregates it.
func (s *DashboardService) Stats(ctx context.Context) (*Dashboard, error) {
	products, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load products", err)
	}
	if len(products) == 0 {
		return nil, apperror.NotFound("no products found")
	}
	d := ComputeDashboard(products)
	return &d, nil
}

func money(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// ComputeDashboard aggregates revenue, cost and stock figures over a
// snapshot of products. It has no side effects.
func ComputeDashboard(products []entity.Product) Dashboard {
	var (
		revenue, cost, spent, inventory decimal.Decimal
		volume                          int
		months                          = map[string]decimal.Decimal{}
	)
	perProduct := make([]ProductProfit, 0, len(products))
	sellers := make([]BestSeller, 0, len(products))

	for i := range products {
		p := &products[i]
		buy := money(p.BuyingPrice)
		profit := decimal.Zero
		sold := 0
		for _, sale := range p.Sales {
			q := decimal.NewFromInt(int64(sale.QuantitySold))
			rev := money(sale.SellingPrice).Mul(q)
			c := buy.Mul(q)
			revenue = revenue.Add(rev)
			cost = cost.Add(c)
			profit = profit.Add(rev.Sub(c))
			sold += sale.QuantitySold

			month := sale.SellingDate.UTC().Format("2006-01")
			months[month] = months[month].Add(rev.Sub(c))
		}
		volume += sold
		inventory = inventory.Add(buy.Mul(decimal.NewFromInt(int64(p.NumberInStock))))
		spent = spent.Add(buy.Mul(decimal.NewFromInt(int64(p.NumberInStock + sold))))

		perProduct = append(perProduct, ProductProfit{ID: p.ID.Hex(), Name: p.Name, Profit: profit.InexactFloat64()})
		sellers = append(sellers, BestSeller{ID: p.ID.Hex(), Name: p.Name, SaleCount: len(p.Sales), Quantity: sold})
	}

	sort.SliceStable(sellers, func(i, j int) bool {
		if sellers[i].SaleCount != sellers[j].SaleCount {
			return sellers[i].SaleCount > sellers[j].SaleCount
		}
		return sellers[i].ID < sellers[j].ID
	})
	if len(sellers) > bestSellersLimit {
		sellers = sellers[:bestSellersLimit]
	}

	monthly := make([]MonthlyProfit, 0, len(months))
	for m, v := range months {
		monthly = append(monthly, MonthlyProfit{Month: m, Profit: v.InexactFloat64()})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })

	return Dashboard{
		TotalRevenue:        revenue.InexactFloat64(),
		TotalCost:           cost.InexactFloat64(),
		TotalProfit:         revenue.Sub(cost).InexactFloat64(),
		SalesVolume:         volume,
		TotalMoneySpent:     spent.InexactFloat64(),
		InventoryValue:      inventory.InexactFloat64(),
		BestSellingProducts: sellers,
		ProductWiseProfit:   perProduct,
		MonthlyProfit:       monthly,
	}
}
