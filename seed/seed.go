package seed

import (
	"context"
	"math/rand"
	"time"

	"tradeport-services/db"
	"tradeport-services/tradelog"
	"tradeport-services/types"

	"github.com/bxcodec/faker/v3"
	"github.com/ninja-software/terror/v2"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// Seeder inserts demo data for development environments.
type Seeder struct {
	Store db.Store
}

func NewSeeder(store db.Store) *Seeder {
	return &Seeder{Store: store}
}

func (s *Seeder) Run(ctx context.Context) error {
	tradelog.L.Info().Msg("seeding products")
	err := s.Products(ctx)
	if err != nil {
		return terror.Error(err)
	}
	tradelog.L.Info().Msg("seed complete")
	return nil
}

var originCountries = []string{
	"Australia", "Bangladesh", "Brazil", "China", "Germany",
	"India", "Indonesia", "Japan", "Turkey", "Vietnam",
}

// Products inserts a spread of demo products with distinct creation
// timestamps so the latest-products listing has something to order.
func (s *Seeder) Products(ctx context.Context) error {
	exporters := []string{}
	for i := 0; i < 5; i++ {
		exporters = append(exporters, faker.Email())
	}

	for i := 0; i < 24; i++ {
		price := decimal.NewFromFloat(rand.Float64()*90 + 10).Round(2)

		product := &types.Product{
			ProductName:       faker.Word(),
			Image:             faker.URL(),
			Price:             price.InexactFloat64(),
			OriginCountry:     originCountries[rand.Intn(len(originCountries))],
			Rating:            float64(rand.Intn(41)+10) / 10,
			AvailableQuantity: rand.Intn(500) + 1,
			ExporterEmail:     exporters[rand.Intn(len(exporters))],
			CreatedAt:         time.Now().Add(-time.Duration(i) * time.Hour),
		}

		raw, err := bson.Marshal(product)
		if err != nil {
			return terror.Error(err)
		}
		doc := bson.M{}
		err = bson.Unmarshal(raw, &doc)
		if err != nil {
			return terror.Error(err)
		}

		_, err = s.Store.ProductCreate(ctx, doc)
		if err != nil {
			return terror.Error(err)
		}
	}
	return nil
}
