package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

// productDocument is the stored shape. Prices are kept as Decimal128 so
// they survive the round trip without float drift.
type productDocument struct {
	ID          string               `bson:"_id"`
	Title       string               `bson:"title"`
	Category    string               `bson:"category"`
	CategoryKey string               `bson:"category_key"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Condition   string               `bson:"condition"`
	Location    string               `bson:"location"`
	ContactInfo string               `bson:"contact_info"`
	Images      []string             `bson:"images"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) ProductRepository {
	return &mongoRepository{collection: db.Collection(productsCollection)}
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category_key", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *mongoRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return fmt.Errorf("failed to encode price: %w", err)
	}

	doc := productDocument{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		CategoryKey: domain.CategoryKey(p.Category),
		Description: p.Description,
		Price:       price,
		Condition:   string(p.Condition),
		Location:    p.Location,
		ContactInfo: p.ContactInfo,
		Images:      nonNil(p.Images),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return m.find(ctx, bson.M{})
}

func (m *mongoRepository) GetProductsByCategory(ctx context.Context, categoryKey string) ([]*domain.Product, error) {
	return m.find(ctx, bson.M{"category_key": categoryKey})
}

func (m *mongoRepository) DeleteCategory(ctx context.Context, categoryKey string) (int64, error) {
	res, err := m.collection.DeleteMany(ctx, bson.M{"category_key": categoryKey})
	if err != nil {
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}
	return res.DeletedCount, nil
}

func (m *mongoRepository) find(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cur.Close(ctx)

	products := make([]*domain.Product, 0)
	for cur.Next(ctx) {
		var doc productDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		price, err := decimal.NewFromString(doc.Price.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of product %s: %w", doc.ID, err)
		}
		products = append(products, &domain.Product{
			ID:          doc.ID,
			Title:       doc.Title,
			Category:    doc.Category,
			Description: doc.Description,
			Price:       price,
			Condition:   domain.Condition(doc.Condition),
			Location:    doc.Location,
			ContactInfo: doc.ContactInfo,
			Images:      nonNil(doc.Images),
			CreatedAt:   doc.CreatedAt,
			UpdatedAt:   doc.UpdatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return products, nil
}

func (m *mongoRepository) Close() error {
	return m.collection.Database().Client().Disconnect(context.Background())
}
