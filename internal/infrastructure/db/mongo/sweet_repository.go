package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/metrics"
)

const (
	collectionSweets  = "sweets"
	maxUpdateAttempts = 32
)

// SweetRepository stores sweets in MongoDB. Updates use optimistic locking on
// the version field: a write only lands if nobody else wrote since our read.
type SweetRepository struct {
	coll *mongo.Collection
}

var _ ports.SweetRepository = (*SweetRepository)(nil)

func NewSweetRepository(db *mongo.Database) *SweetRepository {
	return &SweetRepository{coll: db.Collection(collectionSweets)}
}

type mongoSweet struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Category  string               `bson:"category"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
	Version   int64                `bson:"version"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

// Create inserts a new sweet document.
func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	price, err := toDecimal128(s.Price)
	if err != nil {
		return nil, err
	}

	doc := mongoSweet{
		ID:        primitive.NewObjectID(),
		Name:      s.Name,
		Category:  s.Category,
		Price:     price,
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert sweet: %w", err)
	}
	return doc.toDomain()
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := r.findDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

// Find builds a single query from the set fields of filter.
func (r *SweetRepository) Find(ctx context.Context, filter ports.SweetFilter, page ports.Page) ([]*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, err := buildSweetQuery(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Skip))
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find sweets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoSweet
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sweets: %w", err)
	}

	out := make([]*domain.Sweet, 0, len(docs))
	for _, d := range docs {
		s, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Update applies mutate with compare-and-swap on the version field, retrying
// from a fresh read whenever another writer got there first.
func (r *SweetRepository) Update(ctx context.Context, id string, mutate ports.MutateFunc) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		doc, err := r.findDoc(ctx, id)
		if err != nil {
			return nil, err
		}

		sweet, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		if err := mutate(sweet); err != nil {
			return nil, err
		}

		price, err := toDecimal128(sweet.Price)
		if err != nil {
			return nil, err
		}

		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": doc.ID, "version": doc.Version},
			bson.M{"$set": bson.M{
				"name":       sweet.Name,
				"category":   sweet.Category,
				"price":      price,
				"quantity":   sweet.Quantity,
				"updated_at": sweet.UpdatedAt.UTC(),
				"version":    doc.Version + 1,
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("update sweet: %w", err)
		}
		if res.MatchedCount == 1 {
			return sweet, nil
		}

		metrics.StoreConflictRetriesTotal.WithLabelValues("mongo").Inc()
	}

	return nil, ports.ErrConcurrentUpdate
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSweetNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

func (r *SweetRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the indexes used by listing and search.
func (r *SweetRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *SweetRepository) findDoc(ctx context.Context, id string) (*mongoSweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSweetNotFound
	}

	var doc mongoSweet
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, fmt.Errorf("find sweet: %w", err)
	}
	return &doc, nil
}

func buildSweetQuery(f ports.SweetFilter) (bson.M, error) {
	query := bson.M{}
	if f.Name != nil {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(*f.Name), "$options": "i"}
	}
	if f.Category != nil {
		query["category"] = *f.Category
	}

	price := bson.M{}
	if f.MinPrice != nil {
		v, err := toDecimal128(*f.MinPrice)
		if err != nil {
			return nil, err
		}
		price["$gte"] = v
	}
	if f.MaxPrice != nil {
		v, err := toDecimal128(*f.MaxPrice)
		if err != nil {
			return nil, err
		}
		price["$lte"] = v
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return query, nil
}

func (d mongoSweet) toDomain() (*domain.Sweet, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price of sweet %s: %w", d.ID.Hex(), err)
	}
	return &domain.Sweet{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Category:  d.Category,
		Price:     price,
		Quantity:  d.Quantity,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode price %s: %w", d.String(), err)
	}
	return v, nil
}
