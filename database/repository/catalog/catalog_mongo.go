package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"toltimed/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	servicesCollection      = "services"
	practitionersCollection = "practitioners"
)

// MongoCatalogRepo serves the service catalog and the practitioner list.
type MongoCatalogRepo struct {
	serviceColl      *mongo.Collection
	practitionerColl *mongo.Collection
	timeout          time.Duration
}

// NewMongoCatalogRepo constructs a repo over db and ensures its indexes.
func NewMongoCatalogRepo(db *mongo.Database) (*MongoCatalogRepo, error) {
	repo := &MongoCatalogRepo{
		serviceColl:      db.Collection(servicesCollection),
		practitionerColl: db.Collection(practitionersCollection),
		timeout:          5 * time.Second,
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.serviceColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	_, err = r.practitionerColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create practitioner indexes: %w", err)
	}
	return nil
}

// ListServices returns every service ordered by category then name.
func (r *MongoCatalogRepo) ListServices(ctx context.Context) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.serviceColl.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("error decoding services: %w", err)
	}
	return services, nil
}

// ListPractitioners returns every practitioner ordered by name.
func (r *MongoCatalogRepo) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.practitionerColl.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching practitioners: %w", err)
	}
	defer cursor.Close(ctx)

	var practitioners []models.Practitioner
	if err := cursor.All(ctx, &practitioners); err != nil {
		return nil, fmt.Errorf("error decoding practitioners: %w", err)
	}
	return practitioners, nil
}

// UpsertService creates or replaces a service by ID.
func (r *MongoCatalogRepo) UpsertService(ctx context.Context, s models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.serviceColl.ReplaceOne(ctx, bson.M{"id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving service %s: %w", s.ID, err)
	}
	return nil
}

// UpsertPractitioner creates or replaces a practitioner by ID.
func (r *MongoCatalogRepo) UpsertPractitioner(ctx context.Context, p models.Practitioner) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.practitionerColl.ReplaceOne(ctx, bson.M{"id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving practitioner %s: %w", p.ID, err)
	}
	return nil
}
