package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

const (
	ticketsCollection = "tickets"
	usersCollection   = "users"
)

// mongoTicketStore persists tickets in a MongoDB collection. A unique
// index on fingerprint makes Insert act as a conditional-insert: a
// concurrent creation for the same fingerprint loses with
// ErrFingerprintConflict and re-enters the merge path. Status updates
// use an aggregation-pipeline $set with $ifNull so set-once timestamps
// are enforced by the database itself.
type mongoTicketStore struct {
	col *mongo.Collection
}

// NewMongoTicketStore builds a store over the given database and
// creates the indexes the dedup flow depends on.
func NewMongoTicketStore(ctx context.Context, db *mongo.Database) (TicketStore, error) {
	col := db.Collection(ticketsCollection)
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "ticket_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket indexes: %w", err)
	}
	return &mongoTicketStore{col: col}, nil
}

func (s *mongoTicketStore) Insert(ctx context.Context, ticket *domain.Ticket) error {
	if _, err := s.col.InsertOne(ctx, ticket); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrFingerprintConflict
		}
		return err
	}
	return nil
}

func (s *mongoTicketStore) FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Ticket, error) {
	return s.fetchOne(ctx, bson.M{"fingerprint": fingerprint})
}

func (s *mongoTicketStore) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.fetchOne(ctx, bson.M{"ticket_id": ticketID})
}

func (s *mongoTicketStore) fetchOne(ctx context.Context, filter bson.M) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := s.col.FindOne(ctx, filter).Decode(&ticket); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *mongoTicketStore) Merge(ctx context.Context, fingerprint string, patch MergePatch) (*domain.Ticket, error) {
	update := bson.M{
		"$inc": bson.M{"occurrence_count": 1},
	}
	if patch.Reporter != "" {
		update["$addToSet"] = bson.M{"reporters": patch.Reporter}
	}
	if patch.Location != nil {
		update["$set"] = bson.M{"location": patch.Location}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ticket domain.Ticket
	err := s.col.FindOneAndUpdate(ctx, bson.M{"fingerprint": fingerprint}, update, opts).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *mongoTicketStore) UpdateStatus(ctx context.Context, ticketID string, patch StatusPatch) (*domain.Ticket, error) {
	set := bson.M{
		"status":     patch.Status,
		"updated_at": patch.UpdatedAt,
	}
	// $ifNull keeps an already-set timestamp; the new value only lands
	// on the first transition into the state.
	if patch.InProgressAt != nil {
		set["in_progress_at"] = bson.M{"$ifNull": bson.A{"$in_progress_at", *patch.InProgressAt}}
	}
	if patch.CompletedAt != nil {
		set["completed_at"] = bson.M{"$ifNull": bson.A{"$completed_at", *patch.CompletedAt}}
	}

	pipeline := bson.A{bson.M{"$set": set}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ticket domain.Ticket
	err := s.col.FindOneAndUpdate(ctx, bson.M{"ticket_id": ticketID}, pipeline, opts).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *mongoTicketStore) List(ctx context.Context) ([]domain.Ticket, error) {
	cursor, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []domain.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// mongoUserStore persists accounts with a unique email index.
type mongoUserStore struct {
	col *mongo.Collection
}

// NewMongoUserStore builds a user store over the given database.
func NewMongoUserStore(ctx context.Context, db *mongo.Database) (UserStore, error) {
	col := db.Collection(usersCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create user indexes: %w", err)
	}
	return &mongoUserStore{col: col}, nil
}

func (s *mongoUserStore) CreateUser(ctx context.Context, user *domain.User) error {
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *mongoUserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.fetchUser(ctx, bson.M{"email": email})
}

func (s *mongoUserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.fetchUser(ctx, bson.M{"user_id": id})
}

func (s *mongoUserStore) fetchUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
