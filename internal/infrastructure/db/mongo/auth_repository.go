package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/devbackend"
)

const accountCollection = "auth_accounts"

// AccountRepository stores development backend accounts.
type AccountRepository struct {
	coll *mongo.Collection
}

var _ devbackend.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoAccount struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Role          string             `bson:"role"`
	ContactHandle string             `bson:"contact_handle"`
	PasswordHash  string             `bson:"password_hash"`
	Verified      bool               `bson:"verified"`
	Grants        []string           `bson:"grants,omitempty"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *devbackend.Account) (*devbackend.Account, error) {
	doc := toDoc(account)
	doc.ID = primitive.NilObjectID

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, devbackend.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	return r.FindByID(ctx, id.Hex())
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*devbackend.Account, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*devbackend.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, devbackend.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByContactHandle(ctx context.Context, handle string) (*devbackend.Account, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"contact_handle": handle},
		bson.M{"email": strings.ToLower(handle)},
	}})
}

func (r *AccountRepository) Update(ctx context.Context, account *devbackend.Account) error {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return devbackend.ErrAccountNotFound
	}
	doc := toDoc(account)
	doc.ID = oid

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return devbackend.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*devbackend.Account, error) {
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, devbackend.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return fromDoc(doc), nil
}

func toDoc(a *devbackend.Account) mongoAccount {
	grants := make([]string, len(a.Grants))
	for i, g := range a.Grants {
		grants[i] = string(g)
	}
	return mongoAccount{
		Name:          a.Name,
		Email:         a.Email,
		Role:          string(a.Role),
		ContactHandle: a.ContactHandle,
		PasswordHash:  a.PasswordHash,
		Verified:      a.Verified,
		Grants:        grants,
		CreatedAt:     a.CreatedAt.Unix(),
		UpdatedAt:     a.UpdatedAt.Unix(),
	}
}

func fromDoc(d mongoAccount) *devbackend.Account {
	grants := make([]domain.Permission, len(d.Grants))
	for i, g := range d.Grants {
		grants[i] = domain.Permission(g)
	}
	return &devbackend.Account{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Email:         d.Email,
		Role:          domain.Role(d.Role),
		ContactHandle: d.ContactHandle,
		PasswordHash:  d.PasswordHash,
		Verified:      d.Verified,
		Grants:        grants,
		CreatedAt:     unixToTime(d.CreatedAt),
		UpdatedAt:     unixToTime(d.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
