package databases

// go generate: mockery --name AccountDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolhub/school-messaging-api/models"
)

const accountCollectionName = "accounts"

// AccountDatabase contains the methods to use with the account database
type AccountDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Account, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Account, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
}

type accountDatabase struct {
	db DatabaseHelper
}

// NewAccountDatabase initializes a new instance of account database with the provided db connection
func NewAccountDatabase(db DatabaseHelper) AccountDatabase {
	return &accountDatabase{
		db: db,
	}
}

func (a *accountDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Account, error) {
	account := &models.Account{}
	err := a.db.Collection(accountCollectionName).FindOne(ctx, filter, opts...).Decode(account)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (a *accountDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Account, error) {
	var accounts []models.Account
	curr, err := a.db.Collection(accountCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &accounts)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *accountDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return a.db.Collection(accountCollectionName).UpdateOne(ctx, filter, update, opts...)
}
