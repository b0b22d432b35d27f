package databases

// go generate: mockery --name AdminDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolhub/school-messaging-api/models"
)

const adminCollectionName = "admins"

// AdminDatabase contains the methods to use with the admin directory
type AdminDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Admin, error)
}

type adminDatabase struct {
	db DatabaseHelper
}

// NewAdminDatabase initializes a new instance of admin database with the provided db connection
func NewAdminDatabase(db DatabaseHelper) AdminDatabase {
	return &adminDatabase{
		db: db,
	}
}

func (a *adminDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Admin, error) {
	admin := &models.Admin{}
	err := a.db.Collection(adminCollectionName).FindOne(ctx, filter, opts...).Decode(admin)
	if err != nil {
		return nil, err
	}
	return admin, nil
}
