package databases

// go generate: mockery --name StudentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolhub/school-messaging-api/models"
)

const studentCollectionName = "students"

// StudentDatabase contains the methods to use with the student directory
type StudentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Student, error)
}

type studentDatabase struct {
	db DatabaseHelper
}

// NewStudentDatabase initializes a new instance of student database with the provided db connection
func NewStudentDatabase(db DatabaseHelper) StudentDatabase {
	return &studentDatabase{
		db: db,
	}
}

func (s *studentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Student, error) {
	student := &models.Student{}
	err := s.db.Collection(studentCollectionName).FindOne(ctx, filter, opts...).Decode(student)
	if err != nil {
		return nil, err
	}
	return student, nil
}
