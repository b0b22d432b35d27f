package databases

// go generate: mockery --name TeacherDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolhub/school-messaging-api/models"
)

const teacherCollectionName = "teachers"

// TeacherDatabase contains the methods to use with the teacher directory
type TeacherDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Teacher, error)
}

type teacherDatabase struct {
	db DatabaseHelper
}

// NewTeacherDatabase initializes a new instance of teacher database with the provided db connection
func NewTeacherDatabase(db DatabaseHelper) TeacherDatabase {
	return &teacherDatabase{
		db: db,
	}
}

func (t *teacherDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Teacher, error) {
	teacher := &models.Teacher{}
	err := t.db.Collection(teacherCollectionName).FindOne(ctx, filter, opts...).Decode(teacher)
	if err != nil {
		return nil, err
	}
	return teacher, nil
}
