package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	mocksdb "github.com/schoolhub/school-messaging-api/databases/mocks"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/models"
)

const (
	studentHex = "5fc51f58c72ff10004dca383"
	accountHex = "5fc51f58c72ff10004dca390"
)

func newResolver() (*directory.Resolver, *mocksdb.StudentDatabase, *mocksdb.TeacherDatabase, *mocksdb.AdminDatabase) {
	sdb := &mocksdb.StudentDatabase{}
	tdb := &mocksdb.TeacherDatabase{}
	adb := &mocksdb.AdminDatabase{}
	return directory.NewResolver(sdb, tdb, adb), sdb, tdb, adb
}

func TestResolver_ResolveStudent(t *testing.T) {
	r, sdb, _, _ := newResolver()
	oid, _ := primitive.ObjectIDFromHex(studentHex)
	aid, _ := primitive.ObjectIDFromHex(accountHex)
	sdb.On("FindOne", mock.Anything, bson.M{"_id": oid}).Return(&models.Student{ID: oid, Name: "Sam Student", Account: aid}, nil)

	ident := r.Resolve(context.Background(), models.ParticipantRef{Kind: models.KindStudent, ID: studentHex})

	assert.True(t, ident.Exists)
	assert.Equal(t, "Sam Student", ident.DisplayName)
	assert.Equal(t, oid, ident.ProfileID)
	assert.Equal(t, aid, ident.Account)
}

func TestResolver_ResolveMissReturnsPlaceholder(t *testing.T) {
	r, _, tdb, _ := newResolver()
	tdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	ident := r.Resolve(context.Background(), models.ParticipantRef{Kind: models.KindTeacher, ID: studentHex})

	assert.False(t, ident.Exists)
	assert.Equal(t, "Unknown Teacher", ident.DisplayName)
}

func TestResolver_ResolveMalformedID(t *testing.T) {
	r, _, _, _ := newResolver()

	ident := r.Resolve(context.Background(), models.ParticipantRef{Kind: models.KindAdmin, ID: "not-an-object-id"})

	assert.False(t, ident.Exists)
	assert.Equal(t, "Unknown Admin", ident.DisplayName)
}

func TestResolver_ResolveUnknownKind(t *testing.T) {
	r, _, _, _ := newResolver()

	ident := r.Resolve(context.Background(), models.ParticipantRef{Kind: "parent", ID: studentHex})

	assert.False(t, ident.Exists)
	assert.Equal(t, "Unknown Participant", ident.DisplayName)
}

func TestResolver_ResolveByAccountID(t *testing.T) {
	r, sdb, _, _ := newResolver()
	oid, _ := primitive.ObjectIDFromHex(studentHex)
	aid, _ := primitive.ObjectIDFromHex(accountHex)
	sdb.On("FindOne", mock.Anything, bson.M{"account": aid}).Return(&models.Student{ID: oid, Name: "Sam Student", Account: aid}, nil)

	// a reference that only carries an account id is looked up through the
	// profile's account field
	ident := r.Resolve(context.Background(), models.ParticipantRef{Kind: models.KindStudent, Account: accountHex})

	assert.True(t, ident.Exists)
	assert.Equal(t, oid, ident.ProfileID)
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, studentHex, directory.CanonicalID(models.ParticipantRef{Kind: models.KindStudent, ID: studentHex}))
	// the innermost account id wins when the reference arrived populated
	assert.Equal(t, accountHex, directory.CanonicalID(models.ParticipantRef{Kind: models.KindStudent, ID: studentHex, Account: accountHex}))
}

func TestSame(t *testing.T) {
	plain := models.ParticipantRef{Kind: models.KindStudent, ID: studentHex}
	populated := models.ParticipantRef{Kind: models.KindStudent, ID: studentHex, Account: accountHex}
	accountOnly := models.ParticipantRef{Kind: models.KindStudent, Account: accountHex}
	otherKind := models.ParticipantRef{Kind: models.KindTeacher, ID: studentHex}

	assert.True(t, directory.Same(plain, plain))
	assert.True(t, directory.Same(populated, accountOnly))
	// the same participant referenced in two shapes still compares equal
	assert.True(t, directory.Same(plain, populated))
	// equality is by (kind, id) pair, never across kinds
	assert.False(t, directory.Same(plain, otherKind))
}
