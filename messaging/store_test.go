package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	mocksdb "github.com/schoolhub/school-messaging-api/databases/mocks"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/messaging"
	"github.com/schoolhub/school-messaging-api/models"
)

const (
	teacherHex = "5fc51f58c72ff10004dca382"
	studentHex = "5fc51f58c72ff10004dca383"
	adminHex   = "5fc51f58c72ff10004dca384"
	messageHex = "5fc51f58c72ff10004dca385"
)

type storeFixture struct {
	mdb   *mocksdb.MessageDatabase
	sdb   *mocksdb.StudentDatabase
	tdb   *mocksdb.TeacherDatabase
	adb   *mocksdb.AdminDatabase
	store *messaging.Store
}

func newStoreFixture() *storeFixture {
	f := &storeFixture{
		mdb: &mocksdb.MessageDatabase{},
		sdb: &mocksdb.StudentDatabase{},
		tdb: &mocksdb.TeacherDatabase{},
		adb: &mocksdb.AdminDatabase{},
	}
	resolver := directory.NewResolver(f.sdb, f.tdb, f.adb)
	f.store = messaging.NewStore(f.mdb, resolver, messaging.NewCounter(f.mdb))
	return f
}

func teacherRef() models.ParticipantRef {
	return models.ParticipantRef{Kind: models.KindTeacher, ID: teacherHex}
}

func studentRef() models.ParticipantRef {
	return models.ParticipantRef{Kind: models.KindStudent, ID: studentHex}
}

func studentProfile() *models.Student {
	oid, _ := primitive.ObjectIDFromHex(studentHex)
	return &models.Student{ID: oid, Name: "Sam Student", Email: "sam@school.test"}
}

func teacherProfile() *models.Teacher {
	oid, _ := primitive.ObjectIDFromHex(teacherHex)
	return &models.Teacher{ID: oid, Name: "Tina Teacher", Email: "tina@school.test"}
}

func TestStore_SendSuccess(t *testing.T) {
	f := newStoreFixture()
	f.sdb.On("FindOne", mock.Anything, mock.Anything).Return(studentProfile(), nil)
	f.mdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	msg, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    teacherRef(),
		Recipient: studentRef(),
		Subject:   "Test",
		Content:   "Hello",
	})

	assert.NoError(t, err)
	assert.False(t, msg.ID.IsZero())
	assert.Equal(t, "Test", msg.Subject)
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, models.KindTeacher, msg.Sender.Kind)
	assert.Equal(t, studentHex, msg.Recipient.ID)
	assert.False(t, msg.IsRead)
	assert.Nil(t, msg.ThreadRef)
	f.mdb.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestStore_SendReplyPrefixesSubject(t *testing.T) {
	f := newStoreFixture()
	f.tdb.On("FindOne", mock.Anything, mock.Anything).Return(teacherProfile(), nil)
	f.mdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	msg, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    studentRef(),
		Recipient: teacherRef(),
		Subject:   "Test",
		Content:   "Reply body",
		ThreadRef: messageHex,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Re: Test", msg.Subject)
	if assert.NotNil(t, msg.ThreadRef) {
		assert.Equal(t, messageHex, msg.ThreadRef.Hex())
	}

	// an already-prefixed subject is not prefixed twice
	msg, err = f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    studentRef(),
		Recipient: teacherRef(),
		Subject:   "Re: Test",
		Content:   "Second reply",
		ThreadRef: messageHex,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Re: Test", msg.Subject)
}

func TestStore_SendEmptyContent(t *testing.T) {
	f := newStoreFixture()

	_, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    teacherRef(),
		Recipient: studentRef(),
		Subject:   "Test",
		Content:   "",
	})

	assert.ErrorIs(t, err, messaging.ErrEmptyContent)
	f.mdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestStore_SendSelfMessage(t *testing.T) {
	f := newStoreFixture()

	_, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    studentRef(),
		Recipient: studentRef(),
		Subject:   "Note to self",
		Content:   "Hello me",
	})

	assert.ErrorIs(t, err, messaging.ErrSelfMessage)
	f.mdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestStore_SendSelfMessageNestedAccount(t *testing.T) {
	f := newStoreFixture()

	// both references unwrap to the same underlying account id
	_, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    models.ParticipantRef{Kind: models.KindStudent, ID: studentHex, Account: adminHex},
		Recipient: models.ParticipantRef{Kind: models.KindStudent, Account: adminHex},
		Subject:   "Test",
		Content:   "Hello",
	})

	assert.ErrorIs(t, err, messaging.ErrSelfMessage)
}

func TestStore_SendSameIDDifferentKindIsNotSelf(t *testing.T) {
	f := newStoreFixture()
	f.tdb.On("FindOne", mock.Anything, mock.Anything).Return(teacherProfile(), nil)
	f.mdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	// a student and a teacher sharing an id are still distinct participants
	_, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    models.ParticipantRef{Kind: models.KindStudent, ID: teacherHex},
		Recipient: models.ParticipantRef{Kind: models.KindTeacher, ID: teacherHex},
		Subject:   "Test",
		Content:   "Hello",
	})

	assert.NoError(t, err)
}

func TestStore_SendInvalidRecipient(t *testing.T) {
	f := newStoreFixture()
	f.sdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    teacherRef(),
		Recipient: studentRef(),
		Subject:   "Test",
		Content:   "Hello",
	})

	assert.ErrorIs(t, err, messaging.ErrInvalidRecipient)
	f.mdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestStore_SendInsertFailureIsUnavailable(t *testing.T) {
	f := newStoreFixture()
	f.sdb.On("FindOne", mock.Anything, mock.Anything).Return(studentProfile(), nil)
	f.mdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("socket closed"))

	_, err := f.store.Send(context.Background(), models.SendMessageRequest{
		Sender:    teacherRef(),
		Recipient: studentRef(),
		Subject:   "Test",
		Content:   "Hello",
	})

	assert.ErrorIs(t, err, messaging.ErrUnavailable)
}

func unreadMessage() *models.Message {
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	return &models.Message{
		ID:        mID,
		Sender:    teacherRef(),
		Recipient: studentRef(),
		Subject:   "Test",
		Content:   "Hello",
		IsRead:    false,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
}

func TestStore_GetByIDMarksReadForRecipient(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)
	f.mdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	msg, err := f.store.GetByID(context.Background(), mID, studentRef())

	assert.NoError(t, err)
	assert.True(t, msg.IsRead)
	assert.NotNil(t, msg.ReadAt)
	f.mdb.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_GetByIDDoesNotMarkReadForSender(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)

	msg, err := f.store.GetByID(context.Background(), mID, teacherRef())

	assert.NoError(t, err)
	assert.False(t, msg.IsRead)
	f.mdb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_GetByIDSecondReadIsIdempotent(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	read := unreadMessage()
	read.IsRead = true
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(read, nil)

	msg, err := f.store.GetByID(context.Background(), mID, studentRef())

	assert.NoError(t, err)
	assert.True(t, msg.IsRead)
	f.mdb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_GetByIDMarkReadFailureFailsWholeCall(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)
	f.mdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("socket closed"))

	_, err := f.store.GetByID(context.Background(), mID, studentRef())

	assert.ErrorIs(t, err, messaging.ErrUnavailable)
}

func TestStore_GetByIDForbidden(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)

	_, err := f.store.GetByID(context.Background(), mID, models.ParticipantRef{Kind: models.KindAdmin, ID: adminHex})

	assert.ErrorIs(t, err, messaging.ErrForbidden)
}

func TestStore_GetByIDNotFound(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := f.store.GetByID(context.Background(), mID, studentRef())

	assert.ErrorIs(t, err, messaging.ErrNotFound)
}

func TestStore_ReadUpdatesUnreadCount(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	n, err := f.store.Counter.UnreadCount(context.Background(), studentRef())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// reading the message invalidates the cached count for the recipient
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)
	f.mdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	_, err = f.store.GetByID(context.Background(), mID, studentRef())
	assert.NoError(t, err)

	f.mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil).Once()
	n, err = f.store.Counter.UnreadCount(context.Background(), studentRef())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStore_DeleteByEitherParty(t *testing.T) {
	for _, requester := range []models.ParticipantRef{teacherRef(), studentRef()} {
		f := newStoreFixture()
		mID, _ := primitive.ObjectIDFromHex(messageHex)
		f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)
		f.mdb.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)

		err := f.store.Delete(context.Background(), mID, requester)

		assert.NoError(t, err)
		f.mdb.AssertCalled(t, "DeleteOne", mock.Anything, mock.Anything)
	}
}

func TestStore_DeleteForbiddenForThirdParty(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(unreadMessage(), nil)

	err := f.store.Delete(context.Background(), mID, models.ParticipantRef{Kind: models.KindAdmin, ID: adminHex})

	assert.ErrorIs(t, err, messaging.ErrForbidden)
	f.mdb.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}

func TestStore_DeleteNotFound(t *testing.T) {
	f := newStoreFixture()
	mID, _ := primitive.ObjectIDFromHex(messageHex)
	f.mdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	err := f.store.Delete(context.Background(), mID, studentRef())

	assert.ErrorIs(t, err, messaging.ErrNotFound)
}

func TestStore_ListInboxFiltersAndOrders(t *testing.T) {
	f := newStoreFixture()
	t3 := unreadMessage()
	t2 := unreadMessage()
	t1 := unreadMessage()
	t3.Subject, t2.Subject, t1.Subject = "three", "two", "one"
	f.mdb.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Message{*t3, *t2, *t1}, nil)

	msgs, err := f.store.ListInbox(context.Background(), studentRef(), 0)

	assert.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{msgs[0].Subject, msgs[1].Subject, msgs[2].Subject})
}

func TestStore_ListSentUnavailable(t *testing.T) {
	f := newStoreFixture()
	f.mdb.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("socket closed"))

	_, err := f.store.ListSent(context.Background(), teacherRef(), 0)

	assert.ErrorIs(t, err, messaging.ErrUnavailable)
}
