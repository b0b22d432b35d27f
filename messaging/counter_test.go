package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	mocksdb "github.com/schoolhub/school-messaging-api/databases/mocks"
	"github.com/schoolhub/school-messaging-api/messaging"
	"github.com/schoolhub/school-messaging-api/models"
)

func TestCounter_UnreadCountCachesUntilRefresh(t *testing.T) {
	mdb := &mocksdb.MessageDatabase{}
	counter := messaging.NewCounter(mdb)
	user := models.ParticipantRef{Kind: models.KindStudent, ID: studentHex}

	mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil).Once()

	n, err := counter.UnreadCount(context.Background(), user)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// second read is served from the cache, the mock allows a single call
	n, err = counter.UnreadCount(context.Background(), user)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	mdb.AssertNumberOfCalls(t, "CountDocuments", 1)

	counter.Refresh(user)
	mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil).Once()

	n, err = counter.UnreadCount(context.Background(), user)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	mdb.AssertNumberOfCalls(t, "CountDocuments", 2)
}

func TestCounter_UnreadCountIsPerParticipant(t *testing.T) {
	mdb := &mocksdb.MessageDatabase{}
	counter := messaging.NewCounter(mdb)

	mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
	n, err := counter.UnreadCount(context.Background(), models.ParticipantRef{Kind: models.KindStudent, ID: studentHex})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// same id under a different kind is a different cache entry
	mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(5), nil).Once()
	n, err = counter.UnreadCount(context.Background(), models.ParticipantRef{Kind: models.KindTeacher, ID: studentHex})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestCounter_UnreadCountUnavailable(t *testing.T) {
	mdb := &mocksdb.MessageDatabase{}
	counter := messaging.NewCounter(mdb)

	mdb.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errors.New("socket closed"))

	_, err := counter.UnreadCount(context.Background(), models.ParticipantRef{Kind: models.KindStudent, ID: studentHex})
	assert.ErrorIs(t, err, messaging.ErrUnavailable)
}
