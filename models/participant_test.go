package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schoolhub/school-messaging-api/models"
)

func TestParticipantRef_UnmarshalRawID(t *testing.T) {
	var ref models.ParticipantRef
	err := json.Unmarshal([]byte(`{"kind": "student", "id": "5fc51f58c72ff10004dca383"}`), &ref)

	assert.NoError(t, err)
	assert.Equal(t, models.KindStudent, ref.Kind)
	assert.Equal(t, "5fc51f58c72ff10004dca383", ref.ID)
	assert.Empty(t, ref.Account)
}

func TestParticipantRef_UnmarshalPopulatedObject(t *testing.T) {
	var ref models.ParticipantRef
	err := json.Unmarshal([]byte(`{"kind": "teacher", "id": {"_id": "5fc51f58c72ff10004dca382"}}`), &ref)

	assert.NoError(t, err)
	assert.Equal(t, models.KindTeacher, ref.Kind)
	assert.Equal(t, "5fc51f58c72ff10004dca382", ref.ID)
	assert.Empty(t, ref.Account)
}

func TestParticipantRef_UnmarshalNestedAccount(t *testing.T) {
	var ref models.ParticipantRef
	err := json.Unmarshal([]byte(`{"kind": "student", "id": {"_id": "5fc51f58c72ff10004dca383", "account": "5fc51f58c72ff10004dca390"}}`), &ref)

	assert.NoError(t, err)
	assert.Equal(t, "5fc51f58c72ff10004dca383", ref.ID)
	assert.Equal(t, "5fc51f58c72ff10004dca390", ref.Account)
}

func TestParticipantRef_UnmarshalUnsupportedShape(t *testing.T) {
	var ref models.ParticipantRef
	err := json.Unmarshal([]byte(`{"kind": "student", "id": 42}`), &ref)

	assert.Error(t, err)
}

func TestParticipantRef_MarshalCanonicalShape(t *testing.T) {
	ref := models.ParticipantRef{Kind: models.KindStudent, ID: "5fc51f58c72ff10004dca383", Account: "5fc51f58c72ff10004dca390"}
	b, err := json.Marshal(ref)

	assert.NoError(t, err)
	// only the canonical kind+id pair goes over the wire
	assert.JSONEq(t, `{"kind": "student", "id": "5fc51f58c72ff10004dca383"}`, string(b))
}

func TestParticipantKind_Valid(t *testing.T) {
	assert.True(t, models.KindStudent.Valid())
	assert.True(t, models.KindTeacher.Valid())
	assert.True(t, models.KindAdmin.Valid())
	assert.False(t, models.ParticipantKind("parent").Valid())
}
