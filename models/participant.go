package models

import (
	"encoding/json"
	"fmt"
)

// ParticipantKind tags which profile directory a participant reference points at
type ParticipantKind string

// The three participant kinds known to the platform
const (
	KindStudent ParticipantKind = "student"
	KindTeacher ParticipantKind = "teacher"
	KindAdmin   ParticipantKind = "admin"
)

// Valid reports whether the kind is one of the known participant kinds
func (k ParticipantKind) Valid() bool {
	switch k {
	case KindStudent, KindTeacher, KindAdmin:
		return true
	}
	return false
}

// Title returns the capitalized kind name used in placeholder display names
func (k ParticipantKind) Title() string {
	switch k {
	case KindStudent:
		return "Student"
	case KindTeacher:
		return "Teacher"
	case KindAdmin:
		return "Admin"
	}
	return "Participant"
}

// ParticipantRef is a typed reference to a participant profile. Only kind and
// the profile id are persisted; Account carries the underlying account id when
// the wire shape arrived as a populated object, so the resolver can prefer the
// innermost id for self-message equality.
type ParticipantRef struct {
	Kind    ParticipantKind `json:"kind" bson:"kind"`
	ID      string          `json:"id" bson:"id"`
	Account string          `json:"-" bson:"-"`
}

// UnmarshalJSON accepts the three reference shapes portals are known to send:
// a raw hex id, a populated profile object, or a populated profile object that
// wraps an underlying account id.
func (p *ParticipantRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind ParticipantKind `json:"kind"`
		ID   json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Kind = raw.Kind
	if len(raw.ID) == 0 {
		return nil
	}

	var id string
	if err := json.Unmarshal(raw.ID, &id); err == nil {
		p.ID = id
		return nil
	}

	var populated struct {
		ID      string `json:"_id"`
		Account string `json:"account"`
	}
	if err := json.Unmarshal(raw.ID, &populated); err != nil {
		return fmt.Errorf("unsupported participant id shape: %w", err)
	}
	p.ID = populated.ID
	p.Account = populated.Account
	return nil
}
