// Package directory resolves typed participant references against the
// student/teacher/admin profile collections. All shape normalization of
// incoming references happens here and nowhere else.
package directory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schoolhub/school-messaging-api/databases"
	"github.com/schoolhub/school-messaging-api/models"
)

// Identity is a resolved, display-ready participant identity
type Identity struct {
	DisplayName string
	Email       string
	ProfileID   primitive.ObjectID
	Account     primitive.ObjectID
	Exists      bool
}

// Resolver looks up participant references in the profile directories
type Resolver struct {
	SDB databases.StudentDatabase
	TDB databases.TeacherDatabase
	ADB databases.AdminDatabase
}

// NewResolver initializes a resolver over the three profile directories
func NewResolver(sdb databases.StudentDatabase, tdb databases.TeacherDatabase, adb databases.AdminDatabase) *Resolver {
	return &Resolver{SDB: sdb, TDB: tdb, ADB: adb}
}

// Resolve translates a participant reference into a display identity. It never
// returns an error: a lookup miss (unknown kind, malformed id, missing profile)
// degrades to a deterministic placeholder with Exists=false so read paths are
// never blocked by a dangling reference.
func (r *Resolver) Resolve(ctx context.Context, ref models.ParticipantRef) Identity {
	filter, ok := profileFilter(ref)
	if !ok {
		return placeholder(ref.Kind)
	}

	switch ref.Kind {
	case models.KindStudent:
		s, err := r.SDB.FindOne(ctx, filter)
		if err != nil {
			return placeholder(ref.Kind)
		}
		return Identity{DisplayName: s.Name, Email: s.Email, ProfileID: s.ID, Account: s.Account, Exists: true}
	case models.KindTeacher:
		t, err := r.TDB.FindOne(ctx, filter)
		if err != nil {
			return placeholder(ref.Kind)
		}
		return Identity{DisplayName: t.Name, Email: t.Email, ProfileID: t.ID, Account: t.Account, Exists: true}
	case models.KindAdmin:
		a, err := r.ADB.FindOne(ctx, filter)
		if err != nil {
			return placeholder(ref.Kind)
		}
		return Identity{DisplayName: a.Name, Email: a.Email, ProfileID: a.ID, Account: a.Account, Exists: true}
	}
	return placeholder(ref.Kind)
}

// profileFilter builds the directory lookup filter for a reference. A
// reference that only carries an account id is looked up through the profile's
// account field instead of its primary id.
func profileFilter(ref models.ParticipantRef) (bson.M, bool) {
	if ref.ID != "" {
		oid, err := primitive.ObjectIDFromHex(ref.ID)
		if err != nil {
			return nil, false
		}
		return bson.M{"_id": oid}, true
	}
	if ref.Account != "" {
		aid, err := primitive.ObjectIDFromHex(ref.Account)
		if err != nil {
			return nil, false
		}
		return bson.M{"account": aid}, true
	}
	return nil, false
}

func placeholder(kind models.ParticipantKind) Identity {
	return Identity{DisplayName: "Unknown " + kind.Title()}
}

// CanonicalID returns the canonical identifier for equality comparisons,
// unwrapping exactly one level of nesting: a populated reference wrapping an
// underlying account id yields the account id, anything else yields the
// profile id.
func CanonicalID(ref models.ParticipantRef) string {
	if ref.Account != "" {
		return ref.Account
	}
	return ref.ID
}

// Same reports whether two references address the same participant. Equality
// is by (kind, id) pair: the same account id under two different kinds is two
// distinct participants. References to one participant may arrive in different
// shapes, so both the canonical ids and the raw profile ids are compared.
func Same(a, b models.ParticipantRef) bool {
	if a.Kind != b.Kind {
		return false
	}
	if CanonicalID(a) == CanonicalID(b) {
		return true
	}
	return a.ID != "" && a.ID == b.ID
}
