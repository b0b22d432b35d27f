package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schoolhub/school-messaging-api/api"
	"github.com/schoolhub/school-messaging-api/api/scheduler"
	"github.com/schoolhub/school-messaging-api/config"
	"github.com/schoolhub/school-messaging-api/databases"
)

// Digest exported for testing purposes
type Digest struct {
	ADB    databases.AccountDatabase
	Config config.Config
}

// UnsubscribeHandler disables digest emails for the account named by a signed
// one-click token from a digest email
func (d Digest) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	accountID, err := scheduler.ParseUnsubscribeToken(token, d.Config.JWTSecret)
	if err != nil {
		config.ErrorStatus("invalid unsubscribe token", http.StatusBadRequest, w, err)
		return
	}

	aID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	modified, err := d.ADB.UpdateOne(ctx, bson.M{"_id": aID}, bson.M{"$set": bson.M{"digestOptOut": true}})
	if err != nil {
		config.ErrorStatus("failed to update account", http.StatusInternalServerError, w, err)
		return
	}
	// modified == 0 means the account already opted out, which is still success
	_ = modified

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "digest emails disabled"}`))
}
