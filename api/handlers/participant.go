package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/schoolhub/school-messaging-api/api"
	"github.com/schoolhub/school-messaging-api/config"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/models"
)

// Participant exported for testing purposes
type Participant struct {
	Resolver *directory.Resolver
}

// ParticipantHandler returns the display identity for a participant reference.
// A lookup miss is not an error: the response carries exists=false and the
// deterministic placeholder name.
func (p Participant) ParticipantHandler(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		config.ErrorStatus("invalid participant", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ident := p.Resolver.Resolve(ctx, ref)
	b, err := json.Marshal(models.ParticipantSummary{
		Kind:        ref.Kind,
		ID:          ref.ID,
		DisplayName: ident.DisplayName,
		Exists:      ident.Exists,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
