package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the gateway's routes. State-changing and lookup endpoints
// sit behind the shared-secret auth middleware; stats and health do not.
func NewRouter(lookupHandler *LookupHandler, reassignmentHandler *ReassignmentHandler, statsHandler *StatsHandler, auth *AuthMiddleware, recovery *RecoveryMiddleware) *mux.Router {
	r := mux.NewRouter()

	guarded := func(h http.HandlerFunc) http.HandlerFunc {
		return recovery.Recover(auth.Authenticate(h))
	}
	open := func(h http.HandlerFunc) http.HandlerFunc {
		return recovery.Recover(h)
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/leads/duplicate-check", guarded(lookupHandler.HandleDuplicateCheck)).Methods(http.MethodGet)

	v1.HandleFunc("/reassignments/request", guarded(reassignmentHandler.HandleRequest)).Methods(http.MethodPost)
	v1.HandleFunc("/reassignments/{leadID}/approve", guarded(reassignmentHandler.HandleApprove)).Methods(http.MethodPost)
	v1.HandleFunc("/reassignments/{leadID}/reject", guarded(reassignmentHandler.HandleReject)).Methods(http.MethodPost)
	v1.HandleFunc("/reassignments/cancel", guarded(reassignmentHandler.HandleCancel)).Methods(http.MethodPost)

	v1.HandleFunc("/stats/audit/counts", open(statsHandler.HandleAuditCounts)).Methods(http.MethodGet)
	v1.HandleFunc("/stats/audit/recent", open(statsHandler.HandleRecentAudit)).Methods(http.MethodGet)
	v1.HandleFunc("/leads/{leadID}/activity", open(statsHandler.HandleLeadActivity)).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return r
}
