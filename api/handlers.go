package api

import (
	"encoding/json"
	"net/http"

	"erc20-token-indexer/database"
	"erc20-token-indexer/logger"
)

func (s *Server) getContract(w http.ResponseWriter, r *http.Request) {
	contract, err := database.GetOrInitContract(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, contract)
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := database.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	balance, err := database.GetBalance(s.db, owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// an address without transfers holds zero tokens
	if balance == nil {
		writeJSON(w, database.NewBigInt(nil))
		return
	}

	writeJSON(w, balance.Amount)
}

func (s *Server) getAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := database.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	spender, err := database.ParseAddress(r.URL.Query().Get("spender"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	allowance, err := database.GetAllowance(s.db, owner, spender)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if allowance == nil {
		writeJSON(w, database.NewBigInt(nil))
		return
	}

	writeJSON(w, allowance.Amount)
}

func (s *Server) listTransfers(w http.ResponseWriter, r *http.Request) {
	events, err := database.ListTransferEvents(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, events)
}

func (s *Server) listApprovals(w http.ResponseWriter, r *http.Request) {
	events, err := database.ListApprovalEvents(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, events)
}

func (s *Server) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := database.PurgeAll(s.db); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, "OK")

	// recompute everything from the genesis transaction
	s.refresher.TriggerRefresh()
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
