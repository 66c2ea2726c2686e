// Package api is the thin HTTP layer over the aggregate stores and the
// durable event records. It only reads; the single mutating endpoint wipes
// all state and triggers an immediate reconciliation run.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Refresher requests an immediate reconciliation run, implemented by the
// token indexer.
type Refresher interface {
	TriggerRefresh()
}

type Server struct {
	db        *gorm.DB
	refresher Refresher
	router    *mux.Router
}

func NewServer(db *gorm.DB, refresher Refresher) *Server {
	s := &Server{
		db:        db,
		refresher: refresher,
		router:    mux.NewRouter(),
	}

	s.router.HandleFunc("/contract", s.getContract).Methods(http.MethodGet)
	s.router.HandleFunc("/balance", s.getBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/allowance", s.getAllowance).Methods(http.MethodGet)
	s.router.HandleFunc("/transfer", s.listTransfers).Methods(http.MethodGet)
	s.router.HandleFunc("/approval", s.listApprovals).Methods(http.MethodGet)
	s.router.HandleFunc("/all", s.deleteAll).Methods(http.MethodDelete)

	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler:      s.router,
	}

	return server.ListenAndServe()
}
