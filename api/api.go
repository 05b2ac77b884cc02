package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/raffle"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.GetOrCreate("api")

// RoundResponse is a registry entry together with its refundable total
type RoundResponse struct {
	*data.Round
	RefundTotal *big.Int `json:"refundTotal"`
}

type EntriesResponse struct {
	Round   uint64 `json:"round"`
	Address string `json:"address"`
	Entries uint64 `json:"entries"`
}

type UpkeepResponse struct {
	UpkeepNeeded bool `json:"upkeepNeeded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Observer is told about the raffle snapshot before metrics are scraped
type Observer interface {
	Observe(info *data.RaffleInfo)
}

type handlers struct {
	raffle   *raffle.Raffle
	observer Observer
}

// Handler returns the router of the read-only raffle API. It never exposes
// an operation that changes raffle state.
func Handler(r *raffle.Raffle, gatherer prometheus.Gatherer, observer Observer) *mux.Router {
	h := &handlers{raffle: r, observer: observer}

	router := mux.NewRouter()
	router.HandleFunc("/raffle", h.info).Methods(http.MethodGet)
	router.HandleFunc("/rounds/{id:[0-9]+}", h.round).Methods(http.MethodGet)
	router.HandleFunc("/rounds/{id:[0-9]+}/entries/{address}", h.entries).Methods(http.MethodGet)
	router.HandleFunc("/upkeep", h.upkeep).Methods(http.MethodGet)
	if gatherer != nil {
		metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
		router.Handle("/metrics", h.observed(metrics)).Methods(http.MethodGet)
	}

	return router
}

// Server serves the API until it is closed
type Server struct {
	srv *http.Server
}

// NewServer - creates a server listening on listen
func NewServer(listen string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start - serves in the background
func (s *Server) Start() {
	go func() {
		log.Info("api listening", "address", s.srv.Addr)
		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server stopped", "error", err)
		}
	}()
}

func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (h *handlers) info(w http.ResponseWriter, _ *http.Request) {
	info, err := h.raffle.Info()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *handlers) round(w http.ResponseWriter, r *http.Request) {
	id, ok := roundID(w, r)
	if !ok {
		return
	}

	round, err := h.raffle.Round(id)
	if err != nil {
		writeError(w, err)
		return
	}
	refund, err := h.raffle.RefundTotal(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &RoundResponse{Round: round, RefundTotal: refund})
}

func (h *handlers) entries(w http.ResponseWriter, r *http.Request) {
	id, ok := roundID(w, r)
	if !ok {
		return
	}

	address := mux.Vars(r)["address"]
	n, err := h.raffle.EntryCount(id, address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &EntriesResponse{Round: id, Address: address, Entries: n})
}

func (h *handlers) upkeep(w http.ResponseWriter, r *http.Request) {
	needed, _, err := h.raffle.CheckUpkeep(r.Context(), nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &UpkeepResponse{UpkeepNeeded: needed})
}

func (h *handlers) observed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.observer != nil {
			info, err := h.raffle.Info()
			if err == nil {
				h.observer.Observe(info)
			} else {
				log.Warn("can not refresh gauges", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func roundID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &errorResponse{Error: "invalid round id"})
		return 0, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, raffle.ErrRoundNotFound) {
		status = http.StatusNotFound
	} else {
		log.Warn("request failed", "error", err)
	}

	writeJSON(w, status, &errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("can not write response", "error", err)
	}
}
