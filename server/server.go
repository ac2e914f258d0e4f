package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/app"
	"github.com/petrodao/govledger/errors"
)

// Server maps the ledger operations onto a JSON HTTP API. All routes
// are registered at construction time.
type Server struct {
	ledger *app.Ledger
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(ledger *app.Ledger, logger *slog.Logger, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		ledger: ledger,
		logger: logger.With("component", "server"),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /attestor/init", s.handleAttestorInit)
	s.mux.HandleFunc("POST /attestor/rotate", s.handleAttestorRotate)
	s.mux.HandleFunc("GET /attestor", s.handleAttestorCurrent)
	s.mux.HandleFunc("POST /revenue", s.handleRevenueRecord)
	s.mux.HandleFunc("GET /revenue/total", s.handleRevenueTotal)
	s.mux.HandleFunc("GET /revenue/used", s.handleSourceUsed)
	s.mux.HandleFunc("GET /revenue/{id}", s.handleRevenueGet)
	s.mux.HandleFunc("POST /revenue/{id}/release", s.handleRevenueRelease)
	s.mux.HandleFunc("POST /proposals", s.handleProposalSubmit)
	s.mux.HandleFunc("GET /proposals/{id}", s.handleProposalGet)
	s.mux.HandleFunc("POST /proposals/{id}/status", s.handleProposalStatus)
	s.mux.HandleFunc("POST /proposals/{id}/votes", s.handleVote)
	s.mux.HandleFunc("GET /proposals/{id}/tally", s.handleTally)
	s.mux.HandleFunc("POST /proposals/{id}/disburse", s.handleDisburse)
	s.mux.HandleFunc("GET /audit/count", s.handleAuditCount)
	s.mux.HandleFunc("GET /audit/{id}", s.handleAuditGet)
	s.mux.HandleFunc("GET /audit", s.handleAuditList)
	s.mux.HandleFunc("GET /balance/{account}", s.handleBalance)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// Handler returns the root handler for use with an http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) respond(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("cannot write response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
}

// fail translates a ledger error into an HTTP status. The registered
// error code travels in the body so that clients can branch on it
// without parsing messages.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.ErrInvalidIdentity.Is(err),
		errors.ErrInvalidAmount.Is(err),
		errors.ErrInvalidCurrency.Is(err),
		errors.ErrInput.Is(err),
		errors.ErrEmpty.Is(err):
		status = http.StatusBadRequest
	case errors.ErrUnauthorized.Is(err):
		status = http.StatusForbidden
	case errors.ErrNotFound.Is(err):
		status = http.StatusNotFound
	case errors.ErrNotInitialized.Is(err),
		errors.ErrAlreadyInitialized.Is(err),
		errors.ErrAlreadyRecorded.Is(err),
		errors.ErrAlreadyVoted.Is(err),
		errors.ErrSupplyExceeded.Is(err),
		errors.ErrInsufficientBalance.Is(err),
		errors.ErrNotApproved.Is(err):
		status = http.StatusConflict
	case errors.ErrLocked.Is(err):
		status = http.StatusLocked
	}
	s.respond(w, status, errorResponse{Error: err.Error(), Code: errors.Code(err)})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.fail(w, errors.Wrap(errors.ErrInput, "malformed request body"))
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		s.fail(w, errors.Wrap(errors.ErrInput, "malformed id"))
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAttestorInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Initial govledger.Identity `json:"initial"`
		Caller  govledger.Identity `json:"caller"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.InitializeAttestor(req.Initial, req.Caller); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleAttestorRotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Next   govledger.Identity `json:"next"`
		Caller govledger.Identity `json:"caller"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.RotateAttestor(req.Next, req.Caller); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleAttestorCurrent(w http.ResponseWriter, r *http.Request) {
	current, err := s.ledger.CurrentAttestor()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]govledger.Identity{"attestor": current})
}

func (s *Server) handleRevenueRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller   govledger.Identity `json:"caller"`
		SourceID int64              `json:"source_id"`
		Amount   int64              `json:"amount"`
		Currency string             `json:"currency"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.ledger.RecordRevenue(req.Caller, req.SourceID, req.Amount, req.Currency)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleRevenueGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	entry, err := s.ledger.GetRevenueEntry(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, entry)
}

func (s *Server) handleRevenueRelease(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller    govledger.Identity `json:"caller"`
		Recipient govledger.Identity `json:"recipient"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.ReleaseRevenue(req.Caller, id, req.Recipient); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleRevenueTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.ledger.TotalRecorded()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]int64{"total": total})
}

func (s *Server) handleSourceUsed(w http.ResponseWriter, r *http.Request) {
	by := govledger.Identity(r.URL.Query().Get("by"))
	sourceID, err := strconv.ParseInt(r.URL.Query().Get("source_id"), 10, 64)
	if err != nil {
		s.fail(w, errors.Wrap(errors.ErrInput, "malformed source_id"))
		return
	}
	used, err := s.ledger.IsSourceUsed(by, sourceID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"used": used})
}

func (s *Server) handleProposalSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller      govledger.Identity `json:"caller"`
		Amount      int64              `json:"amount"`
		Description string             `json:"description"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.ledger.SubmitProposal(req.Caller, req.Amount, req.Description)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleProposalGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	prop, err := s.ledger.GetProposal(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, prop)
}

func (s *Server) handleProposalStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller govledger.Identity `json:"caller"`
		Status string             `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.UpdateProposalStatus(req.Caller, id, req.Status); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller govledger.Identity `json:"caller"`
		Choice bool               `json:"choice"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.CastVote(req.Caller, id, req.Choice); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	tally, err := s.ledger.GetTally(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	approved, err := s.ledger.IsApproved(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{
		"yes":      tally.Yes,
		"no":       tally.No,
		"approved": approved,
	})
}

func (s *Server) handleDisburse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller    govledger.Identity `json:"caller"`
		Recipient govledger.Identity `json:"recipient"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.Disburse(req.Caller, id, req.Recipient); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleAuditCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.ledger.AuditCount()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleAuditGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	entry, err := s.ledger.GetAuditEntry(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, entry)
}

func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := int64(0)
	if raw := q.Get("from"); raw != "" {
		var err error
		if from, err = strconv.ParseInt(raw, 10, 64); err != nil {
			s.fail(w, errors.Wrap(errors.ErrInput, "malformed from"))
			return
		}
	}
	count, err := s.ledger.AuditCount()
	if err != nil {
		s.fail(w, err)
		return
	}
	// The range is half-open, to is exclusive.
	to := count
	if raw := q.Get("to"); raw != "" {
		if to, err = strconv.ParseInt(raw, 10, 64); err != nil {
			s.fail(w, errors.Wrap(errors.ErrInput, "malformed to"))
			return
		}
	}
	entries, err := s.ledger.ListAudit(from, to)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account := govledger.Identity(r.PathValue("account"))
	balance, err := s.ledger.Balance(account)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]int64{"balance": balance})
}
