package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
	"github.com/rustyeddy/stockledger/risk"
)

const maxBody = 1 << 20

// ==============================
// Instruments
// ==============================

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	sums, err := s.book.Summaries(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sums == nil {
		sums = []ledger.Summary{}
	}
	respondJSON(w, http.StatusOK, sums)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if !s.decode(w, r, &req) {
		return
	}

	commission := s.opts.DefaultCommission
	if req.CommissionRate != nil {
		commission = *req.CommissionRate
	}

	id, err := s.book.Open(r.Context(), ledger.OpenRequest{
		Name:           req.Name,
		Segment:        req.Segment,
		CurrentPrice:   req.CurrentPrice,
		TradePrice:     req.TradePrice,
		TradeSize:      req.TradeSize,
		CommissionRate: commission,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sum, err := s.book.Summary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/instruments/%d", id))
	respondJSON(w, http.StatusCreated, sum)
}

func (s *Server) handleGetInstrument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	in, err := s.book.GetInstrument(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := s.book.ListEntries(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	respondJSON(w, http.StatusOK, InstrumentDetail{Instrument: in, Entries: entries})
}

func (s *Server) handleDeleteInstrument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.book.DeleteInstrument(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.book.ReorderInstruments(r.Context(), req.IDs); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==============================
// Position actions
// ==============================

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, s.book.Add)
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, s.book.Reduce)
}

type tradeFunc func(ctx context.Context, instrumentID int64, req ledger.TradeRequest) (ledger.Entry, error)

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, trade tradeFunc) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req ledger.TradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := trade(r.Context(), id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req CloseRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.book.Close(r.Context(), id, req.CurrentPrice)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	res, err := s.book.Undo(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ==============================
// Entries
// ==============================

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	entries, err := s.book.ListEntries(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req NoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	var at time.Time
	if req.ActionTime != nil {
		at = *req.ActionTime
	}
	if err := s.book.Annotate(r.Context(), id, at, req.Note); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==============================
// Fees
// ==============================

func (s *Server) handleGetFees(w http.ResponseWriter, r *http.Request) {
	s.respondFees(w, r)
}

func (s *Server) handleUpdateFees(w http.ResponseWriter, r *http.Request) {
	var rates fee.Rates
	if !s.decode(w, r, &rates) {
		return
	}
	if err := s.book.UpdateFeeSchedule(r.Context(), rates); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFees(w, r)
}

func (s *Server) handleUpdateSegmentFees(w http.ResponseWriter, r *http.Request) {
	seg, err := market.ParseSegment(mux.Vars(r)["segment"])
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", ledger.ErrInvalidInput, err))
		return
	}
	var rates fee.Rates
	if !s.decode(w, r, &rates) {
		return
	}
	if err := s.book.UpdateSegmentRates(r.Context(), seg, rates); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFees(w, r)
}

func (s *Server) respondFees(w http.ResponseWriter, r *http.Request) {
	sched, err := s.book.FeeSchedule(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	mins := make(map[string]float64, len(s.opts.Policy.MinCommission))
	for k, v := range s.opts.Policy.MinCommission {
		mins[k.String()] = v
	}
	respondJSON(w, http.StatusOK, FeesResponse{Schedule: sched, MinCommission: mins})
}

// ==============================
// Tools
// ==============================

func (s *Server) handleLimitLadder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		l   risk.Ladder
		err error
	)
	parse := func(name string, dst *float64) {
		if err != nil {
			return
		}
		if *dst, err = strconv.ParseFloat(q.Get(name), 64); err != nil {
			err = fmt.Errorf("%w: %s: %w", ledger.ErrInvalidInput, name, err)
		}
	}
	parse("start", &l.StartPrice)
	parse("quantity", &l.Quantity)
	parse("change", &l.DailyChangePct)
	if err == nil {
		if l.Days, err = strconv.Atoi(q.Get("days")); err != nil {
			err = fmt.Errorf("%w: days: %w", ledger.ErrInvalidInput, err)
		}
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rungs, err := l.Rungs()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, LadderResponse{Ladder: l, Rungs: rungs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_input", "bad id: "+err.Error())
		return 0, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_input", "bad request body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps the ledger error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, risk.ErrInvalidLadder):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "storage_failure"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err), zap.String("request_id", requestIDFrom(r.Context())))
		msg = "internal storage failure"
	}
	respondError(w, r, status, kind, msg)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:     kind,
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	})
}
