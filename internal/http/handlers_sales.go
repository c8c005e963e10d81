package http

import (
	"net/http"

	"retailtracker/internal/core"
	applog "retailtracker/internal/log"
)

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("sale", "create")
	var in core.SaleInput
	if err := DecodeJSON(r, &in); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	sale, err := s.entries.CreateSale(r.Context(), userID(r), in)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	s.logSale(r, applog.OpCreate, sale)
	NewJSONResponse().Body(sale).Write(w)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("sale", "fetch")
	f.invalid = "Invalid date range"
	f.failed += "s"
	dr, err := ParseDateRange(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	sales, err := s.entries.GetSales(r.Context(), userID(r), dr)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	NewJSONResponse().Body(sales).Write(w)
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("sale", "fetch")
	id, err := ParseID(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	sale, err := s.entries.GetSale(r.Context(), userID(r), id)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	NewJSONResponse().Body(sale).Write(w)
}

func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("sale", "update")
	id, err := ParseID(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	var patch core.SalePatch
	if err := DecodeJSON(r, &patch); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	sale, err := s.entries.UpdateSale(r.Context(), userID(r), id, patch)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	s.logSale(r, applog.OpUpdate, sale)
	NewJSONResponse().Body(sale).Write(w)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("sale", "delete")
	id, err := ParseID(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	if err := s.entries.DeleteSale(r.Context(), userID(r), id); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	s.logEntry(r, applog.OpDelete, core.KindSale, id, "", "", "")
	NewJSONResponse().Message("Sale deleted successfully").Write(w)
}

func (s *Server) logSale(r *http.Request, op string, sale core.Sale) {
	s.logEntry(r, op, core.KindSale, sale.ID, sale.Amount.String(), string(sale.Category), string(sale.Date))
}
