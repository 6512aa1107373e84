package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
)

// Items are kept per account, in insertion order.

func (s *Server) listItemsHandler(w http.ResponseWriter, r *http.Request) {
	owner := userFromContext(r.Context()).Subject
	s.mu.Lock()
	items := append([]model.Item{}, s.items[owner]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func decodeItem(w http.ResponseWriter, r *http.Request) (model.ItemInput, bool) {
	var in model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	if errs := form.ValidateItem(in); !errs.OK() {
		writeError(w, http.StatusBadRequest, firstError(errs))
		return in, false
	}
	return form.NormalizeItem(in), true
}

func (s *Server) createItemHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeItem(w, r)
	if !ok {
		return
	}
	owner := userFromContext(r.Context()).Subject
	it := model.Item{ID: model.ItemID(uuid.NewString()), Title: in.Title, Description: in.Description}

	s.mu.Lock()
	s.items[owner] = append(s.items[owner], it)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) updateItemHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeItem(w, r)
	if !ok {
		return
	}
	owner := userFromContext(r.Context()).Subject
	id := model.ItemID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items[owner] {
		if it.ID == id {
			it.Title, it.Description = in.Title, in.Description
			s.items[owner][i] = it
			writeJSON(w, http.StatusOK, it)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found")
}

func (s *Server) deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := userFromContext(r.Context()).Subject
	id := model.ItemID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[owner]
	for i, it := range items {
		if it.ID == id {
			s.items[owner] = append(items[:i], items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found")
}
