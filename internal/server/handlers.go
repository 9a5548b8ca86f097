// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace-notify/internal/builder"
	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"
)

type dispatchSingleRequest struct {
	Category    string                 `json:"category"`
	RecipientID string                 `json:"recipientId"`
	Payload     map[string]interface{} `json:"payload"`
	Priority    string                 `json:"priority,omitempty"`
}

func (s *Server) handleDispatchSingle(w http.ResponseWriter, r *http.Request) int {
	var req dispatchSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeBadRequest(w, "invalid JSON body")
	}

	category := models.Category(req.Category)
	payload, err := builder.ParsePayload(category, req.Payload)
	if err != nil {
		return s.writeError(w, err)
	}

	rec, err := s.engine.DispatchSingle(r.Context(), category, req.RecipientID, payload, models.Priority(req.Priority))
	if err != nil {
		return s.writeError(w, err)
	}
	return writeJSON(w, http.StatusCreated, rec)
}

type dispatchBulkRequest struct {
	Category     string                 `json:"category"`
	RecipientIDs []string               `json:"recipientIds"`
	Payload      map[string]interface{} `json:"payload"`
}

func (s *Server) handleDispatchBulk(w http.ResponseWriter, r *http.Request) int {
	var req dispatchBulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeBadRequest(w, "invalid JSON body")
	}

	category := models.Category(req.Category)
	payload, err := builder.ParsePayload(category, req.Payload)
	if err != nil {
		return s.writeError(w, err)
	}

	res := s.engine.DispatchBulk(r.Context(), category, req.RecipientIDs, payload)
	return writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) int {
	if err := s.mailbox.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		return s.writeError(w, err)
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) int {
	records, err := s.mailbox.ListForRecipient(r.Context(), r.PathValue("id"))
	if err != nil {
		return s.writeError(w, err)
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": records})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) int {
	count, err := s.mailbox.UnreadCount(r.Context(), r.PathValue("id"))
	if err != nil {
		return s.writeError(w, err)
	}
	return writeJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) int {
	marked, err := s.mailbox.MarkAllRead(r.Context(), r.PathValue("id"))
	if err != nil {
		return s.writeError(w, err)
	}
	return writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

type placeOrderRequest struct {
	Order      models.Order `json:"order"`
	CustomerID string       `json:"customerId,omitempty"`
	SellerID   string       `json:"sellerId,omitempty"`
	CourierID  string       `json:"courierId,omitempty"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) int {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeBadRequest(w, "invalid JSON body")
	}

	if s.registrar != nil && (req.CustomerID != "" || req.SellerID != "" || req.CourierID != "") {
		s.registrar.Register(req.Order.ID, req.CustomerID, req.SellerID, req.CourierID)
	}

	if err := s.sequencer.PlaceOrder(r.Context(), req.Order); err != nil {
		return s.writeError(w, err)
	}
	return writeJSON(w, http.StatusCreated, map[string]string{
		"orderId": req.Order.ID,
		"state":   string(models.StatePending),
	})
}

type advanceOrderRequest struct {
	ToState string `json:"toState"`
}

func (s *Server) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) int {
	var req advanceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeBadRequest(w, "invalid JSON body")
	}

	orderID := r.PathValue("id")
	if err := s.sequencer.Advance(r.Context(), orderID, models.OrderState(req.ToState)); err != nil {
		return s.writeError(w, err)
	}

	state, _ := s.sequencer.State(orderID)
	return writeJSON(w, http.StatusOK, map[string]string{
		"orderId": orderID,
		"state":   string(state),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
	return status
}

func writeBadRequest(w http.ResponseWriter, msg string) int {
	return writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps the error taxonomy onto HTTP statuses and renders the
// structured error as the response body.
func (s *Server) writeError(w http.ResponseWriter, err error) int {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeInvalidCategory, apperrors.ErrCodeMissingField, apperrors.ErrCodeInvalidTransition:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeUnknownRecipient:
		status = http.StatusNotFound
	case apperrors.ErrCodeStoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return writeJSON(w, status, map[string]interface{}{"error": stdErr})
	}

	s.logger.Error("unhandled error", map[string]interface{}{"error": err})
	return writeJSON(w, status, map[string]string{"error": "internal error"})
}
