package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/handler/http/response"
)

type TimeclockHandler interface {
	SubmitAction(w http.ResponseWriter, r *http.Request)
	RemediateForgotten(w http.ResponseWriter, r *http.Request)
	RemediateLongBreak(w http.ResponseWriter, r *http.Request)
	RemediateLongWork(w http.ResponseWriter, r *http.Request)
	RangeTotals(w http.ResponseWriter, r *http.Request)
	UserState(w http.ResponseWriter, r *http.Request)
}

type TimeclockHandlerImpl struct {
	timeclockService timeclock.TimeclockService
}

func NewTimeclockHandler(timeclockService timeclock.TimeclockService) TimeclockHandler {
	return &TimeclockHandlerImpl{timeclockService: timeclockService}
}

// SubmitAction implements TimeclockHandler.
func (h *TimeclockHandlerImpl) SubmitAction(w http.ResponseWriter, r *http.Request) {
	var req timeclock.SubmitActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.timeclockService.SubmitAction(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, resp.Message, resp)
}

// RemediateForgotten implements TimeclockHandler.
func (h *TimeclockHandlerImpl) RemediateForgotten(w http.ResponseWriter, r *http.Request) {
	var req timeclock.RemediateForgottenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.timeclockService.RemediateForgottenPunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, resp.Message, resp)
}

// RemediateLongBreak implements TimeclockHandler.
func (h *TimeclockHandlerImpl) RemediateLongBreak(w http.ResponseWriter, r *http.Request) {
	var req timeclock.RemediateLongBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.timeclockService.RemediateLongBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, resp.Message, resp)
}

// RemediateLongWork implements TimeclockHandler.
func (h *TimeclockHandlerImpl) RemediateLongWork(w http.ResponseWriter, r *http.Request) {
	var req timeclock.RemediateLongWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.timeclockService.RemediateLongWork(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, resp.Message, resp)
}

// RangeTotals implements TimeclockHandler.
func (h *TimeclockHandlerImpl) RangeTotals(w http.ResponseWriter, r *http.Request) {
	filter := timeclock.RangeTotalsFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		filter.UserID = &userID
	}

	resp, err := h.timeclockService.ComputeRangeTotals(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// UserState implements TimeclockHandler.
func (h *TimeclockHandlerImpl) UserState(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	recompute := r.URL.Query().Get("recompute") == "true"

	resp, err := h.timeclockService.GetUserState(r.Context(), userID, recompute)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
