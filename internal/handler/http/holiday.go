package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/holiday"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/handler/http/response"
)

type HolidayHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type HolidayHandlerImpl struct {
	holidayService holiday.RequestService
}

func NewHolidayHandler(holidayService holiday.RequestService) HolidayHandler {
	return &HolidayHandlerImpl{holidayService: holidayService}
}

// Submit implements HolidayHandler.
func (h *HolidayHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req holiday.CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.holidayService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday request submitted", resp)
}

// ListMine implements HolidayHandler.
func (h *HolidayHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	resp, err := h.holidayService.ListMine(r.Context(), code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// List implements HolidayHandler.
func (h *HolidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := holiday.RequestFilter{}
	query := r.URL.Query()

	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if userID := query.Get("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if page := query.Get("page"); page != "" {
		p, err := strconv.Atoi(page)
		if err != nil {
			response.BadRequest(w, "Invalid page parameter", nil)
			return
		}
		filter.Page = p
	}
	if limit := query.Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			response.BadRequest(w, "Invalid limit parameter", nil)
			return
		}
		filter.Limit = l
	}

	resp, err := h.holidayService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if resp.Limit > 0 {
		totalPages = int((resp.TotalCount + int64(resp.Limit) - 1) / int64(resp.Limit))
	}
	response.SuccessWithMeta(w, resp.Requests, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: totalPages,
	})
}

// Approve implements HolidayHandler.
func (h *HolidayHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	resp, err := h.holidayService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday request approved", resp)
}

// Reject implements HolidayHandler.
func (h *HolidayHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req holiday.RejectRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "requestID")

	resp, err := h.holidayService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday request rejected", resp)
}
