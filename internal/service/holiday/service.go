package holiday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/holiday"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

// RequestServiceImpl handles holiday request submission and moderation. User
// identity comes from the same punch codes the terminal uses.
type RequestServiceImpl struct {
	requests holiday.RequestRepository
	users    timeclock.UserRepository
	now      func() time.Time
}

func NewRequestService(requests holiday.RequestRepository, users timeclock.UserRepository) *RequestServiceImpl {
	return &RequestServiceImpl{
		requests: requests,
		users:    users,
		now:      time.Now,
	}
}

func (s *RequestServiceImpl) Submit(ctx context.Context, req holiday.CreateRequestRequest) (holiday.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.RequestResponse{}, err
	}

	user, err := s.users.GetBySecretCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, timeclock.ErrUserNotFound) {
			return holiday.RequestResponse{}, timeclock.ErrInvalidCode
		}
		return holiday.RequestResponse{}, fmt.Errorf("get user by code: %w", err)
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	created, err := s.requests.Create(ctx, holiday.HolidayRequest{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		UserName:    user.Name,
		SecretCode:  user.SecretCode,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		Status:      holiday.StatusPending,
		SubmittedAt: s.now(),
	})
	if err != nil {
		return holiday.RequestResponse{}, fmt.Errorf("create holiday request: %w", err)
	}

	return toResponse(created), nil
}

func (s *RequestServiceImpl) ListMine(ctx context.Context, code string) ([]holiday.RequestResponse, error) {
	user, err := s.users.GetBySecretCode(ctx, code)
	if err != nil {
		if errors.Is(err, timeclock.ErrUserNotFound) {
			return nil, timeclock.ErrInvalidCode
		}
		return nil, fmt.Errorf("get user by code: %w", err)
	}

	filter := holiday.RequestFilter{UserID: &user.ID, Limit: 100}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	requests, _, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list holiday requests: %w", err)
	}

	responses := make([]holiday.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toResponse(r))
	}
	return responses, nil
}

func (s *RequestServiceImpl) List(ctx context.Context, filter holiday.RequestFilter) (holiday.ListRequestsResponse, error) {
	if err := filter.Validate(); err != nil {
		return holiday.ListRequestsResponse{}, err
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return holiday.ListRequestsResponse{}, fmt.Errorf("list holiday requests: %w", err)
	}

	responses := make([]holiday.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toResponse(r))
	}

	return holiday.ListRequestsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Requests:   responses,
	}, nil
}

func (s *RequestServiceImpl) Approve(ctx context.Context, id string) (holiday.RequestResponse, error) {
	return s.moderate(ctx, id, holiday.StatusApproved, nil)
}

func (s *RequestServiceImpl) Reject(ctx context.Context, req holiday.RejectRequestRequest) (holiday.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.RequestResponse{}, err
	}
	return s.moderate(ctx, req.ID, holiday.StatusRejected, &req.Reason)
}

func (s *RequestServiceImpl) moderate(ctx context.Context, id string, status holiday.RequestStatus, rejectReason *string) (holiday.RequestResponse, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, holiday.ErrRequestNotFound) {
			return holiday.RequestResponse{}, holiday.ErrRequestNotFound
		}
		return holiday.RequestResponse{}, fmt.Errorf("get holiday request: %w", err)
	}

	// The repository enforces the pending-only rule under a row lock, so a
	// second moderator racing this call gets ErrRequestAlreadyProcessed.
	if err := s.requests.UpdateStatus(ctx, id, status, rejectReason); err != nil {
		if errors.Is(err, holiday.ErrRequestNotFound) || errors.Is(err, holiday.ErrRequestAlreadyProcessed) {
			return holiday.RequestResponse{}, err
		}
		return holiday.RequestResponse{}, fmt.Errorf("update holiday request status: %w", err)
	}

	request.Status = status
	request.RejectReason = rejectReason
	return toResponse(request), nil
}

func toResponse(r holiday.HolidayRequest) holiday.RequestResponse {
	resp := holiday.RequestResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		StartDate:   r.StartDate.Format("2006-01-02"),
		EndDate:     r.EndDate.Format("2006-01-02"),
		Reason:      r.Reason,
		Status:      string(r.Status),
		SubmittedAt: r.SubmittedAt.Format(time.RFC3339),
	}
	if r.RejectReason != nil {
		resp.RejectReason = *r.RejectReason
	}
	return resp
}
