package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/request"
)

type requestRepository struct {
	db *requestTable
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db *DB) request.Repository {
	return &requestRepository{db: db.request}
}

func (repo *requestRepository) CreateRequest(_ context.Context, req request.Request) (request.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req.ID = uuid.NewString()
	repo.db.table[req.ID] = &req
	return req, nil
}

func (repo *requestRepository) GetRequest(_ context.Context, id string) (request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.table[id]; ok {
		return *req, nil
	}
	return request.Request{}, request.ErrNotFound
}

func (repo *requestRepository) QueryRequests(_ context.Context, filter *request.QueryFilter, ordering []core.DBOrdering) ([]request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reqs []request.Request
	for _, req := range repo.db.table {
		if filter != nil {
			if filter.UserID != "" && req.UserID != filter.UserID {
				continue
			}
			if filter.Status != 0 && req.Status != filter.Status {
				continue
			}
			if filter.Type != "" && req.Type != filter.Type {
				continue
			}
			if !filter.DateFrom.IsZero() && req.EndTime.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && req.StartTime.After(filter.DateTo) {
				continue
			}
		}
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (repo *requestRepository) HasOpenOverlap(_ context.Context, userID string, typ request.Type, start, end time.Time) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, req := range repo.db.table {
		if req.UserID != userID || req.Type != typ || req.Status.Terminal() {
			continue
		}
		if !req.StartTime.After(end) && !req.EndTime.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *requestRepository) TransitionRequest(_ context.Context, req request.Request, from ...request.Status) (request.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[req.ID]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}

	var allowed bool
	for _, s := range from {
		if orig.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return request.Request{}, request.ErrStatusChanged
	}

	orig.Status = req.Status
	orig.ConfirmedBy = req.ConfirmedBy
	orig.ApprovedBy = req.ApprovedBy
	orig.RejectedBy = req.RejectedBy
	orig.CancelledBy = req.CancelledBy
	orig.UpdatedAt = req.UpdatedAt
	return *orig, nil
}
