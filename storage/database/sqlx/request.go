package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/request"
)

type requestRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	Reason    string    `db:"reason"`
	LeaveDays float64   `db:"leave_days"`
	Status    int       `db:"status"`

	ConfirmedActor   null.String `db:"confirmed_actor"`
	ConfirmedAt      null.Time   `db:"confirmed_at"`
	ConfirmedComment string      `db:"confirmed_comment"`
	ApprovedActor    null.String `db:"approved_actor"`
	ApprovedAt       null.Time   `db:"approved_at"`
	ApprovedComment  string      `db:"approved_comment"`
	RejectedActor    null.String `db:"rejected_actor"`
	RejectedAt       null.Time   `db:"rejected_at"`
	RejectedComment  string      `db:"rejected_comment"`
	CancelledActor   null.String `db:"cancelled_actor"`
	CancelledAt      null.Time   `db:"cancelled_at"`
	CancelledComment string      `db:"cancelled_comment"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r requestRow) toRequest() request.Request {
	return request.Request{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        request.Type(r.Type),
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Reason:      r.Reason,
		LeaveDays:   r.LeaveDays,
		Status:      request.Status(r.Status),
		ConfirmedBy: toProcessInfo(r.ConfirmedActor, r.ConfirmedAt, r.ConfirmedComment),
		ApprovedBy:  toProcessInfo(r.ApprovedActor, r.ApprovedAt, r.ApprovedComment),
		RejectedBy:  toProcessInfo(r.RejectedActor, r.RejectedAt, r.RejectedComment),
		CancelledBy: toProcessInfo(r.CancelledActor, r.CancelledAt, r.CancelledComment),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toProcessInfo(actor null.String, at null.Time, comment string) *request.ProcessInfo {
	if !actor.Valid {
		return nil
	}
	return &request.ProcessInfo{Actor: actor.String, Time: at.Time, Comment: comment}
}

func fromProcessInfo(pi *request.ProcessInfo) (actor null.String, at null.Time, comment string) {
	if pi == nil {
		return
	}
	return null.StringFrom(pi.Actor), null.TimeFrom(pi.Time), pi.Comment
}

func newRequestRow(req request.Request) requestRow {
	row := requestRow{
		ID:        req.ID,
		UserID:    req.UserID,
		Type:      string(req.Type),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		LeaveDays: req.LeaveDays,
		Status:    int(req.Status),
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	row.ConfirmedActor, row.ConfirmedAt, row.ConfirmedComment = fromProcessInfo(req.ConfirmedBy)
	row.ApprovedActor, row.ApprovedAt, row.ApprovedComment = fromProcessInfo(req.ApprovedBy)
	row.RejectedActor, row.RejectedAt, row.RejectedComment = fromProcessInfo(req.RejectedBy)
	row.CancelledActor, row.CancelledAt, row.CancelledComment = fromProcessInfo(req.CancelledBy)
	return row
}

type requestRepository struct {
	db *sqlx.DB
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db *sqlx.DB) request.Repository {
	return &requestRepository{db: db}
}

func (repo *requestRepository) CreateRequest(ctx context.Context, req request.Request) (request.Request, error) {
	req.ID = uuid.NewString()
	row := newRequestRow(req)

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO request (id, user_id, type, start_time, end_time, reason, leave_days, status,
		                     confirmed_actor, confirmed_at, confirmed_comment,
		                     approved_actor, approved_at, approved_comment,
		                     rejected_actor, rejected_at, rejected_comment,
		                     cancelled_actor, cancelled_at, cancelled_comment,
		                     created_at, updated_at)
		VALUES (:id, :user_id, :type, :start_time, :end_time, :reason, :leave_days, :status,
		        :confirmed_actor, :confirmed_at, :confirmed_comment,
		        :approved_actor, :approved_at, :approved_comment,
		        :rejected_actor, :rejected_at, :rejected_comment,
		        :cancelled_actor, :cancelled_at, :cancelled_comment,
		        :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return request.Request{}, errors.Wrap(err, "inserting request")
	}
	return req, nil
}

func (repo *requestRepository) GetRequest(ctx context.Context, id string) (request.Request, error) {
	var row requestRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM request WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return request.Request{}, request.ErrNotFound
		}
		return request.Request{}, errors.Wrap(err, "getting request")
	}
	return row.toRequest(), nil
}

func (repo *requestRepository) QueryRequests(ctx context.Context, filter *request.QueryFilter, ordering []core.DBOrdering) ([]request.Request, error) {
	q := `SELECT * FROM request`
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.UserID != "" {
			args = append(args, filter.UserID)
			conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
		}
		if filter.Status != 0 {
			args = append(args, int(filter.Status))
			conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
		}
		if filter.Type != "" {
			args = append(args, string(filter.Type))
			conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
		}
		if !filter.DateFrom.IsZero() {
			args = append(args, filter.DateFrom)
			conds = append(conds, fmt.Sprintf("end_time >= $%d", len(args)))
		}
		if !filter.DateTo.IsZero() {
			args = append(args, filter.DateTo)
			conds = append(conds, fmt.Sprintf("start_time <= $%d", len(args)))
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(ordering, "created_at DESC")

	var rows []requestRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying requests")
	}

	reqs := make([]request.Request, len(rows))
	for i, row := range rows {
		reqs[i] = row.toRequest()
	}
	return reqs, nil
}

func (repo *requestRepository) HasOpenOverlap(ctx context.Context, userID string, typ request.Type, start, end time.Time) (bool, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM request
		WHERE user_id = $1 AND type = $2 AND status = ANY($3) AND start_time <= $4 AND end_time >= $5`,
		userID, string(typ), pq.Array([]int{int(request.StatusPending), int(request.StatusConfirmed)}), end, start,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking open overlap")
	}
	return count > 0, nil
}

func (repo *requestRepository) TransitionRequest(ctx context.Context, req request.Request, from ...request.Status) (request.Request, error) {
	codes := make([]int, len(from))
	for i, s := range from {
		codes[i] = int(s)
	}

	row := newRequestRow(req)
	res, err := repo.db.ExecContext(ctx, `
		UPDATE request
		SET status = $1,
		    confirmed_actor = $2, confirmed_at = $3, confirmed_comment = $4,
		    approved_actor = $5, approved_at = $6, approved_comment = $7,
		    rejected_actor = $8, rejected_at = $9, rejected_comment = $10,
		    cancelled_actor = $11, cancelled_at = $12, cancelled_comment = $13,
		    updated_at = $14
		WHERE id = $15 AND status = ANY($16)`,
		row.Status,
		row.ConfirmedActor, row.ConfirmedAt, row.ConfirmedComment,
		row.ApprovedActor, row.ApprovedAt, row.ApprovedComment,
		row.RejectedActor, row.RejectedAt, row.RejectedComment,
		row.CancelledActor, row.CancelledAt, row.CancelledComment,
		row.UpdatedAt,
		row.ID, pq.Array(codes),
	)
	if err != nil {
		return request.Request{}, errors.Wrap(err, "transitioning request")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = repo.GetRequest(ctx, req.ID); err != nil {
			return request.Request{}, err
		}
		return request.Request{}, request.ErrStatusChanged
	}
	return req, nil
}
