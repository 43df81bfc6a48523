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
	"github.com/trezcool/kazi/core/attendance"
)

type attendanceRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Date           time.Time `db:"date"`
	CheckInTime    null.Time `db:"check_in_time"`
	CheckInNote    string    `db:"check_in_note"`
	CheckOutTime   null.Time `db:"check_out_time"`
	CheckOutNote   string    `db:"check_out_note"`
	CheckInStatus  string    `db:"check_in_status"`
	CheckOutStatus string    `db:"check_out_status"`
	Status         string    `db:"status"`
	TotalHours     float64   `db:"total_hours"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r attendanceRow) toRecord() attendance.Record {
	rec := attendance.Record{
		ID:             r.ID,
		UserID:         r.UserID,
		Date:           r.Date,
		CheckInStatus:  attendance.CheckInStatus(r.CheckInStatus),
		CheckOutStatus: attendance.CheckOutStatus(r.CheckOutStatus),
		Status:         attendance.Status(r.Status),
		TotalHours:     r.TotalHours,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.CheckInTime.Valid {
		rec.CheckIn = &attendance.CheckEvent{Time: r.CheckInTime.Time, Note: r.CheckInNote}
	}
	if r.CheckOutTime.Valid {
		rec.CheckOut = &attendance.CheckEvent{Time: r.CheckOutTime.Time, Note: r.CheckOutNote}
	}
	return rec
}

func newAttendanceRow(rec attendance.Record) attendanceRow {
	row := attendanceRow{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Date:           rec.Date,
		CheckInStatus:  string(rec.CheckInStatus),
		CheckOutStatus: string(rec.CheckOutStatus),
		Status:         string(rec.Status),
		TotalHours:     rec.TotalHours,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	if rec.CheckIn != nil {
		row.CheckInTime = null.TimeFrom(rec.CheckIn.Time)
		row.CheckInNote = rec.CheckIn.Note
	}
	if rec.CheckOut != nil {
		row.CheckOutTime = null.TimeFrom(rec.CheckOut.Time)
		row.CheckOutNote = rec.CheckOut.Note
	}
	return row
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.NewString()
	row := newAttendanceRow(rec)

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance_record (id, user_id, date, check_in_time, check_in_note, check_out_time, check_out_note,
		                               check_in_status, check_out_status, status, total_hours, created_at, updated_at)
		VALUES (:id, :user_id, :date, :check_in_time, :check_in_note, :check_out_time, :check_out_note,
		        :check_in_status, :check_out_status, :status, :total_hours, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return attendance.Record{}, attendance.ErrRecordExists
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, userID string, date time.Time) (attendance.Record, error) {
	var row attendanceRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM attendance_record WHERE user_id = $1 AND date = $2`,
		userID, date,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting attendance record")
	}
	return row.toRecord(), nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Record, error) {
	q := `SELECT * FROM attendance_record`
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.UserID != "" {
			args = append(args, filter.UserID)
			conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
		}
		if !filter.DateFrom.IsZero() {
			args = append(args, filter.DateFrom)
			conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
		}
		if !filter.DateTo.IsZero() {
			args = append(args, filter.DateTo)
			conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(ordering, "date DESC")

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	recs := make([]attendance.Record, len(rows))
	for i, row := range rows {
		recs[i] = row.toRecord()
	}
	return recs, nil
}

func (repo *attendanceRepository) SetCheckOut(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	row := newAttendanceRow(rec)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE attendance_record
		SET check_out_time = :check_out_time, check_out_note = :check_out_note,
		    check_out_status = :check_out_status, status = :status,
		    total_hours = :total_hours, updated_at = :updated_at
		WHERE id = :id AND check_out_time IS NULL`,
		row,
	)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "setting check-out")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Record{}, attendance.ErrAlreadyCheckedOut
	}
	return rec, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := newAttendanceRow(rec)

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance_record (id, user_id, date, check_in_time, check_in_note, check_out_time, check_out_note,
		                               check_in_status, check_out_status, status, total_hours, created_at, updated_at)
		VALUES (:id, :user_id, :date, :check_in_time, :check_in_note, :check_out_time, :check_out_note,
		        :check_in_status, :check_out_status, :status, :total_hours, :created_at, :updated_at)
		ON CONFLICT (user_id, date) DO UPDATE
		SET check_in_time = EXCLUDED.check_in_time, check_in_note = EXCLUDED.check_in_note,
		    check_out_time = EXCLUDED.check_out_time, check_out_note = EXCLUDED.check_out_note,
		    check_in_status = EXCLUDED.check_in_status, check_out_status = EXCLUDED.check_out_status,
		    status = EXCLUDED.status, total_hours = EXCLUDED.total_hours, updated_at = EXCLUDED.updated_at`,
		row,
	)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return repo.GetRecord(ctx, rec.UserID, rec.Date)
}
