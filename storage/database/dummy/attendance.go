package dummydb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func recordKey(userID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", userID, date.Format("2006-01-02"))
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := recordKey(rec.UserID, rec.Date)
	if _, ok := repo.db.table[key]; ok {
		return attendance.Record{}, attendance.ErrRecordExists
	}

	rec.ID = uuid.NewString()
	repo.db.table[key] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, userID string, date time.Time) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[recordKey(userID, date)]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.db.table {
		if filter != nil {
			if filter.UserID != "" && rec.UserID != filter.UserID {
				continue
			}
			if !filter.DateFrom.IsZero() && rec.Date.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && rec.Date.After(filter.DateTo) {
				continue
			}
		}
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.After(recs[j].Date) })
	return recs, nil
}

func (repo *attendanceRepository) SetCheckOut(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[recordKey(rec.UserID, rec.Date)]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if orig.CheckOut != nil {
		return attendance.Record{}, attendance.ErrAlreadyCheckedOut
	}

	orig.CheckOut = rec.CheckOut
	orig.CheckOutStatus = rec.CheckOutStatus
	orig.Status = rec.Status
	orig.TotalHours = rec.TotalHours
	orig.UpdatedAt = rec.UpdatedAt
	return *orig, nil
}

func (repo *attendanceRepository) UpsertRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := recordKey(rec.UserID, rec.Date)
	if orig, ok := repo.db.table[key]; ok {
		rec.ID = orig.ID
		rec.CreatedAt = orig.CreatedAt
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	repo.db.table[key] = &rec
	return rec, nil
}
