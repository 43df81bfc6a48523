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
	"github.com/trezcool/kazi/core/user"
)

const uniqueViolation = "23505"

type userRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Username         string         `db:"username"`
	Email            string         `db:"email"`
	IsActive         bool           `db:"is_active"`
	Roles            pq.StringArray `db:"roles"`
	PasswordHash     []byte         `db:"password_hash"`
	LeaveDays        float64        `db:"leave_days"`
	LastAccruedMonth string         `db:"last_accrued_month"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	LastLogin        null.Time      `db:"last_login"`
}

func (r userRow) toUser() user.User {
	isActive := r.IsActive
	return user.User{
		ID:               r.ID,
		Name:             r.Name,
		Username:         r.Username,
		Email:            r.Email,
		IsActive:         &isActive,
		Roles:            r.Roles,
		PasswordHash:     r.PasswordHash,
		LeaveDays:        r.LeaveDays,
		LastAccruedMonth: r.LastAccruedMonth,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		LastLogin:        r.LastLogin.Time,
	}
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:               usr.ID,
		Name:             usr.Name,
		Username:         usr.Username,
		Email:            usr.Email,
		IsActive:         usr.Active(),
		Roles:            pq.StringArray(usr.Roles),
		PasswordHash:     usr.PasswordHash,
		LeaveDays:        usr.LeaveDays,
		LastAccruedMonth: usr.LastAccruedMonth,
		CreatedAt:        usr.CreatedAt,
		UpdatedAt:        usr.UpdatedAt,
		LastLogin:        null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT COUNT(*) FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids[i] = usr.ID
		}
		q += " AND NOT (id = ANY($3))"
		args = append(args, pq.StringArray(ids))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	if count > 0 {
		return user.ErrUserExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	row := newUserRow(usr)

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, leave_days, last_accrued_month, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :leave_days, :last_accrued_month, :created_at, :updated_at, :last_login)`,
		row,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := `SELECT * FROM "user"`
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			p := fmt.Sprintf("$%d", len(args))
			conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
		}
		if filter.IsActive != nil {
			args = append(args, *filter.IsActive)
			conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
		}
		if len(filter.Roles) > 0 {
			args = append(args, pq.StringArray(filter.Roles))
			conds = append(conds, fmt.Sprintf("roles && $%d", len(args)))
		}
		if !filter.CreatedFrom.IsZero() {
			args = append(args, filter.CreatedFrom)
			conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
		}
		if !filter.CreatedTo.IsZero() {
			args = append(args, filter.CreatedTo)
			conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(ordering, "created_at DESC")

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toUser()
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		q    string
		args []interface{}
	)
	switch {
	case filter.ID != "":
		q, args = `SELECT * FROM "user" WHERE id = $1`, []interface{}{filter.ID}
	case filter.Username != "":
		q, args = `SELECT * FROM "user" WHERE username = $1`, []interface{}{filter.Username}
	case filter.Email != "":
		q, args = `SELECT * FROM "user" WHERE email = $1`, []interface{}{filter.Email}
	case len(filter.UsernameOrEmail) > 0:
		uname := filter.UsernameOrEmail[0]
		email := filter.UsernameOrEmail[len(filter.UsernameOrEmail)-1]
		q, args = `SELECT * FROM "user" WHERE username = $1 OR email = $2`, []interface{}{uname, email}
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	orig, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	if err != nil {
		return user.User{}, err
	}
	merged := mergeUser(orig, usr)

	row := newUserRow(merged)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE "user"
		SET name = :name, username = :username, email = :email, is_active = :is_active,
		    roles = :roles, password_hash = :password_hash, leave_days = :leave_days,
		    last_accrued_month = :last_accrued_month, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		row,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return merged, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	existing, err := repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{usr.Username, usr.Email}})
	if err == user.ErrNotFound {
		return repo.CreateUser(ctx, usr)
	}
	if err != nil {
		return user.User{}, err
	}
	usr.ID = existing.ID
	return repo.UpdateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *userRepository) DebitLeaveDays(ctx context.Context, userID string, days float64) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE "user" SET leave_days = leave_days - $1 WHERE id = $2 AND leave_days >= $1`,
		days, userID,
	)
	if err != nil {
		return errors.Wrap(err, "debiting leave days")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrInsufficientBalance
	}
	return nil
}

func (repo *userRepository) CreditLeaveDays(ctx context.Context, userID string, days float64) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE "user" SET leave_days = leave_days + $1 WHERE id = $2`,
		days, userID,
	)
	return errors.Wrap(err, "crediting leave days")
}

func (repo *userRepository) AccrueLeaveDays(ctx context.Context, days float64, month string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE "user"
		SET leave_days = leave_days + $1, last_accrued_month = $2
		WHERE is_active AND last_accrued_month <> $2`,
		days, month,
	)
	if err != nil {
		return 0, errors.Wrap(err, "accruing leave days")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// mergeUser overlays the non-zero fields of usr onto orig.
func mergeUser(orig, usr user.User) user.User {
	merged := orig
	if usr.Name != "" {
		merged.Name = usr.Name
	}
	if usr.Username != "" {
		merged.Username = usr.Username
	}
	if usr.Email != "" {
		merged.Email = usr.Email
	}
	if usr.IsActive != nil {
		merged.IsActive = usr.IsActive
	}
	if usr.Roles != nil {
		merged.Roles = usr.Roles
	}
	if len(usr.PasswordHash) > 0 {
		merged.PasswordHash = usr.PasswordHash
	}
	if usr.LastAccruedMonth != "" {
		merged.LastAccruedMonth = usr.LastAccruedMonth
	}
	if !usr.LastLogin.IsZero() {
		merged.LastLogin = usr.LastLogin
	}
	if !usr.UpdatedAt.IsZero() {
		merged.UpdatedAt = usr.UpdatedAt
	}
	return merged
}
