package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/directory"
)

type directoryRepository struct {
	db *sqlx.DB
}

var _ directory.Repository = (*directoryRepository)(nil) // interface compliance check

func NewDirectoryRepository(db *sqlx.DB) directory.Repository {
	return &directoryRepository{db: db}
}

func (repo *directoryRepository) CreateGroup(ctx context.Context, g directory.Group) (directory.Group, error) {
	g.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO "group" (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.Description, g.CreatedAt, g.UpdatedAt,
	)
	return g, errors.Wrap(err, "inserting group")
}

func (repo *directoryRepository) QueryGroups(ctx context.Context) ([]directory.Group, error) {
	var groups []directory.Group
	err := repo.db.SelectContext(ctx, &groups, `SELECT * FROM "group" ORDER BY name`)
	return groups, errors.Wrap(err, "querying groups")
}

func (repo *directoryRepository) GetGroup(ctx context.Context, id string) (directory.Group, error) {
	var g directory.Group
	if err := repo.db.GetContext(ctx, &g, `SELECT * FROM "group" WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return directory.Group{}, directory.ErrNotFound
		}
		return directory.Group{}, errors.Wrap(err, "getting group")
	}
	return g, nil
}

func (repo *directoryRepository) UpdateGroup(ctx context.Context, g directory.Group) (directory.Group, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE "group" SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		g.Name, g.Description, g.UpdatedAt, g.ID,
	)
	if err != nil {
		return directory.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return directory.Group{}, directory.ErrNotFound
	}
	return g, nil
}

func (repo *directoryRepository) DeleteGroup(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "group" WHERE id = $1`, id)
	return errors.Wrap(err, "deleting group")
}

func (repo *directoryRepository) CreateDeviceType(ctx context.Context, dt directory.DeviceType) (directory.DeviceType, error) {
	dt.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO device_type (id, name, code, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		dt.ID, dt.Name, dt.Code, dt.CreatedAt, dt.UpdatedAt,
	)
	return dt, errors.Wrap(err, "inserting device type")
}

func (repo *directoryRepository) QueryDeviceTypes(ctx context.Context) ([]directory.DeviceType, error) {
	var dts []directory.DeviceType
	err := repo.db.SelectContext(ctx, &dts, `SELECT * FROM device_type ORDER BY name`)
	return dts, errors.Wrap(err, "querying device types")
}

func (repo *directoryRepository) GetDeviceType(ctx context.Context, id string) (directory.DeviceType, error) {
	var dt directory.DeviceType
	if err := repo.db.GetContext(ctx, &dt, `SELECT * FROM device_type WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return directory.DeviceType{}, directory.ErrNotFound
		}
		return directory.DeviceType{}, errors.Wrap(err, "getting device type")
	}
	return dt, nil
}

func (repo *directoryRepository) UpdateDeviceType(ctx context.Context, dt directory.DeviceType) (directory.DeviceType, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE device_type SET name = $1, code = $2, updated_at = $3 WHERE id = $4`,
		dt.Name, dt.Code, dt.UpdatedAt, dt.ID,
	)
	if err != nil {
		return directory.DeviceType{}, errors.Wrap(err, "updating device type")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return directory.DeviceType{}, directory.ErrNotFound
	}
	return dt, nil
}

func (repo *directoryRepository) DeleteDeviceType(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM device_type WHERE id = $1`, id)
	return errors.Wrap(err, "deleting device type")
}

func (repo *directoryRepository) CreateContract(ctx context.Context, c directory.Contract) (directory.Contract, error) {
	c.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO contract (id, name, terms, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Terms, c.CreatedAt, c.UpdatedAt,
	)
	return c, errors.Wrap(err, "inserting contract")
}

func (repo *directoryRepository) QueryContracts(ctx context.Context) ([]directory.Contract, error) {
	var cs []directory.Contract
	err := repo.db.SelectContext(ctx, &cs, `SELECT * FROM contract ORDER BY name`)
	return cs, errors.Wrap(err, "querying contracts")
}

func (repo *directoryRepository) GetContract(ctx context.Context, id string) (directory.Contract, error) {
	var c directory.Contract
	if err := repo.db.GetContext(ctx, &c, `SELECT * FROM contract WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return directory.Contract{}, directory.ErrNotFound
		}
		return directory.Contract{}, errors.Wrap(err, "getting contract")
	}
	return c, nil
}

func (repo *directoryRepository) UpdateContract(ctx context.Context, c directory.Contract) (directory.Contract, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE contract SET name = $1, terms = $2, updated_at = $3 WHERE id = $4`,
		c.Name, c.Terms, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return directory.Contract{}, errors.Wrap(err, "updating contract")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return directory.Contract{}, directory.ErrNotFound
	}
	return c, nil
}

func (repo *directoryRepository) DeleteContract(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM contract WHERE id = $1`, id)
	return errors.Wrap(err, "deleting contract")
}
