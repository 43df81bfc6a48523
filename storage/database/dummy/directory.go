package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core/directory"
)

type directoryRepository struct {
	db *directoryTables
}

var _ directory.Repository = (*directoryRepository)(nil) // interface compliance check

func NewDirectoryRepository(db *DB) directory.Repository {
	return &directoryRepository{db: db.directory}
}

func (repo *directoryRepository) CreateGroup(_ context.Context, g directory.Group) (directory.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = uuid.NewString()
	repo.db.groups[g.ID] = &g
	return g, nil
}

func (repo *directoryRepository) QueryGroups(_ context.Context) ([]directory.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	groups := make([]directory.Group, 0, len(repo.db.groups))
	for _, g := range repo.db.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *directoryRepository) GetGroup(_ context.Context, id string) (directory.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.groups[id]; ok {
		return *g, nil
	}
	return directory.Group{}, directory.ErrNotFound
}

func (repo *directoryRepository) UpdateGroup(_ context.Context, g directory.Group) (directory.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.groups[g.ID]; !ok {
		return directory.Group{}, directory.ErrNotFound
	}
	repo.db.groups[g.ID] = &g
	return g, nil
}

func (repo *directoryRepository) DeleteGroup(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.groups, id)
	return nil
}

func (repo *directoryRepository) CreateDeviceType(_ context.Context, dt directory.DeviceType) (directory.DeviceType, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	dt.ID = uuid.NewString()
	repo.db.deviceTypes[dt.ID] = &dt
	return dt, nil
}

func (repo *directoryRepository) QueryDeviceTypes(_ context.Context) ([]directory.DeviceType, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	dts := make([]directory.DeviceType, 0, len(repo.db.deviceTypes))
	for _, dt := range repo.db.deviceTypes {
		dts = append(dts, *dt)
	}
	sort.Slice(dts, func(i, j int) bool { return dts[i].Name < dts[j].Name })
	return dts, nil
}

func (repo *directoryRepository) GetDeviceType(_ context.Context, id string) (directory.DeviceType, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if dt, ok := repo.db.deviceTypes[id]; ok {
		return *dt, nil
	}
	return directory.DeviceType{}, directory.ErrNotFound
}

func (repo *directoryRepository) UpdateDeviceType(_ context.Context, dt directory.DeviceType) (directory.DeviceType, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.deviceTypes[dt.ID]; !ok {
		return directory.DeviceType{}, directory.ErrNotFound
	}
	repo.db.deviceTypes[dt.ID] = &dt
	return dt, nil
}

func (repo *directoryRepository) DeleteDeviceType(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.deviceTypes, id)
	return nil
}

func (repo *directoryRepository) CreateContract(_ context.Context, c directory.Contract) (directory.Contract, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.NewString()
	repo.db.contracts[c.ID] = &c
	return c, nil
}

func (repo *directoryRepository) QueryContracts(_ context.Context) ([]directory.Contract, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cs := make([]directory.Contract, 0, len(repo.db.contracts))
	for _, c := range repo.db.contracts {
		cs = append(cs, *c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	return cs, nil
}

func (repo *directoryRepository) GetContract(_ context.Context, id string) (directory.Contract, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.contracts[id]; ok {
		return *c, nil
	}
	return directory.Contract{}, directory.ErrNotFound
}

func (repo *directoryRepository) UpdateContract(_ context.Context, c directory.Contract) (directory.Contract, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.contracts[c.ID]; !ok {
		return directory.Contract{}, directory.ErrNotFound
	}
	repo.db.contracts[c.ID] = &c
	return c, nil
}

func (repo *directoryRepository) DeleteContract(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.contracts, id)
	return nil
}
