package directory

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	NowFunc = time.Now // mockable

	ErrNotFound = errors.New("entry not found")
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, g Group) (Group, error)
		QueryGroups(ctx context.Context) ([]Group, error)
		GetGroup(ctx context.Context, id string) (Group, error)
		UpdateGroup(ctx context.Context, g Group) (Group, error)
		DeleteGroup(ctx context.Context, id string) error

		CreateDeviceType(ctx context.Context, dt DeviceType) (DeviceType, error)
		QueryDeviceTypes(ctx context.Context) ([]DeviceType, error)
		GetDeviceType(ctx context.Context, id string) (DeviceType, error)
		UpdateDeviceType(ctx context.Context, dt DeviceType) (DeviceType, error)
		DeleteDeviceType(ctx context.Context, id string) error

		CreateContract(ctx context.Context, c Contract) (Contract, error)
		QueryContracts(ctx context.Context) ([]Contract, error)
		GetContract(ctx context.Context, id string) (Contract, error)
		UpdateContract(ctx context.Context, c Contract) (Contract, error)
		DeleteContract(ctx context.Context, id string) error
	}

	Service interface {
		CreateGroup(ctx context.Context, in GroupInput) (Group, error)
		QueryGroups(ctx context.Context) ([]Group, error)
		GetGroup(ctx context.Context, id string) (Group, error)
		UpdateGroup(ctx context.Context, id string, in GroupInput) (Group, error)
		DeleteGroup(ctx context.Context, id string) error

		CreateDeviceType(ctx context.Context, in DeviceTypeInput) (DeviceType, error)
		QueryDeviceTypes(ctx context.Context) ([]DeviceType, error)
		GetDeviceType(ctx context.Context, id string) (DeviceType, error)
		UpdateDeviceType(ctx context.Context, id string, in DeviceTypeInput) (DeviceType, error)
		DeleteDeviceType(ctx context.Context, id string) error

		CreateContract(ctx context.Context, in ContractInput) (Contract, error)
		QueryContracts(ctx context.Context) ([]Contract, error)
		GetContract(ctx context.Context, id string) (Contract, error)
		UpdateContract(ctx context.Context, id string, in ContractInput) (Contract, error)
		DeleteContract(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateGroup(ctx context.Context, in GroupInput) (Group, error) {
	now := NowFunc().UTC()
	return svc.repo.CreateGroup(ctx, Group{
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryGroups(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryGroups(ctx)
}

func (svc *service) GetGroup(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroup(ctx, id)
}

func (svc *service) UpdateGroup(ctx context.Context, id string, in GroupInput) (Group, error) {
	g, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	g.Name = in.Name
	g.Description = in.Description
	g.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *service) DeleteGroup(ctx context.Context, id string) error {
	return svc.repo.DeleteGroup(ctx, id)
}

func (svc *service) CreateDeviceType(ctx context.Context, in DeviceTypeInput) (DeviceType, error) {
	now := NowFunc().UTC()
	return svc.repo.CreateDeviceType(ctx, DeviceType{
		Name:      in.Name,
		Code:      in.Code,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryDeviceTypes(ctx context.Context) ([]DeviceType, error) {
	return svc.repo.QueryDeviceTypes(ctx)
}

func (svc *service) GetDeviceType(ctx context.Context, id string) (DeviceType, error) {
	return svc.repo.GetDeviceType(ctx, id)
}

func (svc *service) UpdateDeviceType(ctx context.Context, id string, in DeviceTypeInput) (DeviceType, error) {
	dt, err := svc.repo.GetDeviceType(ctx, id)
	if err != nil {
		return DeviceType{}, err
	}
	dt.Name = in.Name
	dt.Code = in.Code
	dt.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateDeviceType(ctx, dt)
}

func (svc *service) DeleteDeviceType(ctx context.Context, id string) error {
	return svc.repo.DeleteDeviceType(ctx, id)
}

func (svc *service) CreateContract(ctx context.Context, in ContractInput) (Contract, error) {
	now := NowFunc().UTC()
	return svc.repo.CreateContract(ctx, Contract{
		Name:      in.Name,
		Terms:     in.Terms,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryContracts(ctx context.Context) ([]Contract, error) {
	return svc.repo.QueryContracts(ctx)
}

func (svc *service) GetContract(ctx context.Context, id string) (Contract, error) {
	return svc.repo.GetContract(ctx, id)
}

func (svc *service) UpdateContract(ctx context.Context, id string, in ContractInput) (Contract, error) {
	c, err := svc.repo.GetContract(ctx, id)
	if err != nil {
		return Contract{}, err
	}
	c.Name = in.Name
	c.Terms = in.Terms
	c.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateContract(ctx, c)
}

func (svc *service) DeleteContract(ctx context.Context, id string) error {
	return svc.repo.DeleteContract(ctx, id)
}
