package directory

import (
	"time"

	"github.com/trezcool/kazi/core"
)

type (
	// Group is an organizational unit users are assigned to.
	Group struct {
		ID          string    `db:"id" json:"id"`
		Name        string    `db:"name" json:"name"`
		Description string    `db:"description" json:"description,omitempty"`
		CreatedAt   time.Time `db:"created_at" json:"created_at"`
		UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	}

	// DeviceType describes a class of check-in terminals. Code is the short
	// identifier devices report with.
	DeviceType struct {
		ID        string    `db:"id" json:"id"`
		Name      string    `db:"name" json:"name"`
		Code      string    `db:"code" json:"code"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
		UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	}

	// Contract is a named employment contract template.
	Contract struct {
		ID        string    `db:"id" json:"id"`
		Name      string    `db:"name" json:"name"`
		Terms     string    `db:"terms" json:"terms,omitempty"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
		UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	}
)

type GroupInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (gi *GroupInput) Validate() error {
	gi.Name = core.CleanString(gi.Name)
	return core.Validate.Struct(gi)
}

type DeviceTypeInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Code string `json:"code" validate:"required,alphanum_,min=4,max=16"`
}

func (di *DeviceTypeInput) Validate() error {
	di.Name = core.CleanString(di.Name)
	di.Code = core.CleanString(di.Code)
	return core.Validate.Struct(di)
}

type ContractInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Terms string `json:"terms" validate:"max=2000"`
}

func (ci *ContractInput) Validate() error {
	ci.Name = core.CleanString(ci.Name)
	return core.Validate.Struct(ci)
}
