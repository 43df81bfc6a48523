// Package dummydb provides in-memory repositories used in tests and local
// development where no PostgreSQL instance is available.
package dummydb

import (
	"sync"

	"github.com/trezcool/kazi/core/attendance"
	"github.com/trezcool/kazi/core/directory"
	"github.com/trezcool/kazi/core/request"
	"github.com/trezcool/kazi/core/user"
)

type (
	DB struct {
		user       *userTable
		attendance *attendanceTable
		request    *requestTable
		directory  *directoryTables
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Record // keyed by "<userID>|<date>"
	}

	requestTable struct {
		sync.RWMutex
		table map[string]*request.Request
	}

	directoryTables struct {
		sync.RWMutex
		groups      map[string]*directory.Group
		deviceTypes map[string]*directory.DeviceType
		contracts   map[string]*directory.Contract
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Record)},
		request:    &requestTable{table: make(map[string]*request.Request)},
		directory: &directoryTables{
			groups:      make(map[string]*directory.Group),
			deviceTypes: make(map[string]*directory.DeviceType),
			contracts:   make(map[string]*directory.Contract),
		},
	}
	return db, nil
}
