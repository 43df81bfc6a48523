package main

import (
	"context"
	"time"

	"github.com/trezcool/kazi/core"
)

var nowFunc = time.Now // mockable

// accrueLeave credits each active user's leave-day balance for the current
// month. Safe to re-run; already-credited users are skipped.
func (cli *commandLine) accrueLeave() error {
	month := nowFunc().In(core.Conf.Location()).Format("2006-01")
	n, err := cli.usrRepo.AccrueLeaveDays(context.Background(), core.Conf.MonthlyLeaveDays, month)
	if err != nil {
		return err
	}
	logger.Printf("credited %d user(s) for %s\n", n, month)
	return nil
}
