// Package accounting posts replayed commands into the accounting ledger tables
// and answers existence lookups against them.
package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
	"github.com/radhian/ledger-reconciler/infra/db/model"
	"github.com/radhian/ledger-reconciler/usecase/command"
	"github.com/shopspring/decimal"
)

type CommandBus struct {
	dao dao.DaoMethod
	now func() time.Time
}

func NewCommandBus(d dao.DaoMethod) *CommandBus {
	return &CommandBus{dao: d, now: time.Now}
}

// Dispatch posts cmd atomically. A reference that already has entries is
// treated as posted, so replaying the same command twice writes once.
func (b *CommandBus) Dispatch(ctx context.Context, cmd command.PostingCommand) (entity.DispatchResult, error) {
	if err := ctx.Err(); err != nil {
		return entity.DispatchResult{}, err
	}

	var result entity.DispatchResult
	err := b.dao.ExecTx(func(tx dao.DaoMethod) error {
		existing, err := tx.GetAccountingEntriesByReference(cmd.Reference())
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			log.Infof("[CommandBus] Reference %s already posted, skipping write", cmd.Reference())
			result = entity.DispatchResult{Succeeded: true, Reason: "already posted"}
			return nil
		}

		lines, reason, err := b.linesFor(tx, cmd)
		if err != nil {
			return err
		}
		if reason != "" {
			result = entity.DispatchResult{Reason: reason}
			return nil
		}

		reason, err = checkFunds(tx, lines)
		if err != nil {
			return err
		}
		if reason != "" {
			result = entity.DispatchResult{Reason: reason}
			return nil
		}

		now := b.now().Unix()
		entries := make([]model.AccountingEntry, 0, len(lines))
		for _, line := range lines {
			entries = append(entries, model.AccountingEntry{
				ID:                     uuid.NewString(),
				TransactionReferenceID: cmd.Reference(),
				AccountNumber:          line.AccountNumber,
				Direction:              line.Direction,
				Amount:                 line.Amount,
				Currency:               line.Currency,
				CommandDataType:        string(cmd.DataType()),
				Narration:              line.Narration,
				CreateTime:             now,
				CreateBy:               consts.SystemOperator,
			})
		}
		if err := tx.CreateAccountingEntries(entries); err != nil {
			return err
		}
		result = entity.DispatchResult{Succeeded: true}
		return nil
	})
	if err != nil {
		return entity.DispatchResult{}, fmt.Errorf("failed to dispatch %s for %s: %w", cmd.DataType(), cmd.Reference(), err)
	}

	if result.Succeeded {
		log.Infof("[CommandBus] Posted %s for reference %s", cmd.DataType(), cmd.Reference())
	} else {
		log.Warnf("[CommandBus] Rejected %s for reference %s: %s", cmd.DataType(), cmd.Reference(), result.Reason)
	}
	return result, nil
}

func (b *CommandBus) linesFor(tx dao.DaoMethod, cmd command.PostingCommand) ([]command.Posting, string, error) {
	reversal, ok := cmd.(*command.AccountingEntryReversal)
	if !ok {
		return command.Postings(cmd), "", nil
	}

	originals, err := tx.GetAccountingEntriesByReference(reversal.OriginalReferenceID)
	if err != nil {
		return nil, "", err
	}
	if len(originals) == 0 {
		return nil, fmt.Sprintf("no accounting entries found for original reference %s", reversal.OriginalReferenceID), nil
	}

	lines := make([]command.Posting, 0, len(originals))
	for _, entry := range originals {
		direction := consts.DirectionDebit
		if entry.Direction == consts.DirectionDebit {
			direction = consts.DirectionCredit
		}
		lines = append(lines, command.Posting{
			AccountNumber: entry.AccountNumber,
			Direction:     direction,
			Amount:        entry.Amount,
			Currency:      entry.Currency,
			Narration:     "reversal of " + reversal.OriginalReferenceID,
		})
	}
	return lines, "", nil
}

// checkFunds returns a rejection reason when a funded debit would take an
// account below zero. Balances are credits minus debits.
func checkFunds(tx dao.DaoMethod, lines []command.Posting) (string, error) {
	required := map[string]decimal.Decimal{}
	var order []string
	for _, line := range lines {
		if !line.RequiresFunds || line.Direction != consts.DirectionDebit {
			continue
		}
		if _, seen := required[line.AccountNumber]; !seen {
			order = append(order, line.AccountNumber)
		}
		required[line.AccountNumber] = required[line.AccountNumber].Add(line.Amount)
	}

	for _, account := range order {
		entries, err := tx.GetAccountingEntriesByAccount(account)
		if err != nil {
			return "", err
		}
		balance := decimal.Zero
		for _, entry := range entries {
			if entry.Direction == consts.DirectionCredit {
				balance = balance.Add(entry.Amount)
			} else {
				balance = balance.Sub(entry.Amount)
			}
		}
		if balance.LessThan(required[account]) {
			return fmt.Sprintf("insufficient funds on account %s: balance %s, required %s",
				account, balance.StringFixed(2), required[account].StringFixed(2)), nil
		}
	}
	return "", nil
}
