package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	weeksToScan = 52
	dateLayout  = "2006-01-02"
)

// Analyzer computes the weekly statistics report over trailing seven-day
// windows and caches it as a snapshot in the store. It scans history
// concurrently with live mutations and does not require a consistent
// point-in-time view.
type Analyzer struct {
	store store.LedgerStore
	rates models.RateTable
	now   func() time.Time
}

func NewAnalyzer(s store.LedgerStore, rates models.RateTable) *Analyzer {
	return &Analyzer{store: s, rates: rates, now: time.Now}
}

// Recompute scans up to 52 trailing one-week windows, newest first. The
// first window runs from six days ago through today (UTC calendar dates,
// inclusive); each following window steps back one week. Windows with no
// activity at all are dropped, so the result length varies from 0 to 52.
func (a *Analyzer) Recompute(ctx context.Context) ([]models.WeeklyStat, error) {
	today := a.now().UTC().Truncate(24 * time.Hour)
	end := today
	start := today.AddDate(0, 0, -6)

	results := make([]models.WeeklyStat, 0, weeksToScan)
	for i := 0; i < weeksToScan; i++ {
		stat, err := a.computeWindow(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("window %s..%s: %w",
				start.Format(dateLayout), end.Format(dateLayout), err)
		}
		if stat.HasActivity() {
			results = append(results, stat)
		}
		start = start.AddDate(0, 0, -7)
		end = end.AddDate(0, 0, -7)
	}

	zap.L().Info("Weekly analysis computed",
		zap.Int("windows_scanned", weeksToScan),
		zap.Int("windows_with_activity", len(results)),
		zap.String("rates_version", a.rates.Version))
	return results, nil
}

func (a *Analyzer) computeWindow(ctx context.Context, start, end time.Time) (models.WeeklyStat, error) {
	stat := models.WeeklyStat{
		StartDate:                   start.Format(dateLayout),
		EndDate:                     end.Format(dateLayout),
		NotRollbackedDepositAmount:  decimal.Zero,
		NotRollbackedWithdrawAmount: decimal.Zero,
	}

	var err error
	if stat.RegisteredUsersCount, err = a.store.CountUsersRegistered(ctx, start, end); err != nil {
		return stat, err
	}
	if stat.RegisteredAndDepositUsersCount, err = a.store.CountRegisteredDepositUsers(ctx, start, end, false); err != nil {
		return stat, err
	}
	if stat.RegisteredAndNotRollbackedDepositUsersCount, err = a.store.CountRegisteredDepositUsers(ctx, start, end, true); err != nil {
		return stat, err
	}

	depositSums, err := a.store.SumTransactionAmounts(ctx, start, end, models.TransactionTypeDeposit)
	if err != nil {
		return stat, err
	}
	if stat.NotRollbackedDepositAmount, err = a.normalizeUSD(depositSums); err != nil {
		return stat, err
	}

	withdrawSums, err := a.store.SumTransactionAmounts(ctx, start, end, models.TransactionTypeWithdraw)
	if err != nil {
		return stat, err
	}
	if stat.NotRollbackedWithdrawAmount, err = a.normalizeUSD(withdrawSums); err != nil {
		return stat, err
	}

	if stat.TransactionsCount, err = a.store.CountTransactions(ctx, start, end, false); err != nil {
		return stat, err
	}
	if stat.NotRollbackedTransactionsCount, err = a.store.CountTransactions(ctx, start, end, true); err != nil {
		return stat, err
	}

	return stat, nil
}

// normalizeUSD converts per-currency sums to a single USD total using the
// fixed rate table.
func (a *Analyzer) normalizeUSD(sums map[models.Currency]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for currency, amount := range sums {
		rate, ok := a.rates.Rate(currency)
		if !ok {
			return decimal.Zero, fmt.Errorf("no exchange rate for %s", currency)
		}
		total = total.Add(amount.Mul(rate))
	}
	return total, nil
}

// RecomputeAndPublish recomputes the report and replaces the cached
// snapshot. This is the entrypoint the external scheduler invokes.
func (a *Analyzer) RecomputeAndPublish(ctx context.Context) ([]models.WeeklyStat, error) {
	stats, err := a.Recompute(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis report: %w", err)
	}
	if err := a.store.SaveAnalysisSnapshot(ctx, payload); err != nil {
		return nil, err
	}
	return stats, nil
}

// CachedOrRecompute serves the cached snapshot if one exists, else
// recomputes synchronously and populates the cache before returning.
// Staleness between scheduled recomputations is accepted.
func (a *Analyzer) CachedOrRecompute(ctx context.Context) ([]models.WeeklyStat, error) {
	payload, err := a.store.GetAnalysisSnapshot(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			return a.RecomputeAndPublish(ctx)
		}
		return nil, err
	}

	var stats []models.WeeklyStat
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis report: %w", err)
	}
	return stats, nil
}
