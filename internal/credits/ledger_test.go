package credits

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, userID string, total int) *Ledger {
	t.Helper()

	store := NewMemoryStore()
	require.NoError(t, store.Grant(context.Background(), userID, total))

	return NewLedger(store)
}

func TestReserve_Success(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 10)

	res, err := ledger.Reserve(context.Background(), "user-1", 8, 2)

	require.NoError(t, err)
	assert.Equal(t, 8, res.Amount)
	assert.Equal(t, 6, res.Budget)
	assert.True(t, res.Active())

	account, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, account.Available())
}

func TestReserve_Insufficient(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 5)

	_, err := ledger.Reserve(context.Background(), "user-1", 8, 2)

	assert.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestReserve_UnknownAccount(t *testing.T) {
	ledger := NewLedger(NewMemoryStore())

	_, err := ledger.Reserve(context.Background(), "ghost", 1, 0)

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestReserve_TwoConcurrentTurns(t *testing.T) {
	// user with credits=10 sends two concurrent turns each costing up to 8:
	// at most one reservation succeeds
	ledger := newTestLedger(t, "user-1", 10)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ledger.Reserve(context.Background(), "user-1", 8, 2)
		}(i)
	}

	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientCredits)
		}
	}

	assert.Equal(t, 1, succeeded)
}

func TestReserve_ConcurrentNeverOverspends(t *testing.T) {
	const (
		total   = 100
		workers = 50
		amount  = 7
	)

	ledger := newTestLedger(t, "user-1", total)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var reservations []*Reservation

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := ledger.Reserve(context.Background(), "user-1", amount, 1)
			if err != nil {
				return
			}

			mu.Lock()
			reservations = append(reservations, res)
			mu.Unlock()
		}()
	}

	wg.Wait()

	held := 0
	for _, res := range reservations {
		held += res.Amount
	}

	assert.LessOrEqual(t, held, total, "outstanding holds must never exceed granted credits")

	account, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, held, account.ReservedCredits)
	assert.GreaterOrEqual(t, account.Available(), 0)
}

func TestReleaseRoundTrip(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 10)

	before, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)

	res, err := ledger.Reserve(context.Background(), "user-1", 4, 1)
	require.NoError(t, err)

	require.NoError(t, ledger.Release(context.Background(), res))

	after, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, before.Available(), after.Available())
	assert.Equal(t, before.Credits, after.Credits)

	// the freed credits can be reserved again
	_, err = ledger.Reserve(context.Background(), "user-1", 4, 1)
	assert.NoError(t, err)
}

func TestFinalize_DebitsActualCost(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 10)

	res, err := ledger.Reserve(context.Background(), "user-1", 8, 2)
	require.NoError(t, err)

	// actual cost came in under the estimate
	require.NoError(t, ledger.Finalize(context.Background(), res, 5))

	account, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, account.Credits)
	assert.Equal(t, 0, account.ReservedCredits)
}

func TestFinalize_OverageCappedAtBalance(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 10)

	res, err := ledger.Reserve(context.Background(), "user-1", 8, 2)
	require.NoError(t, err)

	// actual cost wildly exceeds the balance; the debit is capped so the
	// account never goes negative
	require.NoError(t, ledger.Finalize(context.Background(), res, 50))

	account, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, account.Credits)
	assert.Equal(t, 0, account.ReservedCredits)
}

func TestReleaseAfterFinalize_NoDoubleAdjust(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 10)

	res, err := ledger.Reserve(context.Background(), "user-1", 8, 2)
	require.NoError(t, err)

	require.NoError(t, ledger.Finalize(context.Background(), res, 8))

	// a racing timeout cleanup calls Release after the success path already
	// finalized - the ledger must not move
	require.NoError(t, ledger.Release(context.Background(), res))
	require.NoError(t, ledger.Release(context.Background(), res))

	account, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, account.Credits)
	assert.Equal(t, 0, account.ReservedCredits)
}

func TestFinalizeAfterRelease_Ignored(t *testing.T) {
	ledger := newTestLedger(t, "user-1", 10)

	res, err := ledger.Reserve(context.Background(), "user-1", 8, 2)
	require.NoError(t, err)

	require.NoError(t, ledger.Release(context.Background(), res))

	// the reservation already terminated; finalize is logged and ignored
	require.NoError(t, ledger.Finalize(context.Background(), res, 8))

	account, err := ledger.Account(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, account.Credits)
	assert.Equal(t, 0, account.ReservedCredits)
}

func TestFinalizeReleaseRace_ExactlyOneTerminal(t *testing.T) {
	for i := 0; i < 20; i++ {
		ledger := newTestLedger(t, "user-1", 10)

		res, err := ledger.Reserve(context.Background(), "user-1", 8, 2)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			_ = ledger.Finalize(context.Background(), res, 8)
		}()
		go func() {
			defer wg.Done()
			_ = ledger.Release(context.Background(), res)
		}()

		wg.Wait()

		account, err := ledger.Account(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 0, account.ReservedCredits)
		// either the finalize won (credits=2) or the release won (credits=10),
		// never a double adjustment
		assert.Contains(t, []int{2, 10}, account.Credits)
	}
}
