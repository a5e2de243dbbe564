package bookkeeper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stable-stakes/internal/models"
)

type fakeLedger struct {
	balances map[int64]int64
}

func (l *fakeLedger) AlterBalance(p models.Participant, delta int64, reason string) {
	l.balances[p.ID] += delta
}

func (l *fakeLedger) BalanceOf(p models.Participant) int64 {
	return l.balances[p.ID]
}

type fakeStats struct {
	won  []int64
	lost []int64
}

func (s *fakeStats) RecordWagerOutcome(p models.Participant, won bool, amount int64) {
	if won {
		s.won = append(s.won, p.ID)
	} else {
		s.lost = append(s.lost, p.ID)
	}
}

type fixedHistory struct {
	rates map[int64]float64
}

func (h fixedHistory) WinRate(id int64, _ Outcome) float64 {
	return h.rates[id]
}

var (
	anna  = models.Participant{ID: 10, Name: "anna"}
	boris = models.Participant{ID: 20, Name: "boris"}
	clara = models.Participant{ID: 30, Name: "clara"}
)

func testBook(t *testing.T, history History, allowSelf bool, balances map[int64]int64) (*Bookkeeper, *fakeLedger, *fakeStats) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	ledger := &fakeLedger{balances: balances}
	stats := &fakeStats{}
	provider := NewRaceOddsProvider(history, 10)
	book := New(provider, ledger, stats, log.WithField("test", t.Name()), 100, allowSelf)
	book.Register(anna)
	book.Register(boris)
	book.Register(clara)
	return book, ledger, stats
}

func TestPlaceWagerHoldsStake(t *testing.T) {
	book, ledger, _ := testBook(t, fixedHistory{}, true, map[int64]int64{anna.ID: 200})

	msg, err := book.PlaceWager(anna, boris, "first", 40)
	require.NoError(t, err)
	assert.Contains(t, msg, "boris")
	assert.Equal(t, int64(160), ledger.balances[anna.ID])
	assert.Equal(t, int64(40), book.HeldTotal())
}

func TestPlaceWagerReplacementChargesDifference(t *testing.T) {
	book, ledger, _ := testBook(t, fixedHistory{}, true, map[int64]int64{anna.ID: 200})

	_, err := book.PlaceWager(anna, boris, "first", 40)
	require.NoError(t, err)

	// Raising the same wager charges only the difference.
	_, err = book.PlaceWager(anna, boris, "first", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(140), ledger.balances[anna.ID])
	assert.Equal(t, int64(60), book.HeldTotal())

	// An identical repeat is a duplicate, a lower amount a decrease.
	_, err = book.PlaceWager(anna, boris, "first", 60)
	assert.ErrorIs(t, err, models.ErrWagerExists)
	_, err = book.PlaceWager(anna, boris, "first", 30)
	assert.ErrorIs(t, err, models.ErrWagerDecrease)

	// Neither rejection touched the balance.
	assert.Equal(t, int64(140), ledger.balances[anna.ID])
}

func TestPlaceWagerClampsToCap(t *testing.T) {
	book, ledger, _ := testBook(t, fixedHistory{}, true, map[int64]int64{anna.ID: 500})

	msg, err := book.PlaceWager(anna, boris, "first", 400)
	require.NoError(t, err)
	assert.Contains(t, msg, "capped at 100")
	assert.Equal(t, int64(400), ledger.balances[anna.ID])
	assert.Equal(t, int64(100), book.HeldTotal())
}

func TestPlaceWagerRejections(t *testing.T) {
	book, _, _ := testBook(t, fixedHistory{}, false, map[int64]int64{anna.ID: 50})

	_, err := book.PlaceWager(anna, boris, "first", 0)
	assert.ErrorIs(t, err, models.ErrNonPositiveAmount)

	_, err = book.PlaceWager(anna, boris, "fourth", 10)
	assert.ErrorIs(t, err, models.ErrUnknownOdds)

	_, err = book.PlaceWager(anna, anna, "first", 10)
	assert.ErrorIs(t, err, models.ErrSelfWager)

	_, err = book.PlaceWager(anna, boris, "first", 80)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	assert.False(t, book.HasWagers())
}

func TestSettlePaysWinnersAndNamesLosers(t *testing.T) {
	book, ledger, stats := testBook(t, fixedHistory{}, true,
		map[int64]int64{anna.ID: 100, boris.ID: 100})

	_, err := book.PlaceWager(anna, boris, "first", 20)
	require.NoError(t, err)
	_, err = book.PlaceWager(boris, anna, "first", 20)
	require.NoError(t, err)

	msg, records := book.Settle([]models.Participant{boris, anna, clara})

	// Zero history quotes the maximum payout of 10.0.
	assert.Equal(t, int64(100-20+200), ledger.balances[anna.ID])
	assert.Equal(t, int64(100-20), ledger.balances[boris.ID])
	assert.Contains(t, msg, "@anna was right")
	assert.Contains(t, msg, "@boris lost")

	assert.Equal(t, []int64{anna.ID}, stats.won)
	assert.Equal(t, []int64{boris.ID}, stats.lost)

	// One audit row per wager, in placer order.
	require.Len(t, records, 2)
	assert.Equal(t, anna.ID, records[0].PlacerID)
	assert.Equal(t, boris.ID, records[0].TargetID)
	assert.Equal(t, "first", records[0].OddsName)
	assert.True(t, records[0].Won)
	assert.Equal(t, int64(200), records[0].Payout)
	assert.Equal(t, boris.ID, records[1].PlacerID)
	assert.False(t, records[1].Won)
	assert.Zero(t, records[1].Payout)
	assert.NotEqual(t, records[0].ID, records[1].ID)

	assert.False(t, book.HasWagers())
	assert.Zero(t, book.HeldTotal())
}

func TestSettlePositionPredicates(t *testing.T) {
	book, ledger, _ := testBook(t, fixedHistory{}, true,
		map[int64]int64{anna.ID: 100})

	_, err := book.PlaceWager(anna, boris, "second", 10)
	require.NoError(t, err)
	_, err = book.PlaceWager(anna, clara, "third", 10)
	require.NoError(t, err)

	book.Settle([]models.Participant{anna, boris, clara})

	// Both predicates hit: 10 * 10.0 each.
	assert.Equal(t, int64(100-20+200), ledger.balances[anna.ID])
}

func TestRefundAllReturnsStakes(t *testing.T) {
	book, ledger, stats := testBook(t, fixedHistory{}, true,
		map[int64]int64{anna.ID: 100, boris.ID: 100})

	_, err := book.PlaceWager(anna, boris, "first", 30)
	require.NoError(t, err)
	_, err = book.PlaceWager(boris, anna, "second", 45)
	require.NoError(t, err)

	book.RefundAll(ReasonWagerRefund)

	assert.Equal(t, int64(100), ledger.balances[anna.ID])
	assert.Equal(t, int64(100), ledger.balances[boris.ID])
	assert.False(t, book.HasWagers())
	assert.Zero(t, book.HeldTotal())

	// Refunds are not wager outcomes.
	assert.Empty(t, stats.won)
	assert.Empty(t, stats.lost)
}

func TestDerivePayoutClampsAndRounds(t *testing.T) {
	provider := NewRaceOddsProvider(fixedHistory{rates: map[int64]float64{
		anna.ID:  0,    // never raced: longest odds
		boris.ID: 0.33, // 10 * 0.67 = 6.7
		clara.ID: 1,    // always wins: clamped to the floor
	}}, 10)
	provider.Register(anna)
	provider.Register(boris)
	provider.Register(clara)

	quote := func(p models.Participant) decimal.Decimal {
		o, ok := provider.Find("first", p)
		require.True(t, ok)
		return o.Payout
	}

	assert.True(t, quote(anna).Equal(decimal.NewFromFloat(10.0)), "got %s", quote(anna))
	assert.True(t, quote(boris).Equal(decimal.NewFromFloat(6.7)), "got %s", quote(boris))
	assert.True(t, quote(clara).Equal(decimal.NewFromFloat(1.1)), "got %s", quote(clara))
}

func TestRefreshKeepsOddsPointerStable(t *testing.T) {
	rates := map[int64]float64{anna.ID: 0}
	provider := NewRaceOddsProvider(fixedHistory{rates: rates}, 10)
	provider.Register(anna)

	before, ok := provider.Find("first", anna)
	require.True(t, ok)
	require.True(t, before.Payout.Equal(decimal.NewFromFloat(10.0)))

	rates[anna.ID] = 0.5
	provider.Refresh()

	after, ok := provider.Find("first", anna)
	require.True(t, ok)
	assert.Same(t, before, after)
	assert.True(t, after.Payout.Equal(decimal.NewFromFloat(5.0)), "got %s", after.Payout)
}

func TestFindFallsBackToGlobalOdds(t *testing.T) {
	provider := NewRaceOddsProvider(fixedHistory{}, 10)
	provider.Register(anna)

	_, ok := provider.Find("first", boris)
	assert.False(t, ok, "no per-participant quote and no global entry")

	_, ok = provider.Find("first", anna)
	assert.True(t, ok)
}

func TestRenderWagersListsHeldBets(t *testing.T) {
	book, _, _ := testBook(t, fixedHistory{}, true, map[int64]int64{anna.ID: 100})

	assert.Equal(t, "There are no bets.", book.RenderWagers())

	_, err := book.PlaceWager(anna, anna, "first", 10)
	require.NoError(t, err)

	listing := book.RenderWagers()
	assert.Contains(t, listing, "anna placed a bet of 10 on themselves")
}
