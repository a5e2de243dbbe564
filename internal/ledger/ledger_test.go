package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/stable-stakes/internal/models"
)

var payer = models.Participant{ID: 1, Name: "payer"}

func TestDepositAndAlter(t *testing.T) {
	l := New(nil)

	l.Deposit(payer, 100)
	assert.Equal(t, int64(100), l.BalanceOf(payer))

	l.AlterBalance(payer, -30, "horseraces.entryfee")
	assert.Equal(t, int64(70), l.BalanceOf(payer))
}

func TestBalanceMayGoNegative(t *testing.T) {
	l := New(nil)

	l.Deposit(payer, 10)
	l.AlterBalance(payer, -25, "horseraces.cheaterfine")
	assert.Equal(t, int64(-15), l.BalanceOf(payer))
}

func TestTotalSumsAllBalances(t *testing.T) {
	l := New(nil)
	other := models.Participant{ID: 2, Name: "other"}

	l.Deposit(payer, 100)
	l.Deposit(other, 50)
	l.AlterBalance(payer, -20, "horseraces.placebet")

	assert.Equal(t, int64(130), l.Total())
}
