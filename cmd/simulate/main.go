// Package main runs races offline on a simulated clock, for tuning
// fees, odds caps and dose potency without a chat transport.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/stable-stakes/internal/bookkeeper"
	"github.com/yourusername/stable-stakes/internal/clock"
	"github.com/yourusername/stable-stakes/internal/config"
	"github.com/yourusername/stable-stakes/internal/ledger"
	"github.com/yourusername/stable-stakes/internal/logger"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/notify"
	"github.com/yourusername/stable-stakes/internal/race"
	"github.com/yourusername/stable-stakes/internal/room"
	"github.com/yourusername/stable-stakes/internal/statistics"
)

func main() {
	var (
		players   = flag.Int("players", 5, "number of simulated players")
		races     = flag.Int("races", 10, "number of races to run")
		seed      = flag.Int64("seed", 1, "random seed")
		bankroll  = flag.Int64("bankroll", 1000, "starting balance per player")
		doseEvery = flag.Int("dope-every", 3, "every n-th player dopes before the start")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	appLog := logger.NewLogger(*logLevel)
	logEntry := appLog.WithField("app", "simulate")

	cfg := config.RoomConfig{
		MaxOdds:            10,
		EntryFee:           10,
		MaxWager:           1000,
		PreStartSeconds:    180,
		RoundSeconds:       15,
		SettleDelaySeconds: 5,
		RaceIntervalSecs:   0,
		TrackDistance:      1800,
	}

	rng := race.NewRand(*seed)
	fake := clock.NewFake(time.Unix(0, 0))
	registry := statistics.NewRegistry()
	bank := ledger.New(nil)

	participants := make([]models.Participant, *players)
	for i := range participants {
		participants[i] = models.Participant{ID: int64(i + 1), Name: fmt.Sprintf("player%d", i+1)}
		bank.Deposit(participants[i], *bankroll)
	}

	r := room.New(1, room.Deps{
		Cfg:     &cfg,
		Rng:     rng,
		Clock:   fake,
		Log:     logEntry,
		Ledger:  bank,
		History: registry,
		Stats:   registry,
		NotifierFor: func(int64) race.Notifier {
			return notify.NewLogNotifier(logEntry)
		},
	})

	before := bank.Total()

	for n := 0; n < *races; n++ {
		if _, err := r.OpenRace(participants[0]); err != nil {
			log.Fatalf("race %d: open: %v", n+1, err)
		}
		for _, p := range participants[1:] {
			if _, err := r.Join(p); err != nil {
				logEntry.WithError(err).WithField("player", p.Name).Warn("join failed")
			}
		}
		for i, p := range participants {
			if *doseEvery > 0 && i%*doseEvery == 0 {
				r.Dope(p, 20)
			}
			target := participants[(i+1)%len(participants)]
			r.Bet(p, target.Name, string(bookkeeper.OutcomeFirst), 25)
		}

		// A generous window covers pre-start, every round and the
		// settlement delay.
		fake.Advance(2 * time.Hour)
	}

	fmt.Printf("simulated %d races with %d players (seed %d)\n\n", *races, *players, *seed)
	fmt.Println(registry.RenderTable())
	fmt.Println("balances:")
	for _, p := range participants {
		fmt.Printf("  %-10s %6d\n", p.Name, bank.BalanceOf(p))
	}
	fmt.Printf("\ncarry-over pot: %d\n", r.CarryOver())
	fmt.Printf("currency delta vs. start: %+d (fees, fines and salaries leave the players' pockets)\n",
		bank.Total()-before)
}
