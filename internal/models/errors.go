package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonPositiveAmount   = errors.New("amount must be higher than 0")
	ErrUnknownOdds         = errors.New("unknown odds name")
	ErrNotEntered          = errors.New("participant has no entry in this race")
	ErrAlreadyEntered      = errors.New("participant already entered this race")
	ErrDisqualified        = errors.New("participant is disqualified from this race")
	ErrWagerExists         = errors.New("this bet already exists")
	ErrWagerDecrease       = errors.New("cannot decrease a replacement wager")
	ErrSelfWager           = errors.New("betting on yourself is not allowed")
	ErrEntriesClosed       = errors.New("the race is no longer accepting entries")
	ErrWagersClosed        = errors.New("the race is running, no new bets")
	ErrRaceEnded           = errors.New("the race has already ended")
	ErrNoActiveRace        = errors.New("there is no active race")
	ErrRaceCooldown        = errors.New("the next race cannot start yet")
	ErrRaceActive          = errors.New("there is already an active race")
	ErrMountDead           = errors.New("your mount has died of an overdose")
	ErrNoMountsLeft        = errors.New("there are no mounts left to enter the race")
)
