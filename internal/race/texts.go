package race

import "fmt"

// Flavor lines for race chatter. Picked uniformly with the race rng so
// simulations stay reproducible.

var injectSuccessTexts = []string{
	"%s sneaks into the stable and slips %s a little something extra.",
	"%s whistles innocently while %s gets a suspicious supplement.",
	"The vet looks the other way as %s gives %s a special vitamin shot.",
	"%s mixes something sharp into the feed bucket of %s.",
}

var injectFumbleTexts = []string{
	"%s fumbles the needle and jabs %s instead of the mount!",
	"The mount won't stand still, so %s ends up dosing %s.",
	"%s slips in the straw and empties the syringe into %s.",
}

var mountDeathTexts = []string{
	"💀 %s has collapsed! %s's entry is out of the race.",
	"%s keels over mid-stride. A sad day for %s.",
	"%s's heart gives out. %s can only watch from the rail.",
}

var cheaterCaughtTexts = []string{
	"The jury drags %s aside. The blood sample speaks for itself.",
	"%s is disqualified! The stewards found the empty vials.",
	"A surprise inspection ends the day for %s.",
}

func pickText(rng Rand, texts []string, args ...interface{}) string {
	return fmt.Sprintf(texts[rng.Intn(len(texts))], args...)
}
