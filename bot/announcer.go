package bot

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/utils"
)

// Announcer buffers raffle events for the bot. Publish never blocks the
// raffle: when the buffer is full the event is dropped.
type Announcer struct {
	events chan data.Event
}

func NewAnnouncer(size int) *Announcer {
	if size <= 0 {
		size = announcementsBuffer
	}

	return &Announcer{events: make(chan data.Event, size)}
}

func (a *Announcer) Publish(ev data.Event) {
	select {
	case a.events <- ev:
	default:
		log.Warn("announcement dropped", "event", ev.EventName())
	}
}

// Events - returns the channel the buffered events are read from
func (a *Announcer) Events() <-chan data.Event {
	return a.events
}

// eventText - returns the group message of an event or "" if it is not announced
func eventText(ev data.Event, name func(address string) string) string {
	text := ""
	switch e := ev.(type) {
	case data.EnteredEvent:
		text = fmt.Sprintf("🎟 %s entered round #%v", name(e.Participant), e.Round)
	case data.RandomnessRequestedEvent:
		text = fmt.Sprintf("🎲 `Round #%v closed` - picking the winner...", e.Round)
	case data.WinnerPickedEvent:
		text = fmt.Sprintf("🥳 %s won round #%v: %s eGLD 💰", name(e.Winner), e.Round, egld(e.Amount))
	case data.RoundFailedEvent:
		text = fmt.Sprintf("😔 `Round #%v failed` - the pool of %s eGLD from %v entries did not reach the minimum payout. Entrants can claim a refund.",
			e.Round, egld(e.Pool), e.Entrants)
	case data.WinnerPaidEvent:
		text = fmt.Sprintf("✅ Prize of round #%v sent to %s: %s eGLD", e.Round, name(e.Winner), egld(e.Amount))
	case data.RefundedEvent:
		text = fmt.Sprintf("↩️ %s got %s eGLD back from round #%v", name(e.Participant), egld(e.Amount), e.Round)
	}

	return strings.ReplaceAll(text, "_", "\\_")
}

func egld(amount *big.Int) string {
	return utils.NicePrice(utils.Denominate(amount, utils.EgldDecimals), -1)
}
