package bot

import "time"

const (
	menuGameInfo    = "ℹ️ Game Info"
	menuBalance     = "💰 Balance"
	menuMyEntries   = "🎫 My Entries"
	menuEnter       = "🎟 Enter"
	menuEnter3      = "3️⃣ x 🎟"
	menuEnter5      = "5️⃣ x 🎟"
	menuClaimPrize  = "🏆 Claim Prize"
	menuClaimRefund = "↩️ Claim Refund"
	menuMainHelp    = "📖 Help"
	menuAbout       = "©️ About"

	cmdStart    = "start"
	cmdFees     = "fees"
	cmdWithdraw = "withdraw"
	cmdOwner    = "owner"

	callbackPem = "PEM"

	aboutMessage = "*Made with ❤️ by* [@DrDelphi](https://t.me/DrDelphi)"

	infoPeriod    = 6 * time.Second
	upkeepPeriod  = 10 * time.Second
	txPollPeriod  = 5 * time.Second
	txPollRetries = 60

	announcementsBuffer = 128
)

var (
	helpMessage = "`DISCLAIMER !`\n" +
		"\n" +
		"🔴 All prizes are considered friend gifts.\n" +
		"🟠 Gifting to friends does not guarantee a friend will gift in return. All transactions are considered gifts between friends. Donations go towards gifts.\n" +
		"🟡 This bot is in no way sponsored, endorsed, administered by, or associated with MultiversX. By participating in this promotion you agree to a complete release of MultiversX from any claims.\n" +
		"🟢 You agree to choose to join or stay in this group, you play on your own free will.\n" +
		"🔵 You also agree to release any and all admin‘s of all liability.\n" +
		"🟣 Must be 18 years old or older to play!\n" +
		"⚪️ Most importantly have fun and NO DRAMA!\n" +
		"\n" +
		"\n" +
		"`Instructions`\n" +
		"\n" +
		"This is a Raffle Telegram Bot. Every entry costs the entrance fee and one entry is one chance to win.\n\n" +
		"The bot will generate a wallet for you from which you enter and where you receive the prizes.\n\n" +
		"When a round has been open long enough a winner is picked at random and gets 90% of the pool. " +
		"If the pool did not reach the minimum payout the round fails and everybody can claim 90% of their entries back.\n\n" +
		"Prizes and refunds are not sent automatically: use `Claim Prize` and `Claim Refund`.\n\n" +
		"You can watch the game's progress and discuss free topics on @EgldRaffle\n\n" +
		"\n" +
		"🍀 Good luck!"
)
