package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DrDelphi/EgldRaffle/config"
	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/raffle"
	"github.com/DrDelphi/EgldRaffle/utils"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/algorand/go-deadlock"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

var log = logger.GetOrCreate("bot")

var (
	errUserNotFound = errors.New("user not found")
	errGroupUnknown = errors.New("group chat id not known yet")
)

// Bot - holds the required fields of the bot application
type Bot struct {
	tgBot          *tgbotapi.BotAPI
	tg             Messenger
	cfg            *data.AppConfig
	raffle         *raffle.Raffle
	networkManager Chain
	announcer      *Announcer
	pollPeriod     time.Duration

	mut     deadlock.RWMutex
	users   map[int64]*data.User
	tgUsers map[int64]*data.Telegram
}

// NewBot - creates a new Bot object
func NewBot(cfg *data.AppConfig, r *raffle.Raffle, networkManager Chain, announcer *Announcer) (*Bot, error) {
	tgBot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.Error("can not create telegram bot", "error", err)
		return nil, err
	}

	telegramBot := &Bot{
		tgBot:          tgBot,
		tg:             tgBot,
		cfg:            cfg,
		raffle:         r,
		networkManager: networkManager,
		announcer:      announcer,
		pollPeriod:     txPollPeriod,
		users:          make(map[int64]*data.User),
		tgUsers:        make(map[int64]*data.Telegram),
	}

	helpMessage = strings.ReplaceAll(helpMessage, "EgldRaffle", cfg.Bot.Group)

	return telegramBot, nil
}

// StartTasks - starts bot's tasks. They stop when ctx is done.
func (b *Bot) StartTasks(ctx context.Context) {
	go b.watchRaffle(ctx)
	go b.triggerUpkeep(ctx)
	go b.announce(ctx)

	go func() {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates, err := b.tgBot.GetUpdatesChan(u)
		if err != nil {
			log.Error("can not get Telegram bot updates", "error", err)
			panic(err)
		}
		updates.Clear()
		go func() {
			<-ctx.Done()
			b.tgBot.StopReceivingUpdates()
		}()
		for update := range updates {
			if update.Message != nil {
				if update.Message.Chat.IsPrivate() {
					// private
					if update.Message.IsCommand() {
						b.privateCommandReceived(ctx, update.Message)
						continue
					}
					b.privateMessageReceived(ctx, update.Message)
				} else {
					// public
					b.discoverGroup(update.Message.Chat)
					if update.Message.IsCommand() {
						b.tg.Send(tgbotapi.DeleteMessageConfig{ChatID: update.Message.Chat.ID, MessageID: update.Message.MessageID})
						continue
					}
				}
			}
			if update.CallbackQuery != nil {
				b.callbackQueryReceived(update.CallbackQuery)
			}
		}
	}()
}

// watchRaffle posts the game info to the group when a round opens and keeps
// it up to date while entries come in
func (b *Bot) watchRaffle(ctx context.Context) {
	lastRound := uint64(0)
	lastEntrants := uint64(0)
	lastInfoMessage := 0
	first := true
	for {
		info, err := b.raffle.Info()
		if err != nil {
			b.reportError("Unable to get raffle info. Error: " + err.Error())
		} else {
			if first || info.Round != lastRound {
				msg, err := b.sendGameInfo(nil)
				if err == nil {
					lastInfoMessage = msg.MessageID
				}
				lastRound = info.Round
				lastEntrants = info.Entrants
				first = false
			}
			if lastEntrants != info.Entrants && lastInfoMessage != 0 {
				msg := tgbotapi.NewEditMessageText(b.groupID(), lastInfoMessage, gameInfoText(info, nil))
				msg.ParseMode = tgbotapi.ModeMarkdown
				b.tg.Send(msg)
				lastEntrants = info.Entrants
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(infoPeriod):
		}
	}
}

// triggerUpkeep closes the round as soon as the upkeep predicate allows it.
// Anyone may perform upkeep; this loop only makes sure somebody does.
func (b *Bot) triggerUpkeep(ctx context.Context) {
	ticker := time.NewTicker(upkeepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		needed, performData, err := b.raffle.CheckUpkeep(ctx, nil)
		if err != nil {
			b.reportError("error checking upkeep: " + err.Error())
			continue
		}
		if !needed {
			continue
		}

		err = b.raffle.PerformUpkeep(ctx, performData)
		if err != nil && !errors.Is(err, raffle.ErrUpkeepNotNeeded) {
			b.reportError("error performing upkeep: " + err.Error())
		}
	}
}

func (b *Bot) announce(ctx context.Context) {
	if b.announcer == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.announcer.Events():
			b.announceEvent(ev)
		}
	}
}

func (b *Bot) announceEvent(ev data.Event) {
	if text := eventText(ev, b.displayName); text != "" {
		b.sendToGroup(text)
	}

	switch e := ev.(type) {
	case data.WinnerPickedEvent:
		if user := b.getUserByAddress(e.Winner); user != nil {
			b.sendMessage(user.ID, fmt.Sprintf("🤑 You won round #%v: %s eGLD\nUse `%s` to get your prize", e.Round, egld(e.Amount), menuClaimPrize))
		}
	case data.RoundFailedEvent:
		b.notifyRefunds(e.Round)
	case data.FeesWithdrawnEvent:
		b.reportInfo(fmt.Sprintf("💸 %s eGLD of fees sent to %s", egld(e.Amount), e.Owner))
	case data.OwnerChangedEvent:
		b.reportInfo(fmt.Sprintf("👑 Administration handed from %s to %s", e.Previous, e.Owner))
	case data.TransferUnconfirmedEvent:
		b.reportError(fmt.Sprintf("transfer of %s eGLD to %s is unconfirmed (%s). Its claim stays closed, check the custody wallet.",
			egld(e.Amount), e.To, e.Reason))
	}
}

func (b *Bot) notifyRefunds(round uint64) {
	entrants, err := b.raffle.Entrants(round)
	if err != nil {
		log.Warn("can not get entrants of failed round", "round", round, "error", err)
		return
	}

	notified := make(map[string]bool)
	for _, address := range entrants {
		if notified[address] {
			continue
		}
		notified[address] = true
		if user := b.getUserByAddress(address); user != nil {
			b.sendMessage(user.ID, fmt.Sprintf("😔 Round #%v failed. Use `%s` to get your entries back", round, menuClaimRefund))
		}
	}
}

func (b *Bot) reportError(text string) {
	log.Warn("reporting error", "text", text)
	msg := tgbotapi.NewMessage(b.cfg.Bot.Owner, "⛔️ "+text)
	b.tg.Send(msg)
}

func (b *Bot) reportInfo(text string) {
	msg := tgbotapi.NewMessage(b.cfg.Bot.Owner, text)
	b.tg.Send(msg)
}

func (b *Bot) groupID() int64 {
	b.mut.RLock()
	defer b.mut.RUnlock()

	return b.cfg.Bot.GroupID
}

// discoverGroup - remembers the chat id of the configured group the first
// time a message arrives from it
func (b *Bot) discoverGroup(chat *tgbotapi.Chat) {
	if chat == nil {
		return
	}

	b.mut.Lock()
	defer b.mut.Unlock()

	if b.cfg.Bot.GroupID != 0 || chat.UserName != b.cfg.Bot.Group {
		return
	}
	b.cfg.Bot.GroupID = chat.ID
	if err := config.Save(b.cfg); err != nil {
		log.Warn("can not save group id", "group", chat.ID, "error", err)
	}
}

func (b *Bot) sendToGroup(text string) (tgbotapi.Message, error) {
	groupID := b.groupID()
	if groupID == 0 {
		return tgbotapi.Message{}, errGroupUnknown
	}

	msg := tgbotapi.NewMessage(groupID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	res, err := b.tg.Send(msg)
	if err != nil {
		log.Warn("error sending message to group", "message", text, "error", err)
	}

	return res, err
}

func (b *Bot) sendMessage(userID int64, text string) (tgbotapi.Message, error) {
	b.mut.RLock()
	user, ok := b.users[userID]
	tgUser, tgOk := b.tgUsers[userID]
	b.mut.RUnlock()
	if user == nil || !ok {
		return tgbotapi.Message{}, errUserNotFound
	}

	if tgUser != nil && tgOk {
		log.Info("sent message", "user", fmt.Sprintf("@%s (%s %s)", tgUser.UserName, tgUser.FirstName, tgUser.LastName), "message", text)
	}
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	res, err := b.tg.Send(msg)
	if err != nil && tgOk {
		log.Warn("error sending message", "user", fmt.Sprintf("@%s (%s %s)", tgUser.UserName, tgUser.FirstName, tgUser.LastName),
			"message", text, "error", err.Error())
	}

	return res, err
}

// gameInfoText - renders a raffle snapshot. entries is the number of entries
// of the reader in the open round, nil for the group.
func gameInfoText(info *data.RaffleInfo, entries *uint64) string {
	if info == nil {
		return ""
	}

	text := "`Game Info`\n\n"
	text += fmt.Sprintf("`Game round:` #%v\n", info.Round)
	text += fmt.Sprintf("`Entrance fee:` %s eGLD\n", egld(info.EntranceFee))
	text += fmt.Sprintf("`Entries:` %v\n", info.Entrants)
	text += fmt.Sprintf("`Pool:` %s eGLD\n", egld(info.Pool))
	if info.MinimumPayout != nil && info.MinimumPayout.Sign() > 0 {
		text += fmt.Sprintf("`Minimum pool:` %s eGLD\n", egld(info.MinimumPayout))
	}
	text += fmt.Sprintf("`Round duration:` %v seconds\n", info.Interval)
	text += fmt.Sprintf("`Status:` %v\n", info.StateName)
	if info.State == data.StateOpen {
		text += fmt.Sprintf("`Closes after:` %v\n", time.Unix(info.Deadline, 0).UTC().Format(time.RFC1123))
	}
	if entries != nil && *entries > 0 {
		if *entries > 1 {
			text += fmt.Sprintf("\nYou have `%v` entries", *entries)
		} else {
			text += "\nYou have `1` entry"
		}
	}

	return text
}

func (b *Bot) sendGameInfo(user *data.User) (tgbotapi.Message, error) {
	info, err := b.raffle.Info()
	if err != nil {
		log.Warn("can not get raffle info", "error", err)
		return tgbotapi.Message{}, err
	}

	if user == nil {
		return b.sendToGroup(gameInfoText(info, nil))
	}

	entries, err := b.raffle.EntryCount(info.Round, user.Wallet)
	if err != nil {
		log.Warn("can not get entry count", "user", user.ID, "error", err)
	}

	return b.sendMessage(user.ID, gameInfoText(info, &entries))
}

func (b *Bot) getOrCreateUser(tgUser *tgbotapi.User) *data.User {
	id := int64(tgUser.ID)

	b.mut.Lock()
	defer b.mut.Unlock()

	user, ok := b.users[id]
	if !ok {
		user = &data.User{
			ID:     id,
			Wallet: utils.GetAddressFromPrivateKey(utils.GetPrivateKeyFromSeed(b.cfg.Seedphrase, id)),
		}
		b.users[id] = user
	}

	tg, ok := b.tgUsers[id]
	if !ok || tg.UserName != tgUser.UserName || tg.FirstName != tgUser.FirstName || tg.LastName != tgUser.LastName {
		b.tgUsers[id] = &data.Telegram{
			ID:        id,
			UserName:  tgUser.UserName,
			FirstName: tgUser.FirstName,
			LastName:  tgUser.LastName,
		}
	}

	return user
}

func (b *Bot) getUserByAddress(address string) *data.User {
	b.mut.RLock()
	defer b.mut.RUnlock()

	for _, user := range b.users {
		if user.Wallet == address {
			return user
		}
	}

	return nil
}

// displayName - returns the Telegram mention of the wallet's owner if known
func (b *Bot) displayName(address string) string {
	user := b.getUserByAddress(address)
	if user != nil {
		b.mut.RLock()
		tgUser := b.tgUsers[user.ID]
		b.mut.RUnlock()
		if tgUser != nil {
			return utils.FormatDbTgUser(tgUser)
		}
	}

	return fmt.Sprintf("[%s](%s%s)", utils.ShortenAddress(address), b.cfg.Network.ExplorerAccount, address)
}
