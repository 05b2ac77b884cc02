package bot

import (
	"context"
	"fmt"

	"github.com/DrDelphi/EgldRaffle/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

func (b *Bot) privateMessageReceived(ctx context.Context, message *tgbotapi.Message) {
	user := b.getOrCreateUser(message.From)
	name := utils.FormatTgUser(message.From)
	log.Info("private message received", "message", message.Text, "user", name)

	switch message.Text {
	case menuAbout:
		msg := tgbotapi.NewMessage(user.ID, aboutMessage)
		msg.ParseMode = tgbotapi.ModeMarkdown
		b.tg.Send(msg)
		return
	case menuMainHelp:
		msg := tgbotapi.NewMessage(user.ID, helpMessage)
		msg.ParseMode = tgbotapi.ModeMarkdown
		_, err := b.tg.Send(msg)
		if err != nil {
			log.Error("unable to send message", "message", helpMessage, "error", err)
		}
		return
	case menuGameInfo:
		b.sendGameInfo(user)
		return
	case menuBalance:
		balance, err := b.networkManager.GetBalance(user.Wallet)
		if err != nil {
			b.reportError("can not get wallet balance")
			return
		}
		text := fmt.Sprintf("`Wallet:` [%s](%s%s)\n`Balance:` %s eGLD",
			utils.ShortenAddress(user.Wallet), b.cfg.Network.ExplorerAccount, user.Wallet, utils.NicePrice(balance, -1))
		keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 PEM file", callbackPem),
		))
		msg := tgbotapi.NewMessage(user.ID, text)
		msg.ReplyMarkup = keyboard
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		b.tg.Send(msg)
		return
	case menuEnter:
		b.enter(ctx, user, 1)
		return
	case menuEnter3:
		b.enter(ctx, user, 3)
		return
	case menuEnter5:
		b.enter(ctx, user, 5)
		return
	case menuMyEntries:
		b.sendMyEntries(user)
		return
	case menuClaimPrize:
		b.claimPrize(ctx, user)
		return
	case menuClaimRefund:
		b.claimRefund(ctx, user)
		return
	}
}
