package bot

import (
	"github.com/DrDelphi/EgldRaffle/data"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

func (b *Bot) mainMenu(user *data.User) {
	menu := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuGameInfo),
			tgbotapi.NewKeyboardButton(menuMyEntries),
			tgbotapi.NewKeyboardButton(menuBalance),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuEnter),
			tgbotapi.NewKeyboardButton(menuEnter3),
			tgbotapi.NewKeyboardButton(menuEnter5),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuClaimPrize),
			tgbotapi.NewKeyboardButton(menuClaimRefund),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuMainHelp),
			tgbotapi.NewKeyboardButton(menuAbout),
		),
	)

	msg := tgbotapi.NewMessage(user.ID, "`🏘 Main menu`")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = menu
	b.tg.Send(msg)
}
