package bot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

var errMissingAmount = errors.New("usage: /withdraw <amount|all>")

func (b *Bot) privateCommandReceived(ctx context.Context, message *tgbotapi.Message) {
	cmd := message.Command()
	args := message.CommandArguments()
	name := utils.FormatTgUser(message.From)

	user := b.getOrCreateUser(message.From)
	log.Info("private command received", "command", cmd, "args", args, "user", name)

	switch cmd {
	case cmdStart:
		msg := tgbotapi.NewMessage(user.ID, helpMessage)
		msg.ParseMode = tgbotapi.ModeMarkdown
		b.tg.Send(msg)
		b.mainMenu(user)
	case cmdFees, cmdWithdraw, cmdOwner:
		if user.ID != b.cfg.Bot.Owner {
			b.sendMessage(user.ID, "⛔️ Only the administrator can do that")
			return
		}
		b.ownerCommand(ctx, user, cmd, args)
	}
}

// ownerCommand runs an administrator command on behalf of the raffle's
// current administrator. The raffle still checks the caller.
func (b *Bot) ownerCommand(ctx context.Context, user *data.User, cmd string, args string) {
	owner, err := b.raffle.Owner()
	if err != nil {
		b.reportError("can not get raffle owner: " + err.Error())
		return
	}
	fees, err := b.raffle.WithdrawableFees()
	if err != nil {
		b.reportError("can not get fee balance: " + err.Error())
		return
	}

	switch cmd {
	case cmdFees:
		info, err := b.raffle.Info()
		if err != nil {
			b.reportError("can not get raffle info: " + err.Error())
			return
		}
		b.sendMessage(user.ID, fmt.Sprintf("`Fees:` %s eGLD\n`Gas reserve:` %s eGLD\n`Withdrawable:` %s eGLD\n`Custody:` %s eGLD\n`Owner:` %s",
			egld(info.FeeBalance), egld(info.GasReserve), egld(fees), egld(info.Balance), owner))
	case cmdWithdraw:
		amount, err := parseAmountArg(args, fees)
		if err != nil {
			b.sendMessage(user.ID, "⛔️ "+err.Error())
			return
		}
		if err := b.raffle.OwnerWithdraw(ctx, owner, amount); err != nil {
			b.sendMessage(user.ID, "⛔️ Withdraw failed: "+errorText(err))
			return
		}
		b.sendMessage(user.ID, fmt.Sprintf("✅ %s eGLD of fees withdrawn to %s", egld(amount), owner))
	case cmdOwner:
		address := strings.TrimSpace(args)
		if !b.networkManager.IsValidAddress(address) {
			b.sendMessage(user.ID, "⛔️ usage: /owner <address>")
			return
		}
		if err := b.raffle.ChangeOwner(ctx, owner, address); err != nil {
			b.sendMessage(user.ID, "⛔️ Change owner failed: "+errorText(err))
			return
		}
		b.sendMessage(user.ID, "✅ Administration handed to "+address)
	}
}

// parseAmountArg - parses the argument of /withdraw. "all" means every withdrawable fee.
func parseAmountArg(args string, fees *big.Int) (*big.Int, error) {
	args = strings.TrimSpace(args)
	switch args {
	case "":
		return nil, errMissingAmount
	case "all":
		return new(big.Int).Set(fees), nil
	}

	amount, err := utils.ParseAmount(args, utils.EgldDecimals)
	if err != nil {
		return nil, errMissingAmount
	}

	return amount, nil
}
