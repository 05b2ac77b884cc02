package bot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/network"
	"github.com/DrDelphi/EgldRaffle/raffle"
	"github.com/DrDelphi/EgldRaffle/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// enter pays count entrance fees from the user's wallet into custody. Each
// entry is recorded once its transaction is confirmed.
func (b *Bot) enter(ctx context.Context, user *data.User, count int) {
	info, err := b.raffle.Info()
	if err != nil {
		b.reportError("enter - can not get raffle info: " + err.Error())
		return
	}

	if info.State != data.StateOpen {
		b.sendMessage(user.ID, "⌛️ Please wait for the winner of the current round to be picked")
		return
	}

	balance, err := b.networkManager.GetBalance(user.Wallet)
	if err != nil {
		b.sendMessage(user.ID, "❗️ Network error. Please contact an administrator ("+err.Error()+")")
		return
	}

	fee := utils.Denominate(info.EntranceFee, utils.EgldDecimals)
	if balance < (fee+utils.EnterFee)*float64(count) {
		b.sendMessage(user.ID, fmt.Sprintf("⛔️ Not enough balance. You have %s eGLD and you need %s for the entries and %s for the transaction fee(s)",
			utils.NicePrice(balance, -1), utils.NicePrice(fee*float64(count), -1), utils.NicePrice(utils.EnterFee*float64(count), -1)))
		return
	}

	pk := utils.GetPrivateKeyFromSeed(b.cfg.Seedphrase, user.ID)
	nonce, err := b.networkManager.GetAddressNonce(user.Wallet)
	if err != nil {
		nonce = utils.AutoNonce
	}

	for i := 0; i < count; i++ {
		hash, err := b.networkManager.SendTransaction(ctx, pk, b.networkManager.CustodyAddress(), info.EntranceFee, utils.TransferGasLimit, "", nonce)
		if nonce < utils.AutoNonce {
			nonce++
		}
		if err != nil {
			b.sendMessage(user.ID, fmt.Sprintf("⛔️ Error sending transaction: %s", err))
			return
		}

		format := fmt.Sprintf("`Enter round #%v` - Status: ", info.Round)
		msg := tgbotapi.NewMessage(user.ID, fmt.Sprintf("%s[pending ⌛️](%s%s)", format, b.cfg.Network.ExplorerTransaction, hash))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		res, err := b.tg.Send(msg)
		if err != nil {
			log.Warn("can not send enter tx status message", "message", msg.Text, "error", err)
		}

		go b.watchEnterTx(ctx, hash, format, user, res.MessageID, info.EntranceFee)
	}
}

func (b *Bot) watchEnterTx(ctx context.Context, hash string, format string, user *data.User, messageID int, value *big.Int) {
	status := network.StatusPending
	for i := 0; i < txPollRetries && status == network.StatusPending; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.pollPeriod):
		}

		s, err := b.networkManager.TransactionStatus(ctx, hash)
		if err != nil {
			continue
		}
		status = s
	}

	label := status
	switch status {
	case network.StatusPending:
		label += " ⌛️"
	case network.StatusSuccess, network.StatusExecuted:
		label += " ✅"
	default:
		label += " ❌"
	}
	msg := tgbotapi.NewEditMessageText(user.ID, messageID, fmt.Sprintf("%s[%s](%s%s)",
		format, label, b.cfg.Network.ExplorerTransaction, hash))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	b.tg.Send(msg)

	if status != network.StatusSuccess && status != network.StatusExecuted {
		if status == network.StatusPending {
			b.reportError(fmt.Sprintf("entry transaction %s of user %v still pending", hash, user.ID))
		}
		return
	}

	err := b.raffle.Receive(ctx, user.Wallet, value)
	if err == nil {
		return
	}

	log.Warn("entry not accepted, sending it back", "user", user.ID, "hash", hash, "error", err)
	b.bounceEntry(ctx, user, hash, value)
}

// bounceEntry sends a rejected entry back from custody. The network fee of
// the transfer is taken out of the entry.
func (b *Bot) bounceEntry(ctx context.Context, user *data.User, hash string, value *big.Int) {
	back := new(big.Int).Sub(value, b.networkManager.TransferCost())
	if back.Sign() <= 0 {
		b.reportError(fmt.Sprintf("entry %s of user %v does not cover the fee to send it back", hash, user.ID))
		return
	}

	b.sendMessage(user.ID, "⌛️ The round closed before your entry arrived. Sending it back...")
	if err := b.networkManager.Transfer(ctx, user.Wallet, back); err != nil {
		b.reportError(fmt.Sprintf("can not send back entry %s of user %v: %s", hash, user.ID, err))
		return
	}
	b.sendMessage(user.ID, fmt.Sprintf("↩️ %s eGLD sent back", egld(back)))
}

func (b *Bot) sendMyEntries(user *data.User) {
	round, err := b.raffle.CurrentRound()
	if err != nil {
		log.Warn("can not get current round", "error", err)
		return
	}

	count, err := b.raffle.EntryCount(round, user.Wallet)
	if err != nil {
		log.Warn("can not get entry count", "error", err)
		return
	}

	if count == 0 {
		b.sendMessage(user.ID, "🚫 You have no entries in this round")
		return
	}

	entrants, err := b.raffle.EntrantCount(round)
	if err != nil || entrants == 0 {
		b.sendMessage(user.ID, fmt.Sprintf("🎫 You have `%v` entries in round #%v", count, round))
		return
	}

	b.sendMessage(user.ID, fmt.Sprintf("🎫 You have `%v` of `%v` entries in round #%v (%.2f%% chance)",
		count, entrants, round, float64(count)*100/float64(entrants)))
}

// claimPrize withdraws every unpaid prize the user won
func (b *Bot) claimPrize(ctx context.Context, user *data.User) {
	current, err := b.raffle.CurrentRound()
	if err != nil {
		b.reportError("claimPrize - can not get current round: " + err.Error())
		return
	}

	claimed := 0
	for id := uint64(0); id < current; id++ {
		winner, err := b.raffle.Winner(id)
		if err != nil || winner == nil || winner.Winner != user.Wallet || winner.Paid {
			continue
		}
		if err := b.raffle.WinnerWithdraw(ctx, id); err != nil {
			b.sendMessage(user.ID, fmt.Sprintf("⛔️ Can not claim the prize of round #%v: %s", id, errorText(err)))
			continue
		}
		claimed++
		b.sendMessage(user.ID, fmt.Sprintf("💰 Prize of round #%v sent: %s eGLD", id, egld(winner.Amount)))
	}

	if claimed == 0 {
		b.sendMessage(user.ID, "🚫 You have no prizes to claim")
	}
}

// claimRefund withdraws the user's entries of every failed round
func (b *Bot) claimRefund(ctx context.Context, user *data.User) {
	current, err := b.raffle.CurrentRound()
	if err != nil {
		b.reportError("claimRefund - can not get current round: " + err.Error())
		return
	}

	claimed := 0
	for id := uint64(0); id < current; id++ {
		failed, err := b.raffle.RoundFailed(id)
		if err != nil || !failed {
			continue
		}
		count, err := b.raffle.EntryCount(id, user.Wallet)
		if err != nil || count == 0 {
			continue
		}
		if err := b.raffle.FailedRaffleWithdraw(ctx, user.Wallet, id); err != nil {
			b.sendMessage(user.ID, fmt.Sprintf("⛔️ Can not claim the refund of round #%v: %s", id, errorText(err)))
			continue
		}
		claimed++
		b.sendMessage(user.ID, fmt.Sprintf("↩️ Refund of round #%v sent for %v entries", id, count))
	}

	if claimed == 0 {
		b.sendMessage(user.ID, "🚫 You have no refunds to claim")
	}
}

// errorText - returns the user facing description of a raffle error
func errorText(err error) string {
	switch {
	case errors.Is(err, raffle.ErrAlreadyPaid):
		return "it was already paid"
	case errors.Is(err, raffle.ErrNotOwner):
		return "only the administrator can do that"
	case errors.Is(err, raffle.ErrRoundNotOpen):
		return "the round is closed"
	case errors.Is(err, raffle.ErrInsufficientPayment):
		return "the payment is below the entrance fee"
	case errors.Is(err, raffle.ErrRoundNotFailed):
		return "the round did not fail"
	case errors.Is(err, raffle.ErrNoWinner):
		return "the round has no winner"
	case errors.Is(err, raffle.ErrRoundNotFound):
		return "unknown round"
	case errors.Is(err, raffle.ErrTransferUnconfirmed):
		return "the transfer could not be confirmed, an administrator will look into it"
	case errors.Is(err, raffle.ErrTransferFailed):
		return "the transfer failed, please try again later"
	}

	return err.Error()
}
