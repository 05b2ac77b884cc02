package bot

import (
	"context"
	"math/big"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// Messenger sends requests to Telegram
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Chain is the network access the bot needs: user wallets pay entries into
// custody and custody sends bounced entries back
type Chain interface {
	CustodyAddress() string
	IsValidAddress(address string) bool
	GetBalance(address string) (float64, error)
	GetAddressNonce(address string) (uint64, error)
	TransactionStatus(ctx context.Context, hash string) (string, error)
	SendTransaction(ctx context.Context, privateKey []byte, receiver string, value *big.Int, gasLimit uint64, txData string, nonce uint64) (string, error)
	Transfer(ctx context.Context, to string, amount *big.Int) error
	TransferCost() *big.Int
}
