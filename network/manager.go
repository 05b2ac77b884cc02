package network

import (
	"context"
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/utils"
	"github.com/ElrondNetwork/elrond-go-core/core"
	"github.com/ElrondNetwork/elrond-go-core/core/pubkeyConverter"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ElrondNetwork/elrond-sdk-erdgo/blockchain"
	"github.com/ElrondNetwork/elrond-sdk-erdgo/builders"
	sdkData "github.com/ElrondNetwork/elrond-sdk-erdgo/data"
	"github.com/ElrondNetwork/elrond-sdk-erdgo/interactors"
	"github.com/algorand/go-deadlock"
	"golang.org/x/xerrors"
)

var log = logger.GetOrCreate("network")

// NetworkManager - holds the required fields of a network manager. It also
// moves value out of the custody wallet on behalf of the raffle.
type NetworkManager struct {
	NetworkConfig *sdkData.NetworkConfig
	cfg           *data.AppConfig

	proxy blockchain.Proxy
	conv  core.PubkeyConverter

	custodyKey     []byte
	custodyAddress string

	mut       deadlock.Mutex
	nonce     uint64
	nonceSync bool
}

// NewNetworkManager - creates a new NetworkManager object. Transfers are
// signed with custodyKey.
func NewNetworkManager(cfg *data.AppConfig, custodyKey []byte) (*NetworkManager, error) {
	proxy := blockchain.NewElrondProxy(cfg.Network.Proxy, nil)

	networkConfig, err := proxy.GetNetworkConfig(context.Background())
	if err != nil {
		log.Error("can not get network config from proxy", "error", err)
		return nil, err
	}

	conv, err := pubkeyConverter.NewBech32PubkeyConverter(32, log)
	if err != nil {
		log.Error("can not create converter", "error", err)
		return nil, err
	}

	networkManager := &NetworkManager{
		NetworkConfig:  networkConfig,
		cfg:            cfg,
		proxy:          proxy,
		conv:           conv,
		custodyKey:     custodyKey,
		custodyAddress: utils.GetAddressFromPrivateKey(custodyKey),
	}
	log.Info("network manager ready", "chain", networkConfig.ChainID, "custody", networkManager.custodyAddress)

	return networkManager, nil
}

// CustodyAddress - returns the wallet entries are paid into
func (nm *NetworkManager) CustodyAddress() string {
	return nm.custodyAddress
}

func (nm *NetworkManager) IsValidAddress(address string) bool {
	_, err := nm.conv.Decode(address)
	return err == nil
}

func (nm *NetworkManager) GetBalance(address string) (float64, error) {
	pubkey, err := nm.conv.Decode(address)
	if err != nil {
		log.Error("getBalance - Decode", "address", address, "error", err)
		return 0, err
	}

	account, err := nm.proxy.GetAccount(context.Background(), sdkData.NewAddressFromBytes(pubkey))
	if err != nil {
		log.Error("getBalance - GetAccount", "address", address, "error", err)
		return 0, err
	}

	balance, err := account.GetBalance(nm.NetworkConfig.Denomination)
	if err != nil {
		log.Error("getBalance - GetBalance", "address", address, "error", err)
		return 0, err
	}

	return balance, nil
}

func (nm *NetworkManager) GetAddressNonce(address string) (uint64, error) {
	pubkey, err := nm.conv.Decode(address)
	if err != nil {
		log.Error("getAddressNonce - Decode", "address", address, "error", err)
		return 0, err
	}

	account, err := nm.proxy.GetAccount(context.Background(), sdkData.NewAddressFromBytes(pubkey))
	if err != nil {
		log.Error("getAddressNonce - GetAccount", "address", address, "error", err)
		return 0, err
	}

	return account.Nonce, nil
}

// TransactionStatus - returns the status the proxy reports for a transaction hash
func (nm *NetworkManager) TransactionStatus(ctx context.Context, hash string) (string, error) {
	ep := blockchain.NewElrondProxy(nm.cfg.Network.Proxy, nil)
	return ep.GetTransactionStatus(ctx, hash)
}

// SendTransaction - signs and sends a transaction of value to receiver. A
// nonce at or above utils.AutoNonce lets the proxy pick the account nonce.
// Errors raised before the transaction reaches the proxy match
// raffle.ErrNotSent.
func (nm *NetworkManager) SendTransaction(ctx context.Context, privateKey []byte, receiver string, value *big.Int, gasLimit uint64, txData string, nonce uint64) (string, error) {
	if !nm.IsValidAddress(receiver) {
		return "", notSent(errInvalidAddress)
	}

	ep := blockchain.NewElrondProxy(nm.cfg.Network.Proxy, nil)
	w := interactors.NewWallet()
	builder, _ := builders.NewTxBuilder(blockchain.NewTxSigner())
	ti, err := interactors.NewTransactionInteractor(ep, builder)
	if err != nil {
		log.Error("error creating transaction interactor", "error", err)
		return "", notSent(err)
	}

	senderAddress, err := w.GetAddressFromPrivateKey(privateKey)
	if err != nil {
		log.Error("unable to load the address from the private key", "error", err)
		return "", notSent(err)
	}

	txArgs, err := ep.GetDefaultTransactionArguments(ctx, senderAddress, nm.NetworkConfig)
	if err != nil {
		log.Error("unable to prepare the transaction creation arguments", "error", err)
		return "", notSent(err)
	}

	if nonce < utils.AutoNonce {
		txArgs.Nonce = nonce
	}

	txArgs.GasLimit = gasLimit
	txArgs.RcvAddr = receiver
	txArgs.Data = []byte(txData)
	if value != nil {
		txArgs.Value = value.String()
	}

	tx, err := ti.ApplySignatureAndGenerateTx(privateKey, txArgs)
	if err != nil {
		log.Error("unable to sign transaction", "error", err)
		return "", notSent(err)
	}
	if err := ctx.Err(); err != nil {
		return "", notSent(err)
	}

	return ti.SendTransaction(ctx, tx)
}

// TransferCost - returns the network fee of one plain transfer at the
// minimum gas price
func (nm *NetworkManager) TransferCost() *big.Int {
	if nm.NetworkConfig == nil {
		return big.NewInt(0)
	}

	cost := new(big.Int).SetUint64(nm.NetworkConfig.MinGasPrice)
	return cost.Mul(cost, big.NewInt(utils.TransferGasLimit))
}

// Transfer - sends amount from the custody wallet to the receiver. Transfers
// are serialized so that consecutive ones use consecutive nonces. An error
// that does not match raffle.ErrNotSent leaves the outcome unknown.
func (nm *NetworkManager) Transfer(ctx context.Context, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return notSent(errInvalidAmount)
	}
	if !nm.IsValidAddress(to) {
		return notSent(errInvalidAddress)
	}
	if err := ctx.Err(); err != nil {
		return notSent(err)
	}

	nm.mut.Lock()
	defer nm.mut.Unlock()

	if !nm.nonceSync {
		nonce, err := nm.GetAddressNonce(nm.custodyAddress)
		if err != nil {
			return notSent(xerrors.Errorf("custody nonce: %w", err))
		}
		nm.nonce = nonce
		nm.nonceSync = true
	}

	hash, err := nm.SendTransaction(ctx, nm.custodyKey, to, amount, utils.TransferGasLimit, "", nm.nonce)
	if err != nil {
		nm.nonceSync = false
		log.Warn("transfer failed", "to", to, "amount", amount.String(), "error", err)
		return err
	}
	nm.nonce++

	log.Info("transfer sent", "to", to, "amount", amount.String(), "hash", hash)

	return nil
}
