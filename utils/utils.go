package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/ElrondNetwork/elrond-go-crypto/signing"
	"github.com/ElrondNetwork/elrond-go-crypto/signing/ed25519"
	"github.com/btcsuite/btcutil/bech32"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/tyler-smith/go-bip39"
)

const hardened = uint32(0x80000000)

type bip32Path []uint32

type bip32 struct {
	Key       []byte
	ChainCode []byte
}

var basePath = bip32Path{
	44 + hardened,
	508 + hardened,
	hardened,
	hardened,
	hardened,
}

func FormatTgUser(user *tgbotapi.User) string {
	name := fmt.Sprintf("%s %s [%v]", user.FirstName, user.LastName, user.ID)
	name = strings.TrimSpace(name)
	name = strings.Replace(name, "  ", " ", 1)
	if user.UserName != "" {
		name = fmt.Sprintf("@%s (%s)", user.UserName, name)
	}

	return name
}

func FormatDbTgUser(user *data.Telegram) string {
	if user.UserName != "" {
		return "@" + user.UserName
	}

	name := fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	name = strings.TrimSpace(name)
	name = strings.Replace(name, "  ", " ", 1)
	name = fmt.Sprintf("[%s](tg://user?id=%v)", name, user.ID)

	return name
}

// GetPrivateKeyFromSeed - derives the ed25519 key of account index from the seed phrase
func GetPrivateKeyFromSeed(seedphrase string, index int64) []byte {
	seed := bip39.NewSeed(seedphrase, "")
	path := make(bip32Path, len(basePath))
	copy(path, basePath)
	path[3] = hardened + uint32(index>>32)
	path[4] = hardened + uint32(index&0xFFFFFFFF)
	keyData := derivePrivateKey(seed, path)

	return keyData.Key
}

func GetAddressFromPrivateKey(privBytes []byte) string {
	_suite := ed25519.NewEd25519()
	keyGen := signing.NewKeyGenerator(_suite)
	txSignPrivKey, _ := keyGen.PrivateKeyFromByteArray(privBytes)
	pubKey := txSignPrivKey.GeneratePublic()
	pubBytes, _ := pubKey.ToByteArray()
	b, _ := bech32.ConvertBits(pubBytes, 8, 5, true)
	s, _ := bech32.Encode("erd", b)

	return s
}

func derivePrivateKey(seed []byte, path bip32Path) *bip32 {
	b := &bip32{}
	digest := hmac.New(sha512.New, []byte("ed25519 seed"))
	digest.Write(seed)
	intermediary := digest.Sum(nil)
	b.Key = intermediary[:32]
	b.ChainCode = intermediary[32:]
	for _, childIdx := range path {
		data := make([]byte, 1+32+4)
		data[0] = 0x00
		copy(data[1:1+32], b.Key)
		binary.BigEndian.PutUint32(data[1+32:1+32+4], childIdx)
		digest = hmac.New(sha512.New, b.ChainCode)
		digest.Write(data)
		intermediary = digest.Sum(nil)
		b.Key = intermediary[:32]
		b.ChainCode = intermediary[32:]
	}
	return b
}

// Denominate - converts an amount in the smallest unit to a float with decimals
func Denominate(amount *big.Int, decimals int) float64 {
	if amount == nil {
		return 0
	}

	fDenom := big.NewFloat(1)
	for i := 0; i < decimals; i++ {
		fDenom.Mul(fDenom, big.NewFloat(10))
	}
	fAmount := new(big.Float).SetInt(amount)
	fAmount.Quo(fAmount, fDenom)
	res, _ := fAmount.Float64()

	return res
}

// ParseAmount - parses a decimal amount like "0.5" into the smallest unit
func ParseAmount(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return nil, errInvalidAmount
	}

	parts := strings.SplitN(s, ".", 2)
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > decimals {
		return nil, errInvalidAmount
	}
	frac += strings.Repeat("0", decimals-len(frac))

	amount, ok := big.NewInt(0).SetString(parts[0]+frac, 10)
	if !ok {
		return nil, errInvalidAmount
	}

	return amount, nil
}

func NicePrice(f float64, decimals int) string {
	s := fmt.Sprintf("%v", uint64(f))
	for idx := len(s) - 3; idx > 0; idx -= 3 {
		s = s[:idx] + "," + s[idx:]
	}
	if decimals > 0 {
		s += "."
	}
	for i := 0; i < decimals; i++ {
		f -= math.Trunc(f)
		f *= 10
		s += fmt.Sprintf("%v", uint64(f))
	}

	if decimals == -1 { // auto
		if math.Ceil(f) == f {
			return s
		}
		s += "."
		nnd := 0
		nndFound := false
		for i := 0; i < 18; i++ {
			f -= math.Trunc(f)
			f *= 10
			d := uint64(f)
			s += fmt.Sprintf("%v", d)
			if d != 0 && !nndFound {
				nndFound = true
			}
			if nndFound {
				nnd++
				if nnd >= 4 {
					for strings.HasSuffix(s, "0") {
						s = strings.TrimSuffix(s, "0")
					}
					s = strings.TrimSuffix(s, ".")
					break
				}
			}
		}
	}

	return s
}

func ShortenAddress(address string) string {
	l := len(address)
	if l < 14 {
		return ""
	}

	return address[:8] + "..." + address[l-6:]
}
