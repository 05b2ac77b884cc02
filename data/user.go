package data

// User is a Telegram user and the wallet derived for it
type User struct {
	ID     int64
	Wallet string
}

type Telegram struct {
	ID        int64
	UserName  string
	FirstName string
	LastName  string
}
