package data

// AppConfig holds the application configuration read from config.json (or config.toml)
type AppConfig struct {
	Bot struct {
		Token   string `json:"token" toml:"token" env:"RAFFLE_BOT_TOKEN"`
		Owner   int64  `json:"owner" toml:"owner" env:"RAFFLE_BOT_OWNER"`
		Group   string `json:"group" toml:"group"`
		GroupID int64  `json:"groupID" toml:"groupID"`
	} `json:"bot" toml:"bot"`
	Seedphrase string `json:"seed" toml:"seed" env:"RAFFLE_SEED"`
	Network    struct {
		Proxy               string `json:"proxy" toml:"proxy" env:"RAFFLE_PROXY"`
		ExplorerTransaction string `json:"explorerTransaction" toml:"explorerTransaction"`
		ExplorerAccount     string `json:"explorerAccount" toml:"explorerAccount"`
	} `json:"network" toml:"network"`
	Raffle struct {
		Owner               string `json:"owner" toml:"owner" env:"RAFFLE_OWNER"`
		EntranceFee         string `json:"entranceFee" toml:"entranceFee"`
		Interval            int64  `json:"interval" toml:"interval"`
		MinimumPayout       string `json:"minimumPayout" toml:"minimumPayout"`
		GateUpkeepOnMinimum bool   `json:"gateUpkeepOnMinimum" toml:"gateUpkeepOnMinimum"`
		TransferCost        string `json:"transferCost" toml:"transferCost"`
		KeyHash             string `json:"keyHash" toml:"keyHash"`
		SubscriptionID      uint64 `json:"subscriptionID" toml:"subscriptionID"`
		Confirmations       uint16 `json:"confirmations" toml:"confirmations"`
		CallbackGasLimit    uint32 `json:"callbackGasLimit" toml:"callbackGasLimit"`
		NumWords            uint32 `json:"numWords" toml:"numWords"`
	} `json:"raffle" toml:"raffle"`
	Oracle struct {
		SeedIndex int64 `json:"seedIndex" toml:"seedIndex"`
		Period    int64 `json:"period" toml:"period"`
	} `json:"oracle" toml:"oracle"`
	Storage struct {
		Path string `json:"path" toml:"path" env:"RAFFLE_DB"`
	} `json:"storage" toml:"storage"`
	API struct {
		Listen string `json:"listen" toml:"listen" env:"RAFFLE_API_LISTEN"`
	} `json:"api" toml:"api"`
	LogLevel string `json:"logLevel" toml:"logLevel" env:"RAFFLE_LOG_LEVEL"`
}
