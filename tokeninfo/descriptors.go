package tokeninfo

// Descriptor holds the descriptive fields the dashboard's info panel renders
type Descriptor struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Description   string `json:"description"`
	Issuer        string `json:"issuer"`
	LaunchDate    string `json:"launch_date"`
	Website       string `json:"website"`
	MarketCapRank string `json:"market_cap_rank"`
	Blockchain    string `json:"blockchain"`
}

// Category classifies an identifier for the UI badge
type Category string

const (
	CategoryStablecoin Category = "stablecoin"
	CategoryLST        Category = "lst"
	CategoryCustom     Category = "custom"
)

// Placeholder literals used when a field cannot be resolved
const (
	unknownField       = "不明"
	noDescription      = "情報がありません"
	fetchFailedMessage = "情報を取得できませんでした"
)

// StablecoinDescriptors are the hand-authored descriptors for the default
// stablecoin set
var StablecoinDescriptors = map[string]Descriptor{
	"usdt": {
		Name:          "Tether",
		Symbol:        "USDT",
		Description:   "Tether (USDT)は、米ドルに価格が連動するように設計されたステーブルコインです。各USDTは1米ドルの価値を持つ資産によって裏付けられています。",
		Issuer:        "Tether Limited",
		LaunchDate:    "2014年10月",
		Website:       "https://tether.to/",
		MarketCapRank: "3位前後（変動あり）",
		Blockchain:    "マルチチェーン（Ethereum, Tron, Solana, その他）",
	},
	"usdc": {
		Name:          "USD Coin",
		Symbol:        "USDC",
		Description:   "USD Coin (USDC)は、米ドルに1:1で価格が連動するステーブルコインです。Circle社とCoinbase社が共同で設立したCENTRE consortiumによって発行されています。",
		Issuer:        "Circle Internet Financial",
		LaunchDate:    "2018年9月",
		Website:       "https://www.circle.com/usdc",
		MarketCapRank: "5位前後（変動あり）",
		Blockchain:    "マルチチェーン（Ethereum, Solana, Avalanche, その他）",
	},
	"dai": {
		Name:          "Dai",
		Symbol:        "DAI",
		Description:   "Dai (DAI)は、MakerDAOプロトコルによって発行される分散型ステーブルコインです。暗号資産を担保として生成され、米ドルに価格が連動するように設計されています。",
		Issuer:        "MakerDAO",
		LaunchDate:    "2017年12月",
		Website:       "https://makerdao.com/",
		MarketCapRank: "20位前後（変動あり）",
		Blockchain:    "Ethereum",
	},
	"busd": {
		Name:          "Binance USD",
		Symbol:        "BUSD",
		Description:   "Binance USD (BUSD)は、Binanceと提携してPaxos Trust Companyによって発行されるステーブルコインです。米ドルに1:1で価格が連動するように設計されています。",
		Issuer:        "Paxos Trust Company",
		LaunchDate:    "2019年9月",
		Website:       "https://paxos.com/busd/",
		MarketCapRank: "以前は上位だったが、2023年以降発行停止",
		Blockchain:    "マルチチェーン（Ethereum, BNB Chain）",
	},
}

// LSTDescriptors are the hand-authored descriptors for the default liquid
// staking token set
var LSTDescriptors = map[string]Descriptor{
	"steth": {
		Name:          "Lido Staked ETH",
		Symbol:        "STETH",
		Description:   "Lido Staked ETH (stETH)は、Lidoプロトコルを通じてステーキングされたETHを表すトークンです。保有者はイーサリアムのステーキング報酬を受け取ることができます。",
		Issuer:        "Lido DAO",
		LaunchDate:    "2020年12月",
		Website:       "https://lido.fi/",
		MarketCapRank: "10位前後（変動あり）",
		Blockchain:    "Ethereum",
	},
	"reth": {
		Name:          "Rocket Pool ETH",
		Symbol:        "RETH",
		Description:   "Rocket Pool ETH (rETH)は、Rocket Poolプロトコルを通じてステーキングされたETHを表すトークンです。分散型のイーサリアムステーキングプールとして機能します。",
		Issuer:        "Rocket Pool",
		LaunchDate:    "2021年11月",
		Website:       "https://rocketpool.net/",
		MarketCapRank: "50位前後（変動あり）",
		Blockchain:    "Ethereum",
	},
	"cbeth": {
		Name:          "Coinbase Wrapped Staked ETH",
		Symbol:        "CBETH",
		Description:   "Coinbase Wrapped Staked ETH (cbETH)は、Coinbaseのステーキングサービスを通じてステーキングされたETHを表すトークンです。",
		Issuer:        "Coinbase",
		LaunchDate:    "2022年8月",
		Website:       "https://www.coinbase.com/",
		MarketCapRank: "30位前後（変動あり）",
		Blockchain:    "Ethereum",
	},
	"ldo": {
		Name:          "Lido DAO Token",
		Symbol:        "LDO",
		Description:   "Lido DAO Token (LDO)は、Lidoプロトコルの分散型自律組織（DAO）の統治トークンです。LDO保有者はプロトコルの重要な決定に投票できます。",
		Issuer:        "Lido DAO",
		LaunchDate:    "2020年12月",
		Website:       "https://lido.fi/",
		MarketCapRank: "40位前後（変動あり）",
		Blockchain:    "Ethereum",
	},
}

// upstreamIDs maps well-known identifiers to their CoinGecko ids
var upstreamIDs = map[string]string{
	"usdt":  "tether",
	"usdc":  "usd-coin",
	"dai":   "dai",
	"busd":  "binance-usd",
	"steth": "staked-ether",
	"reth":  "rocket-pool-eth",
	"cbeth": "coinbase-wrapped-staked-eth",
	"ldo":   "lido-dao",
}

// WellKnownDescriptor returns the static descriptor for a well-known
// identifier
func WellKnownDescriptor(id string) (Descriptor, bool) {
	if d, ok := StablecoinDescriptors[id]; ok {
		return d, true
	}
	if d, ok := LSTDescriptors[id]; ok {
		return d, true
	}
	return Descriptor{}, false
}

// WellKnownIDs returns all well-known identifiers in a stable order:
// stablecoins first, then LSTs
func WellKnownIDs() []string {
	return []string{"usdt", "usdc", "dai", "busd", "steth", "reth", "cbeth", "ldo"}
}

// IsWellKnown reports whether the identifier has a static descriptor
func IsWellKnown(id string) bool {
	_, ok := WellKnownDescriptor(id)
	return ok
}

// UpstreamID translates a well-known identifier to its CoinGecko id.
// Identifiers without a mapping are used as CoinGecko ids unchanged.
func UpstreamID(id string) string {
	if upstream, ok := upstreamIDs[id]; ok {
		return upstream
	}
	return id
}

// CategoryOf classifies an identifier
func CategoryOf(id string) Category {
	if _, ok := StablecoinDescriptors[id]; ok {
		return CategoryStablecoin
	}
	if _, ok := LSTDescriptors[id]; ok {
		return CategoryLST
	}
	return CategoryCustom
}
