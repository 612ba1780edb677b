package chain

// Network describes an EVM chain the wallet knows how to display.
type Network struct {
	ChainID      int64
	Name         string
	NativeSymbol string
	Testnet      bool
}

var networks = map[int64]Network{
	1:        {ChainID: 1, Name: "Ethereum", NativeSymbol: "ETH"},
	10:       {ChainID: 10, Name: "OP Mainnet", NativeSymbol: "ETH"},
	56:       {ChainID: 56, Name: "BNB Smart Chain", NativeSymbol: "BNB"},
	137:      {ChainID: 137, Name: "Polygon", NativeSymbol: "POL"},
	8453:     {ChainID: 8453, Name: "Base", NativeSymbol: "ETH"},
	42161:    {ChainID: 42161, Name: "Arbitrum One", NativeSymbol: "ETH"},
	43114:    {ChainID: 43114, Name: "Avalanche C-Chain", NativeSymbol: "AVAX"},
	11155111: {ChainID: 11155111, Name: "Sepolia", NativeSymbol: "ETH", Testnet: true},
}

// LookupNetwork returns the known network for chainID.
func LookupNetwork(chainID int64) (Network, bool) {
	n, ok := networks[chainID]
	return n, ok
}

// NativeSymbol returns the native coin symbol of chainID, "ETH" for unknown chains.
func NativeSymbol(chainID int64) string {
	if n, ok := networks[chainID]; ok {
		return n.NativeSymbol
	}
	return "ETH"
}
