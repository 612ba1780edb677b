package txcache

// QueryOptions defines filters and paging for transaction queries
type QueryOptions struct {
	ChainID *int64
	Status  *Status
	Type    *Type
	Address *string
	Limit   int
	Offset  int
}

// QueryOption is a functional option for querying transactions
type QueryOption func(*QueryOptions)

// WithChainID restricts results to one chain
func WithChainID(chainID int64) QueryOption {
	return func(opts *QueryOptions) {
		opts.ChainID = &chainID
	}
}

// WithStatus restricts results to one status
func WithStatus(status Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithType restricts results to one transaction type
func WithType(txType Type) QueryOption {
	return func(opts *QueryOptions) {
		opts.Type = &txType
	}
}

// WithAddress restricts results to transactions sent from or to address
func WithAddress(address string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Address = &address
	}
}

// WithLimit caps the number of results. Zero means no cap.
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}

// WithOffset skips the first offset results
func WithOffset(offset int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Offset = offset
	}
}

func collect(opts []QueryOption) *QueryOptions {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
