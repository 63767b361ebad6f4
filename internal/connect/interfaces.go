package connect

import (
	"context"
	"math/big"
)

// BalanceReader reads a raw token balance in minor units for an address.
// Supplied by the active wallet provider once a connection exists.
type BalanceReader interface {
	ReadBalance(ctx context.Context, address string) (*big.Int, error)
}
