package ethprovider_test

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairfund/fairfund/internal/ethprovider"
	"github.com/fairfund/fairfund/internal/wallet"
	funderr "github.com/fairfund/fairfund/pkg/errors"
)

const testAccount = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

type stubBackend struct {
	chainID *big.Int
	balance *big.Int

	chainErr   error
	balanceErr error
	closed     atomic.Bool
}

func (s *stubBackend) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if s.balanceErr != nil {
		return nil, s.balanceErr
	}
	return s.balance, nil
}

func (s *stubBackend) ChainID(_ context.Context) (*big.Int, error) {
	if s.chainErr != nil {
		return nil, s.chainErr
	}
	return s.chainID, nil
}

func (s *stubBackend) Close() { s.closed.Store(true) }

func dialerFor(backend ethprovider.Backend, err error) ethprovider.Dialer {
	return func(_ context.Context, _ string) (ethprovider.Backend, error) {
		if err != nil {
			return nil, err
		}
		return backend, nil
	}
}

func TestNew_RequiresRPCURL(t *testing.T) {
	t.Parallel()

	_, err := ethprovider.New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, funderr.ErrProviderUnavailable)

	_, err = ethprovider.New(&ethprovider.Options{})
	require.Error(t, err)
}

func TestActivate_ReturnsAccount(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{chainID: big.NewInt(1)}
	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		ChainID: 1,
		Account: testAccount,
		Dialer:  dialerFor(backend, nil),
	})
	require.NoError(t, err)

	addr, err := p.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount).Hex(), addr)
}

func TestActivate_DialFailureIsNoProvider(t *testing.T) {
	t.Parallel()

	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		Account: testAccount,
		Dialer:  dialerFor(nil, errors.New("connection refused")),
	})
	require.NoError(t, err)

	_, err = p.Activate(context.Background())
	require.Error(t, err)

	var actErr *wallet.ActivationError
	require.ErrorAs(t, err, &actErr)
	assert.Equal(t, wallet.FailureNoProvider, actErr.Kind)
}

func TestActivate_ChainMismatchIsUnsupported(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{chainID: big.NewInt(5)}
	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		ChainID: 1,
		Account: testAccount,
		Dialer:  dialerFor(backend, nil),
	})
	require.NoError(t, err)

	_, err = p.Activate(context.Background())
	require.Error(t, err)

	var actErr *wallet.ActivationError
	require.ErrorAs(t, err, &actErr)
	assert.Equal(t, wallet.FailureUnsupportedChain, actErr.Kind)
	assert.True(t, backend.closed.Load())
}

func TestActivate_InvalidAccountRejected(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{chainID: big.NewInt(1)}
	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		ChainID: 1,
		Account: "not-an-address",
		Dialer:  dialerFor(backend, nil),
	})
	require.NoError(t, err)

	_, err = p.Activate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, funderr.ErrInvalidInput)
}

func TestReadBalance(t *testing.T) {
	t.Parallel()

	wei, ok := new(big.Int).SetString("123450000000000000000", 10)
	require.True(t, ok)

	backend := &stubBackend{chainID: big.NewInt(1), balance: wei}
	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		Account: testAccount,
		Dialer:  dialerFor(backend, nil),
	})
	require.NoError(t, err)

	balance, err := p.ReadBalance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, wei, balance)
}

func TestReadBalance_InvalidAddress(t *testing.T) {
	t.Parallel()

	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL: "http://localhost:8545",
		Dialer: dialerFor(&stubBackend{}, nil),
	})
	require.NoError(t, err)

	_, err = p.ReadBalance(context.Background(), "bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, funderr.ErrInvalidInput)
}

func TestResetSession_ClosesBackend(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{chainID: big.NewInt(1)}
	p, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		ChainID: 1,
		Account: testAccount,
		Dialer:  dialerFor(backend, nil),
	})
	require.NoError(t, err)

	_, err = p.Activate(context.Background())
	require.NoError(t, err)

	p.ResetSession()
	assert.True(t, backend.closed.Load())
}

func TestUnlocked(t *testing.T) {
	t.Parallel()

	withAccount, err := ethprovider.New(&ethprovider.Options{
		RPCURL:  "http://localhost:8545",
		Account: testAccount,
	})
	require.NoError(t, err)

	unlocked, err := withAccount.Unlocked(context.Background())
	require.NoError(t, err)
	assert.True(t, unlocked)

	withoutAccount, err := ethprovider.New(&ethprovider.Options{
		RPCURL: "http://localhost:8545",
	})
	require.NoError(t, err)

	unlocked, err = withoutAccount.Unlocked(context.Background())
	require.NoError(t, err)
	assert.False(t, unlocked)
}
