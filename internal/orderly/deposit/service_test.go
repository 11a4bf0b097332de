package deposit_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github/starchild/orderly-bridge/internal/chain"
	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/deposit"
)

var (
	walletAddress = common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e")
	approveHash   = common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001")
	depositHash   = common.HexToHash("0xbbbb000000000000000000000000000000000000000000000000000000000002")
)

type fakeReader struct {
	balance    *big.Int
	allowances []*big.Int // consumed per TokenAllowance call, last repeats
	fee        *big.Int
	waitErr    map[common.Hash]error

	calls          []string
	allowanceCalls int
}

func (f *fakeReader) TokenBalance(context.Context, common.Address, common.Address) (*big.Int, error) {
	f.calls = append(f.calls, "balance")
	return f.balance, nil
}

func (f *fakeReader) TokenAllowance(context.Context, common.Address, common.Address, common.Address) (*big.Int, error) {
	f.calls = append(f.calls, "allowance")
	idx := f.allowanceCalls
	if idx >= len(f.allowances) {
		idx = len(f.allowances) - 1
	}
	f.allowanceCalls++
	return f.allowances[idx], nil
}

func (f *fakeReader) TokenDecimals(context.Context, common.Address) (uint8, error) {
	f.calls = append(f.calls, "decimals")
	return 6, nil
}

func (f *fakeReader) DepositFee(context.Context, common.Address, common.Address, chain.DepositData) (*big.Int, error) {
	f.calls = append(f.calls, "fee")
	return f.fee, nil
}

func (f *fakeReader) WaitMined(_ context.Context, txHash common.Hash, _ time.Duration) (*types.Receipt, error) {
	f.calls = append(f.calls, "wait:"+txHash.Hex())
	if err, ok := f.waitErr[txHash]; ok {
		return nil, err
	}
	return &types.Receipt{TxHash: txHash, Status: types.ReceiptStatusSuccessful}, nil
}

type fakeCustody struct {
	sent    []*custody.TransactionRequest
	hashes  []common.Hash
	sendErr error
}

func (f *fakeCustody) ResolveAddress(context.Context, string) (common.Address, error) {
	return walletAddress, nil
}

func (f *fakeCustody) SignTypedData(context.Context, string, apitypes.TypedData) (string, error) {
	return "", errors.New("not supported")
}

func (f *fakeCustody) SendTransaction(_ context.Context, _ string, txReq *custody.TransactionRequest) (common.Hash, error) {
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sent = append(f.sent, txReq)
	return f.hashes[len(f.sent)-1], nil
}

func newService(custodyFake *fakeCustody, reader *fakeReader) deposit.Service {
	return deposit.NewService(custodyFake, "starchild",
		deposit.WithReaderFactory(func(chain.Network) (deposit.ChainReader, error) {
			return reader, nil
		}),
		deposit.WithAllowancePolling(3, time.Millisecond),
		deposit.WithConfirmTimeout(time.Second),
	)
}

func TestDepositFullApprovalPath(t *testing.T) {
	reader := &fakeReader{
		balance:    big.NewInt(5_000_000),
		allowances: []*big.Int{big.NewInt(0), big.NewInt(1_500_000)},
		fee:        big.NewInt(777),
	}
	custodyFake := &fakeCustody{hashes: []common.Hash{approveHash, depositHash}}

	result, err := newService(custodyFake, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)
	require.Equal(t, deposit.StepDone, result.Step)
	require.Equal(t, big.NewInt(1_500_000), result.Amount)
	require.Equal(t, big.NewInt(777), result.Fee)
	require.Equal(t, approveHash, result.ApproveTxHash)
	require.Equal(t, depositHash, result.DepositTxHash)

	// Approve goes to the token with no value; deposit goes to the vault
	// carrying the quoted fee.
	require.Len(t, custodyFake.sent, 2)
	base, err := chain.Lookup(8453)
	require.NoError(t, err)
	require.Equal(t, base.USDC, custodyFake.sent[0].To)
	require.Nil(t, custodyFake.sent[0].Value)
	require.Equal(t, base.Vault, custodyFake.sent[1].To)
	require.Equal(t, big.NewInt(777), custodyFake.sent[1].Value)

	require.Equal(t, []string{
		"decimals",
		"balance",
		"allowance",
		"wait:" + approveHash.Hex(),
		"allowance",
		"fee",
		"wait:" + depositHash.Hex(),
	}, reader.calls)
}

func TestDepositSkipsApproveWhenAllowanceCovers(t *testing.T) {
	reader := &fakeReader{
		balance:    big.NewInt(5_000_000),
		allowances: []*big.Int{big.NewInt(2_000_000)},
		fee:        big.NewInt(1),
	}
	custodyFake := &fakeCustody{hashes: []common.Hash{depositHash}}

	result, err := newService(custodyFake, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)
	require.Equal(t, deposit.StepDone, result.Step)
	require.Equal(t, common.Hash{}, result.ApproveTxHash)
	require.Len(t, custodyFake.sent, 1)
	require.NotContains(t, reader.calls, "wait:"+approveHash.Hex())
}

func TestDepositInsufficientFundsBeforeAnyBroadcast(t *testing.T) {
	reader := &fakeReader{
		balance:    big.NewInt(100),
		allowances: []*big.Int{big.NewInt(0)},
	}
	custodyFake := &fakeCustody{}

	result, err := newService(custodyFake, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.5"),
	})
	require.ErrorIs(t, err, orderly.ErrInsufficientFunds)
	require.Equal(t, deposit.StepCheckBalance, result.Step)
	require.Empty(t, custodyFake.sent)
}

func TestDepositAllowanceNeverObserved(t *testing.T) {
	reader := &fakeReader{
		balance:    big.NewInt(5_000_000),
		allowances: []*big.Int{big.NewInt(0)}, // stays zero across polls
	}
	custodyFake := &fakeCustody{hashes: []common.Hash{approveHash}}

	result, err := newService(custodyFake, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.5"),
	})
	require.ErrorIs(t, err, orderly.ErrAllowanceNotObserved)
	require.Equal(t, deposit.StepVerifyAllowance, result.Step)
	require.Equal(t, approveHash, result.ApproveTxHash)
	require.Len(t, custodyFake.sent, 1)
}

func TestDepositConfirmationTimeoutSurfacesHash(t *testing.T) {
	reader := &fakeReader{
		balance:    big.NewInt(5_000_000),
		allowances: []*big.Int{big.NewInt(2_000_000)},
		fee:        big.NewInt(1),
		waitErr: map[common.Hash]error{
			depositHash: errors.Wrap(orderly.ErrConfirmationTimeout, "not mined"),
		},
	}
	custodyFake := &fakeCustody{hashes: []common.Hash{depositHash}}

	result, err := newService(custodyFake, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.5"),
	})
	require.ErrorIs(t, err, orderly.ErrConfirmationTimeout)
	require.Equal(t, deposit.StepAwaitDeposit, result.Step)
	require.Equal(t, depositHash, result.DepositTxHash)
}

func TestDepositResumeWaitsWithoutRebroadcast(t *testing.T) {
	reader := &fakeReader{
		balance:    big.NewInt(5_000_000),
		allowances: []*big.Int{big.NewInt(0)},
	}
	custodyFake := &fakeCustody{}

	result, err := newService(custodyFake, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.5"),
		Resume:   &deposit.ResumePoint{Step: deposit.StepAwaitDeposit, TxHash: depositHash},
	})
	require.NoError(t, err)
	require.Equal(t, deposit.StepDone, result.Step)
	require.Equal(t, depositHash, result.DepositTxHash)

	// Resuming at the wait step must not touch custody at all.
	require.Empty(t, custodyFake.sent)
	require.Equal(t, []string{"decimals", "wait:" + depositHash.Hex()}, reader.calls)
}

func TestDepositRejectsExcessPrecision(t *testing.T) {
	reader := &fakeReader{balance: big.NewInt(1), allowances: []*big.Int{big.NewInt(0)}}

	_, err := newService(&fakeCustody{}, reader).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.RequireFromString("1.0000001"), // token only has 6 decimals
	})
	require.ErrorIs(t, err, orderly.ErrInvalidAmount)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	_, err := newService(&fakeCustody{}, &fakeReader{}).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  8453,
		Amount:   decimal.Zero,
	})
	require.ErrorIs(t, err, orderly.ErrInvalidAmount)
}

func TestDepositRejectsUnknownChain(t *testing.T) {
	_, err := newService(&fakeCustody{}, &fakeReader{}).Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  31337,
		Amount:   decimal.RequireFromString("1.5"),
	})
	require.ErrorIs(t, err, orderly.ErrInvalidArgument)
}

func TestAmountScalingRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		amount   string
		decimals int32
		units    string
	}{
		{"1", 6, "1000000"},
		{"1.001", 6, "1001000"},
		{"0.000001", 6, "1"},
		{"2500000.123456", 6, "2500000123456"},
		{"3.14", 18, "3140000000000000000"},
	} {
		amount := decimal.RequireFromString(tc.amount)

		scaled := amount.Shift(tc.decimals)
		require.True(t, scaled.IsInteger(), "%s at %d decimals", tc.amount, tc.decimals)
		require.Equal(t, tc.units, scaled.String())

		// Scaling back down must reproduce the human amount exactly.
		require.True(t, scaled.Shift(-tc.decimals).Equal(amount))
	}
}
