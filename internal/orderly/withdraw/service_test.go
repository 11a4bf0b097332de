package withdraw_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/auth"
	"github/starchild/orderly-bridge/internal/orderly/client"
	"github/starchild/orderly-bridge/internal/orderly/keys"
	"github/starchild/orderly-bridge/internal/orderly/message"
	"github/starchild/orderly-bridge/internal/orderly/withdraw"
)

var (
	walletAddress = common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e")
	testSignature = "0x" + strings.Repeat("cd", 64) + "1c"
)

type fakeCustody struct {
	resolved int
	signed   []apitypes.TypedData
}

func (f *fakeCustody) ResolveAddress(context.Context, string) (common.Address, error) {
	f.resolved++
	return walletAddress, nil
}

func (f *fakeCustody) SignTypedData(_ context.Context, _ string, typedData apitypes.TypedData) (string, error) {
	f.signed = append(f.signed, typedData)
	return testSignature, nil
}

func (f *fakeCustody) SendTransaction(context.Context, string, *custody.TransactionRequest) (common.Hash, error) {
	return common.Hash{}, nil
}

type fakeExchange struct {
	withdrawNonce uint64
	settleNonce   uint64
	nonceCalls    int
	withdrawals   []*client.SignedRequest
	settlements   []*client.SignedRequest
}

func (f *fakeExchange) WithdrawNonce(context.Context, *auth.Credentials) (uint64, error) {
	f.nonceCalls++
	return f.withdrawNonce, nil
}

func (f *fakeExchange) RequestWithdrawal(_ context.Context, _ *auth.Credentials, req *client.SignedRequest) (json.RawMessage, error) {
	f.withdrawals = append(f.withdrawals, req)
	return json.RawMessage(`{"withdraw_id":101}`), nil
}

func (f *fakeExchange) SettleNonce(context.Context, *auth.Credentials) (uint64, error) {
	f.nonceCalls++
	return f.settleNonce, nil
}

func (f *fakeExchange) RequestPnlSettlement(_ context.Context, _ *auth.Credentials, req *client.SignedRequest) (json.RawMessage, error) {
	f.settlements = append(f.settlements, req)
	return json.RawMessage(`{}`), nil
}

func testCredentials(t *testing.T) *auth.Credentials {
	t.Helper()
	keyPair, err := keys.Generate()
	require.NoError(t, err)
	return &auth.Credentials{
		AccountID: "0x" + strings.Repeat("00", 32),
		KeyPair:   keyPair,
	}
}

func newService(t *testing.T, custodyFake *fakeCustody, exchangeFake *fakeExchange) withdraw.Service {
	t.Helper()
	builder, err := message.NewBuilder("starchild", 8453)
	require.NoError(t, err)
	return withdraw.NewService(custodyFake, exchangeFake, builder)
}

func TestWithdraw(t *testing.T) {
	custodyFake := &fakeCustody{}
	exchangeFake := &fakeExchange{withdrawNonce: 42}

	result, err := newService(t, custodyFake, exchangeFake).Withdraw(context.Background(), testCredentials(t), &withdraw.Request{
		WalletID: "wal-1",
		Amount:   decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	require.Equal(t, "USDC", result.Token)
	require.Equal(t, uint64(42), result.WithdrawNonce)
	require.Equal(t, walletAddress.Hex(), result.Receiver)
	require.JSONEq(t, `{"withdraw_id":101}`, string(result.Raw))

	require.Len(t, custodyFake.signed, 1)
	require.Equal(t, "Withdraw", custodyFake.signed[0].PrimaryType)

	require.Len(t, exchangeFake.withdrawals, 1)
	req := exchangeFake.withdrawals[0]
	require.Equal(t, testSignature, req.Signature)
	require.Equal(t, walletAddress.Hex(), req.UserAddress)
	require.Equal(t, message.LedgerVerifyingContract, req.VerifyingContract)

	body, ok := req.Message.(*message.WithdrawMessage)
	require.True(t, ok)
	require.Equal(t, "2500000", body.Amount) // 2.5 USDC in 6-decimal units
	require.Equal(t, "42", body.WithdrawNonce)
	require.Equal(t, walletAddress.Hex(), body.Receiver)
}

func TestWithdrawBelowMinimumMakesNoNetworkCalls(t *testing.T) {
	custodyFake := &fakeCustody{}
	exchangeFake := &fakeExchange{}

	_, err := newService(t, custodyFake, exchangeFake).Withdraw(context.Background(), testCredentials(t), &withdraw.Request{
		WalletID: "wal-1",
		Amount:   decimal.RequireFromString("0.5"),
	})
	require.ErrorIs(t, err, orderly.ErrInvalidAmount)
	require.Zero(t, custodyFake.resolved)
	require.Zero(t, exchangeFake.nonceCalls)
}

func TestWithdrawExactMinimumAccepted(t *testing.T) {
	exchangeFake := &fakeExchange{withdrawNonce: 1}

	result, err := newService(t, &fakeCustody{}, exchangeFake).Withdraw(context.Background(), testCredentials(t), &withdraw.Request{
		WalletID: "wal-1",
		Amount:   decimal.RequireFromString("1.001"),
	})
	require.NoError(t, err)

	body := exchangeFake.withdrawals[0].Message.(*message.WithdrawMessage)
	require.Equal(t, "1001000", body.Amount)
	require.Equal(t, decimal.RequireFromString("1.001"), result.Amount)
}

func TestWithdrawExplicitReceiver(t *testing.T) {
	exchangeFake := &fakeExchange{withdrawNonce: 7}
	receiver := "0x1111111111111111111111111111111111111111"

	result, err := newService(t, &fakeCustody{}, exchangeFake).Withdraw(context.Background(), testCredentials(t), &withdraw.Request{
		WalletID: "wal-1",
		Amount:   decimal.RequireFromString("5"),
		Receiver: receiver,
	})
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(receiver).Hex(), result.Receiver)

	// The signed body receives funds at the override, but the signing
	// wallet stays the custodial address.
	body := exchangeFake.withdrawals[0].Message.(*message.WithdrawMessage)
	require.Equal(t, common.HexToAddress(receiver).Hex(), body.Receiver)
	require.Equal(t, walletAddress.Hex(), exchangeFake.withdrawals[0].UserAddress)
}

func TestWithdrawRejectsUnknownToken(t *testing.T) {
	_, err := newService(t, &fakeCustody{}, &fakeExchange{}).Withdraw(context.Background(), testCredentials(t), &withdraw.Request{
		WalletID: "wal-1",
		Token:    "DOGE",
		Amount:   decimal.RequireFromString("100"),
	})
	require.ErrorIs(t, err, orderly.ErrInvalidArgument)
}

func TestWithdrawRequiresCredentials(t *testing.T) {
	_, err := newService(t, &fakeCustody{}, &fakeExchange{}).Withdraw(context.Background(), nil, &withdraw.Request{
		WalletID: "wal-1",
		Amount:   decimal.RequireFromString("2"),
	})
	require.ErrorIs(t, err, orderly.ErrInvalidArgument)
}

func TestSettlePnl(t *testing.T) {
	custodyFake := &fakeCustody{}
	exchangeFake := &fakeExchange{settleNonce: 9}

	raw, err := newService(t, custodyFake, exchangeFake).SettlePnl(context.Background(), testCredentials(t), "wal-1")
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))

	require.Len(t, custodyFake.signed, 1)
	require.Equal(t, "SettlePnl", custodyFake.signed[0].PrimaryType)

	require.Len(t, exchangeFake.settlements, 1)
	body, ok := exchangeFake.settlements[0].Message.(*message.SettlePnlMessage)
	require.True(t, ok)
	require.Equal(t, "9", body.SettleNonce)
	require.Equal(t, message.LedgerVerifyingContract, exchangeFake.settlements[0].VerifyingContract)
}
