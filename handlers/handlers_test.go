package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bounty-board/chain"
	"bounty-board/config"
	"bounty-board/logger"
	"bounty-board/metrics"
	"bounty-board/models"
	"bounty-board/pricing"
	"bounty-board/services"
	"bounty-board/settlement"
	"bounty-board/types"
	"bounty-board/verification"
)

const (
	platformWallet = "0x384Aa214be0B279cbf211e9b2C992d8633F77848"
	assetContract  = "0x036cbd53842c5426634e7929541ec2318f3dcf7e"
	creator        = "0xe4d365a5a8fc0dcee9e3c5985d7fcbab8b4a0fe1"
	hunter         = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	fundingTx      = "0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b"
)

type fakeReader struct {
	receipts map[common.Hash]*gethtypes.Receipt
	calls    int
}

func (f *fakeReader) TransactionReceipt(_ context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
	f.calls++
	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

type fakeSender struct{ sent int }

func (f *fakeSender) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}

func (f *fakeSender) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeSender) SendTransaction(context.Context, *gethtypes.Transaction) error {
	f.sent++
	return nil
}

func paymentOf(amount *big.Int) *gethtypes.Receipt {
	return &gethtypes.Receipt{
		Status: gethtypes.ReceiptStatusSuccessful,
		Logs: []*gethtypes.Log{
			{
				Address: common.HexToAddress(assetContract),
				Topics: []common.Hash{
					chain.TransferTopic,
					common.BytesToHash(common.HexToAddress(creator).Bytes()),
					common.BytesToHash(common.HexToAddress(platformWallet).Bytes()),
				},
				Data: common.LeftPadBytes(amount.Bytes(), 32),
			},
		},
	}
}

type testEnv struct {
	app    *fiber.App
	store  *services.MemoryStore
	reader *fakeReader
	sender *fakeSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Network:        "base-sepolia",
		ChainID:        84532,
		PlatformWallet: platformWallet,
		AssetAddress:   assetContract,
		AssetDecimals:  6,
		CreationFee:    "0.001",
		PayTimeout:     300 * time.Second,
	}

	calc, err := pricing.NewCalculator(cfg)
	require.NoError(t, err)

	store := services.NewMemoryStore()
	reader := &fakeReader{receipts: map[common.Hash]*gethtypes.Receipt{}}
	verifier := verification.NewVerifier(reader, logger.NoopLogger{}, metrics.NoopRecorder{}, 5*time.Second)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := &fakeSender{}
	wallet, err := chain.NewWallet(hex.EncodeToString(crypto.FromECDSA(key)), cfg.ChainID, sender)
	require.NoError(t, err)

	executor := settlement.NewExecutor(store, wallet, logger.NoopLogger{}, metrics.NoopRecorder{})

	app := fiber.New()
	SetupRoutes(app, New(store, calc, verifier, executor, logger.NoopLogger{}))

	return &testEnv{app: app, store: store, reader: reader, sender: sender}
}

func (e *testEnv) request(t *testing.T, method, target string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func createBody() map[string]any {
	return map[string]any{
		"title":           "Fix the flaky websocket reconnect",
		"description":     "Reconnect loop drops messages under load",
		"creator_address": creator,
		"prizes": []map[string]any{
			{"rank": 1, "amount": "1.0"},
			{"rank": 2, "amount": "0.5"},
		},
	}
}

func TestCreateBounty_ChallengedWithoutPayment(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/bounties", createBody(), nil)
	require.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	challenge := decode[types.PaymentChallenge](t, resp)
	assert.Equal(t, types.X402Version, challenge.X402Version)
	assert.Equal(t, "Payment Required", challenge.Error)
	require.Len(t, challenge.Accepts, 1)

	req := challenge.Accepts[0]
	assert.Equal(t, types.SchemeExact, req.Scheme)
	assert.Equal(t, "base-sepolia", req.Network)
	assert.Equal(t, platformWallet, req.PayTo)
	assert.Equal(t, assetContract, req.Asset)
	// fee 0.001 + prizes 1.0 + 0.5 at 6 decimals
	assert.Equal(t, "1501000", req.MaxAmountRequired)

	assert.Zero(t, env.reader.calls, "a challenge must not touch the chain")
}

func TestCreateBounty_ChallengeAmountTracksRequestBody(t *testing.T) {
	env := newTestEnv(t)

	body := createBody()
	body["prizes"] = []map[string]any{{"rank": 1, "amount": "2.25"}}

	resp := env.request(t, fiber.MethodPost, "/api/bounties", body, nil)
	require.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	challenge := decode[types.PaymentChallenge](t, resp)
	require.Len(t, challenge.Accepts, 1)
	assert.Equal(t, "2251000", challenge.Accepts[0].MaxAmountRequired)
}

func TestCreateBounty_ValidPayment(t *testing.T) {
	env := newTestEnv(t)
	env.reader.receipts[common.HexToHash(fundingTx)] = paymentOf(big.NewInt(1_501_000))

	resp := env.request(t, fiber.MethodPost, "/api/bounties", createBody(),
		map[string]string{PaymentHeader: fundingTx})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	bounty := decode[models.Bounty](t, resp)
	assert.NotEmpty(t, bounty.ID)
	assert.Equal(t, models.BountyStatusOpen, bounty.Status)
	assert.Equal(t, creator, bounty.CreatorAddress)
	assert.Equal(t, fundingTx, bounty.TxHash)
	assert.Equal(t, "MULTI", bounty.Prize)
	require.Len(t, bounty.Prizes, 2)

	stored, err := env.store.GetBounty(context.Background(), bounty.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.BountyStatusOpen, stored.Status)
}

func TestCreateBounty_AmountMismatchRejected(t *testing.T) {
	env := newTestEnv(t)
	env.reader.receipts[common.HexToHash(fundingTx)] = paymentOf(big.NewInt(1_500_999))

	resp := env.request(t, fiber.MethodPost, "/api/bounties", createBody(),
		map[string]string{PaymentHeader: fundingTx})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, types.ReasonAmountMismatch, body["message"])

	bounties, err := env.store.ListBounties(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, bounties, "a rejected payment must not create a bounty")
}

func TestCreateBounty_UnknownTransactionRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/bounties", createBody(),
		map[string]string{PaymentHeader: fundingTx})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, types.ReasonTransactionNotFound, body["message"])
}

func TestCreateBounty_MalformedPaymentReference(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/bounties", createBody(),
		map[string]string{PaymentHeader: "not-a-transaction-hash"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.reader.calls)
}

func TestCreateBounty_InvalidCreatorAddress(t *testing.T) {
	env := newTestEnv(t)

	body := createBody()
	body["creator_address"] = "definitely-not-an-address"

	resp := env.request(t, fiber.MethodPost, "/api/bounties", body, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.reader.calls)
}

func TestCreateBounty_DuplicateFundingTransaction(t *testing.T) {
	env := newTestEnv(t)
	env.reader.receipts[common.HexToHash(fundingTx)] = paymentOf(big.NewInt(1_501_000))

	resp := env.request(t, fiber.MethodPost, "/api/bounties", createBody(),
		map[string]string{PaymentHeader: fundingTx})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.request(t, fiber.MethodPost, "/api/bounties", createBody(),
		map[string]string{PaymentHeader: fundingTx})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	bounties, err := env.store.ListBounties(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, bounties, 1)
}

func TestGetBounty_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodGet, "/api/bounties/missing", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListBounties_StatusFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.CreateBounty(ctx, &models.Bounty{
		ID: "open-1", Title: "a", CreatorAddress: creator,
		Status: models.BountyStatusOpen, TxHash: "0x01",
	}))
	require.NoError(t, env.store.CreateBounty(ctx, &models.Bounty{
		ID: "paid-1", Title: "b", CreatorAddress: creator,
		Status: models.BountyStatusPaid, TxHash: "0x02",
	}))

	resp := env.request(t, fiber.MethodGet, "/api/bounties?status=OPEN", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	bounties := decode[[]models.Bounty](t, resp)
	require.Len(t, bounties, 1)
	assert.Equal(t, "open-1", bounties[0].ID)
}

func seedOpenBounty(t *testing.T, env *testEnv) {
	t.Helper()
	require.NoError(t, env.store.CreateBounty(context.Background(), &models.Bounty{
		ID:             "b1",
		Title:          "triage the crash",
		Prizes:         []types.PrizeTier{{Rank: 1, Amount: "0.5"}},
		Prize:          "MULTI",
		CreatorAddress: creator,
		Status:         models.BountyStatusOpen,
		TxHash:         fundingTx,
	}))
}

func TestCreateSubmission_OpenBounty(t *testing.T) {
	env := newTestEnv(t)
	seedOpenBounty(t, env)

	resp := env.request(t, fiber.MethodPost, "/api/submissions", map[string]any{
		"bounty_id":      "b1",
		"hunter_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		"content":        "stack trace points at the pool shutdown",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	sub := decode[models.Submission](t, resp)
	assert.Equal(t, "b1", sub.BountyID)
	assert.Equal(t, hunter, sub.HunterAddress, "hunter address is stored lowercased")
	assert.NotEmpty(t, sub.ID)
}

func TestCreateSubmission_PaidBountyRejected(t *testing.T) {
	env := newTestEnv(t)
	seedOpenBounty(t, env)

	flipped, err := env.store.UpdateBountyStatus(context.Background(), "b1",
		models.BountyStatusOpen, models.BountyStatusPaid, hunter, "0xdead")
	require.NoError(t, err)
	require.True(t, flipped)

	resp := env.request(t, fiber.MethodPost, "/api/submissions", map[string]any{
		"bounty_id":      "b1",
		"hunter_address": hunter,
		"content":        "too late",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSubmission_MissingBounty(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/submissions", map[string]any{
		"bounty_id":      "missing",
		"hunter_address": hunter,
		"content":        "hello",
	}, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListSubmissions_RequiresBountyID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodGet, "/api/submissions", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func seedSubmission(t *testing.T, env *testEnv) {
	t.Helper()
	require.NoError(t, env.store.CreateSubmission(context.Background(), &models.Submission{
		ID:            "s1",
		BountyID:      "b1",
		HunterAddress: hunter,
		Content:       "done",
	}))
}

func TestPayout_CreatorReleasesFunds(t *testing.T) {
	env := newTestEnv(t)
	seedOpenBounty(t, env)
	seedSubmission(t, env)

	resp := env.request(t, fiber.MethodPost, "/api/payout", map[string]any{
		"bounty_id":       "b1",
		"submission_id":   "s1",
		"winner_address":  hunter,
		"creator_address": creator,
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decode[types.PayoutResult](t, resp)
	assert.True(t, result.Success)
	assert.Equal(t, hunter, result.Winner)
	assert.Equal(t, "0.5", result.Amount)
	assert.NotEmpty(t, result.TxHash)
	assert.Equal(t, 1, env.sender.sent)

	bounty, err := env.store.GetBounty(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BountyStatusPaid, bounty.Status)
}

func TestPayout_NonCreatorForbidden(t *testing.T) {
	env := newTestEnv(t)
	seedOpenBounty(t, env)
	seedSubmission(t, env)

	resp := env.request(t, fiber.MethodPost, "/api/payout", map[string]any{
		"bounty_id":       "b1",
		"submission_id":   "s1",
		"winner_address":  hunter,
		"creator_address": hunter,
	}, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Zero(t, env.sender.sent)
}

func TestPayout_SecondAttemptConflicts(t *testing.T) {
	env := newTestEnv(t)
	seedOpenBounty(t, env)
	seedSubmission(t, env)

	body := map[string]any{
		"bounty_id":       "b1",
		"submission_id":   "s1",
		"winner_address":  hunter,
		"creator_address": creator,
	}

	resp := env.request(t, fiber.MethodPost, "/api/payout", body, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, fiber.MethodPost, "/api/payout", body, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, 1, env.sender.sent, "the prize is paid at most once")
}

func TestProfile_UpsertAndFetch(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/profile", map[string]any{
		"wallet_address": "0xE4d365a5a8fC0DCEE9E3C5985D7FcBab8B4A0fE1",
		"username":       "drift",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/api/profile/"+creator, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	profile := decode[models.Profile](t, resp)
	assert.Equal(t, creator, profile.WalletAddress)
	assert.Equal(t, "drift", profile.Username)
}
