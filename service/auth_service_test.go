package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/layer-3/walletgate/adapters/anomaly"
	"github.com/layer-3/walletgate/adapters/eth"
	"github.com/layer-3/walletgate/adapters/store"
	"github.com/layer-3/walletgate/adapters/tokenizer"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

var testMessageCfg = core.MessageConfig{
	Domain:  "example.org",
	URI:     "https://example.org",
	ChainID: 1,
}

type testWallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func newTestWallet(t *testing.T) testWallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return testWallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

func (w testWallet) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

// countingChallengeStore records FindValid calls so tests can assert that a
// blocked wallet never reaches persistence.
type countingChallengeStore struct {
	ports.ChallengeStore
	findValidCalls int
}

func (s *countingChallengeStore) FindValid(ctx context.Context, walletAddress, message string) (*core.Challenge, error) {
	s.findValidCalls++
	return s.ChallengeStore.FindValid(ctx, walletAddress, message)
}

type authFixture struct {
	svc        *AuthService
	challenges *countingChallengeStore
	users      ports.UserStore
	detector   *anomaly.MemoryDetector
}

func newAuthFixture(t *testing.T, challengeTTL time.Duration, maxAttempts int) *authFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))

	challenges := &countingChallengeStore{ChallengeStore: store.NewChallengeStore(db)}
	users := store.NewUserStore(db)
	detector := anomaly.NewMemoryDetector(maxAttempts, time.Hour, nil)

	jwtTokenizer, err := tokenizer.NewJWTTokenizer([]byte("test-secret"), time.Minute)
	require.NoError(t, err)

	svc := NewAuthService(
		challenges,
		users,
		detector,
		jwtTokenizer,
		eth.NewPersonalSignRecoverer(),
		nil,
		testMessageCfg,
		challengeTTL,
		nil,
	)

	return &authFixture{svc: svc, challenges: challenges, users: users, detector: detector}
}

func TestRequestChallenge(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)

	grant, err := f.svc.RequestChallenge(context.Background(), wallet.address)
	require.NoError(t, err)

	normalized := core.NormalizeAddress(wallet.address)
	assert.Equal(t, normalized, grant.WalletAddress)
	assert.Len(t, grant.Nonce, 32) // 16 bytes hex encoded
	assert.Contains(t, grant.Message, "Sign in to example.org")
	assert.Contains(t, grant.Message, "Wallet: "+normalized)
	assert.Contains(t, grant.Message, "Nonce: "+grant.Nonce)
	assert.True(t, grant.ExpiresAt.After(time.Now()))
}

func TestRequestChallengeRejectsInvalidAddress(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)

	_, err := f.svc.RequestChallenge(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestRequestChallengeMissingMessageConfig(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	f.svc.messageCfg = core.MessageConfig{}
	wallet := newTestWallet(t)

	_, err := f.svc.RequestChallenge(context.Background(), wallet.address)
	assert.ErrorIs(t, err, core.ErrMessageConfig)
}

func TestVerifySignatureHappyPath(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	result, err := f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, grant.Message), grant.Message)
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, core.NormalizeAddress(wallet.address), result.User.WalletAddress)
	assert.NotEqual(t, uuid.Nil, result.User.ID)
	require.NotNil(t, result.User.LastLoginAt)
}

func TestVerifySignatureReplayFails(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)
	signature := wallet.sign(t, grant.Message)

	_, err = f.svc.VerifySignature(ctx, wallet.address, signature, grant.Message)
	require.NoError(t, err)

	_, err = f.svc.VerifySignature(ctx, wallet.address, signature, grant.Message)
	assert.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestReissueInvalidatesPriorChallenge(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	first, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)
	_, err = f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	_, err = f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, first.Message), first.Message)
	assert.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestVerifySignatureExpiredChallenge(t *testing.T) {
	f := newAuthFixture(t, 30*time.Millisecond, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)
	signature := wallet.sign(t, grant.Message)

	time.Sleep(60 * time.Millisecond)

	_, err = f.svc.VerifySignature(ctx, wallet.address, signature, grant.Message)
	assert.ErrorIs(t, err, core.ErrChallengeNotFound)
	assert.Equal(t, 1, f.detector.FailedAttemptCount(wallet.address))
}

func TestVerifySignatureWrongKeyRecorded(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	attacker := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	_, err = f.svc.VerifySignature(ctx, wallet.address, attacker.sign(t, grant.Message), grant.Message)
	assert.ErrorIs(t, err, core.ErrSignatureMismatch)
	assert.Equal(t, 1, f.detector.FailedAttemptCount(wallet.address))
}

func TestVerifySignatureMalformedSignatureRecorded(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	_, err = f.svc.VerifySignature(ctx, wallet.address, "0xdeadbeef", grant.Message)
	assert.ErrorIs(t, err, core.ErrSignatureMismatch)
	assert.Equal(t, 1, f.detector.FailedAttemptCount(wallet.address))
}

func TestVerifySignatureLockout(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 3)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.VerifySignature(ctx, wallet.address, "0xdeadbeef", grant.Message)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	}

	findCallsBefore := f.challenges.findValidCalls

	// Even a fully valid signature is rejected without touching the store.
	_, err = f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, grant.Message), grant.Message)
	assert.ErrorIs(t, err, core.ErrTooManyAttempts)
	assert.Equal(t, findCallsBefore, f.challenges.findValidCalls)
}

func TestVerifySignatureSuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 3)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	_, err = f.svc.VerifySignature(ctx, wallet.address, "0xdeadbeef", grant.Message)
	require.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = f.svc.VerifySignature(ctx, wallet.address, "0xdeadbeef", grant.Message)
	require.ErrorIs(t, err, core.ErrUnauthorized)
	require.Equal(t, 2, f.detector.FailedAttemptCount(wallet.address))

	_, err = f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, grant.Message), grant.Message)
	require.NoError(t, err)
	assert.Equal(t, 0, f.detector.FailedAttemptCount(wallet.address))

	// Lockout requires a fresh full count again.
	grant, err = f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = f.svc.VerifySignature(ctx, wallet.address, "0xdeadbeef", grant.Message)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	}
	_, err = f.svc.VerifySignature(ctx, wallet.address, "0xdeadbeef", grant.Message)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, grant.Message), grant.Message)
	assert.ErrorIs(t, err, core.ErrTooManyAttempts)
}

func TestVerifySignatureCaseInsensitiveAddress(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	// Challenge issued for the checksummed casing, verified with uppercase.
	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)

	upper := "0x" + strings.ToUpper(core.NormalizeAddress(wallet.address)[2:])
	result, err := f.svc.VerifySignature(ctx, upper, wallet.sign(t, grant.Message), grant.Message)
	require.NoError(t, err)
	assert.Equal(t, core.NormalizeAddress(wallet.address), result.User.WalletAddress)
}

func TestVerifySignatureUpsertsSingleUser(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	wallet := newTestWallet(t)
	ctx := context.Background()

	grant, err := f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)
	first, err := f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, grant.Message), grant.Message)
	require.NoError(t, err)

	grant, err = f.svc.RequestChallenge(ctx, wallet.address)
	require.NoError(t, err)
	second, err := f.svc.VerifySignature(ctx, wallet.address, wallet.sign(t, grant.Message), grant.Message)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
}

type failingChallengeStore struct {
	ports.ChallengeStore
}

func (failingChallengeStore) FindValid(ctx context.Context, walletAddress, message string) (*core.Challenge, error) {
	return nil, fmt.Errorf("%w: connection refused", core.ErrStoreUnavailable)
}

func TestVerifySignatureInfrastructureErrorNotCounted(t *testing.T) {
	f := newAuthFixture(t, time.Minute, 5)
	f.svc.challenges = failingChallengeStore{}
	wallet := newTestWallet(t)

	_, err := f.svc.VerifySignature(context.Background(), wallet.address, "0xdeadbeef", "message")
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.Equal(t, 0, f.detector.FailedAttemptCount(wallet.address))
}
