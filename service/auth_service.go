package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// DefaultChallengeTTL is the default lifetime of a login challenge
const DefaultChallengeTTL = 5 * time.Minute

// nonceBytes is the entropy of a challenge nonce before hex encoding
const nonceBytes = 16

// ChallengeGrant is returned to the client after issuance. Nonce and message
// travel in the clear; the secret is the private key that signs them.
type ChallengeGrant struct {
	WalletAddress string    `json:"walletAddress"`
	Nonce         string    `json:"nonce"`
	Message       string    `json:"message"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// LoginResult is returned after a successful verification.
type LoginResult struct {
	AccessToken string          `json:"accessToken"`
	User        core.PublicUser `json:"user"`
}

// AuthService owns the challenge lifecycle: issuance, single-use and expiry
// enforcement, signature verification, failed-attempt accounting and
// credential issuance.
type AuthService struct {
	challenges ports.ChallengeStore
	users      ports.UserStore
	detector   ports.AnomalyDetector
	tokenizer  ports.Tokenizer
	recoverer  ports.SignatureRecoverer
	eventPub   ports.EventPublisher

	messageCfg   core.MessageConfig
	challengeTTL time.Duration
	logger       *slog.Logger

	issueLocks *walletLocks
}

// NewAuthService creates the authentication service. eventPub may be nil;
// event publishing is best-effort and never fails a request.
func NewAuthService(
	challenges ports.ChallengeStore,
	users ports.UserStore,
	detector ports.AnomalyDetector,
	tokenizer ports.Tokenizer,
	recoverer ports.SignatureRecoverer,
	eventPub ports.EventPublisher,
	messageCfg core.MessageConfig,
	challengeTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if challengeTTL <= 0 {
		challengeTTL = DefaultChallengeTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		challenges:   challenges,
		users:        users,
		detector:     detector,
		tokenizer:    tokenizer,
		recoverer:    recoverer,
		eventPub:     eventPub,
		messageCfg:   messageCfg,
		challengeTTL: challengeTTL,
		logger:       logger,
		issueLocks:   newWalletLocks(),
	}
}

// RequestChallenge retires any prior live challenge for the wallet and issues
// a fresh one. The delete-expired, invalidate-open, create sequence runs
// under a per-wallet lock so two racing requests cannot leave the store with
// two simultaneously valid challenges.
func (s *AuthService) RequestChallenge(ctx context.Context, walletAddress string) (*ChallengeGrant, error) {
	if !core.ValidAddress(walletAddress) {
		return nil, core.ErrInvalidAddress
	}
	normalized := core.NormalizeAddress(walletAddress)

	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Missing message configuration fails before anything is persisted.
	message, err := core.BuildLoginMessage(s.messageCfg, normalized, nonce)
	if err != nil {
		s.logger.Error("challenge issuance misconfigured", "error", err)
		return nil, err
	}

	unlock := s.issueLocks.lock(normalized)
	defer unlock()

	if err := s.challenges.DeleteExpired(ctx, normalized); err != nil {
		return nil, err
	}
	if err := s.challenges.InvalidateOpen(ctx, normalized); err != nil {
		return nil, err
	}

	challenge := &core.Challenge{
		WalletAddress: normalized,
		Nonce:         nonce,
		Message:       message,
		ExpiresAt:     time.Now().Add(s.challengeTTL),
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, err
	}

	s.logger.Info("challenge issued",
		"wallet", core.RedactAddress(normalized),
		"expires_at", challenge.ExpiresAt,
	)

	return &ChallengeGrant{
		WalletAddress: normalized,
		Nonce:         nonce,
		Message:       message,
		ExpiresAt:     challenge.ExpiresAt,
	}, nil
}

// VerifySignature checks a signed challenge and issues a session credential.
// Exactly one of success or recorded-failure happens per call; infrastructure
// errors propagate as core.ErrStoreUnavailable and are never counted as
// evidence of probing.
func (s *AuthService) VerifySignature(ctx context.Context, walletAddress, signature, message string) (*LoginResult, error) {
	if !core.ValidAddress(walletAddress) {
		return nil, core.ErrInvalidAddress
	}
	normalized := core.NormalizeAddress(walletAddress)

	// Cheap rejection path: a blocked wallet never reaches the store or
	// the crypto capability.
	if s.detector.IsBlocked(normalized) {
		s.publishLockout(ctx, normalized)
		return nil, core.ErrTooManyAttempts
	}

	challenge, err := s.challenges.FindValid(ctx, normalized, message)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		s.detector.RecordFailedAttempt(normalized)
		return nil, core.ErrChallengeNotFound
	}

	// Defensive recheck against lookup semantics drift.
	if challenge.Message != message {
		s.detector.RecordFailedAttempt(normalized)
		return nil, core.ErrChallengeMismatch
	}

	recovered, err := s.recoverer.Recover(challenge.Message, signature)
	if err != nil {
		s.detector.RecordFailedAttempt(normalized)
		s.logger.Warn("signature recovery failed",
			"wallet", core.RedactAddress(normalized),
			"error", err,
		)
		return nil, core.ErrSignatureMismatch
	}
	if core.NormalizeAddress(recovered) != normalized {
		s.detector.RecordFailedAttempt(normalized)
		return nil, core.ErrSignatureMismatch
	}

	// All checks passed.
	if err := s.challenges.MarkUsed(ctx, challenge.ID); err != nil {
		return nil, err
	}

	user, err := s.users.UpsertByWallet(ctx, normalized)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	s.detector.ResetFailedAttempts(normalized)

	token, err := s.tokenizer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	s.logger.Info("wallet authenticated",
		"wallet", core.RedactAddress(normalized),
		"user_id", user.ID,
	)
	s.publishLogin(ctx, normalized, user.ID.String())

	return &LoginResult{
		AccessToken: token,
		User:        user.Public(),
	}, nil
}

func (s *AuthService) publishLogin(ctx context.Context, walletAddress, userID string) {
	if s.eventPub == nil {
		return
	}
	if err := s.eventPub.PublishLogin(ctx, walletAddress, userID); err != nil {
		s.logger.Error("failed to publish login event", "error", err)
	}
}

func (s *AuthService) publishLockout(ctx context.Context, walletAddress string) {
	if s.eventPub == nil {
		return
	}
	attempts := s.detector.FailedAttemptCount(walletAddress)
	if err := s.eventPub.PublishLockout(ctx, walletAddress, attempts); err != nil {
		s.logger.Error("failed to publish lockout event", "error", err)
	}
}

func generateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
