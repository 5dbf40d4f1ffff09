// Package wallet manages the admin signing wallet as an explicit session
// object. Connection state is owned by the session, not by package-level
// globals, so concurrent callers share one well-defined handle.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/config"
)

var (
	// ErrWalletNotConfigured means no key material is available for the session.
	ErrWalletNotConfigured = errors.New("admin wallet is not configured")
	// ErrConnectionPending means another connect attempt is already in flight.
	ErrConnectionPending = errors.New("wallet connection already pending")
	// ErrConnectionRejected means the connect attempt was canceled before completing.
	ErrConnectionRejected = errors.New("wallet connection rejected")
	// ErrNotConnected means a signer was requested before a successful Connect.
	ErrNotConnected = errors.New("wallet is not connected")
)

// Session owns the admin signing key and its connection state.
type Session struct {
	keyEnv         string
	connectTimeout time.Duration
	logger         *zap.Logger

	mu         sync.Mutex
	connecting bool
	key        *ecdsa.PrivateKey
	address    common.Address
}

// NewSession creates a disconnected session. The private key is read from
// the environment variable named in the config on Connect, never earlier.
func NewSession(cfg *config.WalletConfig, logger *zap.Logger) *Session {
	return &Session{
		keyEnv:         cfg.KeyEnv,
		connectTimeout: cfg.ConnectTimeout,
		logger:         logger,
	}
}

// Connect loads and validates the signing key. A connect already in
// flight is rejected with ErrConnectionPending; a canceled context maps
// to ErrConnectionRejected. Connecting an already-connected session is a
// no-op returning the session address.
func (s *Session) Connect(ctx context.Context) (common.Address, error) {
	s.mu.Lock()
	if s.key != nil {
		addr := s.address
		s.mu.Unlock()
		return addr, nil
	}
	if s.connecting {
		s.mu.Unlock()
		return common.Address{}, ErrConnectionPending
	}
	s.connecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return common.Address{}, ErrConnectionRejected
	}

	raw := os.Getenv(s.keyEnv)
	if raw == "" {
		return common.Address{}, ErrWalletNotConfigured
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return common.Address{}, errors.Join(ErrWalletNotConfigured, err)
	}

	if err := ctx.Err(); err != nil {
		return common.Address{}, ErrConnectionRejected
	}

	address := crypto.PubkeyToAddress(key.PublicKey)

	s.mu.Lock()
	s.key = key
	s.address = address
	s.mu.Unlock()

	s.logger.Info("Admin wallet connected", zap.String("address", address.Hex()))
	return address, nil
}

// Address returns the connected address, if any.
func (s *Session) Address() (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return common.Address{}, false
	}
	return s.address, true
}

// Transactor returns signing transact opts bound to the session key.
func (s *Session) Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()

	if key == nil {
		return nil, ErrNotConnected
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// Disconnect clears the session key.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
	s.address = common.Address{}
}
