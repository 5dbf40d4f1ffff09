package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/config"
)

const testKeyEnv = "WALLET_SESSION_TEST_KEY"

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}
	keyHex := hex.EncodeToString(crypto.FromECDSA(key))
	expected := crypto.PubkeyToAddress(key.PublicKey).Hex()

	t.Setenv(testKeyEnv, keyHex)

	return NewSession(&config.WalletConfig{KeyEnv: testKeyEnv}, zap.NewNop()), expected
}

func TestSession_Connect(t *testing.T) {
	s, expected := newTestSession(t)

	addr, err := s.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if addr.Hex() != expected {
		t.Fatalf("expected address %s, got %s", expected, addr.Hex())
	}

	// Connecting again is a no-op returning the same address.
	again, err := s.Connect(context.Background())
	if err != nil {
		t.Fatalf("second Connect() failed: %v", err)
	}
	if again != addr {
		t.Fatalf("expected same address on reconnect, got %s", again.Hex())
	}
}

func TestSession_ConnectMissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	s := NewSession(&config.WalletConfig{KeyEnv: testKeyEnv}, zap.NewNop())

	_, err := s.Connect(context.Background())
	if !errors.Is(err, ErrWalletNotConfigured) {
		t.Fatalf("expected ErrWalletNotConfigured, got %v", err)
	}
}

func TestSession_ConnectInvalidKey(t *testing.T) {
	t.Setenv(testKeyEnv, "not-a-key")
	s := NewSession(&config.WalletConfig{KeyEnv: testKeyEnv}, zap.NewNop())

	_, err := s.Connect(context.Background())
	if !errors.Is(err, ErrWalletNotConfigured) {
		t.Fatalf("expected ErrWalletNotConfigured, got %v", err)
	}
}

func TestSession_ConnectCanceledContext(t *testing.T) {
	s, _ := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Connect(ctx)
	if !errors.Is(err, ErrConnectionRejected) {
		t.Fatalf("expected ErrConnectionRejected, got %v", err)
	}
}

func TestSession_ConnectGuardRejectsReentry(t *testing.T) {
	s, _ := newTestSession(t)

	s.mu.Lock()
	s.connecting = true
	s.mu.Unlock()

	_, err := s.Connect(context.Background())
	if !errors.Is(err, ErrConnectionPending) {
		t.Fatalf("expected ErrConnectionPending, got %v", err)
	}
}

func TestSession_TransactorRequiresConnect(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Transactor(context.Background(), big.NewInt(97))
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}

	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	opts, err := s.Transactor(context.Background(), big.NewInt(97))
	if err != nil {
		t.Fatalf("Transactor() failed: %v", err)
	}
	if opts.Signer == nil {
		t.Fatal("expected a signer on the transact opts")
	}

	s.Disconnect()
	if _, ok := s.Address(); ok {
		t.Fatal("expected no address after Disconnect")
	}
}
