package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aditeya/smpl-payments/internal/domain"
	"github.com/Aditeya/smpl-payments/internal/ledger"
	"github.com/Aditeya/smpl-payments/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeLedger implements Ledger with per-test function fields. A call on
// a nil field panics, which fails the test: handlers must not reach the
// engine on invalid input.
type fakeLedger struct {
	signUp            func(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	getUserByEmail    func(ctx context.Context, email string) (*domain.User, error)
	getUserByUsername func(ctx context.Context, username string) (*domain.User, error)
	getUserByID       func(ctx context.Context, id uint) (*domain.User, error)
	updateUsername    func(ctx context.Context, id uint, username string) (*domain.User, error)
	createWallet      func(ctx context.Context, userID uint) (*domain.Wallet, error)
	getWallet         func(ctx context.Context, userID uint) (*domain.Wallet, error)
	deposit           func(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error)
	withdraw          func(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error)
	transfer          func(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error)
	getTransaction    func(ctx context.Context, userID, transactionID uint) (*ledger.TransactionDetail, error)
	listTransactions  func(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

func (f *fakeLedger) SignUp(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	return f.signUp(ctx, username, email, passwordHash)
}
func (f *fakeLedger) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.getUserByEmail(ctx, email)
}
func (f *fakeLedger) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return f.getUserByUsername(ctx, username)
}
func (f *fakeLedger) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return f.getUserByID(ctx, id)
}
func (f *fakeLedger) UpdateUsername(ctx context.Context, id uint, username string) (*domain.User, error) {
	return f.updateUsername(ctx, id, username)
}
func (f *fakeLedger) CreateWallet(ctx context.Context, userID uint) (*domain.Wallet, error) {
	return f.createWallet(ctx, userID)
}
func (f *fakeLedger) GetWallet(ctx context.Context, userID uint) (*domain.Wallet, error) {
	return f.getWallet(ctx, userID)
}
func (f *fakeLedger) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	return f.deposit(ctx, userID, amount)
}
func (f *fakeLedger) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	return f.withdraw(ctx, userID, amount)
}
func (f *fakeLedger) Transfer(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error) {
	return f.transfer(ctx, fromUserID, toUsername, amount)
}
func (f *fakeLedger) GetTransaction(ctx context.Context, userID, transactionID uint) (*ledger.TransactionDetail, error) {
	return f.getTransaction(ctx, userID, transactionID)
}
func (f *fakeLedger) ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	return f.listTransactions(ctx, userID)
}

// perform runs a handler against a JSON body. userID 0 means
// unauthenticated; params are attached as route parameters.
func perform(t *testing.T, h gin.HandlerFunc, body any, userID uint, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		c.Set("userID", userID)
	}
	c.Params = params
	h(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegisterHandler(t *testing.T) {
	l := &fakeLedger{
		signUp: func(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "alice@example.com", email)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("sup3rsecret")))
			return &domain.User{ID: 3, Username: username, Email: email}, nil
		},
	}
	w := perform(t, RegisterHandler(l), gin.H{
		"username": "Alice",
		"email":    "Alice@example.com",
		"password": "sup3rsecret",
	}, 0)
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	l := &fakeLedger{
		signUp: func(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
			return nil, ledger.ErrDuplicate
		},
	}
	w := perform(t, RegisterHandler(l), gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "sup3rsecret",
	}, 0)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// Invalid inputs are rejected at the boundary; the engine is never
// called (a call would panic on the nil fake field).
func TestRegisterHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"numeric username", gin.H{"username": "alice99", "email": "a@b.com", "password": "sup3rsecret"}},
		{"bad email", gin.H{"username": "alice", "email": "not-an-email", "password": "sup3rsecret"}},
		{"short password", gin.H{"username": "alice", "email": "a@b.com", "password": "short"}},
		{"missing fields", gin.H{"username": "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, RegisterHandler(&fakeLedger{}), tt.body, 0)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	l := &fakeLedger{
		getUserByEmail: func(ctx context.Context, email string) (*domain.User, error) {
			assert.Equal(t, "alice@example.com", email)
			return &domain.User{ID: 3, Username: "alice", Password: string(hash)}, nil
		},
	}
	w := perform(t, LoginHandler(l, "test-secret"), gin.H{
		"email":    "Alice@example.com",
		"password": "sup3rsecret",
	}, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := utils.ParseJWT(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
}

func TestLoginHandlerRejected(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		l := &fakeLedger{
			getUserByEmail: func(ctx context.Context, email string) (*domain.User, error) {
				return &domain.User{ID: 3, Password: string(hash)}, nil
			},
		}
		w := perform(t, LoginHandler(l, "test-secret"), gin.H{"email": "alice@example.com", "password": "wrongwrong"}, 0)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		l := &fakeLedger{
			getUserByEmail: func(ctx context.Context, email string) (*domain.User, error) {
				return nil, ledger.ErrNotFound
			},
		}
		w := perform(t, LoginHandler(l, "test-secret"), gin.H{"email": "nobody@example.com", "password": "sup3rsecret"}, 0)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCreateWalletHandlerDuplicate(t *testing.T) {
	l := &fakeLedger{
		createWallet: func(ctx context.Context, userID uint) (*domain.Wallet, error) {
			return nil, ledger.ErrDuplicate
		},
	}
	w := perform(t, CreateWalletHandler(l), nil, 3)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetWalletHandler(t *testing.T) {
	l := &fakeLedger{
		getWallet: func(ctx context.Context, userID uint) (*domain.Wallet, error) {
			assert.Equal(t, uint(3), userID)
			return &domain.Wallet{ID: 7, UserID: 3, Balance: decimal.RequireFromString("75.5")}, nil
		},
	}
	w := perform(t, GetWalletHandler(l, nil), nil, 3)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	wallet, ok := body["wallet"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "75.5", wallet["balance"])
}

func TestGetWalletHandlerUnauthenticated(t *testing.T) {
	w := perform(t, GetWalletHandler(&fakeLedger{}, nil), nil, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDepositHandler(t *testing.T) {
	l := &fakeLedger{
		deposit: func(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
			assert.True(t, amount.Equal(decimal.RequireFromString("12.34")))
			return &domain.Wallet{ID: 7, UserID: userID, Balance: decimal.RequireFromString("112.34")}, nil
		},
	}
	w := perform(t, DepositHandler(l, nil), gin.H{"amount": "12.34"}, 3)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAmountMustBePositive(t *testing.T) {
	handlers := map[string]gin.HandlerFunc{
		"deposit":  DepositHandler(&fakeLedger{}, nil),
		"withdraw": WithdrawHandler(&fakeLedger{}, nil),
	}
	for name, h := range handlers {
		for _, amount := range []string{"0", "-5"} {
			t.Run(name+" "+amount, func(t *testing.T) {
				w := perform(t, h, gin.H{"amount": amount}, 3)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	}
}

func TestWithdrawHandlerInsufficientFunds(t *testing.T) {
	l := &fakeLedger{
		withdraw: func(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
			return nil, ledger.ErrInsufficientFunds
		},
	}
	w := perform(t, WithdrawHandler(l, nil), gin.H{"amount": "50"}, 3)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient funds", decodeBody(t, w)["error"])
}

func TestTransferHandler(t *testing.T) {
	l := &fakeLedger{
		transfer: func(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error) {
			assert.Equal(t, uint(1), fromUserID)
			assert.Equal(t, "bob", toUsername)
			return &domain.Transaction{ID: 7, FromWallet: 10, ToWallet: 11, Amount: amount}, nil
		},
	}
	w := perform(t, TransferHandler(l, nil), gin.H{"to_username": "bob", "amount": "40"}, 1)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	entry, ok := body["transaction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "40", entry["amount"])
}

// A committed transfer leaves both cached balances stale, so the
// sender's and the receiver's cache entries are all dropped.
func TestTransferHandlerInvalidatesBothCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	keys := []string{
		walletCacheKey(1), historyCacheKey(1),
		walletCacheKey(2), historyCacheKey(2),
	}
	for _, key := range keys {
		require.NoError(t, mr.Set(key, "stale"))
	}

	l := &fakeLedger{
		transfer: func(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error) {
			return &domain.Transaction{ID: 7, FromWallet: 10, ToWallet: 11, Amount: amount}, nil
		},
		getUserByUsername: func(ctx context.Context, username string) (*domain.User, error) {
			assert.Equal(t, "bob", username)
			return &domain.User{ID: 2, Username: "bob"}, nil
		},
	}
	w := perform(t, TransferHandler(l, rdb), gin.H{"to_username": "bob", "amount": "40"}, 1)
	require.Equal(t, http.StatusCreated, w.Code)
	for _, key := range keys {
		assert.False(t, mr.Exists(key), key)
	}
}

func TestTransferHandlerRejected(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient funds", ledger.ErrInsufficientFunds, http.StatusBadRequest},
		{"self transfer", ledger.ErrSelfTransfer, http.StatusBadRequest},
		{"unknown target", ledger.ErrNotFound, http.StatusNotFound},
		{"store down", ledger.ErrUnavailable, http.StatusServiceUnavailable},
		{"store broken", ledger.ErrStore, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLedger{
				transfer: func(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error) {
					return nil, tt.err
				},
			}
			w := perform(t, TransferHandler(l, nil), gin.H{"to_username": "bob", "amount": "40"}, 1)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetTransactionHandler(t *testing.T) {
	l := &fakeLedger{
		getTransaction: func(ctx context.Context, userID, transactionID uint) (*ledger.TransactionDetail, error) {
			assert.Equal(t, uint(1), userID)
			assert.Equal(t, uint(7), transactionID)
			return &ledger.TransactionDetail{
				Transaction:  domain.Transaction{ID: 7, FromWallet: 10, ToWallet: 11, Amount: decimal.NewFromInt(40)},
				FromUsername: "alice",
				ToUsername:   "bob",
			}, nil
		},
	}
	w := perform(t, GetTransactionHandler(l), nil, 1, gin.Param{Key: "id", Value: "7"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alice", body["from_username"])
	assert.Equal(t, "bob", body["to_username"])
	assert.Equal(t, "40", body["amount"])
}

// A transaction the caller is no party to reads as gone.
func TestGetTransactionHandlerNotVisible(t *testing.T) {
	l := &fakeLedger{
		getTransaction: func(ctx context.Context, userID, transactionID uint) (*ledger.TransactionDetail, error) {
			return nil, nil
		},
	}
	w := perform(t, GetTransactionHandler(l), nil, 9, gin.Param{Key: "id", Value: "7"})
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestGetTransactionHandlerBadID(t *testing.T) {
	w := perform(t, GetTransactionHandler(&fakeLedger{}), nil, 1, gin.Param{Key: "id", Value: "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTransactionHistoryHandler(t *testing.T) {
	l := &fakeLedger{
		listTransactions: func(ctx context.Context, userID uint) ([]domain.Transaction, error) {
			return []domain.Transaction{
				{ID: 9, FromWallet: 10, ToWallet: 11, Amount: decimal.NewFromInt(40)},
				{ID: 4, FromWallet: 12, ToWallet: 10, Amount: decimal.NewFromInt(5)},
			}, nil
		},
	}
	w := perform(t, GetTransactionHistoryHandler(l, nil), nil, 1)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	entries, ok := body["transactions"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 2)
	assert.Equal(t, false, body["cached"])
}

func TestUpdateProfileHandlerTaken(t *testing.T) {
	l := &fakeLedger{
		updateUsername: func(ctx context.Context, id uint, username string) (*domain.User, error) {
			return nil, ledger.ErrDuplicate
		},
	}
	w := perform(t, UpdateProfileHandler(l), gin.H{"username": "bob"}, 3)
	assert.Equal(t, http.StatusConflict, w.Code)
}
