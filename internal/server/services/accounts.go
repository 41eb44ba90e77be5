package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/metrics"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Account usage events recorded in metrics.AccountEventsTotal.
const (
	EventView      = "view"
	EventDecrypt   = "decrypt"
	EventReencrypt = "reencrypt"
)

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		log:         log,
	}
}

// Create seals clearPass under a fresh secured key and stores the account.
// An account with the same name for the same client fails with
// common.ErrDuplicatedItem.
func (s *AccountService) Create(ctx context.Context, req *models.AccountRequest, clearPass, passphrase []byte) (int64, error) {
	repo := s.repomanager.Accounts(s.db)

	dup, err := repo.CheckDuplicatedOnAdd(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("error checking duplicates: %w", err)
	}
	if dup {
		return 0, fmt.Errorf("account %q: %w", req.Name, common.ErrDuplicatedItem)
	}

	if err := seal(req, clearPass, passphrase); err != nil {
		return 0, err
	}

	id, err := repo.Create(ctx, req)
	if err != nil {
		s.log.Error(ctx, "account create failed", "name", req.Name, "error", err)
		return 0, fmt.Errorf("error creating account: %w", err)
	}

	s.log.Info(ctx, "account created", "account_id", id)
	return id, nil
}

// Update applies req to an existing account on behalf of caller. Protected
// fields are filtered by SanitizeAccountUpdate first.
func (s *AccountService) Update(ctx context.Context, caller Caller, req *models.AccountRequest) error {
	repo := s.repomanager.Accounts(s.db)

	current, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("error loading account: %w", err)
	}
	if current.NumRows == 0 {
		return fmt.Errorf("account %d: %w", req.ID, common.ErrorNotFound)
	}

	if err := SanitizeAccountUpdate(caller, current.One(), req); err != nil {
		s.log.Warn(ctx, "account update denied", "account_id", req.ID, "user_id", caller.UserID)
		return err
	}

	dup, err := repo.CheckDuplicatedOnUpdate(ctx, req)
	if err != nil {
		return fmt.Errorf("error checking duplicates: %w", err)
	}
	if dup {
		return fmt.Errorf("account %q: %w", req.Name, common.ErrDuplicatedItem)
	}

	n, err := repo.Update(ctx, req)
	if err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", req.ID, common.ErrorNotFound)
	}

	s.log.Info(ctx, "account updated", "account_id", req.ID,
		"change_owner", req.ChangeOwner, "change_group", req.ChangeUserGroup)
	return nil
}

// EditPassword snapshots the account into its history and replaces the
// password with clearPass sealed under a fresh secured key.
func (s *AccountService) EditPassword(ctx context.Context, req *models.AccountRequest, clearPass, passphrase []byte) error {
	if err := seal(req, clearPass, passphrase); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		historyID, err := repo.AddHistory(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("error saving history: %w", err)
		}
		if historyID == 0 {
			return fmt.Errorf("account %d: %w", req.ID, common.ErrorNotFound)
		}

		if _, err := repo.EditPassword(ctx, req); err != nil {
			return fmt.Errorf("error editing password: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account password changed", "account_id", req.ID)
	return nil
}

// Restore rolls an account back to the history snapshot historyID.
func (s *AccountService) Restore(ctx context.Context, historyID, userEditID int64) error {
	ok, err := s.repomanager.Accounts(s.db).EditRestore(ctx, historyID, userEditID)
	if err != nil {
		return fmt.Errorf("error restoring account: %w", err)
	}
	if !ok {
		return fmt.Errorf("history %d: %w", historyID, common.ErrorNotFound)
	}

	s.log.Info(ctx, "account restored", "history_id", historyID)
	return nil
}

// View returns the account and counts the view.
func (s *AccountService) View(ctx context.Context, id int64) (*models.AccountView, error) {
	repo := s.repomanager.Accounts(s.db)

	res, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading account: %w", err)
	}
	if res.NumRows == 0 {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrorNotFound)
	}

	if _, err := repo.IncrementViewCounter(ctx, id); err != nil {
		return nil, fmt.Errorf("error counting view: %w", err)
	}
	metrics.AccountEventsTotal.WithLabelValues(EventView).Inc()

	return res.One(), nil
}

// DecryptPassword returns the clear password of an account and counts the
// decryption. The caller owns the returned slice and should wipe it.
func (s *AccountService) DecryptPassword(ctx context.Context, id int64, passphrase []byte) ([]byte, error) {
	repo := s.repomanager.Accounts(s.db)

	res, err := repo.GetPasswordForID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading password: %w", err)
	}
	if res.NumRows == 0 {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrorNotFound)
	}

	data := res.One()
	plain, err := cryptox.Decrypt(data.Pass, data.Key, passphrase)
	if err != nil {
		s.log.Warn(ctx, "account decrypt failed", "account_id", id, "error", err)
		return nil, err
	}

	if _, err := repo.IncrementDecryptCounter(ctx, id); err != nil {
		common.WipeByteArray(plain)
		return nil, fmt.Errorf("error counting decrypt: %w", err)
	}
	metrics.AccountEventsTotal.WithLabelValues(EventDecrypt).Inc()

	return plain, nil
}

// DecryptHistoryPassword returns the clear password stored in a history
// snapshot.
func (s *AccountService) DecryptHistoryPassword(ctx context.Context, historyID int64, passphrase []byte) ([]byte, error) {
	res, err := s.repomanager.Accounts(s.db).GetPasswordHistoryForID(ctx, historyID)
	if err != nil {
		return nil, fmt.Errorf("error loading password: %w", err)
	}
	if res.NumRows == 0 {
		return nil, fmt.Errorf("history %d: %w", historyID, common.ErrorNotFound)
	}

	data := res.One()
	return cryptox.Decrypt(data.Pass, data.Key, passphrase)
}

// ReencryptAll re-seals every account password from oldPassphrase to
// newPassphrase in one transaction. Any failure rolls back every account.
func (s *AccountService) ReencryptAll(ctx context.Context, oldPassphrase, newPassphrase []byte) (int, error) {
	log := s.log.With("batch_id", uuid.NewString())
	log.Info(ctx, "re-encryption started")

	var done int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		data, err := repo.GetAccountsPassData(ctx)
		if err != nil {
			return fmt.Errorf("error loading passwords: %w", err)
		}

		for _, d := range data {
			pass, key, err := reseal(d, oldPassphrase, newPassphrase)
			if err != nil {
				return fmt.Errorf("account %d: %w", d.ID, err)
			}

			ok, err := repo.UpdatePassword(ctx, &models.AccountPasswordRequest{ID: d.ID, Pass: pass, Key: key})
			if err != nil {
				return fmt.Errorf("account %d: %w", d.ID, err)
			}
			if ok {
				done++
			}
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "re-encryption failed", "error", err)
		return 0, err
	}

	metrics.AccountEventsTotal.WithLabelValues(EventReencrypt).Add(float64(done))
	log.Info(ctx, "re-encryption finished", "accounts", done)
	return done, nil
}

// Delete removes one account.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	n, err := s.repomanager.Accounts(s.db).Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, common.ErrorNotFound)
	}

	s.log.Info(ctx, "account deleted", "account_id", id)
	return nil
}

// DeleteBatch removes the given accounts and returns how many existed.
func (s *AccountService) DeleteBatch(ctx context.Context, ids []int64) (int64, error) {
	n, err := s.repomanager.Accounts(s.db).DeleteByIDBatch(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("error deleting accounts: %w", err)
	}

	s.log.Info(ctx, "accounts deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// Search runs a free-text search over name, url and notes.
func (s *AccountService) Search(ctx context.Context, search *models.ItemSearchData) (*models.QueryResult[models.AccountItem], error) {
	return s.repomanager.Accounts(s.db).Search(ctx, search)
}

// Filter runs a GetByFilter query.
func (s *AccountService) Filter(ctx context.Context, filter *models.AccountSearchFilter) (*models.AccountSearchResponse, error) {
	return s.repomanager.Accounts(s.db).GetByFilter(ctx, filter)
}

// Total returns the number of account rows in the store, history included.
func (s *AccountService) Total(ctx context.Context) (int64, error) {
	return s.repomanager.Accounts(s.db).GetTotalNumAccounts(ctx)
}

func seal(req *models.AccountRequest, clearPass, passphrase []byte) error {
	key, err := cryptox.MakeSecuredKey(passphrase)
	if err != nil {
		return fmt.Errorf("error creating key: %w", err)
	}
	pass, err := cryptox.Encrypt(clearPass, key, passphrase)
	if err != nil {
		return fmt.Errorf("error encrypting password: %w", err)
	}
	req.Pass, req.Key = pass, key
	return nil
}

func reseal(d models.AccountPassData, oldPassphrase, newPassphrase []byte) ([]byte, []byte, error) {
	plain, err := cryptox.Decrypt(d.Pass, d.Key, oldPassphrase)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(plain)

	key, err := cryptox.MakeSecuredKey(newPassphrase)
	if err != nil {
		return nil, nil, err
	}
	pass, err := cryptox.Encrypt(plain, key, newPassphrase)
	if err != nil {
		return nil, nil, err
	}
	return pass, key, nil
}

// IsNotFound reports whether err means a missing account, category or
// history snapshot.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
