package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

// StoreManager holds the ledger store and the knowledge cache.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	ledger       contract.LedgerStore
	knowledge    contract.KnowledgeStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetLedgerStore returns the ledger store.
func (mgr *StoreManager) GetLedgerStore() contract.LedgerStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ledger
}

// GetKnowledgeStore returns the knowledge cache, or nil when caching is off.
func (mgr *StoreManager) GetKnowledgeStore() contract.KnowledgeStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.knowledge
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager. A none cache backend leaves
// the knowledge cache unset so every read recomputes profiles.
func InitStores(storeBackend schema.DatabaseBackend, storeConnStr string, cacheBackend schema.DatabaseBackend, cacheConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		ledger, err := NewLedgerStore(storeBackend, storeConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize ledger store: %w", err)
			return
		}

		var knowledge contract.KnowledgeStore
		if cacheBackend != "" && cacheBackend != schema.NoneBackend {
			ks, err := NewKnowledgeStore(knowledgeTable, cacheBackend, cacheConnStr)
			if err != nil {
				_ = ledger.Close()
				initErr = fmt.Errorf("failed to initialize knowledge cache: %w", err)
				return
			}
			knowledge = ks
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.ledger = ledger
		Manager.knowledge = knowledge
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.ledger != nil {
			_ = Manager.ledger.Close()
		}
		if Manager.knowledge != nil {
			_ = Manager.knowledge.Close()
		}
	})
}

// ClearCache drops the knowledge cache for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL/PostgreSQL, it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			dbFilePath = contract.GetCacheDBFilePath()
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		db, err := openDB(backend, connStr, "")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(knowledgeTable, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", knowledgeTable, err)
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}
