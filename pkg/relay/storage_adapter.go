package relay

import "github.com/himanishpuri/EmotionRelay/pkg/relay/storage"

// NewSQLiteStorage opens (or creates) the analysis history at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
