package preferences

import (
	"fmt"

	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/database"
	"github.com/wonny/symfx/pkg/redis"
)

// Open picks the store named by PREFERENCES_STORE. rc and db may be nil
// when their store is not selected.
func Open(cfg *config.Config, rc *redis.Client, db *database.DB) (Store, error) {
	switch cfg.Preferences.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if rc == nil || !rc.Enabled() {
			return nil, fmt.Errorf("preferences store redis needs an enabled redis client")
		}
		return NewRedisStore(redis.NewCache(rc, "symfx")), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("preferences store postgres needs a database")
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown preferences store %q", cfg.Preferences.Store)
	}
}
