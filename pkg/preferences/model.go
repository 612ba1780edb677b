package preferences

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/store"
)

// PreferenceDao is a data access object that maps directly to the 'user_preferences' table.
type PreferenceDao struct {
	bun.BaseModel `bun:"table:user_preferences,alias:up"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value,notnull"`
	UpdatedAt     int64  `bun:"updated_at,notnull"`
}

// Preference is a stored preference value.
type Preference struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toPreference(dao *PreferenceDao) *Preference {
	return &Preference{
		Key:       dao.Key,
		Value:     json.RawMessage(dao.Value),
		UpdatedAt: store.FromMillis(dao.UpdatedAt),
	}
}
