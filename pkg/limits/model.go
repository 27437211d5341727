package limits

import (
	"time"

	"github.com/uptrace/bun"
)

// UserLimitsDao is a data access object that maps directly to the 'user_limits' table in PostgreSQL.
type UserLimitsDao struct {
	bun.BaseModel   `bun:"table:user_limits,alias:ul"`
	ID              int64     `bun:"id,pk,autoincrement"`
	UserID          string    `bun:"user_id,unique,notnull,type:varchar(128)"`
	WalletAddress   *string   `bun:"wallet_address,type:varchar(42)"`
	TwitterUsername *string   `bun:"twitter_username,type:varchar(64)"`
	DailyCreated    int       `bun:"daily_created,notnull,default:0"`
	TotalCreated    int       `bun:"total_created,notnull,default:0"`
	TotalPaid       int       `bun:"total_paid,notnull,default:0"`
	FreeLimit       int       `bun:"free_limit,notnull"`
	DailyLimit      int       `bun:"daily_limit,notnull"`
	LastResetDate   time.Time `bun:"last_reset_date,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// PlatformLimitsDao maps to the single-row 'platform_limits' table.
type PlatformLimitsDao struct {
	bun.BaseModel `bun:"table:platform_limits,alias:pl"`
	ID            int64     `bun:"id,pk"`
	DailyCreated  int       `bun:"daily_created,notnull,default:0"`
	TotalCreated  int       `bun:"total_created,notnull,default:0"`
	TotalPaid     int       `bun:"total_paid,notnull,default:0"`
	DailyLimit    int       `bun:"daily_limit,notnull"`
	LastResetDate time.Time `bun:"last_reset_date,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// platformRowID is the primary key of the singleton platform_limits row.
const platformRowID = 1

func toUserLimits(dao *UserLimitsDao) *UserLimits {
	ul := &UserLimits{
		UserID:        dao.UserID,
		DailyCreated:  dao.DailyCreated,
		TotalCreated:  dao.TotalCreated,
		TotalPaid:     dao.TotalPaid,
		FreeLimit:     dao.FreeLimit,
		DailyLimit:    dao.DailyLimit,
		LastResetDate: dao.LastResetDate,
	}
	if dao.WalletAddress != nil {
		ul.WalletAddress = *dao.WalletAddress
	}
	if dao.TwitterUsername != nil {
		ul.TwitterUsername = *dao.TwitterUsername
	}
	return ul
}

func toPlatformLimits(dao *PlatformLimitsDao) *PlatformLimits {
	return &PlatformLimits{
		DailyCreated:  dao.DailyCreated,
		TotalCreated:  dao.TotalCreated,
		TotalPaid:     dao.TotalPaid,
		DailyLimit:    dao.DailyLimit,
		LastResetDate: dao.LastResetDate,
	}
}
