package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DBChecker pings the database and confirms that each required table
// exists. Privileged requests resolve roles and delete accounts through
// these tables, so a reachable but unmigrated database is not ready.
type DBChecker struct {
	db     *gorm.DB
	tables []string
}

func NewDBChecker(db *gorm.DB, requiredTables ...string) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db, tables: requiredTables}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	sqlDB, err := c.db.DB()
	if err != nil {
		return result("db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return result("db", err)
	}
	migrator := c.db.WithContext(ctx).Migrator()
	for _, table := range c.tables {
		if !migrator.HasTable(table) {
			return result("db", fmt.Errorf("missing table %s", table))
		}
	}
	return result("db", nil)
}

// RedisChecker pings the shared client used by the rate limiter and the
// review queue cache. Both limit policies fail closed, so an unreachable
// Redis blocks deletions and welcome emails.
type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	return result("redis", c.client.Ping(ctx).Err())
}

func result(name string, err error) CheckResult {
	if err != nil {
		return CheckResult{Name: name, Healthy: false, Error: err.Error()}
	}
	return CheckResult{Name: name, Healthy: true}
}
