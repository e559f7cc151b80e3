package storage

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// postgresDialector uses the simple query protocol so the store also works behind
// transaction-pooling proxies that cannot hold prepared statements.
func postgresDialector(dataSourceName string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dataSourceName,
		PreferSimpleProtocol: true,
	})
}
