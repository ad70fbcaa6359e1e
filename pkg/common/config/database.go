package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the driver specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	// 自动切换连接方式
	if d.UseUnixSock {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			d.Username,
			d.Password,
			d.Host, // 这里host存储的是socket路径
			d.DBName,
			charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
		charsetParam)
}

// GormLogger maps the configured level onto the gorm logger.
func (d DatabaseConfig) GormLogger() logger.Interface {
	switch d.LogLevel {
	case "silent":
		return logger.Default.LogMode(logger.Silent)
	case "error":
		return logger.Default.LogMode(logger.Error)
	case "info":
		return logger.Default.LogMode(logger.Info)
	default:
		return logger.Default.LogMode(logger.Warn)
	}
}

func (c *Config) InitDB() (*gorm.DB, error) {
	return OpenDB(c.Database)
}

// OpenDB opens a pooled connection for the configured driver.
func OpenDB(d DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch d.Driver {
	case "sqlite":
		dialector = sqlite.Open(d.DSN())
	case "mysql", "":
		dialector = mysql.Open(d.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:         d.GormLogger(),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if d.Driver == "sqlite" {
		// one writer at a time, the audit workers share this pool
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	sqlDB.SetMaxIdleConns(d.MinPoolSize)
	sqlDB.SetMaxOpenConns(d.MaxPoolSize)

	return db, nil
}
