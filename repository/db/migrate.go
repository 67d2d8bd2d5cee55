package db

import (
	"tasktracker/internal/domain/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyDSN         = errors.New("не указана строка подключения к БД")
	ErrEmptyMigratePath = errors.New("не указан путь к миграциям")
)

// Migration applies every pending up migration found in migratePath.
func Migration(dsn, migratePath string) error {
	if dsn == "" {
		return ErrEmptyDSN
	}
	if migratePath == "" {
		return ErrEmptyMigratePath
	}

	m, err := migrate.New("file://"+migratePath, dsn)
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось инициализировать миграции")
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithFields(log.Fields{"source": srcErr, "database": dbErr}).Warn("Ошибка закрытия мигратора")
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Новых миграций нет")
			return nil
		}
		log.WithError(err).Error("[ERROR] Не удалось применить миграции")
		return err
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info("[SUCCESS] Миграции применены")
	}
	return nil
}
