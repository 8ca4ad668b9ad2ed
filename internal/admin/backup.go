package admin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/telegram"
)

const backupDir = "backups"

// BackupDatabase dumps the Postgres database to the given file.
func BackupDatabase(filename, dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return exec.CommandContext(ctx, "pg_dump", dsn, "-Fc", "-f", filename).Run()
}

// CleanOldBackups removes dump files older than maxAge.
func CleanOldBackups(dir string, maxAge time.Duration) error {
	files, err := filepath.Glob(filepath.Join(dir, "*backup_*.dump"))
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(f)
		}
	}
	return nil
}

// AutoBackupDatabase is the nightly cron target: dump, prune old dumps,
// send the fresh dump to the owner.
func AutoBackupDatabase(api telegram.API, ownerID int64, dsn string) {
	_ = os.MkdirAll(backupDir, 0o755)
	filename := filepath.Join(backupDir, "autobackup_"+time.Now().Format("20060102_150405")+".dump")
	if err := BackupDatabase(filename, dsn); err != nil {
		logger.Error("auto backup failed", zap.Error(err))
		return
	}
	_ = CleanOldBackups(backupDir, 31*24*time.Hour)
	if err := api.SendDocument(ownerID, filename, "Nightly database backup"); err != nil {
		logger.Error("send auto backup", zap.Error(err))
	}
	logger.Info("auto backup created", zap.String("file", filename))
}

// handleBackup backs the owner's /backup command.
func (h *Handler) handleBackup(chatID int64) {
	_ = os.MkdirAll(backupDir, 0o755)
	filename := filepath.Join(backupDir, "backup_"+time.Now().Format("20060102_150405")+".dump")
	if err := BackupDatabase(filename, h.dsn); err != nil {
		h.notify(chatID, "Backup failed: "+err.Error(), nil)
		return
	}
	if err := h.api.SendDocument(chatID, filename, "Database backup"); err != nil {
		h.notify(chatID, "Backup created but could not be sent: "+err.Error(), nil)
		return
	}
	_ = os.Remove(filename)
}
