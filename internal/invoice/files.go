package invoice

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"beg-migrate/internal/storage"
)

// FileMigrator resolves Windows share paths written by the legacy tool
// against the mounted copy of that share, and copies resolved files into
// managed storage.
type FileMigrator struct {
	storage   *storage.LocalStorage
	mountRoot string
	driveRe   *regexp.Regexp
	log       *logrus.Entry
}

// NewFileMigrator builds a migrator for one mounted share. drivePrefix is
// the Windows prefix legacy documents use (e.g. `N:\Mandats\`); any drive
// letter is accepted since workstations mapped the share differently.
func NewFileMigrator(store *storage.LocalStorage, mountRoot, drivePrefix string) *FileMigrator {
	share := drivePrefix
	if len(share) >= 2 && share[1] == ':' {
		share = share[2:]
	}
	re := regexp.MustCompile(`(?i)^[a-z]:` + regexp.QuoteMeta(share))

	return &FileMigrator{
		storage:   store,
		mountRoot: strings.TrimRight(mountRoot, "/"),
		driveRe:   re,
		log:       logrus.WithField("component", "invoice-files"),
	}
}

// Resolve converts a legacy Windows path to its location on the mounted
// share. The empty string means the path is blank, outside the share, or
// the file no longer exists there.
func (m *FileMigrator) Resolve(windowsPath string) string {
	if strings.TrimSpace(windowsPath) == "" {
		return ""
	}

	replaced := m.driveRe.ReplaceAllString(windowsPath, m.mountRoot+`\`)
	unixPath := strings.ReplaceAll(replaced, `\`, "/")

	if _, err := os.Stat(unixPath); err != nil {
		m.log.Warnf("file not found: %s", unixPath)
		return ""
	}
	return unixPath
}

// Migrate resolves a legacy path and copies the file into managed storage
// under the invoice's folder. The empty string means this one attachment is
// skipped; the invoice itself still imports.
func (m *FileMigrator) Migrate(ctx context.Context, legacyPath, folderID string) (string, error) {
	resolved := m.Resolve(legacyPath)
	if resolved == "" {
		return "", nil
	}
	return m.storage.StoreFromPath(ctx, resolved, "invoice", folderID)
}

// RelativePath strips the mount root, leaving the share-relative path that
// gets persisted on the invoice row.
func (m *FileMigrator) RelativePath(p string) string {
	return strings.TrimPrefix(strings.TrimPrefix(p, m.mountRoot), "/")
}
