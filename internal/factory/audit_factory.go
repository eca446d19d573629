package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tjsasakifln/Inbound/internal/adapters/audit"
	"github.com/tjsasakifln/Inbound/internal/config"
	"github.com/tjsasakifln/Inbound/internal/core"
)

// AuditFactory creates audit sinks based on configuration
type AuditFactory struct {
	cfg *config.Config
}

// NewAuditFactory creates a new audit factory
func NewAuditFactory(cfg *config.Config) *AuditFactory {
	return &AuditFactory{cfg: cfg}
}

// CreateAuditSink creates an audit sink based on the configuration
func (f *AuditFactory) CreateAuditSink() (core.AuditSink, error) {
	auditType := f.cfg.GetString("audit.type")

	switch auditType {
	case "memory":
		return audit.NewMemorySink(), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("audit.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return audit.NewSQLiteSink(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported audit type: %s", auditType)
	}
}
