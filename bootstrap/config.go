package bootstrap

import (
	"github.com/kbukum/ssehub/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.ServiceConfig satisfies it through promoted methods, and
// may override ApplyDefaults/Validate to cover its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
