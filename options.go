package desglose

import (
	"time"

	"github.com/tsawler/desglose/config"
	"github.com/tsawler/desglose/internal/logger"
)

// options holds the per-run settings of a Pipeline.
type options struct {
	// Artifacts. nil means "use the configured path, if any".
	template []byte
	catalog  []byte
	logo     []byte

	// Zero means the time of the terminal call.
	date time.Time

	// 0 means the configured items per page.
	perPage int

	config *config.Config
	log    *logger.Logger
}

// defaultOptions returns the default pipeline options.
func defaultOptions() options {
	return options{
		config: config.Default(),
		log:    logger.Nop(),
	}
}

// clone creates a copy of the options. Artifact bytes and the
// configuration are shared: setters copy what they are given and nothing
// modifies them afterwards.
func (o options) clone() options {
	return o
}
