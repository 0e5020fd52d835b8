// Package lifecycle holds shared settings for fx start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds any single OnStart or OnStop hook.
const DefaultTimeout = 10 * time.Second
