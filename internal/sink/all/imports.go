// Package all wires every built-in KPI sink backend into the sink factory.
// Importing it, usually blank from the wiring layer, runs each backend's
// init registration:
//
//   - "redis"    (orderetl/internal/sink/redis)
//   - "sqlite"   (orderetl/internal/sink/sqlite)
//   - "postgres" (orderetl/internal/sink/postgres)
//
// Binaries that want a subset can import the specific backend packages
// instead.
package all

import (
	_ "orderetl/internal/sink/postgres"
	_ "orderetl/internal/sink/redis"
	_ "orderetl/internal/sink/sqlite"
)
