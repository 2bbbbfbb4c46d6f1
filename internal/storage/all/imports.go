// Package all registers every built-in storage backend with the storage
// factory. Import it for side effects:
//
//	import _ "loanetl/internal/storage/all"
//
// after which storage.New accepts the kinds "postgres", "mssql" and "sqlite".
package all

import (
	_ "loanetl/internal/storage/mssql"
	_ "loanetl/internal/storage/postgres"
	_ "loanetl/internal/storage/sqlite"
)
