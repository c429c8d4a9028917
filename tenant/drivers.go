package tenant

// Blank-imported for database/sql driver registration: PostgresSource and
// MySQLSource open connections through the standard sql.DB pool, and rely
// on these packages registering themselves under "postgres" and "mysql".
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)
