package pg

import (
	"database/sql"
	"log/slog"
)

func CloseRows(rows *sql.Rows) {
	if rows != nil {
		if err := rows.Close(); err != nil {
			slog.Error("closing rows", "err", err)
		}
	}
}
