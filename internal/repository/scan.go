package repository

import (
	"database/sql"
	"fmt"
)

// requireAffected は更新・削除が1行以上に作用したかを確認する。0行ならErrNotFound。
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nullDate は空文字をNULLとして渡す。
func nullDate(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
