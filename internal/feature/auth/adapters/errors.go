package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation はPostgreSQLのunique_violationのSQLSTATEです。
const pgUniqueViolation = "23505"

// isDuplicateKey はerrが一意制約違反かどうかを判定します。
// TranslateError有効時はgorm.ErrDuplicatedKeyに変換されますが、
// 無効なセッション向けにpgconnのエラーも確認します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
