package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Dump walks the error chain and renders each layer with any driver
// diagnostics attached. Log output only, never sent to clients.
func Dump(err error) string {
	if err == nil {
		return "<nil>"
	}

	var sb strings.Builder
	depth := 0
	for err != nil {
		if depth > 0 {
			sb.WriteString(" <- ")
		}
		sb.WriteString(describe(err))
		err = stdErrors.Unwrap(err)
		depth++
		if depth > 16 {
			sb.WriteString(" <- ...")
			break
		}
	}
	return sb.String()
}

func describe(err error) string {
	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) && stdErrors.Unwrap(err) == nil {
		return fmt.Sprintf("pg[%s %s table=%s constraint=%s detail=%s]",
			pgErr.Code, pgErr.Message, pgErr.TableName, pgErr.ConstraintName, pgErr.Detail)
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) && stdErrors.Unwrap(err) == nil {
		return fmt.Sprintf("pq[%s %s table=%s constraint=%s detail=%s]",
			pqErr.Code, pqErr.Message, pqErr.Table, pqErr.Constraint, pqErr.Detail)
	}
	if typed := As(err); typed != nil && typed == err {
		return fmt.Sprintf("%s(%s)", typed.Code(), typed.Message())
	}
	return err.Error()
}
