package database

import (
	"database/sql"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	uniqueViolation           = "23505"
	checkViolation            = "23514"
	invalidTextRepresentation = "22P02"

	contractDatesCheck = "contracts_dates_check"
)

// constraintFields maps the unique constraints declared in the migrations
// to the input field they guard.
var constraintFields = map[string]string{
	"leads_phone_key":           "phone",
	"leads_email_key":           "email",
	"contracts_name_key":        "name",
	"customers_lead_id_key":     "lead",
	"customers_contract_id_key": "contract",
}

// detailKey matches the detail Postgres attaches to 23505 errors,
// e.g. `Key (phone)=(+7 (999) 000 0001) already exists.`
var detailKey = regexp.MustCompile(`Key \(([^)]+)\)=\((.*)\) already exists`)

// translateError turns driver errors into entity errors. Unique violations
// become *entity.ConflictError. sql.ErrNoRows and ids that are not valid
// UUIDs become entity.ErrNotFound.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}

	var constraint, detail string
	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr) && string(pqErr.Code) == invalidTextRepresentation,
		errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation:
		return entity.ErrNotFound
	case errors.As(err, &pqErr) && string(pqErr.Code) == checkViolation && pqErr.Constraint == contractDatesCheck,
		errors.As(err, &pgErr) && pgErr.Code == checkViolation && pgErr.ConstraintName == contractDatesCheck:
		return entity.ErrContractDates
	case errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation:
		constraint, detail = pqErr.Constraint, pqErr.Detail
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		constraint, detail = pgErr.ConstraintName, pgErr.Detail
	default:
		return err
	}

	return newConflict(constraint, detail, err.Error())
}

func newConflict(constraint, detail, raw string) *entity.ConflictError {
	c := &entity.ConflictError{Constraint: constraint, Detail: detail}

	var column string
	if m := detailKey.FindStringSubmatch(detail); m != nil {
		column, c.Value = m[1], m[2]
	}

	if field, ok := constraintFields[constraint]; ok {
		c.Field = field
		return c
	}

	// Best effort: no known constraint name, fall back to the message text.
	if column == "" {
		if m := detailKey.FindStringSubmatch(raw); m != nil {
			column, c.Value = m[1], m[2]
			if c.Detail == "" {
				c.Detail = m[0] + "."
			}
		}
	}
	switch column {
	case "phone", "email", "name":
		c.Field = column
	case "lead_id":
		c.Field = "lead"
	case "contract_id":
		c.Field = "contract"
	}
	if c.Detail == "" {
		c.Detail = raw
	}
	return c
}
