package store

import "errors"

var (
	// ErrUnsupportedDriver is returned when the configured database/sql
	// driver is neither pgx nor sqlite3.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrRecordNotFound is returned when an update targets an id that no
	// longer exists.
	ErrRecordNotFound = errors.New("record was not found")
)

var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing a batch fails.
	// The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrRollingBackTransaction is returned when an explicit rollback fails.
	ErrRollingBackTransaction = errors.New("failed to roll back transaction")

	// ErrExecutingStatement is returned when an UPDATE fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning a result row fails.
	ErrScanningRows = errors.New("failed to scan record rows")
)
