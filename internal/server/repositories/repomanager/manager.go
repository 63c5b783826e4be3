package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/permavault/internal/dbx"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/payments"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/uploads"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// use the same repositories inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Payments(db dbx.DBTX) payments.Repository
	Uploads(db dbx.DBTX) uploads.Repository
}
