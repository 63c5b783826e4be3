package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/permavault/internal/client/access"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/filex"
)

// writeFile is a test seam.
var writeFile = filex.WriteFileAtomic

// Access retrieves a private upload: it asks for the transaction id and
// password, decrypts in memory and writes the plaintext where the user says.
func (a *App) Access(ctx context.Context) error {
	txID, err := getSimpleText(a.reader, "Transaction id", a.out)
	if err != nil {
		return err
	}

	flow, err := access.New(access.Deps{
		Backend: a.backend,
		Store:   a.store,
		HTTP:    a.http,
		MaxSize: a.config.MaxUploadSize,
		Logger:  a.logger,
	}, txID)
	if err != nil {
		return err
	}
	if err := flow.Prompt(ctx); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := flow.Open(ctx, password)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(res.Data)

	dest, err := getSimpleText(a.reader, fmt.Sprintf("Save to (default %s)", res.FileName), a.out)
	if err != nil {
		return err
	}
	if dest == "" {
		dest = filepath.Base(res.FileName)
	}
	if err := writeFile(dest, res.Data, 0o600); err != nil {
		return err
	}
	printlnFn(successText(fmt.Sprintf("Saved %s (%d bytes, %s)", dest, len(res.Data), res.MimeType)))
	return nil
}
