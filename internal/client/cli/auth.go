package cli

import (
	"context"

	"github.com/dmitrijs2005/permavault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and creates an
// account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	printlnFn(successText("Success!"))
	return nil
}

// Login prompts for credentials and authenticates against the backend.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		a.logger.Warn(ctx, "login failed", "user", userName, "error", err)
		return err
	}

	a.userName = userName
	printlnFn(successText("Logged in as " + userName))
	return nil
}

// Logout forgets the current user. Tokens stay in the client until the
// next login replaces them.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	printlnFn("Logged out")
	return nil
}
