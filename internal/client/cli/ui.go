package cli

import (
	"errors"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/fatih/color"
)

var (
	headerText  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successText = color.New(color.FgGreen).SprintFunc()
	warnText    = color.New(color.FgYellow).SprintFunc()
	failText    = color.New(color.FgRed).SprintFunc()
)

// errorText renders err for the user. Authentication failures always read
// the same, whatever check failed.
func errorText(err error) string {
	switch {
	case errors.Is(err, common.ErrAuthentication):
		return failText("Invalid password or corrupted file")
	case errors.Is(err, common.ErrorUnauthorized):
		return failText("Not logged in or session expired")
	case errors.Is(err, common.ErrNoProvider):
		return failText("No wallet connected")
	case errors.Is(err, common.ErrUserRejected):
		return warnText("Request rejected in wallet")
	case errors.Is(err, common.ErrInsufficientFunds):
		return warnText("Insufficient funds")
	case errors.Is(err, common.ErrNetwork):
		return failText("Network error: " + err.Error())
	default:
		return failText("Error: " + err.Error())
	}
}

// waiter shows progress during a blocking step. newWaiter is a seam so
// tests do not draw to a terminal.
type waiter interface {
	Start()
	Stop()
}

var newWaiter = func(w io.Writer, suffix string) waiter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	return s
}
