package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
)

const uploadsPerPage = 20

func formatRecord(r *models.UploadRecord) string {
	where := r.URL
	if r.Encrypted() {
		where = "private"
	}
	return fmt.Sprintf("%s  %-24s %8d  %-6s %s  %s",
		r.CreatedAt.Local().Format("2006-01-02 15:04"), r.FileName, r.Size, r.Cost, r.TransactionID, where)
}

// Uploads lists the user's uploads recorded on the backend.
func (a *App) Uploads(ctx context.Context) error {
	page := 1
	if s, err := getSimpleText(a.reader, "Page (default 1)", a.out); err == nil && s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			page = n
		}
	}

	recs, total, err := a.backend.ListUploads(ctx, page, uploadsPerPage)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		printlnFn("No uploads")
		return nil
	}
	for _, r := range recs {
		printlnFn(formatRecord(r))
	}
	printlnFn(fmt.Sprintf("page %d, %d uploads in total", page, total))
	return nil
}

// Journal shows uploads stored locally and the states of the last attempt.
func (a *App) Journal(ctx context.Context) error {
	recs, err := a.journal.ListRecords(ctx)
	if err != nil {
		return err
	}
	printlnFn(headerText(fmt.Sprintf("%d local uploads", len(recs))))
	for _, r := range recs {
		printlnFn(formatRecord(r))
	}

	events, err := a.journal.ListEvents(ctx, "")
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	last := events[len(events)-1].AttemptID
	printlnFn(headerText("last attempt " + last))
	for _, e := range events {
		if e.AttemptID != last {
			continue
		}
		printlnFn(fmt.Sprintf("  %s  %-16s %s", e.CreatedAt.Local().Format("15:04:05"), e.State, e.Detail))
	}
	return nil
}

// GenPass prints a fresh random password.
func (a *App) GenPass(ctx context.Context) error {
	pw, err := cryptox.GenerateSecurePassword(generatedPasswordLength)
	if err != nil {
		return err
	}
	printlnFn(pw)
	return nil
}
