package workflow

import (
	"context"
	"errors"
	"fmt"

	"pricebot/gate"
	"pricebot/items"
	"pricebot/prices"
)

// RemoveItem removes a tracked item and its whole price history from a
// row, behind the confirm/cancel sub-flow. The row-admin check runs
// before anything is presented; the confirmation only counts clicks
// from the requesting user.
func RemoveItem(ctx context.Context, surface Surface, session Session, rowID, itemID uint) error {
	allowed, err := gate.CanManageRow(session.UserID, rowID)
	if err != nil {
		return err
	}
	if !allowed {
		return surface.Reply(ctx, session, "You aren't allowed to manage this row.")
	}

	item, err := items.GetByID(itemID)
	if err != nil {
		if errors.Is(err, items.ErrItemNotFound) {
			return surface.Reply(ctx, session, fmt.Sprintf("Item not found: %d", itemID))
		}
		return err
	}

	row, err := prices.GetRow(rowID)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf(
		"Confirm the deletion of the prices for the item `%s` from the row `%s`.",
		item.Name, row.Label())

	outcome, err := AwaitConfirmation(ctx, surface, session, prompt)
	if err != nil {
		return err
	}

	switch outcome {
	case Expired:
		return surface.Reply(ctx, session, "Deletion confirmation expired, try again.")
	case Canceled:
		return surface.Reply(ctx, session, "Deletion canceled.")
	}

	removed, err := prices.RemoveRowItem(rowID, itemID)
	if err != nil {
		return err
	}
	if !removed {
		return surface.Reply(ctx, session,
			fmt.Sprintf("The item `%s` isn't tracked in the row `%s`.", item.Name, row.Label()))
	}

	return surface.Reply(ctx, session,
		fmt.Sprintf("Removed the item `%s` from the row `%s`.", item.Name, row.Label()))
}
