package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pricebot/items"
	"pricebot/models"
	"pricebot/prices"
)

// Form field ids.
const (
	fieldItemID   = "item-id"
	fieldMinCount = "min-item-count"
	fieldMaxCount = "max-item-count"
	fieldMinWLs   = "min-wl-count"
	fieldMaxWLs   = "max-wl-count"
)

// formInput is a parsed, validated submission.
type formInput struct {
	MinCount int
	MaxCount *int
	MinWLs   int
	MaxWLs   *int
}

// EditPrice runs the full submission flow for one item: form, row
// selection, persist, render, confirm. Every early exit replies to the
// user and stops without persisting anything; a timed-out form ends
// silently. Errors returned from here are internal failures the caller
// translates into a single generic message.
func EditPrice(ctx context.Context, surface Surface, session Session, itemID uint) error {
	item, err := items.GetByID(itemID)
	if err != nil {
		if errors.Is(err, items.ErrItemNotFound) {
			return surface.Reply(ctx, session, fmt.Sprintf("Item not found: %d", itemID))
		}
		return err
	}

	values, err := surface.PresentForm(ctx, session, "Price Edit", editPriceFields(item), FormTimeout)
	if errors.Is(err, ErrTimeout) {
		// No partial state exists yet, nothing to report.
		return nil
	}
	if err != nil {
		return err
	}

	input, err := parseFormInput(values)
	if err != nil {
		// Validation failure ends the instance; a retry needs a fresh
		// invocation because the form can only be submitted once.
		return surface.Reply(ctx, session, err.Error())
	}

	grants, err := prices.RowsAdministeredBy(session.UserID)
	if err != nil {
		return err
	}
	if len(grants) == 0 {
		return surface.Reply(ctx, session, "You don't have any rows you can manage.")
	}

	options := make([]SelectOption, len(grants))
	for i, grant := range grants {
		options[i] = SelectOption{
			Label: grant.Row.Label(),
			Value: strconv.FormatUint(uint64(grant.RowID), 10),
		}
	}

	choice, err := surface.PresentSelect(ctx, session,
		"Select the row you want to save this price to.", options, SelectTimeout)
	if errors.Is(err, ErrTimeout) {
		return surface.ExpireSelection(ctx, session, "Time expired, please try again.")
	}
	if err != nil {
		return err
	}

	rowID64, err := strconv.ParseUint(choice, 10, 32)
	if err != nil {
		return fmt.Errorf("bad row choice %q: %w", choice, err)
	}
	rowID := uint(rowID64)

	tracked, err := prices.GetOrCreateRowItem(rowID, itemID)
	if err != nil {
		return err
	}

	saved, err := prices.AddObservation(models.PriceObservation{
		TrackedItemID: tracked.ID,
		MinCount:      input.MinCount,
		MaxCount:      input.MaxCount,
		MinUnits:      input.MinWLs,
		MaxUnits:      input.MaxWLs,
	})
	if err != nil {
		return err
	}

	image, err := prices.Table(rowID)
	if err != nil {
		return err
	}

	rowName := ""
	for _, grant := range grants {
		if grant.RowID == rowID {
			rowName = grant.Row.Label()
		}
	}

	summary := Summary{
		ItemName: item.Name,
		RowName:  rowName,
		MinCount: saved.MinCount,
		MaxCount: saved.MaxCount,
		MinWLs:   saved.MinUnits,
		MaxWLs:   saved.MaxUnits,
		SavedAt:  saved.CreatedAt,
	}
	if err := surface.Deliver(ctx, session, summary, image); err != nil {
		return err
	}

	return surface.Cleanup(ctx, session)
}

func editPriceFields(item items.Item) []FormField {
	id := strconv.FormatUint(uint64(item.ID), 10)
	return []FormField{
		{ID: fieldItemID, Label: "Item ID", Placeholder: id, Value: id, Required: true},
		{ID: fieldMinCount, Label: "Min Item Count", Placeholder: "1", Required: true},
		{ID: fieldMaxCount, Label: "Max Item Count", Placeholder: "100"},
		{ID: fieldMinWLs, Label: "Min WL Count", Placeholder: "200", Required: true},
		{ID: fieldMaxWLs, Label: "Max WL Count", Placeholder: "1000"},
	}
}

// parseFormInput turns raw field strings into numbers. Any malformed
// value is a validation error with a user-facing message; nothing is
// persisted on failure.
func parseFormInput(values map[string]string) (formInput, error) {
	var input formInput

	minCount, err := requiredInt(values, fieldMinCount)
	if err != nil {
		return input, err
	}
	if minCount < 0 {
		return input, errors.New("Min Item Count must not be negative.")
	}
	input.MinCount = minCount

	input.MinWLs, err = requiredInt(values, fieldMinWLs)
	if err != nil {
		return input, err
	}

	input.MaxCount, err = optionalInt(values, fieldMaxCount)
	if err != nil {
		return input, err
	}

	input.MaxWLs, err = optionalInt(values, fieldMaxWLs)
	if err != nil {
		return input, err
	}

	return input, nil
}

func requiredInt(values map[string]string, field string) (int, error) {
	raw := strings.TrimSpace(values[field])
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("Invalid number for %s: %q.", field, raw)
	}
	return n, nil
}

func optionalInt(values map[string]string, field string) (*int, error) {
	raw := strings.TrimSpace(values[field])
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("Invalid number for %s: %q.", field, raw)
	}
	return &n, nil
}
