package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"gorm.io/gorm"

	"pricebot/items"
	"pricebot/prices"
	"pricebot/workflow"
)

const (
	colorGreen   = 0x57F287
	colorBlurple = 0x5865F2
)

const autocompleteLimit = 25

func commandDefinitions() []*discordgo.ApplicationCommand {
	rowOption := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "row",
			Description:  description,
			Required:     true,
			Autocomplete: true,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "edit-price",
			Description: "Edits the price of an item.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "item-id",
					Description:  "The item to edit the price of.",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "rows",
			Description: "Manage the rows.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a new row.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "The name of the new row.",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lists the rows.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "admins",
					Description: "List the admins for the specified row.",
					Options: []*discordgo.ApplicationCommandOption{
						rowOption("The row to list the admins of."),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "image",
					Description: "Sends the row's image.",
					Options: []*discordgo.ApplicationCommandOption{
						rowOption("The row to get the image for."),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove-item",
					Description: "Removes the item with all the price history stored in this row.",
					Options: []*discordgo.ApplicationCommandOption{
						rowOption("The row to remove the item from."),
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "item-id",
							Description:  "The item to remove.",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
			},
		},
	}
}

func (b *Bot) runEditPrice(ctx context.Context, i *discordgo.InteractionCreate, userID string) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return errors.New("edit-price invoked without options")
	}
	itemID := uint(options[0].IntValue())

	session := workflow.NewSession(userID)
	return workflow.EditPrice(ctx, newSurface(b, i), session, itemID)
}

func (b *Bot) runRows(ctx context.Context, i *discordgo.InteractionCreate, userID string) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return errors.New("rows invoked without a subcommand")
	}
	sub := options[0]

	switch sub.Name {
	case "add":
		return b.rowsAdd(i, sub)
	case "list":
		return b.rowsList(i)
	case "admins":
		return b.rowsAdmins(i, sub)
	case "image":
		return b.rowsImage(i, sub)
	case "remove-item":
		return b.rowsRemoveItem(ctx, i, sub, userID)
	default:
		return fmt.Errorf("unknown rows subcommand: %s", sub.Name)
	}
}

func (b *Bot) rowsAdd(i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	name := subOption(sub, "name")
	row, err := prices.CreateRow(name)
	if err != nil {
		return err
	}

	return b.respondEmbed(i, &discordgo.MessageEmbed{
		Title: "Row added",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Name", Value: row.Label()},
		},
		Color: colorGreen,
	})
}

func (b *Bot) rowsList(i *discordgo.InteractionCreate) error {
	rows, err := prices.ListRows()
	if err != nil {
		return err
	}

	lines := make([]string, len(rows))
	for j, row := range rows {
		lines[j] = fmt.Sprintf("%s (%d)", row.Label(), row.ID)
	}

	return b.respondEmbed(i, &discordgo.MessageEmbed{
		Title:       "Rows",
		Description: strings.Join(lines, "\n"),
		Color:       colorBlurple,
	})
}

func (b *Bot) rowsAdmins(i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	rowID, err := rowOptionID(sub)
	if err != nil {
		b.respondEphemeral(i, "That isn't a valid row.")
		return nil
	}

	row, err := prices.GetRow(rowID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.respondEphemeral(i, "Row not found.")
		return nil
	}
	if err != nil {
		return err
	}

	admins, err := prices.RowAdmins(rowID)
	if err != nil {
		return err
	}

	mentions := make([]string, len(admins))
	for j, admin := range admins {
		mentions[j] = "<@" + admin.UserID + ">"
	}

	return b.respondEmbed(i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Admins of %s", row.Label()),
		Description: strings.Join(mentions, "\n"),
		Color:       colorBlurple,
	})
}

func (b *Bot) rowsImage(i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	rowID, err := rowOptionID(sub)
	if err != nil {
		b.respondEphemeral(i, "That isn't a valid row.")
		return nil
	}

	image, err := prices.Table(rowID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.respondEphemeral(i, "Row not found.")
		return nil
	}
	if err != nil {
		return err
	}

	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Files: []*discordgo.File{{
				Name:        "prices.png",
				ContentType: "image/png",
				Reader:      bytes.NewReader(image),
			}},
		},
	})
}

func (b *Bot) rowsRemoveItem(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption, userID string) error {
	rowID, err := rowOptionID(sub)
	if err != nil {
		b.respondEphemeral(i, "That isn't a valid row.")
		return nil
	}

	itemID64, err := strconv.ParseUint(subOption(sub, "item-id"), 10, 32)
	if err != nil {
		b.respondEphemeral(i, "That isn't a valid item.")
		return nil
	}

	session := workflow.NewSession(userID)
	return workflow.RemoveItem(ctx, newSurface(b, i), session, rowID, uint(itemID64))
}

func (b *Bot) handleAutocomplete(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	focused := focusedOption(data.Options)
	if focused == nil {
		return
	}
	query := fmt.Sprint(focused.Value)

	var choices []*discordgo.ApplicationCommandOptionChoice
	var err error
	switch focused.Name {
	case "item-id":
		choices, err = itemChoices(query, data.Name == "edit-price")
	case "row":
		choices, err = rowChoices(query)
	}
	if err != nil {
		log.Printf("Autocomplete for %s failed: %v", focused.Name, err)
		return
	}

	err = b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.Printf("Failed to respond to autocomplete: %v", err)
	}
}

// itemChoices ranks catalog items against the typed query. The value
// type has to match the option: integer on edit-price, string on the
// remove-item subcommand.
func itemChoices(query string, integerValue bool) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	matches, err := items.Search(query, autocompleteLimit)
	if err != nil {
		return nil, err
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(matches))
	for j, item := range matches {
		choice := &discordgo.ApplicationCommandOptionChoice{Name: item.Name}
		if integerValue {
			choice.Value = item.ID
		} else {
			choice.Value = strconv.FormatUint(uint64(item.ID), 10)
		}
		choices[j] = choice
	}
	return choices, nil
}

func rowChoices(query string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	rows, err := prices.ListRows()
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(rows))
	for j, row := range rows {
		labels[j] = row.Label()
	}

	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	sort.Sort(ranks)

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, autocompleteLimit)
	for _, rank := range ranks {
		if len(choices) == autocompleteLimit {
			break
		}
		row := rows[rank.OriginalIndex]
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  row.Label(),
			Value: strconv.FormatUint(uint64(row.ID), 10),
		})
	}
	return choices, nil
}

func (b *Bot) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func subOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, option := range sub.Options {
		if option.Name == name {
			return option.StringValue()
		}
	}
	return ""
}

func rowOptionID(sub *discordgo.ApplicationCommandInteractionDataOption) (uint, error) {
	id, err := strconv.ParseUint(subOption(sub, "row"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, option := range options {
		if option.Focused {
			return option
		}
		if nested := focusedOption(option.Options); nested != nil {
			return nested
		}
	}
	return nil
}
