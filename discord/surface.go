package discord

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"pricebot/workflow"
)

// modalSuffix closes the modal custom id; the session token prefixes
// it. Component custom ids carry the token after a ";" instead.
const modalSuffix = "-price-edit-modal"

// interactionSurface implements workflow.Surface for one command
// invocation. It tracks which interaction of the exchange is still
// waiting for its initial response so replies land in the right place.
type interactionSurface struct {
	bot *Bot

	cmd      *discordgo.InteractionCreate
	cmdAcked bool

	modal      *discordgo.InteractionCreate
	modalAcked bool

	component      *discordgo.InteractionCreate
	componentAcked bool
}

func newSurface(bot *Bot, cmd *discordgo.InteractionCreate) *interactionSurface {
	return &interactionSurface{bot: bot, cmd: cmd}
}

// PresentForm responds to the invocation with a modal and waits for its
// submission. The modal's custom id carries the session token so only
// this instance's submit is accepted.
func (su *interactionSurface) PresentForm(ctx context.Context, s workflow.Session, title string, fields []workflow.FormField, timeout time.Duration) (map[string]string, error) {
	customID := s.Token + modalSuffix

	components := make([]discordgo.MessageComponent, len(fields))
	for i, field := range fields {
		components[i] = discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    field.ID,
					Label:       field.Label,
					Style:       discordgo.TextInputShort,
					Placeholder: field.Placeholder,
					Value:       field.Value,
					Required:    field.Required,
				},
			},
		}
	}

	err := su.bot.session.InteractionRespond(su.cmd.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: components,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("show modal: %w", err)
	}
	su.cmdAcked = true

	submit, err := su.bot.await(ctx, s, timeout, customID)
	if err != nil {
		return nil, err
	}
	su.modal = submit

	return modalValues(submit), nil
}

// PresentSelect replies to the form submission with a single-choice
// menu and waits for the pick. The click is acknowledged with a saving
// notice so the token can be deleted again during Cleanup.
func (su *interactionSurface) PresentSelect(ctx context.Context, s workflow.Session, prompt string, options []workflow.SelectOption, timeout time.Duration) (string, error) {
	customID := "row-id;" + s.Token

	menuOptions := make([]discordgo.SelectMenuOption, len(options))
	for i, option := range options {
		menuOptions[i] = discordgo.SelectMenuOption{Label: option.Label, Value: option.Value}
	}

	one := 1
	err := su.bot.session.InteractionRespond(su.modal.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: prompt,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    customID,
							Placeholder: "Row",
							MinValues:   &one,
							MaxValues:   1,
							Options:     menuOptions,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("show row selector: %w", err)
	}
	su.modalAcked = true

	response, err := su.bot.await(ctx, s, timeout, customID)
	if err != nil {
		return "", err
	}
	su.component = response

	err = su.bot.session.InteractionRespond(response.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: "Saving..."},
	})
	if err != nil {
		return "", fmt.Errorf("acknowledge selection: %w", err)
	}
	su.componentAcked = true

	values := response.MessageComponentData().Values
	if len(values) != 1 {
		return "", fmt.Errorf("expected exactly one selection, got %d", len(values))
	}
	return values[0], nil
}

// PresentConfirm replies to the invocation with confirm/cancel buttons
// and waits for the requester's click.
func (su *interactionSurface) PresentConfirm(ctx context.Context, s workflow.Session, prompt string, timeout time.Duration) (bool, error) {
	confirmID := "delete;" + s.Token
	cancelID := "cancel;" + s.Token

	err := su.bot.session.InteractionRespond(su.cmd.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Confirm",
				Description: prompt,
				Color:       colorGreen,
				Footer:      &discordgo.MessageEmbedFooter{Text: "Expires in 30 seconds."},
			}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Delete",
							Style:    discordgo.DangerButton,
							CustomID: confirmID,
							Emoji:    &discordgo.ComponentEmoji{Name: "🗑️"},
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
							CustomID: cancelID,
							Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("show confirmation: %w", err)
	}
	su.cmdAcked = true

	response, err := su.bot.await(ctx, s, timeout, confirmID, cancelID)
	if err != nil {
		return false, err
	}
	su.component = response

	return response.MessageComponentData().CustomID == confirmID, nil
}

// ExpireSelection edits the pending message in place: expiry notice in,
// interactive components out. The message stays, non-interactive.
func (su *interactionSurface) ExpireSelection(_ context.Context, _ workflow.Session, notice string) error {
	target := su.cmd
	if su.modal != nil {
		target = su.modal
	}

	empty := []discordgo.MessageComponent{}
	_, err := su.bot.session.InteractionResponseEdit(target.Interaction, &discordgo.WebhookEdit{
		Content:    &notice,
		Components: &empty,
	})
	if err != nil {
		return fmt.Errorf("expire message: %w", err)
	}
	return nil
}

// Reply sends content to whichever interaction of the exchange is still
// unacknowledged; once everything is acknowledged it edits the original
// response instead.
func (su *interactionSurface) Reply(_ context.Context, _ workflow.Session, content string) error {
	switch {
	case su.component != nil && !su.componentAcked:
		su.componentAcked = true
		empty := []discordgo.MessageComponent{}
		return su.bot.session.InteractionRespond(su.component.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{Content: content, Components: empty},
		})
	case su.modal != nil && !su.modalAcked:
		su.modalAcked = true
		return su.bot.session.InteractionRespond(su.modal.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content},
		})
	case !su.cmdAcked:
		su.cmdAcked = true
		return su.bot.session.InteractionRespond(su.cmd.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content},
		})
	default:
		empty := []discordgo.MessageComponent{}
		_, err := su.bot.session.InteractionResponseEdit(su.cmd.Interaction, &discordgo.WebhookEdit{
			Content:    &content,
			Components: &empty,
		})
		return err
	}
}

// Deliver posts the submission summary embed with the rendered table
// to the invocation channel.
func (su *interactionSurface) Deliver(_ context.Context, _ workflow.Session, summary workflow.Summary, image []byte) error {
	maxCount := summary.MinCount
	if summary.MaxCount != nil {
		maxCount = *summary.MaxCount
	}
	maxWLs := summary.MinWLs
	if summary.MaxWLs != nil {
		maxWLs = *summary.MaxWLs
	}

	_, err := su.bot.session.ChannelMessageSendComplex(su.cmd.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Price Added",
			Description: fmt.Sprintf("Item: %s\n\nRow: %s", summary.ItemName, summary.RowName),
			Color:       colorGreen,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Min Item Count", Value: strconv.Itoa(summary.MinCount), Inline: true},
				{Name: "Max Item Count", Value: strconv.Itoa(maxCount), Inline: true},
				{Name: "Min WLs", Value: strconv.Itoa(summary.MinWLs)},
				{Name: "Max WLs", Value: strconv.Itoa(maxWLs)},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: summary.SavedAt.Format(time.RFC1123)},
		}},
		Files: []*discordgo.File{{
			Name:        "prices.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(image),
		}},
	})
	if err != nil {
		return fmt.Errorf("deliver summary: %w", err)
	}
	return nil
}

// Cleanup deletes this instance's leftover interactive messages. Best
// effort; the platform sometimes refuses.
func (su *interactionSurface) Cleanup(_ context.Context, _ workflow.Session) error {
	if su.modal != nil && su.modalAcked {
		if err := su.bot.session.InteractionResponseDelete(su.modal.Interaction); err != nil {
			log.Printf("Failed to delete selector message: %v", err)
		}
	}
	if su.component != nil && su.componentAcked {
		if err := su.bot.session.InteractionResponseDelete(su.component.Interaction); err != nil {
			log.Printf("Failed to delete saving notice: %v", err)
		}
	}
	return nil
}

// modalValues flattens a modal submission into field id -> raw string.
func modalValues(submit *discordgo.InteractionCreate) map[string]string {
	values := make(map[string]string)
	for _, row := range submit.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}
