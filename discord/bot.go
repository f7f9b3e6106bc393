// Package discord adapts the bot to Discord: slash commands,
// autocomplete, and the interaction surface the workflows present
// their forms, menus and confirmations through.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"pricebot/gate"
	"pricebot/workflow"
)

// Bot wraps the gateway session and routes component and modal
// responses back to the workflow instance waiting on them.
type Bot struct {
	session *discordgo.Session
	guildID string

	pending sync.Map // custom id -> *waiter
}

// waiter is one suspended await point. Responses are only delivered
// when the session token and the author match; everyone else's clicks
// are ignored.
type waiter struct {
	session workflow.Session
	ch      chan *discordgo.InteractionCreate
}

// New builds the bot but does not connect yet.
func New(token, guildID string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentMessageContent

	bot := &Bot{session: session, guildID: guildID}
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onInteraction)

	return bot, nil
}

// Start connects to the gateway and registers the guild commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.guildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	fmt.Println("✅ Commands registered successfully!")
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in as %s#%s (%s)", r.User.Username, r.User.Discriminator, r.User.ID)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(i)
	case discordgo.InteractionModalSubmit:
		b.deliverResponse(i.ModalSubmitData().CustomID, i)
	case discordgo.InteractionMessageComponent:
		b.deliverResponse(i.MessageComponentData().CustomID, i)
	}
}

// handleCommand gates and dispatches a slash command. The workflow runs
// in its own goroutine so a suspended instance never blocks the event
// handlers; any error escaping the instance is logged and reported as
// one generic message.
func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	if _, err := gate.GetOrCreateUser(userID); err != nil {
		log.Printf("Failed to upsert user %s: %v", userID, err)
	}

	name := i.ApplicationCommandData().Name
	var allowed bool
	switch name {
	case "edit-price":
		allowed = gate.IsAdmin(userID)
	case "rows":
		allowed = gate.IsOwner(userID)
	}

	if !allowed {
		b.respondEphemeral(i, "You are not allowed to run this command.")
		return
	}

	go func() {
		ctx := context.Background()

		var err error
		switch name {
		case "edit-price":
			err = b.runEditPrice(ctx, i, userID)
		case "rows":
			err = b.runRows(ctx, i, userID)
		}

		if err != nil {
			log.Printf("Failed to run the command %s: %v", name, err)
			b.reportFailure(i)
		}
	}()
}

// await suspends until a response with one of the custom ids arrives
// from the session's user, or the bound expires.
func (b *Bot) await(ctx context.Context, s workflow.Session, timeout time.Duration, customIDs ...string) (*discordgo.InteractionCreate, error) {
	w := &waiter{session: s, ch: make(chan *discordgo.InteractionCreate, 1)}
	for _, id := range customIDs {
		b.pending.Store(id, w)
	}
	defer func() {
		for _, id := range customIDs {
			b.pending.Delete(id)
		}
	}()

	select {
	case response := <-w.ch:
		return response, nil
	case <-time.After(timeout):
		return nil, workflow.ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// deliverResponse hands a modal or component response to the waiting
// instance. Unknown custom ids are stale (a finished or expired
// instance); the token embedded in the custom id must match the
// waiting session, and responses from other users are excluded
// outright.
func (b *Bot) deliverResponse(customID string, i *discordgo.InteractionCreate) {
	value, ok := b.pending.Load(customID)
	if !ok {
		log.Printf("Dropping stale interaction response: %s", customID)
		return
	}

	w := value.(*waiter)
	if !w.session.Matches(responseToken(customID)) {
		return
	}
	if interactionUserID(i) != w.session.UserID {
		return
	}

	select {
	case w.ch <- i:
	default:
	}
}

// responseToken extracts the session token a custom id was built with.
func responseToken(customID string) string {
	if _, token, ok := strings.Cut(customID, ";"); ok {
		return token
	}
	return strings.TrimSuffix(customID, modalSuffix)
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

// reportFailure is the instance error boundary: one generic message,
// nothing propagates further.
func (b *Bot) reportFailure(i *discordgo.InteractionCreate) {
	_, err := b.session.ChannelMessageSend(i.ChannelID,
		"Something went wrong while running that command, please try again.")
	if err != nil {
		log.Printf("Failed to report command failure: %v", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
