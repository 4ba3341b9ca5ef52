package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
)

const eImagePath = "Resources/e.jpg"

// Replies for unmet preconditions.
const (
	msgGroupOnly      = "You must be in a group to use this command!"
	msgNoPermission   = "You do not have permission to use this command!"
	msgSpinDisabled   = "The Spin function is not enabled!"
	msgButtonDisabled = "The Big Red Button is not enabled!"
	msgInvalidSyntax  = "Invalid syntax for command!"
	msgUserNotFound   = "Command failed. User/Channel not found."
	msgHelpSent       = "Help documentation has been sent to you via DM"
	msgEnableDMs      = "You must enable DMs in your profile to run this command!"
)

// helpRolesNote closes the help DM. The effector cannot grant Telegram roles.
const helpRolesNote = "\nTelegram groups have no member roles. Prize roles are tracked by the bot and shown on the overlay, and only silencing prizes change what you can do in this chat.\n"

type command struct {
	name    string
	params  []string
	summary string

	groupOnly    bool
	needSpin     bool
	needButton   bool
	needActive   bool
	adminOnly    bool
	hiddenInHelp bool

	run func(b *Bot, ctx context.Context, c *commandContext)
}

// commandContext carries one parsed command invocation.
type commandContext struct {
	msg    *tgbotapi.Message
	target types.Target
	args   string

	adminChecked bool
	admin        bool
}

var commands []*command

func init() {
	commands = []*command{
		{name: "help", summary: "Prints usage of the bot", groupOnly: true, run: (*Bot).runHelp},
		{name: "change-prefix", params: []string{"prefix"}, summary: "Allows changing of the default command prefix", groupOnly: true, adminOnly: true, run: (*Bot).runChangePrefix},
		{name: "spin", summary: "Spins the wheel!", groupOnly: true, needSpin: true, run: (*Bot).runSpin},
		{name: "test-prize", params: []string{"user", "prizeName"}, summary: "Simulates the specified user winning the specified prize", groupOnly: true, needSpin: true, adminOnly: true, run: (*Bot).runTestPrize},
		{name: "test-button", params: []string{"user"}, summary: "Simulates the specified user pressing the button", groupOnly: true, needButton: true, adminOnly: true, run: (*Bot).runTestButton},
		{name: "prizes", summary: "Displays available prizes!", groupOnly: true, needSpin: true, run: (*Bot).runPrizes},
		{name: "bigredbutton", summary: "Activates the Big Red Button", groupOnly: true, needButton: true, run: (*Bot).runShowButton},
		{name: "SMASH", summary: "Pushes the Big Red Button!!!!", groupOnly: true, needButton: true, needActive: true, run: (*Bot).runSmash},
		{name: "dms", params: []string{"on|off"}, summary: "Turns direct messages from the bot on or off", groupOnly: true, adminOnly: true, run: (*Bot).runDMs},
		{name: "e", hiddenInHelp: true, run: (*Bot).runE},
	}
}

func findCommand(name string) *command {
	for _, cmd := range commands {
		if strings.EqualFold(cmd.name, name) {
			return cmd
		}
	}
	return nil
}

// parseCommand splits a message into a command name and its arguments. Both
// "/name" and "<prefix>name" are accepted, and "/name@bot" only when bot
// matches botName.
func parseCommand(text, prefix, botName string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	var rest string
	switch {
	case strings.HasPrefix(text, "/"):
		rest = text[1:]
	case prefix != "" && strings.HasPrefix(text, prefix):
		rest = text[len(prefix):]
	default:
		return "", "", false
	}

	name, args, _ = strings.Cut(rest, " ")
	if n, addressee, found := strings.Cut(name, "@"); found {
		if botName != "" && !strings.EqualFold(addressee, botName) {
			return "", "", false
		}
		name = n
	}
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(args), true
}

func isGroup(chat *tgbotapi.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}

// targetFor builds the wheel target for a user speaking in chat.
func targetFor(user *tgbotapi.User, chat *tgbotapi.Chat) types.Target {
	t := types.Target{
		UserID:   user.ID,
		Username: user.UserName,
		Mention:  "@" + user.UserName,
	}
	if user.UserName == "" {
		t.Username = strings.TrimSpace(user.FirstName + " " + user.LastName)
		t.Mention = t.Username
	}
	if chat != nil {
		t.GuildID = chat.ID
		t.ChannelID = chat.ID
	}
	return t
}

// unmet returns the reply for the first failed precondition, or "" when the
// command may run.
func (b *Bot) unmet(cmd *command, c *commandContext) string {
	if cmd.groupOnly && !isGroup(c.msg.Chat) {
		return msgGroupOnly
	}
	if cmd.needSpin && !b.manager.SpinEnabled() {
		return msgSpinDisabled
	}
	if cmd.needButton && !b.manager.ButtonEnabled() {
		return msgButtonDisabled
	}
	if cmd.needActive && !b.manager.ButtonActive() {
		return fmt.Sprintf("The Big Red Button is not active! Use %sbigredbutton to activate", b.manager.Settings().Prefix())
	}
	if cmd.adminOnly && !b.isAdmin(c) {
		return msgNoPermission
	}
	return ""
}

func (b *Bot) runHelp(ctx context.Context, c *commandContext) {
	prefix := b.manager.Settings().Prefix()

	var sb strings.Builder
	sb.WriteString("These are the commands you can use\n\n")
	for _, cmd := range commands {
		if cmd.hiddenInHelp || b.unmet(cmd, c) != "" {
			continue
		}
		sb.WriteString(prefix + cmd.name)
		for _, p := range cmd.params {
			sb.WriteString(" <" + p + ">")
		}
		sb.WriteString(" - " + cmd.summary + "\n")
	}
	sb.WriteString(helpRolesNote)

	if _, err := b.api.Send(tgbotapi.NewMessage(c.target.UserID, sb.String())); err != nil {
		if isForbidden(err) {
			b.reply(ctx, c, msgEnableDMs)
			return
		}
		b.logCommandError("help", c, err)
		return
	}
	b.reply(ctx, c, msgHelpSent)
}

func (b *Bot) runChangePrefix(ctx context.Context, c *commandContext) {
	prefix := strings.Fields(c.args)
	if len(prefix) != 1 {
		b.reply(ctx, c, msgInvalidSyntax)
		return
	}
	b.manager.Settings().SetPrefix(prefix[0])
	b.reply(ctx, c, fmt.Sprintf("The new command prefix is %s", prefix[0]))
}

func (b *Bot) runSpin(ctx context.Context, c *commandContext) {
	b.manager.Spin(ctx, c.target)
}

func (b *Bot) runPrizes(ctx context.Context, c *commandContext) {
	b.manager.ShowPrizeList(ctx, c.target.ChannelID)
}

func (b *Bot) runShowButton(ctx context.Context, c *commandContext) {
	b.manager.ShowButton(ctx, c.target)
}

func (b *Bot) runSmash(ctx context.Context, c *commandContext) {
	b.manager.PressButton(ctx, c.target)
}

func (b *Bot) runTestPrize(ctx context.Context, c *commandContext) {
	t, rest, ok := b.resolveTarget(c)
	if !ok {
		b.reply(ctx, c, msgUserNotFound)
		return
	}
	if rest == "" {
		b.reply(ctx, c, msgInvalidSyntax)
		return
	}
	if _, found := b.manager.LookupPrize(rest); !found {
		b.reply(ctx, c, fmt.Sprintf("Prize %s not found", rest))
		return
	}
	b.manager.GrantPrize(ctx, t, rest)
}

func (b *Bot) runTestButton(ctx context.Context, c *commandContext) {
	t, _, ok := b.resolveTarget(c)
	if !ok {
		b.reply(ctx, c, msgUserNotFound)
		return
	}
	b.manager.GrantButtonRole(ctx, t)
}

func (b *Bot) runDMs(ctx context.Context, c *commandContext) {
	switch strings.ToLower(strings.TrimSpace(c.args)) {
	case "on":
		b.manager.Settings().SetSendDMs(true)
		b.reply(ctx, c, "Direct messages are now on")
	case "off":
		b.manager.Settings().SetSendDMs(false)
		b.reply(ctx, c, "Direct messages are now off")
	default:
		b.reply(ctx, c, msgInvalidSyntax)
	}
}

func (b *Bot) runE(ctx context.Context, c *commandContext) {
	if err := b.effector.SendFile(ctx, c.target.ChannelID, eImagePath); err != nil {
		b.logCommandError("e", c, err)
	}
}

// resolveTarget picks the user an admin command acts on: the author of the
// replied-to message, or a numeric user id as the first argument. The
// remaining arguments are returned.
func (b *Bot) resolveTarget(c *commandContext) (types.Target, string, bool) {
	if reply := c.msg.ReplyToMessage; reply != nil && reply.From != nil {
		return targetFor(reply.From, c.msg.Chat), c.args, true
	}

	first, rest, _ := strings.Cut(c.args, " ")
	userID, err := strconv.ParseInt(first, 10, 64)
	if err != nil || userID == 0 {
		return types.Target{}, "", false
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: c.msg.Chat.ID, UserID: userID},
	})
	if err != nil || member.User == nil || member.HasLeft() || member.WasKicked() {
		return types.Target{}, "", false
	}
	return targetFor(member.User, c.msg.Chat), strings.TrimSpace(rest), true
}
