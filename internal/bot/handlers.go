package bot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/pages"
)

const cmdInactive = "inactive"

var inactivePresets = []int{7, 30, 90}

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the admin dashboard console!

Query the admin tables from chat.

Quick start:
1. /inactive <days> — accounts not seen for at least <days> days
2. /campaigns — campaign progress
3. /donations <campaign_id> — donations of one campaign

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Accounts:
/inactive <days> — accounts whose last login is at least <days> days ago
                   (accounts that never logged in are always listed)

Campaigns:
/campaigns — all campaigns with status and progress
/donations <campaign_id> — donations made to a campaign`)
}

func (b *Bot) handleInactive(ctx context.Context, chatID int64, args string) {
	days, err := ParseDays(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	view, err := pages.Accounts.Open(ctx, b.env)
	if err != nil {
		b.log.Error("open accounts", "error", err)
		b.reply(chatID, fmt.Sprintf("Failed to load accounts: %v", err))
		return
	}

	view.Table.OnDraw(func(rows []datatable.Row) {
		msg := tgbotapi.NewMessage(chatID, FormatInactive(days, view.Table.Columns(), rows))
		msg.ReplyMarkup = presetKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("send message", "chat_id", chatID, "error", err)
		}
	})
	view.Input(pages.LoginFilterParam).Set(strconv.Itoa(days))
}

func (b *Bot) handleCampaigns(ctx context.Context, chatID int64) {
	view, err := pages.Campaigns.Open(ctx, b.env)
	if err != nil {
		b.log.Error("open campaigns", "error", err)
		b.reply(chatID, fmt.Sprintf("Failed to load campaigns: %v", err))
		return
	}

	rows := view.Table.Redraw()
	b.reply(chatID, FormatCampaigns(view.Table.Columns(), rows))
}

func (b *Bot) handleDonations(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /donations <campaign_id>")
		return
	}

	view, err := pages.Donations.Open(ctx, b.env)
	if err != nil {
		b.log.Error("open donations", "error", err)
		b.reply(chatID, fmt.Sprintf("Failed to load donations: %v", err))
		return
	}

	view.ApplyParams(url.Values{pages.CampaignParam: {strconv.FormatInt(id, 10)}})
	rows := view.Table.Redraw()
	b.reply(chatID, FormatDonations(id, view.Table.Columns(), rows))
}

func presetKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(inactivePresets))
	for _, d := range inactivePresets {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d days", d), fmt.Sprintf("%s:%d", cmdInactive, d),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons)
}
