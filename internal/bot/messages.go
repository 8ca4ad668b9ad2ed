package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Zoom-License-Bot/internal/catalog"
	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/telegram"
)

const (
	emailPrompt = "Please send the email address your Zoom license should be issued for."

	proofNote = "⚠️ Put your own account name in the transfer note. " +
		"Do not mention Zoom anywhere in it.\n\n" +
		"When the transfer is done, send the receipt screenshot here."

	redeemSubmitted = "Your license request has been submitted. " +
		"An admin will set it up shortly and you will get the details here."

	orderReceived = "We received your receipt and are checking it now. " +
		"Your coins will be added as soon as an admin confirms the payment."
)

func menuText(firstName string) string {
	return fmt.Sprintf(
		"Hello, %s! 👋\nWelcome to the Zoom Pro shop.\n\n"+
			"🪙 Buy Zoom Coins first, then redeem them for a Zoom Pro license.\n\n"+
			"Choose an option below.", firstName)
}

func balanceText(coins int64) string {
	return fmt.Sprintf(
		"🪙 Your balance: %d coins.\n\n"+
			"/start — buy more coins\n/zoom — redeem a license", coins)
}

func promoCaption() string {
	return "Zoom Pro Pricing & Plans\n\n" +
		"Coins are redeemed for Zoom Pro time on your own email.\n" +
		"Pick a plan below to buy coins."
}

func planSummary(d db.Draft) string {
	return fmt.Sprintf(
		"Zoom Coin Order\n🛍️: %s\n🗓️: %d Days\n🪙: %d Coins\n💰: %d Ks\n\n"+
			"Choose a payment method. For other banking options contact an admin.",
		d.Plan, d.Days, d.Coins, d.Price)
}

func paymentInstructions(d db.Draft, m catalog.PaymentMethod) string {
	return fmt.Sprintf(
		"Transfer exactly %d Ks via %s:\n\n%s\n\n%s",
		d.Price, m.Name, m.Details, proofNote)
}

func licensePlanPrompt(email string) string {
	return fmt.Sprintf("✉️: %s\n\nChoose the license plan you want to redeem.", email)
}

func confirmRedeemText(d db.Draft, expires time.Time) string {
	return fmt.Sprintf(
		"Please confirm your license request.\n\n"+
			"✉️: %s\n🛍️: %s\n🗓️: %d Days\n🪙: %d Coins\n"+
			"Expire Date - %s",
		d.Email, d.Plan, d.Days, d.Coins, telegram.FormatDate(expires))
}

func insufficientBalanceText(need, have int64) string {
	return fmt.Sprintf("Insufficient balance. You need %d coins but have %d.", need, have)
}

// orderCaption is the staff-group record for a pending order. The leading
// status line is rewritten in place when the order is accepted or declined,
// so its exact wording is load-bearing.
func orderCaption(u *db.User, o *db.Order) string {
	return fmt.Sprintf(
		"Order (Pending)\n\n"+
			"👤: %s\nID: <code>%d</code>\nUsername: @%s\n\n"+
			"Ref: <code>%s</code>\n🛍️: %s\n🗓️: %d Days\n🪙: %d Coins\n💰: %d Ks\n\n"+
			"⏰: %s",
		userLink(u), u.TgID, orDash(u.Username),
		o.Reference, o.PlanName, o.Days, o.Coins, o.Price,
		telegram.FormatTime(o.CreatedAt))
}

// licenseRecord is the staff-group record for a pending license request.
func licenseRecord(u *db.User, lic *db.License) string {
	return fmt.Sprintf(
		"License (Pending)\n\n"+
			"👤: %s\nID: <code>%d</code>\nUsername: @%s\n\n"+
			"Ref: <code>%s</code>\n✉️: %s\n🛍️: %s\n🗓️: %d Days\n🪙: %d Coins\n"+
			"Expire Date - %s\n\n⏰: %s",
		userLink(u), u.TgID, orDash(u.Username),
		lic.Reference, lic.Email, lic.PlanName, lic.Days, lic.CoinsSpent,
		telegram.FormatDate(lic.ExpiresAt),
		telegram.FormatTime(lic.CreatedAt))
}

func newCustomerAlert(u *db.User) string {
	return fmt.Sprintf(
		"🎉 New customer\n\n👤: %s\nID: <code>%d</code>\nUsername: @%s",
		userLink(u), u.TgID, orDash(u.Username))
}

func userLink(u *db.User) string {
	name := tgbotapi.EscapeText(tgbotapi.ModeHTML, u.FirstName)
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.TgID, name)
}

func orDash(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
