// Package services – OrderNotifier
//
// OrderNotifier turns order creations into inbox notifications: one NEW_ORDER
// summary per order, plus a CASH_CHANGE reminder when a cash order needs
// change. Money is computed with shopspring/decimal and rendered with the
// configured locale and currency.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
)

// OrderNotifier reacts to order creations. It is fire-and-forget: failures
// are logged and never reach the order-creation path.
type OrderNotifier struct {
	Notifications *NotificationService
	Printer       *message.Printer
	Currency      currency.Unit
}

// NewOrderNotifier builds a notifier formatting money for locale and the
// ISO 4217 currency code. Unparseable values fall back to en-US / USD.
func NewOrderNotifier(ns *NotificationService, locale, currencyCode string) *OrderNotifier {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		unit = currency.USD
	}
	return &OrderNotifier{Notifications: ns, Printer: message.NewPrinter(tag), Currency: unit}
}

// CashChange returns changeFor - total and whether a reminder is due
// (strictly positive change on a cash order with a change-for amount).
func CashChange(o *domain.Order) (decimal.Decimal, bool) {
	if o == nil || !strings.EqualFold(o.PaymentMethod, domain.PaymentCash) || !o.ChangeFor.Valid {
		return decimal.Zero, false
	}
	change := o.ChangeFor.Decimal.Sub(o.Total)
	return change, change.IsPositive()
}

// HandleOrderChange implements events.OrderHandler.
func (n *OrderNotifier) HandleOrderChange(ctx context.Context, change events.OrderChange) {
	if !change.Created() {
		return
	}
	o := change.After
	if o.RestaurantID == "" {
		return
	}

	if err := n.Notifications.Emit(ctx, n.newOrder(o)); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("new order notification failed")
	}

	if amount, due := CashChange(o); due {
		if err := n.Notifications.Emit(ctx, n.cashChange(o, amount)); err != nil {
			log.Error().Err(err).Str("order_id", o.ID).Msg("cash change notification failed")
		}
	}
}

func (n *OrderNotifier) newOrder(o *domain.Order) *domain.Notification {
	items := o.ItemCount()
	return &domain.Notification{
		TargetID: o.RestaurantID,
		Type:     domain.NotificationNewOrder,
		Title:    "New order",
		Body:     n.printer().Sprintf("%d item(s), total %v", items, n.money(o.Total)),
		Data: map[string]any{
			"order_id":   o.ID,
			"item_count": items,
			"total":      o.Total.StringFixed(2),
			"source":     o.Source,
		},
	}
}

func (n *OrderNotifier) cashChange(o *domain.Order, amount decimal.Decimal) *domain.Notification {
	return &domain.Notification{
		TargetID: o.RestaurantID,
		Type:     domain.NotificationCashChange,
		Title:    "Bring change",
		Body:     n.printer().Sprintf("Customer pays %v in cash: bring %v change.", n.money(o.ChangeFor.Decimal), n.money(amount)),
		Data: map[string]any{
			"order_id":   o.ID,
			"change":     amount.StringFixed(2),
			"change_for": o.ChangeFor.Decimal.StringFixed(2),
			"total":      o.Total.StringFixed(2),
		},
	}
}

func (n *OrderNotifier) money(d decimal.Decimal) any {
	f, _ := d.Round(2).Float64()
	return currency.Symbol(n.Currency.Amount(f))
}

func (n *OrderNotifier) printer() *message.Printer {
	if n.Printer == nil {
		return message.NewPrinter(language.AmericanEnglish)
	}
	return n.Printer
}
