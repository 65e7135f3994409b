// Package notification sends order confirmation emails in the background.
package notification

import (
	"context"
	"sync"
	"time"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/pkg/mailer"
	"pink-basket/prometheus"

	"go.uber.org/zap"
)

// OrderLoader reads a persisted order.
type OrderLoader interface {
	Get(ctx context.Context, id uint) (*model.Order, error)
}

type Options struct {
	StoreName      string
	Currency       string
	ShopURL        string
	SupportAddress string
	SendTimeout    time.Duration
}

// Dispatcher renders and mails invoices. Failures are logged and counted,
// never returned to the order flow.
type Dispatcher struct {
	orders OrderLoader
	mailer mailer.Mailer
	opts   Options
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(orders OrderLoader, m mailer.Mailer, opts Options, log *zap.Logger) *Dispatcher {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 20 * time.Second
	}
	return &Dispatcher{orders: orders, mailer: m, opts: opts, log: log}
}

// Notify sends the confirmation for orderID on its own goroutine.
func (d *Dispatcher) Notify(orderID uint, recipientHint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("Dispatcher closed, confirmation skipped", zap.Uint("order_id", orderID))
		prometheus.RecordNotification("skipped")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.opts.SendTimeout)
		defer cancel()

		if err := d.SendOrderConfirmation(ctx, orderID, recipientHint); err != nil {
			d.log.Error("Order confirmation failed", zap.Uint("order_id", orderID), zap.Error(err))
		}
	}()
}

// SendOrderConfirmation loads the order, renders its invoice and mails it to
// the best available address.
func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, orderID uint, recipientHint string) error {
	order, err := d.orders.Get(ctx, orderID)
	if err != nil {
		prometheus.RecordNotification("failed")
		return err
	}

	to := d.recipient(order, recipientHint)
	inv := newInvoice(order, d.opts)
	html, err := inv.html()
	if err != nil {
		prometheus.RecordNotification("failed")
		return err
	}

	err = d.mailer.Send(ctx, mailer.Message{
		To:      to,
		Subject: inv.subject(),
		HTML:    html,
		Text:    inv.text(),
	})
	if err != nil {
		prometheus.RecordNotification("failed")
		return apperror.Dependency("email host", err)
	}

	prometheus.RecordNotification("sent")
	d.log.Info("Order confirmation sent", zap.Uint("order_id", orderID), zap.String("to", to))
	return nil
}

func (d *Dispatcher) recipient(order *model.Order, hint string) string {
	switch {
	case hint != "":
		return hint
	case order.Email != "":
		return order.Email
	}
	return d.opts.SupportAddress
}

// Close stops accepting work and waits for in-flight sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
