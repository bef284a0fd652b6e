package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/notify/adapters"
	"bookstore/internal/notify/application"
	"bookstore/pkg/config"
	"bookstore/pkg/events"
	"bookstore/pkg/logger"
	"bookstore/pkg/rabbitmq"
)

func main() {
	cfg := config.LoadForService("notifier")

	log := logger.NewWithFormat(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting notifier")

	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ: " + err.Error())
	}
	defer rabbitConn.Close()

	consumer, err := rabbitmq.NewConsumer(
		rabbitConn,
		"notifier.orders",
		events.ExchangeOrders,
		[]string{
			events.RoutingKeyOrderCreated,
			events.RoutingKeyOrderStatusChanged,
			events.RoutingKeyOrderCancelled,
		},
		log,
	)
	if err != nil {
		log.Fatal("failed to create orders consumer: " + err.Error())
	}

	stockConsumer, err := rabbitmq.NewConsumer(
		rabbitConn,
		"notifier.catalog",
		events.ExchangeCatalog,
		[]string{events.RoutingKeyStockLow},
		log,
	)
	if err != nil {
		log.Fatal("failed to create catalog consumer: " + err.Error())
	}

	sender := adapters.NewLogSender(cfg.MailFrom, log)
	notifier := application.NewNotifier(sender, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Consume(ctx, notifier.HandleMessage); err != nil {
		log.Fatal("failed to start orders consumer: " + err.Error())
	}
	if err := stockConsumer.Consume(ctx, notifier.HandleMessage); err != nil {
		log.Fatal("failed to start catalog consumer: " + err.Error())
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("notifier stopped")
}
