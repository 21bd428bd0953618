package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/RoGogDBD/canteen/internal/config"
	"github.com/RoGogDBD/canteen/internal/models"
)

func main() {
	user := flag.String("user", "test-user", "User the event belongs to")
	mainOrderID := flag.String("order", "", "Order UID")
	itemID := flag.String("item", "", "Line item UID")
	status := flag.String("status", "ready", "New item status")
	flag.Parse()

	if *mainOrderID == "" || *itemID == "" {
		log.Fatal("order and item flags are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		log.Fatal("Kafka brokers or topic not configured")
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("kafka writer close error: %v", err)
		}
	}()

	ev := models.StatusEvent{
		User:        *user,
		MainOrderID: *mainOrderID,
		OrderID:     *itemID,
		OrderStatus: *status,
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	err = w.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(ev.MainOrderID),
			Value: payload,
		},
	)
	if err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}

	log.Printf("Status event sent: order %s item %s -> %s", ev.MainOrderID, ev.OrderID, ev.OrderStatus)
}
