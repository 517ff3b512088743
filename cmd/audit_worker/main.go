package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jolivares/cuaderno/config"
	"github.com/jolivares/cuaderno/pkg/audit"
	"github.com/jolivares/cuaderno/pkg/geo"
)

// The audit worker drains the audit queue into an append-only file. Every
// message is acked, even on sink failure; losing an audit line must never
// wedge the queue.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitMQAuditQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	if dir := filepath.Dir(cfg.AuditLogPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create audit log dir: %v", err)
		}
	}
	sink, err := os.OpenFile(cfg.AuditLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("open audit log: %v", err)
	}
	defer func() { _ = sink.Close() }()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(32, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQAuditQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQAuditQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	var resolver geo.Resolver
	if cfg.GeoEnabled {
		resolver = geo.IPAPIResolver{}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev audit.Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad audit message: %v", err)
				_ = msg.Ack(false)
				continue
			}
			line := formatLine(ev, lookupGeo(resolver, ev.SourceIP))
			if _, err := sink.WriteString(line + "\n"); err != nil {
				log.Printf("audit sink write failed: %v", err)
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("audit worker listening on queue=%s sink=%s", cfg.RabbitMQAuditQueue, cfg.AuditLogPath)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func lookupGeo(resolver geo.Resolver, ip string) string {
	if resolver == nil || ip == "" || ip == "unknown" {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	g, err := resolver.Lookup(ctx, ip)
	if err != nil {
		return ""
	}
	return geo.Format(g)
}

func formatLine(ev audit.Event, location string) string {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	parts := []string{ts.UTC().Format(time.RFC3339), ev.Action}
	if ev.Email != "" {
		parts = append(parts, "email="+ev.Email)
	}
	if ev.UserID != "" {
		parts = append(parts, "user="+ev.UserID)
	}
	if ev.SourceIP != "" {
		parts = append(parts, "ip="+ev.SourceIP)
	}
	if location != "" {
		parts = append(parts, fmt.Sprintf("geo=%q", location))
	}
	if ev.UserAgent != "" {
		parts = append(parts, fmt.Sprintf("ua=%q", ev.UserAgent))
	}
	if ev.RequestID != "" {
		parts = append(parts, "req="+ev.RequestID)
	}
	if ev.Detail != "" {
		parts = append(parts, fmt.Sprintf("detail=%q", ev.Detail))
	}
	return strings.Join(parts, " ")
}
