package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/config"
	"github.com/bloghive/bloghive-api/pkg/helpers"
	"github.com/bloghive/bloghive-api/pkg/mailer"
	mailtpl "github.com/bloghive/bloghive-api/pkg/mailer/templates"
)

// Consumes email jobs from RabbitMQ, renders the template and sends via
// Mailgun. Bad payloads and render failures are dropped; transient send
// failures are requeued.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		helpers.LogInfo(logger, "MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)", nil)
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial failed")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel failed")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos failed")
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		logger.WithError(err).Fatal("queue declare failed")
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume failed")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				helpers.LogError(logger, "bad message", err, nil)
				_ = msg.Nack(false, false)
				continue
			}
			if job.To == "" {
				helpers.LogError(logger, "message without recipient, dropping", nil, nil)
				_ = msg.Nack(false, false)
				continue
			}

			subject := job.Subject
			text := job.Text
			html := job.HTML
			if job.Template != "" {
				s, t, h, rerr := mailtpl.Render(job.Template, job.Data)
				if rerr != nil {
					helpers.LogError(logger, "render failed", rerr, logrus.Fields{"template": job.Template})
					_ = msg.Nack(false, false)
					continue
				}
				subject, text, html = s, t, h
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, job.To, subject, text, html); err != nil {
				cancel()
				helpers.LogError(logger, "send failed, requeueing", err, logrus.Fields{"to": job.To})
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			helpers.LogInfo(logger, "email sent", logrus.Fields{"to": job.To, "template": job.Template})
			_ = msg.Ack(false)
		}
		close(done)
	}()

	helpers.LogInfo(logger, "email worker listening", logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
	<-stop
	helpers.LogInfo(logger, "shutting down", nil)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
