// Package worker connects the chat queue to the finance service.
package worker

import (
	"context"
	"fmt"

	"dompet/internal/amqp"
	"dompet/internal/log"
	"dompet/internal/services"
)

// Handler executes a chat command and returns the reply, if any.
type Handler interface {
	Handle(ctx context.Context, msg services.Message) (string, bool)
}

type Replier interface {
	PublishReply(ctx context.Context, reply *amqp.ReplyMessage) error
}

// MessageWorker turns each inbound queue message into at most one reply.
type MessageWorker struct {
	handler Handler
	replies Replier
	logger  *log.Logger
}

func NewMessageWorker(handler Handler, replies Replier, logger *log.Logger) *MessageWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MessageWorker{
		handler: handler,
		replies: replies,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage is an amqp.Handler. Only a message that was never started is
// requeued; once the command ran, a failed reply is logged and dropped so the
// ledger write is not repeated.
func (w *MessageWorker) HandleMessage(ctx context.Context, msg *amqp.InboundMessage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("message %s not handled: %w", msg.ID, err)
	}

	reply, ok := w.handler.Handle(ctx, services.Message{
		ID:     msg.ID,
		Sender: msg.Sender,
		Text:   msg.Text,
	})
	if !ok {
		w.logger.DebugContext(ctx, "Ignoring message", log.FieldMessageID, msg.ID)
		return nil
	}

	if err := w.replies.PublishReply(ctx, amqp.NewReply(msg, reply)); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish reply",
			log.FieldMessageID, msg.ID,
			log.FieldSender, msg.Sender,
			log.FieldError, err.Error())
		return nil
	}

	w.logger.InfoContext(ctx, "Replied to message",
		log.FieldMessageID, msg.ID,
		log.FieldSender, msg.Sender)
	return nil
}
