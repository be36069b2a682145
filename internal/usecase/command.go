package usecase

import (
	"context"
	"errors"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

// DefaultTriggerPhrase is the chat text that starts a cycle.
const DefaultTriggerPhrase = "抓取資料"

// Replies pushed back after a webhook command.
const (
	ReplyConfirmed = "資料已抓取並發送至群組"
	ReplyInvalid   = "無效的指令"
	ReplyBusy      = "資料抓取進行中，請稍後再試"
)

// CycleRunner runs one relay cycle.
type CycleRunner interface {
	Run(ctx context.Context) (CycleResult, error)
}

// CommandDispatcher maps inbound chat texts onto commands.
type CommandDispatcher struct {
	runner   CycleRunner
	notifier ports.Notifier
	phrase   string
	logger   ports.Logger
}

// NewCommandDispatcher constructs a dispatcher recognising phrase.
func NewCommandDispatcher(runner CycleRunner, notifier ports.Notifier, phrase string, logger ports.Logger) *CommandDispatcher {
	if phrase == "" {
		phrase = DefaultTriggerPhrase
	}
	return &CommandDispatcher{runner: runner, notifier: notifier, phrase: phrase, logger: logger}
}

// ParseCommand matches text exactly against phrase.
func ParseCommand(text, phrase string) model.Command {
	if text == phrase {
		return model.CommandFetch
	}
	return model.CommandUnknown
}

// Handle executes the command carried by in and pushes one reply.
func (d *CommandDispatcher) Handle(ctx context.Context, in model.InboundText) model.Command {
	cmd := ParseCommand(in.Text, d.phrase)
	d.logger.Info(ctx, "webhook command", "command", cmd.String(), "source", in.SourceID)

	var reply string
	switch cmd {
	case model.CommandFetch:
		reply = d.fetch(ctx)
	default:
		reply = ReplyInvalid
	}

	if res := d.notifier.Deliver(ctx, model.OutboundMessage{Parts: []string{reply}}); !res.OK() {
		d.logger.Error(ctx, "failed to push command reply", "command", cmd.String(), "status", res.StatusCode)
	}
	return cmd
}

func (d *CommandDispatcher) fetch(ctx context.Context) string {
	_, err := d.runner.Run(ctx)
	switch {
	case errors.Is(err, ErrCycleInProgress), errors.Is(err, ErrCycleThrottled):
		return ReplyBusy
	case err != nil:
		d.logger.Error(ctx, "relay cycle failed", "error", err)
	}
	return ReplyConfirmed
}

