package mlog

import (
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/message"
)

// LogCommand logs a message indicating that an aggregate instance is
// executing a command.
func LogCommand(
	log logging.Logger,
	aggregate, id, command string,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				InstanceIDIcon.WithID(id),
			},
			[]Icon{
				ConsumeIcon,
				AggregateIcon,
			},
			aggregate,
			command,
		),
	)
}

// LogCommandError logs a message indicating that an aggregate instance failed
// to execute a command.
func LogCommandError(
	log logging.Logger,
	aggregate, id, command string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				InstanceIDIcon.WithID(id),
			},
			[]Icon{
				ConsumeErrorIcon,
				ErrorIcon,
			},
			aggregate,
			command,
			cause.Error(),
		),
	)
}

// LogProduce logs a message indicating that an aggregate produced an event.
func LogProduce(
	log logging.Logger,
	ev message.Event,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(ev.ID),
				InstanceIDIcon.WithID(ev.AggregateID),
			},
			[]Icon{
				ProduceIcon,
				AggregateIcon,
			},
			ev.AggregateType,
			ev.Type,
		),
	)
}

// LogSkip logs a debug message indicating that an event of an undeclared type
// was not applied to an aggregate's state.
func LogSkip(
	log logging.Logger,
	ev message.Event,
) {
	if !logging.IsDebug(log) {
		return
	}

	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(ev.ID),
				InstanceIDIcon.WithID(ev.AggregateID),
			},
			[]Icon{
				SystemIcon,
				"",
			},
			ev.Type,
			"unknown event type, state unchanged",
		),
	)
}

// LogConsume logs a message indicating that an event is being consumed from a
// queue.
//
// fc is the number of times delivery of the event has previously failed.
func LogConsume(
	log logging.Logger,
	ev message.Event,
	fc uint,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(ev.ID),
				InstanceIDIcon.WithID(ev.AggregateID),
			},
			[]Icon{
				ConsumeIcon,
				retryIcon(fc),
			},
			ev.Type,
		),
	)
}

// LogNack logs a message indicating that delivery of an event from a queue
// failed and will be retried.
func LogNack(
	log logging.Logger,
	ev message.Event,
	cause error,
	delay time.Duration,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(ev.ID),
				InstanceIDIcon.WithID(ev.AggregateID),
			},
			[]Icon{
				ConsumeErrorIcon,
				ErrorIcon,
			},
			ev.Type,
			cause.Error(),
			fmt.Sprintf("next retry in %s", delay),
		),
	)
}

// LogDeliveryResult logs the result of delivering an event to a model.
//
// Failures are always logged. Successful deliveries are only logged when debug
// logging is enabled. It is designed to be used with defer.
func LogDeliveryResult(
	log logging.Logger,
	ev message.Event,
	kind handler.Kind,
	model string,
	err *error,
) {
	if p := recover(); p != nil {
		// We don't want to log anything if there was a panic.
		panic(p)
	}

	ids := []IconWithLabel{
		MessageIDIcon.WithID(ev.ID),
		InstanceIDIcon.WithID(ev.AggregateID),
	}

	if *err != nil {
		logging.LogString(
			log,
			String(
				ids,
				[]Icon{KindIcon(kind), ErrorIcon},
				model,
				ev.Type,
				(*err).Error(),
			),
		)
		return
	}

	if !logging.IsDebug(log) {
		return
	}

	logging.DebugString(
		log,
		String(
			ids,
			[]Icon{KindIcon(kind), ""},
			model,
			ev.Type,
			"event delivered successfully",
		),
	)
}

func retryIcon(n uint) Icon {
	if n == 0 {
		return ""
	}

	return RetryIcon
}
