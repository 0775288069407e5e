package pubsub

import "context"

type Publisher interface {
	Publish(context.Context, string, *Pack) error
	Stop(context.Context) error
}
