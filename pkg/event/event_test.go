package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bookstore/pkg/event"
)

func TestBus_FireInOrder(t *testing.T) {
	bus := event.NewBus()
	var got []string

	bus.Listen(event.CartChanged, func(p interface{}) { got = append(got, "a:"+p.(string)) })
	bus.Listen(event.CartChanged, func(p interface{}) { got = append(got, "b:"+p.(string)) })
	bus.Listen(event.SessionChanged, func(interface{}) { got = append(got, "other") })

	bus.Fire(event.CartChanged, "x")
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := event.NewBus()
	calls := 0
	stop := bus.Listen(event.CartChanged, func(interface{}) { calls++ })

	bus.Fire(event.CartChanged, nil)
	stop()
	bus.Fire(event.CartChanged, nil)
	stop()

	assert.Equal(t, 1, calls)
}

func TestBus_NilIsNoop(t *testing.T) {
	var bus *event.Bus
	assert.NotPanics(t, func() { bus.Fire(event.CartChanged, nil) })
}
