package memory_test

import (
	"context"

	"github.com/dogmatiq/escf/persistence"
	"github.com/dogmatiq/escf/persistence/internal/persistencetest"
	. "github.com/dogmatiq/escf/persistence/memory"
	. "github.com/onsi/ginkgo/v2"
)

var _ = Describe("type StateStore", func() {
	persistencetest.DeclareStateStoreTests(
		func(context.Context) (persistence.StateStore, func()) {
			return &StateStore{}, nil
		},
	)
})

var _ = Describe("type EventStore", func() {
	persistencetest.DeclareEventStoreTests(
		func(context.Context) (persistence.EventStore, func()) {
			return &EventStore{}, nil
		},
	)
})
